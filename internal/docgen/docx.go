// Package docgen fills docx templates by placeholder substitution and renders
// stored documents into a viewable HTML preview.
//
// A docx file is a zip archive; the visible text lives in word/document.xml
// (plus headers and footers). Placeholders use the {name} form inside text
// runs. Generation is a pure transform over bytes so resubmission can reuse it
// without touching storage.
package docgen

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrRender marks a failed generation: a placeholder without a submitted
// value, or a base document that is not a well-formed archive. Callers must
// not retry and must not persist anything on this error.
var ErrRender = errors.New("document render failed")

var placeholderRe = regexp.MustCompile(`\{([^{}<>]+)\}`)

// Render substitutes values into every placeholder of the base document and
// returns the filled archive. The base document is never modified.
func Render(base []byte, values map[string]string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(base), int64(len(base)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	var out bytes.Buffer
	writer := zip.NewWriter(&out)

	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrRender, file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrRender, file.Name, err)
		}

		if isTextPart(file.Name) {
			content, err = substitute(content, values)
			if err != nil {
				return nil, err
			}
		}

		w, err := writer.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRender, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return out.Bytes(), nil
}

// isTextPart reports whether an archive entry carries document text.
func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	dir, base := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(base, ".xml") {
		return false
	}
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

func substitute(content []byte, values map[string]string) ([]byte, error) {
	var missing string
	replaced := placeholderRe.ReplaceAllFunc(content, func(match []byte) []byte {
		if missing != "" {
			return match
		}
		name := strings.TrimSpace(string(match[1 : len(match)-1]))
		value, ok := values[name]
		if !ok {
			missing = name
			return match
		}
		return []byte(escapeXML(value))
	})
	if missing != "" {
		return nil, fmt.Errorf("%w: no value for placeholder %q", ErrRender, missing)
	}
	return replaced, nil
}

func escapeXML(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GeneratedName builds a unique name for a filled document. Timestamp plus a
// random suffix, so concurrent generations never collide.
func GeneratedName() string {
	return fmt.Sprintf("filled-%d-%s.docx", time.Now().UnixMilli(), uuid.NewString())
}
