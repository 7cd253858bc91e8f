package docgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	previewPolicyOnce sync.Once
	previewPolicy     *bluemonday.Policy
)

func previewSanitizer() *bluemonday.Policy {
	previewPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("p", "strong", "em", "br")
		previewPolicy = policy
	})
	return previewPolicy
}

// ToHTML converts a stored docx into display markup. Paragraphs become <p>,
// bold and italic runs become <strong>/<em>. The result is sanitized before
// it is handed to a browser.
func ToHTML(document []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	var body []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
		body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
		break
	}
	if body == nil {
		return "", fmt.Errorf("%w: no document.xml in archive", ErrRender)
	}

	html, err := documentXMLToHTML(body)
	if err != nil {
		return "", err
	}
	return previewSanitizer().Sanitize(html), nil
}

func documentXMLToHTML(body []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))

	var out strings.Builder
	var paragraph strings.Builder
	inParagraph := false
	bold := false
	italic := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				paragraph.Reset()
			case "r":
				bold = false
				italic = false
			case "b":
				bold = true
			case "i":
				italic = true
			case "br":
				if inParagraph {
					paragraph.WriteString("<br/>")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				out.WriteString("<p>")
				out.WriteString(paragraph.String())
				out.WriteString("</p>")
				inParagraph = false
			}
		case xml.CharData:
			if !inParagraph {
				continue
			}
			if strings.TrimSpace(string(t)) == "" {
				continue
			}
			text := escapeXML(string(t))
			if bold {
				text = "<strong>" + text + "</strong>"
			}
			if italic {
				text = "<em>" + text + "</em>"
			}
			paragraph.WriteString(text)
		}
	}

	return out.String(), nil
}
