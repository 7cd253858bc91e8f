package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"certdesk/internal/docgen"
	"certdesk/internal/domains"
	"certdesk/internal/filestore"
	"certdesk/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	dateLayout   = "2006-01-02"
)

type ResponseService struct {
	provider  ResponseProvider
	templates TemplateProvider
	users     UserProvider
	files     filestore.FileStore
}

type ResponseProvider interface {
	SaveResponse(ctx context.Context, response domains.StudentResponse) (domains.StudentResponse, error)
	GetResponseByID(ctx context.Context, responseID int64) (domains.StudentResponse, error)
	UpdateResponse(ctx context.Context, response domains.StudentResponse) (domains.StudentResponse, error)
	UpdateStatus(ctx context.Context, responseID int64, status domains.ResponseStatus) (domains.StudentResponse, error)
	DeleteResponse(ctx context.Context, responseID int64) error
	GetResponsesByStudentID(ctx context.Context, studentID int64) ([]domains.ResponseDetails, error)
	GetAllWithDetails(ctx context.Context, filter domains.ResponseFilter) (domains.ResponsePage, error)
	GetApprovedWithinRange(ctx context.Context, start, end time.Time) ([]domains.ResponseDetails, error)
}

type UserProvider interface {
	GetUserByID(ctx context.Context, userID int64) (domains.User, error)
}

func NewResponseService(provider ResponseProvider, templates TemplateProvider, users UserProvider, files filestore.FileStore) *ResponseService {
	return &ResponseService{
		provider:  provider,
		templates: templates,
		users:     users,
		files:     files,
	}
}

// Fill generates a document from the template's base file and the submitted
// values and records a new response in SENT state. Nothing is persisted when
// generation fails.
func (h *ResponseService) Fill(ctx context.Context, payload domains.ResponseCreate) (domains.StudentResponse, error) {
	template, err := h.templates.GetTemplateByID(ctx, payload.TemplateID)
	if err != nil {
		return domains.StudentResponse{}, err
	}
	student, err := h.users.GetUserByID(ctx, payload.StudentID)
	if err != nil {
		return domains.StudentResponse{}, err
	}

	if err := checkEligibility(template, student); err != nil {
		return domains.StudentResponse{}, err
	}

	values := cloneValues(payload.Responses)
	if _, ok := values[domains.ReasonKey]; ok || declaresField(template, domains.ReasonKey) {
		values[domains.ReasonKey] = payload.Reason
	}
	if err := checkSubmittedKeys(template, values); err != nil {
		return domains.StudentResponse{}, err
	}

	filePath, err := h.generate(ctx, template, values)
	if err != nil {
		return domains.StudentResponse{}, err
	}

	saved, err := h.provider.SaveResponse(ctx, domains.StudentResponse{
		TemplateID:   template.ID,
		StudentID:    student.ID,
		Responses:    values,
		Reason:       payload.Reason,
		FilePath:     filePath,
		Status:       domains.StatusSent,
		ResponseDate: time.Now(),
	})
	if err != nil {
		slog.Error("save response failed", "err", err, "template_id", template.ID, "student_id", student.ID)
		return domains.StudentResponse{}, err
	}
	return saved, nil
}

// UpdateResponse applies a partial patch. New values regenerate the document
// and force the status back to SENT: a changed submission needs re-review.
func (h *ResponseService) UpdateResponse(ctx context.Context, responseID int64, patch domains.ResponseUpdate) (domains.StudentResponse, error) {
	response, err := h.provider.GetResponseByID(ctx, responseID)
	if err != nil {
		return domains.StudentResponse{}, err
	}

	if patch.Responses != nil {
		template, err := h.templates.GetTemplateByID(ctx, response.TemplateID)
		if err != nil {
			return domains.StudentResponse{}, err
		}

		values := cloneValues(patch.Responses)
		if raw, ok := values[domains.ReasonKey]; ok {
			response.Reason = valueString(raw)
		}
		if err := checkSubmittedKeys(template, values); err != nil {
			return domains.StudentResponse{}, err
		}

		filePath, err := h.generate(ctx, template, values)
		if err != nil {
			return domains.StudentResponse{}, err
		}

		response.Responses = values
		response.FilePath = filePath
		response.Status = domains.StatusSent
		response.ResponseDate = time.Now()
	}

	if patch.Reason != nil {
		response.Reason = *patch.Reason
		if _, ok := response.Responses[domains.ReasonKey]; ok {
			response.Responses[domains.ReasonKey] = *patch.Reason
		}
	}

	updated, err := h.provider.UpdateResponse(ctx, response)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("update response failed", "err", err, "response_id", responseID)
		}
		return domains.StudentResponse{}, err
	}
	return updated, nil
}

// ChangeStatus sets the status unconditionally; transitions are driven by the
// reviewer, only the enum membership is checked.
func (h *ResponseService) ChangeStatus(ctx context.Context, responseID int64, status domains.ResponseStatus) (domains.StudentResponse, error) {
	if !status.Valid() {
		return domains.StudentResponse{}, fmt.Errorf("%w: invalid status %q", ErrValidation, string(status))
	}

	updated, err := h.provider.UpdateStatus(ctx, responseID, status)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("change status failed", "err", err, "response_id", responseID)
		}
		return domains.StudentResponse{}, err
	}
	return updated, nil
}

func (h *ResponseService) DeleteResponse(ctx context.Context, responseID int64) error {
	if err := h.provider.DeleteResponse(ctx, responseID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("delete response failed", "err", err, "response_id", responseID)
		}
		return err
	}
	return nil
}

func (h *ResponseService) GetResponseByID(ctx context.Context, responseID int64) (domains.StudentResponse, error) {
	return h.provider.GetResponseByID(ctx, responseID)
}

func (h *ResponseService) GetResponsesByStudentID(ctx context.Context, studentID int64) ([]domains.ResponseDetails, error) {
	responses, err := h.provider.GetResponsesByStudentID(ctx, studentID)
	if err != nil {
		slog.Error("list responses by student failed", "err", err, "student_id", studentID)
		return nil, err
	}
	return responses, nil
}

func (h *ResponseService) GetAllWithDetails(ctx context.Context, filter domains.ResponseFilter) (domains.ResponsePage, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return domains.ResponsePage{}, fmt.Errorf("%w: invalid status %q", ErrValidation, string(*filter.Status))
	}
	for _, f := range filter.Faculties {
		if !f.Valid() {
			return domains.ResponsePage{}, fmt.Errorf("%w: invalid faculty %q", ErrValidation, string(f))
		}
	}
	for _, sp := range filter.Specializations {
		if !sp.Valid() {
			return domains.ResponsePage{}, fmt.Errorf("%w: invalid specialization %q", ErrValidation, string(sp))
		}
	}

	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}

	page, err := h.provider.GetAllWithDetails(ctx, filter)
	if err != nil {
		slog.Error("list responses failed", "err", err)
		return domains.ResponsePage{}, err
	}
	return page, nil
}

// GetApprovedWithinRange parses calendar-day bounds and widens the end bound
// to the last instant of its day, so the whole end day is included.
func (h *ResponseService) GetApprovedWithinRange(ctx context.Context, start, end string) ([]domains.ResponseDetails, error) {
	startDate, err := time.ParseInLocation(dateLayout, start, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q", ErrValidation, start)
	}
	endDate, err := time.ParseInLocation(dateLayout, end, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q", ErrValidation, end)
	}

	responses, err := h.provider.GetApprovedWithinRange(ctx, startDate, EndOfDay(endDate))
	if err != nil {
		slog.Error("list approved responses failed", "err", err)
		return nil, err
	}
	return responses, nil
}

// GetDocumentHTML renders a stored document into sanitized preview markup
// without touching the stored file.
func (h *ResponseService) GetDocumentHTML(ctx context.Context, filename string) (string, error) {
	document, err := h.files.Read(ctx, filename)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	return docgen.ToHTML(document)
}

func (h *ResponseService) GetDocumentFile(ctx context.Context, filename string) ([]byte, error) {
	document, err := h.files.Read(ctx, filename)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return document, nil
}

func (h *ResponseService) generate(ctx context.Context, template domains.Template, values map[string]any) (string, error) {
	base, err := h.files.Read(ctx, template.FilePath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", err
	}

	document, err := docgen.Render(base, stringValues(values))
	if err != nil {
		slog.Error("render document failed", "err", err, "template_id", template.ID)
		return "", err
	}

	filePath := docgen.GeneratedName()
	if err := h.files.Write(ctx, filePath, document); err != nil {
		slog.Error("store generated document failed", "err", err)
		return "", err
	}
	return filePath, nil
}

func checkEligibility(template domains.Template, student domains.User) error {
	if len(template.Specializations) == 0 {
		return nil
	}
	if student.Specialization != nil {
		for _, spec := range template.Specializations {
			if spec == *student.Specialization {
				return nil
			}
		}
	}
	return ErrNotEligible
}

func declaresField(template domains.Template, name string) bool {
	for _, field := range template.Fields {
		if field.FieldName == name {
			return true
		}
	}
	return false
}

func checkSubmittedKeys(template domains.Template, values map[string]any) error {
	for key := range values {
		if key == domains.ReasonKey {
			continue
		}
		if !declaresField(template, key) {
			return fmt.Errorf("%w: field %q is not declared by the template", ErrValidation, key)
		}
	}
	return nil
}

func cloneValues(values map[string]any) map[string]any {
	clone := make(map[string]any, len(values))
	for key, value := range values {
		clone[key] = value
	}
	return clone
}

func stringValues(values map[string]any) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = valueString(value)
	}
	return out
}

func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case time.Time:
		return v.Format(dateLayout)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EndOfDay pins a date to the last instant of its calendar day in the same
// location, keeping day-boundary responses inside an inclusive range.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
