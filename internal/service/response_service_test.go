package service

import (
	"context"
	"testing"
	"time"

	"certdesk/internal/domains"
	"certdesk/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specPtr(s domains.Specialization) *domains.Specialization { return &s }

type responseFixture struct {
	svc       *ResponseService
	templates *fakeTemplateProvider
	responses *fakeResponseProvider
	users     *fakeUserProvider
	files     *memFileStore
}

func newResponseFixture(t *testing.T, fieldNames []string, specs []domains.Specialization) (responseFixture, domains.Template) {
	t.Helper()

	templates := newFakeTemplateProvider()
	responses := newFakeResponseProvider()
	users := newFakeUserProvider()
	files := newMemFileStore()

	base := minimalDocx(t, fieldNames...)
	require.NoError(t, files.Write(context.Background(), "template-base.docx", base))

	template, err := templates.SaveTemplate(context.Background(), domains.TemplateCreate{
		Name:            "Adeverinta",
		FieldNames:      fieldNames,
		Specializations: specs,
		FilePath:        "template-base.docx",
	})
	require.NoError(t, err)

	users.users[7] = domains.User{
		ID:             7,
		Email:          "student@upt.ro",
		Specialization: specPtr(domains.SpecCTIRo),
		Role:           domains.RoleStudent,
	}

	fixture := responseFixture{
		svc:       NewResponseService(responses, templates, users, files),
		templates: templates,
		responses: responses,
		users:     users,
		files:     files,
	}
	return fixture, template
}

func TestFillCreatesSentResponse(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume", "an"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Reason:     "loan application",
		Responses:  map[string]any{"nume": "Ana Pop", "an": 3},
	})
	require.NoError(t, err)

	assert.Equal(t, domains.StatusSent, saved.Status)
	assert.Equal(t, template.ID, saved.TemplateID)
	assert.Equal(t, int64(7), saved.StudentID)
	assert.Equal(t, "loan application", saved.Reason)
	assert.NotEqual(t, template.FilePath, saved.FilePath)
	assert.WithinDuration(t, time.Now(), saved.ResponseDate, time.Minute)

	exists, err := fixture.files.Exists(context.Background(), saved.FilePath)
	require.NoError(t, err)
	assert.True(t, exists, "generated document must be stored")
}

func TestFillReasonFillsDeclaredMotivField(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume", "motiv"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Reason:     "scholarship",
		Responses:  map[string]any{"nume": "Ana Pop"},
	})
	require.NoError(t, err)
	assert.Equal(t, "scholarship", saved.Responses[domains.ReasonKey])
}

func TestFillRejectsUndeclaredField(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana", "cnp": "123"},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, fixture.responses.responses, "nothing persisted on validation failure")
}

func TestFillUnknownTemplate(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: 999,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFillEligibility(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, []domains.Specialization{domains.SpecETCRo})

	_, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.ErrorIs(t, err, ErrNotEligible)
	assert.Empty(t, fixture.responses.responses)
}

func TestFillEligibleSpecialization(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, []domains.Specialization{domains.SpecCTIRo, domains.SpecIS})

	_, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.NoError(t, err)
}

func TestUpdateResponseRegeneratesAndResetsStatus(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.NoError(t, err)

	_, err = fixture.svc.ChangeStatus(context.Background(), saved.ID, domains.StatusApproved)
	require.NoError(t, err)

	updated, err := fixture.svc.UpdateResponse(context.Background(), saved.ID, domains.ResponseUpdate{
		Responses: map[string]any{"nume": "Maria"},
	})
	require.NoError(t, err)

	assert.Equal(t, domains.StatusSent, updated.Status, "new values need re-review")
	assert.Equal(t, "Maria", updated.Responses["nume"])
	assert.NotEqual(t, saved.FilePath, updated.FilePath, "patched values regenerate the document")
}

func TestUpdateResponseReasonOnly(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Reason:     "old reason",
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.NoError(t, err)

	approved, err := fixture.svc.ChangeStatus(context.Background(), saved.ID, domains.StatusApproved)
	require.NoError(t, err)

	reason := "new reason"
	updated, err := fixture.svc.UpdateResponse(context.Background(), saved.ID, domains.ResponseUpdate{Reason: &reason})
	require.NoError(t, err)

	assert.Equal(t, "new reason", updated.Reason)
	assert.Equal(t, approved.Status, updated.Status, "reason alone does not reset the status")
	assert.Equal(t, saved.FilePath, updated.FilePath)
}

func TestUpdateResponseNotFound(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.UpdateResponse(context.Background(), 42, domains.ResponseUpdate{})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChangeStatusInvalid(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.ChangeStatus(context.Background(), 1, domains.ResponseStatus("PENDING"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestChangeStatusNotFound(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.ChangeStatus(context.Background(), 42, domains.StatusDeclined)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetAllWithDetailsDefaultsPagination(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.GetAllWithDetails(context.Background(), domains.ResponseFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, fixture.responses.filter.Page)
	assert.Equal(t, 10, fixture.responses.filter.Limit)
}

func TestGetAllWithDetailsKeepsExplicitPagination(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.GetAllWithDetails(context.Background(), domains.ResponseFilter{Page: 3, Limit: 25})
	require.NoError(t, err)

	assert.Equal(t, 3, fixture.responses.filter.Page)
	assert.Equal(t, 25, fixture.responses.filter.Limit)
}

func TestGetAllWithDetailsRejectsBadEnums(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	status := domains.ResponseStatus("NOPE")
	_, err := fixture.svc.GetAllWithDetails(context.Background(), domains.ResponseFilter{Status: &status})
	require.ErrorIs(t, err, ErrValidation)

	_, err = fixture.svc.GetAllWithDetails(context.Background(), domains.ResponseFilter{
		Faculties: []domains.Faculty{"ARTS"},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = fixture.svc.GetAllWithDetails(context.Background(), domains.ResponseFilter{
		Specializations: []domains.Specialization{"MATH"},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestGetApprovedWithinRangeWidensEndDay(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.GetApprovedWithinRange(context.Background(), "2026-03-01", "2026-03-10")
	require.NoError(t, err)

	end := fixture.responses.rangeEnd
	assert.Equal(t, 10, end.Day())
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.Equal(t, 59, end.Second())
}

func TestGetApprovedWithinRangeBadDates(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.GetApprovedWithinRange(context.Background(), "01.03.2026", "2026-03-10")
	require.ErrorIs(t, err, ErrValidation)

	_, err = fixture.svc.GetApprovedWithinRange(context.Background(), "2026-03-01", "not-a-date")
	require.ErrorIs(t, err, ErrValidation)
}

func TestEndOfDayIncludesLateResponses(t *testing.T) {
	end := EndOfDay(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	late := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.False(t, late.After(end), "a response at 23:59 falls inside the range")
}

func TestGetDocumentFileNotFound(t *testing.T) {
	fixture, _ := newResponseFixture(t, []string{"nume"}, nil)

	_, err := fixture.svc.GetDocumentFile(context.Background(), "missing.docx")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = fixture.svc.GetDocumentHTML(context.Background(), "missing.docx")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetDocumentHTML(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana Pop"},
	})
	require.NoError(t, err)

	html, err := fixture.svc.GetDocumentHTML(context.Background(), saved.FilePath)
	require.NoError(t, err)
	assert.Contains(t, html, "Ana Pop")
}

func TestDeleteResponse(t *testing.T) {
	fixture, template := newResponseFixture(t, []string{"nume"}, nil)

	saved, err := fixture.svc.Fill(context.Background(), domains.ResponseCreate{
		TemplateID: template.ID,
		StudentID:  7,
		Responses:  map[string]any{"nume": "Ana"},
	})
	require.NoError(t, err)

	require.NoError(t, fixture.svc.DeleteResponse(context.Background(), saved.ID))
	require.ErrorIs(t, fixture.svc.DeleteResponse(context.Background(), saved.ID), storage.ErrNotFound)
}
