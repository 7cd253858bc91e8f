package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"certdesk/internal/domains"
	"certdesk/internal/httpx"
	"certdesk/internal/service"

	"github.com/gorilla/mux"
)

type ResponseHandlers struct {
	service ResponseServices
}

type ResponseServices interface {
	Fill(ctx context.Context, payload domains.ResponseCreate) (domains.StudentResponse, error)
	GetResponseByID(ctx context.Context, responseID int64) (domains.StudentResponse, error)
	UpdateResponse(ctx context.Context, responseID int64, patch domains.ResponseUpdate) (domains.StudentResponse, error)
	ChangeStatus(ctx context.Context, responseID int64, status domains.ResponseStatus) (domains.StudentResponse, error)
	DeleteResponse(ctx context.Context, responseID int64) error
	GetResponsesByStudentID(ctx context.Context, studentID int64) ([]domains.ResponseDetails, error)
	GetAllWithDetails(ctx context.Context, filter domains.ResponseFilter) (domains.ResponsePage, error)
	GetApprovedWithinRange(ctx context.Context, start, end string) ([]domains.ResponseDetails, error)
	GetDocumentHTML(ctx context.Context, filename string) (string, error)
	GetDocumentFile(ctx context.Context, filename string) ([]byte, error)
}

func NewResponseHandlers(service ResponseServices) *ResponseHandlers {
	return &ResponseHandlers{service: service}
}

func (h *ResponseHandlers) Fill(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[domains.ResponseCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.TemplateID == 0 || payload.StudentID == 0 {
		httpx.Error(w, http.StatusBadRequest, "template_id and student_id are required")
		return
	}

	response, err := h.service.Fill(r.Context(), payload)
	if err != nil {
		slog.Error("fill template failed", "err", err, "template_id", payload.TemplateID)
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, response)
}

func (h *ResponseHandlers) GetResponse(w http.ResponseWriter, r *http.Request) {
	responseID := httpx.PathID(w, r, "id")
	if responseID == 0 {
		return
	}

	response, err := h.service.GetResponseByID(r.Context(), responseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *ResponseHandlers) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	responseID := httpx.PathID(w, r, "id")
	if responseID == 0 {
		return
	}

	patch, err := httpx.ReadBody[domains.ResponseUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateResponse(r.Context(), responseID, patch)
	if err != nil {
		slog.Error("update response failed", "err", err, "response_id", responseID)
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ResponseHandlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	responseID := httpx.PathID(w, r, "id")
	if responseID == 0 {
		return
	}

	payload, err := httpx.ReadBody[StatusChangeRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.ChangeStatus(r.Context(), responseID, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ResponseHandlers) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	responseID := httpx.PathID(w, r, "id")
	if responseID == 0 {
		return
	}

	if err := h.service.DeleteResponse(r.Context(), responseID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResponseHandlers) GetByStudent(w http.ResponseWriter, r *http.Request) {
	studentID := httpx.PathID(w, r, "studentId")
	if studentID == 0 {
		return
	}

	responses, err := h.service.GetResponsesByStudentID(r.Context(), studentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *ResponseHandlers) GetAllWithDetails(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := domains.ResponseFilter{}
	if status := query.Get("status"); status != "" {
		s := domains.ResponseStatus(status)
		filter.Status = &s
	}
	for _, value := range service.NormalizeFieldNames(query["faculties"]) {
		filter.Faculties = append(filter.Faculties, domains.Faculty(value))
	}
	for _, value := range service.NormalizeFieldNames(query["specializations"]) {
		filter.Specializations = append(filter.Specializations, domains.Specialization(value))
	}
	for _, value := range service.NormalizeFieldNames(query["years"]) {
		year, err := strconv.Atoi(value)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid year "+value)
			return
		}
		filter.Years = append(filter.Years, year)
	}
	if page := query.Get("page"); page != "" {
		filter.Page, _ = strconv.Atoi(page)
	}
	if limit := query.Get("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}

	result, err := h.service.GetAllWithDetails(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *ResponseHandlers) GetApproved(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	responses, err := h.service.GetApprovedWithinRange(r.Context(), query.Get("start"), query.Get("end"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, responses)
}

func (h *ResponseHandlers) GetDocumentHTML(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	html, err := h.service.GetDocumentHTML(r.Context(), filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, DocumentHTMLResponse{HTML: html})
}

func (h *ResponseHandlers) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	document, err := h.service.GetDocumentFile(r.Context(), filename)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(document)
}
