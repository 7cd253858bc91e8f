package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"certdesk/internal/domains"
	"certdesk/internal/httpx"
	"certdesk/internal/service"
)

const maxUploadSize = 10 << 20

type TemplateHandlers struct {
	service TemplateServices
}

type TemplateServices interface {
	CreateTemplate(ctx context.Context, name string, rawFields []string, rawSpecs []string, document []byte, originalName string) (domains.Template, error)
	GetTemplateByID(ctx context.Context, templateID int64) (domains.Template, error)
	UpdateTemplate(ctx context.Context, templateID int64, patch service.TemplatePatch) (domains.Template, error)
	DeleteTemplate(ctx context.Context, templateID int64) error
	GetAllTemplates(ctx context.Context, rawSpecs []string) ([]domains.Template, error)
	GetFieldsByTemplateID(ctx context.Context, templateID int64) ([]domains.Field, error)
}

func NewTemplateHandlers(service TemplateServices) *TemplateHandlers {
	return &TemplateHandlers{service: service}
}

func readUpload(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func (h *TemplateHandlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	document, originalName, err := readUpload(r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "file is required")
		return
	}

	created, err := h.service.CreateTemplate(
		r.Context(),
		r.FormValue("name"),
		r.MultipartForm.Value["fields"],
		r.MultipartForm.Value["specializations"],
		document,
		originalName,
	)
	if err != nil {
		slog.Error("create template failed", "err", err)
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *TemplateHandlers) GetTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.GetAllTemplates(r.Context(), r.URL.Query()["specializations"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, templates)
}

func (h *TemplateHandlers) GetTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := httpx.PathID(w, r, "id")
	if templateID == 0 {
		return
	}

	template, err := h.service.GetTemplateByID(r.Context(), templateID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, template)
}

func (h *TemplateHandlers) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := httpx.PathID(w, r, "id")
	if templateID == 0 {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	patch := service.TemplatePatch{
		RawFields: r.MultipartForm.Value["fields"],
		RawSpecs:  r.MultipartForm.Value["specializations"],
	}
	if names, ok := r.MultipartForm.Value["name"]; ok && len(names) > 0 {
		patch.Name = &names[0]
	}
	if document, originalName, err := readUpload(r); err == nil {
		patch.Document = document
		patch.DocumentName = originalName
	}

	updated, err := h.service.UpdateTemplate(r.Context(), templateID, patch)
	if err != nil {
		slog.Error("update template failed", "err", err, "template_id", templateID)
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *TemplateHandlers) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := httpx.PathID(w, r, "id")
	if templateID == 0 {
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), templateID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandlers) GetFields(w http.ResponseWriter, r *http.Request) {
	templateID := httpx.PathID(w, r, "id")
	if templateID == 0 {
		return
	}

	fields, err := h.service.GetFieldsByTemplateID(r.Context(), templateID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, fields)
}
