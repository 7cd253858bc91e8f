package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"certdesk/internal/domains"
	"certdesk/internal/filestore"
	"certdesk/internal/storage"

	"github.com/google/uuid"
)

type TemplateService struct {
	provider TemplateProvider
	files    filestore.FileStore
}

type TemplateProvider interface {
	SaveTemplate(ctx context.Context, template domains.TemplateCreate) (domains.Template, error)
	GetTemplateByID(ctx context.Context, templateID int64) (domains.Template, error)
	UpdateTemplate(ctx context.Context, templateID int64, patch domains.TemplateUpdate) (domains.Template, error)
	DeleteTemplate(ctx context.Context, templateID int64) error
	GetAllTemplates(ctx context.Context, specializations []domains.Specialization) ([]domains.Template, error)
	GetFieldsByTemplateID(ctx context.Context, templateID int64) ([]domains.Field, error)
}

func NewTemplateService(provider TemplateProvider, files filestore.FileStore) *TemplateService {
	return &TemplateService{
		provider: provider,
		files:    files,
	}
}

// NormalizeFieldNames flattens a field list that may arrive as separate values
// or as comma-separated strings into trimmed, non-empty names.
func NormalizeFieldNames(raw []string) []string {
	names := []string{}
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			names = append(names, part)
		}
	}
	return names
}

// NormalizeSpecializations does the same for specialization tags and checks
// each against the canonical set.
func NormalizeSpecializations(raw []string) ([]domains.Specialization, error) {
	specs := []domains.Specialization{}
	for _, name := range NormalizeFieldNames(raw) {
		spec := domains.Specialization(name)
		if !spec.Valid() {
			return nil, fmt.Errorf("%w: invalid specialization %q", ErrValidation, name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func storedBaseName(originalName string) string {
	ext := path.Ext(originalName)
	if ext == "" {
		ext = ".docx"
	}
	return fmt.Sprintf("template-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

func (h *TemplateService) CreateTemplate(ctx context.Context, name string, rawFields []string, rawSpecs []string, document []byte, originalName string) (domains.Template, error) {
	if strings.TrimSpace(name) == "" {
		return domains.Template{}, fmt.Errorf("%w: template name is required", ErrValidation)
	}
	if len(document) == 0 {
		return domains.Template{}, fmt.Errorf("%w: base document is required", ErrValidation)
	}

	fieldNames := NormalizeFieldNames(rawFields)
	if len(fieldNames) == 0 {
		return domains.Template{}, fmt.Errorf("%w: fields list is empty", ErrValidation)
	}

	specs, err := NormalizeSpecializations(rawSpecs)
	if err != nil {
		return domains.Template{}, err
	}

	filePath := storedBaseName(originalName)
	if err := h.files.Write(ctx, filePath, document); err != nil {
		slog.Error("store base document failed", "err", err)
		return domains.Template{}, err
	}

	created, err := h.provider.SaveTemplate(ctx, domains.TemplateCreate{
		Name:            name,
		FieldNames:      fieldNames,
		Specializations: specs,
		FilePath:        filePath,
	})
	if err != nil {
		slog.Error("save template failed", "err", err)
		return domains.Template{}, err
	}
	return created, nil
}

func (h *TemplateService) GetTemplateByID(ctx context.Context, templateID int64) (domains.Template, error) {
	template, err := h.provider.GetTemplateByID(ctx, templateID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("get template failed", "err", err, "template_id", templateID)
		}
		return domains.Template{}, err
	}
	return template, nil
}

type TemplatePatch struct {
	Name         *string
	RawFields    []string
	RawSpecs     []string
	Document     []byte
	DocumentName string
}

func (h *TemplateService) UpdateTemplate(ctx context.Context, templateID int64, patch TemplatePatch) (domains.Template, error) {
	update := domains.TemplateUpdate{Name: patch.Name}

	if patch.RawFields != nil {
		fieldNames := NormalizeFieldNames(patch.RawFields)
		if len(fieldNames) == 0 {
			return domains.Template{}, fmt.Errorf("%w: fields list is empty", ErrValidation)
		}
		update.FieldNames = fieldNames
	}

	if patch.RawSpecs != nil {
		specs, err := NormalizeSpecializations(patch.RawSpecs)
		if err != nil {
			return domains.Template{}, err
		}
		update.Specializations = specs
	}

	if len(patch.Document) > 0 {
		filePath := storedBaseName(patch.DocumentName)
		if err := h.files.Write(ctx, filePath, patch.Document); err != nil {
			slog.Error("store base document failed", "err", err)
			return domains.Template{}, err
		}
		update.FilePath = &filePath
	}

	updated, err := h.provider.UpdateTemplate(ctx, templateID, update)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("update template failed", "err", err, "template_id", templateID)
		}
		return domains.Template{}, err
	}
	return updated, nil
}

func (h *TemplateService) DeleteTemplate(ctx context.Context, templateID int64) error {
	if err := h.provider.DeleteTemplate(ctx, templateID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("delete template failed", "err", err, "template_id", templateID)
		}
		return err
	}
	return nil
}

func (h *TemplateService) GetAllTemplates(ctx context.Context, rawSpecs []string) ([]domains.Template, error) {
	specs, err := NormalizeSpecializations(rawSpecs)
	if err != nil {
		return nil, err
	}

	templates, err := h.provider.GetAllTemplates(ctx, specs)
	if err != nil {
		slog.Error("list templates failed", "err", err)
		return nil, err
	}
	return templates, nil
}

func (h *TemplateService) GetFieldsByTemplateID(ctx context.Context, templateID int64) ([]domains.Field, error) {
	fields, err := h.provider.GetFieldsByTemplateID(ctx, templateID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Error("list fields failed", "err", err, "template_id", templateID)
		}
		return nil, err
	}
	return fields, nil
}
