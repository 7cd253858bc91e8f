package providers

import (
	"context"
	"errors"
	"fmt"

	"certdesk/internal/domains"
	"certdesk/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TemplateProvider struct {
	db *pgxpool.Pool
}

func NewTemplateProvider(db *pgxpool.Pool) *TemplateProvider {
	return &TemplateProvider{
		db: db,
	}
}

const templateColumns = `id, name, file_path, specializations, create_date, update_date`

func scanTemplate(row pgx.Row) (domains.Template, error) {
	var t domains.Template
	var specs []string
	if err := row.Scan(&t.ID, &t.Name, &t.FilePath, &specs, &t.CreateDate, &t.UpdateDate); err != nil {
		return domains.Template{}, err
	}
	t.Specializations = toSpecializations(specs)
	return t, nil
}

func toSpecializations(values []string) []domains.Specialization {
	if values == nil {
		return nil
	}
	specs := make([]domains.Specialization, 0, len(values))
	for _, v := range values {
		specs = append(specs, domains.Specialization(v))
	}
	return specs
}

func specStrings(specs []domains.Specialization) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, string(s))
	}
	return out
}

// SaveTemplate inserts the template and its fields inside one transaction so
// a failed field insert never leaves a field-less template behind.
func (s *TemplateProvider) SaveTemplate(ctx context.Context, template domains.TemplateCreate) (domains.Template, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Template{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
        INSERT INTO templates (name, file_path, specializations, create_date)
        VALUES ($1, $2, $3, NOW())
        RETURNING `+templateColumns,
		template.Name, template.FilePath, specStrings(template.Specializations))

	created, err := scanTemplate(row)
	if err != nil {
		return domains.Template{}, fmt.Errorf("insert template: %w", err)
	}

	for _, fieldName := range template.FieldNames {
		var field domains.Field
		if err := tx.QueryRow(ctx, `
            INSERT INTO fields (field_name, template_id)
            VALUES ($1, $2)
            RETURNING id, field_name, template_id`,
			fieldName, created.ID,
		).Scan(&field.ID, &field.FieldName, &field.TemplateID); err != nil {
			return domains.Template{}, fmt.Errorf("insert field: %w", err)
		}
		created.Fields = append(created.Fields, field)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Template{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (s *TemplateProvider) GetTemplateByID(ctx context.Context, templateID int64) (domains.Template, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+templateColumns+`
        FROM templates
        WHERE id = $1`, templateID)

	template, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Template{}, storage.ErrNotFound
		}
		return domains.Template{}, err
	}

	fields, err := s.fieldsByTemplateID(ctx, s.db, templateID)
	if err != nil {
		return domains.Template{}, err
	}
	template.Fields = fields
	return template, nil
}

func (s *TemplateProvider) UpdateTemplate(ctx context.Context, templateID int64, patch domains.TemplateUpdate) (domains.Template, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.Template{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1 FOR UPDATE`, templateID)
	existing, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Template{}, storage.ErrNotFound
		}
		return domains.Template{}, err
	}

	name := existing.Name
	if patch.Name != nil {
		name = *patch.Name
	}
	filePath := existing.FilePath
	if patch.FilePath != nil {
		filePath = *patch.FilePath
	}
	specs := existing.Specializations
	if patch.Specializations != nil {
		specs = patch.Specializations
	}

	row = tx.QueryRow(ctx, `
        UPDATE templates
        SET name = $1, file_path = $2, specializations = $3, update_date = NOW()
        WHERE id = $4
        RETURNING `+templateColumns,
		name, filePath, specStrings(specs), templateID)

	updated, err := scanTemplate(row)
	if err != nil {
		return domains.Template{}, fmt.Errorf("update template: %w", err)
	}

	// Provided fields replace the whole set, no diffing.
	if patch.FieldNames != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM fields WHERE template_id = $1`, templateID); err != nil {
			return domains.Template{}, fmt.Errorf("delete fields: %w", err)
		}
		for _, fieldName := range patch.FieldNames {
			var field domains.Field
			if err := tx.QueryRow(ctx, `
                INSERT INTO fields (field_name, template_id)
                VALUES ($1, $2)
                RETURNING id, field_name, template_id`,
				fieldName, templateID,
			).Scan(&field.ID, &field.FieldName, &field.TemplateID); err != nil {
				return domains.Template{}, fmt.Errorf("insert field: %w", err)
			}
			updated.Fields = append(updated.Fields, field)
		}
	} else {
		fields, err := s.fieldsByTemplateID(ctx, tx, templateID)
		if err != nil {
			return domains.Template{}, err
		}
		updated.Fields = fields
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Template{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// DeleteTemplate cascades: fields first, then responses referencing the
// template, then the template itself.
func (s *TemplateProvider) DeleteTemplate(ctx context.Context, templateID int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int64
	if err := tx.QueryRow(ctx, `SELECT id FROM templates WHERE id = $1`, templateID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM fields WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("delete fields: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM student_responses WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM templates WHERE id = $1`, templateID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetAllTemplates returns every template, or only those whose specialization
// set overlaps the filter when a non-empty filter is given.
func (s *TemplateProvider) GetAllTemplates(ctx context.Context, specializations []domains.Specialization) ([]domains.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates ORDER BY id`
	args := []any{}
	if len(specializations) > 0 {
		query = `SELECT ` + templateColumns + ` FROM templates WHERE specializations && $1 ORDER BY id`
		args = append(args, specStrings(specializations))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := []domains.Template{}
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

func (s *TemplateProvider) GetFieldsByTemplateID(ctx context.Context, templateID int64) ([]domains.Field, error) {
	var exists int64
	if err := s.db.QueryRow(ctx, `SELECT id FROM templates WHERE id = $1`, templateID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return s.fieldsByTemplateID(ctx, s.db, templateID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *TemplateProvider) fieldsByTemplateID(ctx context.Context, q querier, templateID int64) ([]domains.Field, error) {
	rows, err := q.Query(ctx, `
        SELECT id, field_name, template_id
        FROM fields
        WHERE template_id = $1
        ORDER BY id`, templateID)
	if err != nil {
		return nil, err
	}

	fields, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Field])
	if err != nil {
		return nil, err
	}
	return fields, nil
}
