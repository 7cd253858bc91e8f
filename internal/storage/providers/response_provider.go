package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"certdesk/internal/domains"
	"certdesk/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponseProvider struct {
	db *pgxpool.Pool
}

func NewResponseProvider(db *pgxpool.Pool) *ResponseProvider {
	return &ResponseProvider{
		db: db,
	}
}

const responseColumns = `id, template_id, student_id, responses, reason, file_path, status, response_date`

func scanResponse(row pgx.Row) (domains.StudentResponse, error) {
	var r domains.StudentResponse
	var status string
	if err := row.Scan(&r.ID, &r.TemplateID, &r.StudentID, &r.Responses, &r.Reason,
		&r.FilePath, &status, &r.ResponseDate); err != nil {
		return domains.StudentResponse{}, err
	}
	r.Status = domains.ResponseStatus(status)
	return r, nil
}

func (s *ResponseProvider) SaveResponse(ctx context.Context, response domains.StudentResponse) (domains.StudentResponse, error) {
	row := s.db.QueryRow(ctx, `
        INSERT INTO student_responses (template_id, student_id, responses, reason, file_path, status, response_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+responseColumns,
		response.TemplateID, response.StudentID, response.Responses, response.Reason,
		response.FilePath, string(response.Status), response.ResponseDate)

	saved, err := scanResponse(row)
	if err != nil {
		return domains.StudentResponse{}, fmt.Errorf("insert response: %w", err)
	}
	return saved, nil
}

func (s *ResponseProvider) GetResponseByID(ctx context.Context, responseID int64) (domains.StudentResponse, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+responseColumns+`
        FROM student_responses
        WHERE id = $1`, responseID)

	response, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.StudentResponse{}, storage.ErrNotFound
		}
		return domains.StudentResponse{}, err
	}
	return response, nil
}

// UpdateResponse overwrites the mutable part of a response. The service layer
// decides the final values; this is a plain last-write-wins update.
func (s *ResponseProvider) UpdateResponse(ctx context.Context, response domains.StudentResponse) (domains.StudentResponse, error) {
	row := s.db.QueryRow(ctx, `
        UPDATE student_responses
        SET responses = $1, reason = $2, file_path = $3, status = $4, response_date = $5
        WHERE id = $6
        RETURNING `+responseColumns,
		response.Responses, response.Reason, response.FilePath,
		string(response.Status), response.ResponseDate, response.ID)

	updated, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.StudentResponse{}, storage.ErrNotFound
		}
		return domains.StudentResponse{}, fmt.Errorf("update response: %w", err)
	}
	return updated, nil
}

func (s *ResponseProvider) UpdateStatus(ctx context.Context, responseID int64, status domains.ResponseStatus) (domains.StudentResponse, error) {
	row := s.db.QueryRow(ctx, `
        UPDATE student_responses
        SET status = $1
        WHERE id = $2
        RETURNING `+responseColumns,
		string(status), responseID)

	updated, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.StudentResponse{}, storage.ErrNotFound
		}
		return domains.StudentResponse{}, fmt.Errorf("update status: %w", err)
	}
	return updated, nil
}

func (s *ResponseProvider) DeleteResponse(ctx context.Context, responseID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM student_responses WHERE id = $1`, responseID)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const detailColumns = `
        r.id, r.template_id, r.student_id, r.responses, r.reason, r.file_path, r.status, r.response_date,
        t.id, t.name, t.file_path, t.specializations, t.create_date, t.update_date,
        u.id, u.email, u.faculty, u.specialization, u.year, u.role, u.created_at`

const detailFrom = `
        FROM student_responses r
        JOIN templates t ON t.id = r.template_id
        JOIN accounts u ON u.id = r.student_id`

func scanDetails(rows pgx.Rows) (domains.ResponseDetails, error) {
	var d domains.ResponseDetails
	var status string
	var tplSpecs []string
	var faculty, specialization *string

	if err := rows.Scan(
		&d.ID, &d.TemplateID, &d.StudentID, &d.Responses, &d.Reason, &d.FilePath, &status, &d.ResponseDate,
		&d.Template.ID, &d.Template.Name, &d.Template.FilePath, &tplSpecs, &d.Template.CreateDate, &d.Template.UpdateDate,
		&d.Student.ID, &d.Student.Email, &faculty, &specialization, &d.Student.Year, &d.Student.Role, &d.Student.CreatedAt,
	); err != nil {
		return domains.ResponseDetails{}, err
	}

	d.Status = domains.ResponseStatus(status)
	d.Template.Specializations = toSpecializations(tplSpecs)
	if faculty != nil {
		f := domains.Faculty(*faculty)
		d.Student.Faculty = &f
	}
	if specialization != nil {
		sp := domains.Specialization(*specialization)
		d.Student.Specialization = &sp
	}
	return d, nil
}

func collectDetails(rows pgx.Rows) ([]domains.ResponseDetails, error) {
	defer rows.Close()
	details := []domains.ResponseDetails{}
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (s *ResponseProvider) GetResponsesByStudentID(ctx context.Context, studentID int64) ([]domains.ResponseDetails, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+detailColumns+detailFrom+`
        WHERE r.student_id = $1
        ORDER BY r.response_date DESC, r.id DESC`, studentID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// GetAllWithDetails composes the filter dimensions with AND; a multi-valued
// dimension matches with set membership. The count runs before pagination in
// the same transaction.
func (s *ResponseProvider) GetAllWithDetails(ctx context.Context, filter domains.ResponseFilter) (domains.ResponsePage, error) {
	where := ""
	args := []any{}
	and := func(cond string) {
		if where == "" {
			where = "\n        WHERE " + cond
		} else {
			where += "\n          AND " + cond
		}
	}

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		and(fmt.Sprintf("r.status = $%d", len(args)))
	}
	if len(filter.Faculties) > 0 {
		values := make([]string, 0, len(filter.Faculties))
		for _, f := range filter.Faculties {
			values = append(values, string(f))
		}
		args = append(args, values)
		and(fmt.Sprintf("u.faculty = ANY($%d)", len(args)))
	}
	if len(filter.Specializations) > 0 {
		args = append(args, specStrings(filter.Specializations))
		and(fmt.Sprintf("u.specialization = ANY($%d)", len(args)))
	}
	if len(filter.Years) > 0 {
		args = append(args, filter.Years)
		and(fmt.Sprintf("u.year = ANY($%d)", len(args)))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domains.ResponsePage{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*)`+detailFrom+where, args...).Scan(&total); err != nil {
		return domains.ResponsePage{}, fmt.Errorf("count responses: %w", err)
	}

	limit := filter.Limit
	offset := (filter.Page - 1) * filter.Limit
	args = append(args, limit, offset)
	query := `SELECT ` + detailColumns + detailFrom + where +
		fmt.Sprintf("\n        ORDER BY r.response_date DESC, r.id DESC\n        LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return domains.ResponsePage{}, err
	}
	items, err := collectDetails(rows)
	if err != nil {
		return domains.ResponsePage{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.ResponsePage{}, fmt.Errorf("commit: %w", err)
	}
	return domains.ResponsePage{Items: items, TotalItems: total}, nil
}

func (s *ResponseProvider) GetApprovedWithinRange(ctx context.Context, start, end time.Time) ([]domains.ResponseDetails, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+detailColumns+detailFrom+`
        WHERE r.status = $1 AND r.response_date BETWEEN $2 AND $3
        ORDER BY r.response_date, r.id`,
		string(domains.StatusApproved), start, end)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

// GetFilePaths lists every generated document path still referenced by a
// response. The sweeper uses it to spot orphans on disk.
func (s *ResponseProvider) GetFilePaths(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT file_path FROM student_responses`)
	if err != nil {
		return nil, err
	}

	paths, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return paths, nil
}
