package domains

import (
	"time"
)

type Template struct {
	ID              int64            `db:"id" json:"id"`
	Name            string           `db:"name" json:"name"`
	FilePath        string           `db:"file_path" json:"file_path"`
	Specializations []Specialization `db:"specializations" json:"specializations"`
	CreateDate      time.Time        `db:"create_date" json:"create_date"`
	UpdateDate      *time.Time       `db:"update_date" json:"update_date,omitempty"`
	Fields          []Field          `db:"-" json:"fields,omitempty"`
}

type Field struct {
	ID         int64  `db:"id" json:"id"`
	FieldName  string `db:"field_name" json:"field_name"`
	TemplateID int64  `db:"template_id" json:"template_id"`
}

type TemplateCreate struct {
	Name            string
	FieldNames      []string
	Specializations []Specialization
	FilePath        string
}

// TemplateUpdate is a partial patch: nil means "leave unchanged". A non-nil
// FieldNames replaces the whole field set.
type TemplateUpdate struct {
	Name            *string
	FieldNames      []string
	Specializations []Specialization
	FilePath        *string
}
