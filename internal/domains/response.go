package domains

import (
	"time"
)

type StudentResponse struct {
	ID           int64          `db:"id" json:"id"`
	TemplateID   int64          `db:"template_id" json:"template_id"`
	StudentID    int64          `db:"student_id" json:"student_id"`
	Responses    map[string]any `db:"responses" json:"responses"`
	Reason       string         `db:"reason" json:"reason"`
	FilePath     string         `db:"file_path" json:"file_path"`
	Status       ResponseStatus `db:"status" json:"status"`
	ResponseDate time.Time      `db:"response_date" json:"response_date"`
}

type ResponseCreate struct {
	TemplateID int64          `json:"template_id"`
	StudentID  int64          `json:"student_id"`
	Reason     string         `json:"reason"`
	Responses  map[string]any `json:"responses"`
}

// ResponseUpdate is a partial patch. A non-nil Responses map triggers document
// regeneration and a status reset to SENT.
type ResponseUpdate struct {
	Responses map[string]any `json:"responses,omitempty"`
	Reason    *string        `json:"reason,omitempty"`
}

// ResponseDetails is a StudentResponse with its template and student attached.
type ResponseDetails struct {
	StudentResponse
	Template Template `json:"template"`
	Student  User     `json:"student"`
}

type ResponseFilter struct {
	Status          *ResponseStatus
	Faculties       []Faculty
	Specializations []Specialization
	Years           []int
	Page            int
	Limit           int
}

type ResponsePage struct {
	Items      []ResponseDetails `json:"items"`
	TotalItems int               `json:"totalItems"`
}
