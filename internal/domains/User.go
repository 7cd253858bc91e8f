package domains

import (
	"time"
)

type User struct {
	ID             int64           `db:"id" json:"id"`
	Email          string          `db:"email" json:"email"`
	PassHash       string          `db:"passhash" json:"-"`
	Faculty        *Faculty        `db:"faculty" json:"faculty,omitempty"`
	Specialization *Specialization `db:"specialization" json:"specialization,omitempty"`
	Year           *int            `db:"year" json:"year,omitempty"`
	Role           Role            `db:"role" json:"role"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

type UserRegister struct {
	Email          string          `json:"email"`
	Password       string          `json:"password"`
	Faculty        *Faculty        `json:"faculty,omitempty"`
	Specialization *Specialization `json:"specialization,omitempty"`
	Year           *int            `json:"year,omitempty"`
}
