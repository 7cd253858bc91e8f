package domains

// Canonical enum sets shared by storage, services and transport.

type ResponseStatus string

const (
	StatusSent     ResponseStatus = "SENT"
	StatusApproved ResponseStatus = "APPROVED"
	StatusDeclined ResponseStatus = "DECLINED"
)

func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusSent, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

type Faculty string

const (
	FacultyAC    Faculty = "AC"
	FacultyETCTI Faculty = "ETCTI"
)

func (f Faculty) Valid() bool {
	switch f {
	case FacultyAC, FacultyETCTI:
		return true
	}
	return false
}

type Specialization string

const (
	SpecCTIRo  Specialization = "CTI_RO"
	SpecCTIEng Specialization = "CTI_ENG"
	SpecETCRo  Specialization = "ETC_RO"
	SpecETCEng Specialization = "ETC_ENG"
	SpecIS     Specialization = "IS"
	SpecInfo   Specialization = "INFO"
)

func (s Specialization) Valid() bool {
	switch s {
	case SpecCTIRo, SpecCTIEng, SpecETCRo, SpecETCEng, SpecIS, SpecInfo:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleSecretary Role = "Secretara"
	RoleStudent   Role = "Student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecretary, RoleStudent:
		return true
	}
	return false
}

// ReasonKey is the reserved entry inside a response payload that mirrors the
// submitted reason. The canonical reason always wins over this entry.
const ReasonKey = "motiv"
