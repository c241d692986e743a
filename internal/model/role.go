package model

// Role maps a role uuid to its name ("admin" grants blanket manage-all).
type Role struct {
	UUID        string
	Name        string
	Description *string
}

// Permission is a named capability. Names are `action:subject` pairs parsed
// into typed abilities at load time, never string-matched per request.
type Permission struct {
	UUID        string
	Name        string
	Description *string
}
