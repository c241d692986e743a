// Package repository implements the MySQL persistence layer. Each aggregate
// gets one repo struct holding the shared *sql.DB pool. Sentinel errors let
// the service layer map storage outcomes onto the API error taxonomy without
// inspecting driver details.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert violates the users email
// uniqueness constraint.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey sniffs the MySQL duplicate-entry error (code 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
