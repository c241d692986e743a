// Package csvimport parses and validates bulk user-import files. The header
// row must match the expected column set exactly (order-independent); any
// mismatch invalidates the whole file. Row failures are collected into
// human-readable messages rather than failing fast on the first bad row.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// ExpectedHeaders is the exact column set a valid import file carries.
var ExpectedHeaders = []string{"first_name", "last_name", "email", "avatar_url"}

// ErrInvalidHeaders marks a file whose header row does not match
// ExpectedHeaders.
var ErrInvalidHeaders = errors.New("Invalid headers")

// Row is one validated user record from the file.
type Row struct {
	FirstName string
	LastName  string
	Email     string
	AvatarURL *string
}

// Parse reads a whole CSV file. It returns the parsed rows and a list of
// row-level validation messages, one per offending row. An empty message
// list means every row validated. Header problems and unreadable CSV are
// returned as an error instead.
func Parse(data string) ([]Row, []string, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.TrimLeadingSpace = true
	// ragged rows are a row-level validation failure, not a file error
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, ErrInvalidHeaders
	}

	headers := records[0]
	if !ValidateHeaders(headers) {
		return nil, nil, ErrInvalidHeaders
	}

	// column index per header name; validated above, so all present
	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[strings.TrimSpace(h)] = i
	}

	var rows []Row
	var msgs []string
	for i, record := range records[1:] {
		row, rowErr := validateRow(record, col)
		if rowErr != nil {
			msgs = append(msgs, fmt.Sprintf("Row %d: Field '%s' %s.", i+1, rowErr.field, rowErr.reason))
			continue
		}
		rows = append(rows, row)
	}
	return rows, msgs, nil
}

// ValidateHeaders reports whether headers match ExpectedHeaders exactly,
// ignoring order. Extra or missing columns both fail.
func ValidateHeaders(headers []string) bool {
	if len(headers) != len(ExpectedHeaders) {
		return false
	}
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[strings.TrimSpace(h)] = true
	}
	for _, want := range ExpectedHeaders {
		if !seen[want] {
			return false
		}
	}
	return true
}

type fieldError struct {
	field  string
	reason string
}

func validateRow(record []string, col map[string]int) (Row, *fieldError) {
	get := func(name string) string {
		i := col[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	firstName := get("first_name")
	if firstName == "" {
		return Row{}, &fieldError{"first_name", "must not be empty"}
	}
	lastName := get("last_name")
	if lastName == "" {
		return Row{}, &fieldError{"last_name", "must not be empty"}
	}
	email := get("email")
	if _, err := mail.ParseAddress(email); err != nil {
		return Row{}, &fieldError{"email", `must match format "email"`}
	}

	row := Row{FirstName: firstName, LastName: lastName, Email: strings.ToLower(email)}
	if avatar := get("avatar_url"); avatar != "" {
		u, err := url.Parse(avatar)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Row{}, &fieldError{"avatar_url", `must match format "url"`}
		}
		row.AvatarURL = &avatar
	}
	return row, nil
}
