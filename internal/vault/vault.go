// Package vault stores website credentials in a single JSON document.
//
// The document maps a website to its username and password:
//
//	{
//	  "github.com": {
//	    "username": "dev@example.com",
//	    "password": "Tr0ub4dor&3"
//	  }
//	}
//
// Every write loads the whole document, applies the change in memory and
// replaces the file atomically. Keys keep the position they were first
// written at, so rewrites produce small diffs. Secrets are stored as
// plaintext.
package vault

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyField is returned when a website, username or password is blank.
	ErrEmptyField = errors.New("empty field")

	// ErrInvalidText is returned when a field is not valid UTF-8. JSON
	// encoding would replace the bad bytes and the key would no longer match.
	ErrInvalidText = errors.New("field is not valid UTF-8")

	// ErrNotInitialized is returned by reads when no vault file exists yet.
	ErrNotInitialized = errors.New("vault not initialized")

	// ErrNotFound is returned when the vault has no entry for a website.
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt is returned when the vault file cannot be parsed.
	ErrCorrupt = errors.New("vault file corrupt")

	// ErrIO wraps filesystem failures.
	ErrIO = errors.New("vault i/o error")
)

// Record is the value stored for one website.
type Record struct {
	Identity string `json:"username"`
	Secret   string `json:"password"`
}

// Entry pairs a website with its record.
type Entry struct {
	Website string
	Record
}

// Store is the interface for credential storage operations.
type Store interface {
	// Upsert inserts or overwrites the record for website.
	Upsert(website, identity, secret string) error
	// Merge upserts entries in order with a single write. Later entries for
	// the same website win.
	Merge(entries []Entry) error
	Lookup(website string) (Record, error)
	// List returns all entries in document order.
	List() ([]Entry, error)
	Delete(website string) error
}

// ValidationError lists the fields that were rejected on a write.
type ValidationError struct {
	Website string
	// Fields are the empty fields.
	Fields []string
	// Invalid are the fields that are not valid UTF-8.
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Fields) > 0 {
		parts = append(parts, "empty field: "+strings.Join(e.Fields, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid UTF-8: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	var errs []error
	if len(e.Fields) > 0 {
		errs = append(errs, ErrEmptyField)
	}
	if len(e.Invalid) > 0 {
		errs = append(errs, ErrInvalidText)
	}
	return errs
}

// Validate checks that all three fields of a credential are non-empty
// UTF-8 text.
func Validate(website, identity, secret string) error {
	verr := &ValidationError{Website: website}
	for _, f := range []struct{ name, value string }{
		{"website", website},
		{"username", identity},
		{"password", secret},
	} {
		switch {
		case f.value == "":
			verr.Fields = append(verr.Fields, f.name)
		case !utf8.ValidString(f.value):
			verr.Invalid = append(verr.Invalid, f.name)
		}
	}
	if len(verr.Fields) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

func validateEntries(entries []Entry) error {
	for _, e := range entries {
		if err := Validate(e.Website, e.Identity, e.Secret); err != nil {
			return err
		}
	}
	return nil
}
