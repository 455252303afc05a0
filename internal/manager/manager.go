// Package manager implements the user-facing actions of passkeep: generate a
// password, save a login, search for a login. Each action returns an Outcome
// that the CLI or the terminal UI renders; neither front end talks to the
// vault directly.
package manager

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/benaskins/passkeep/internal/clipboard"
	"github.com/benaskins/passkeep/internal/passgen"
	"github.com/benaskins/passkeep/internal/vault"
)

// Kind classifies an Outcome for presentation.
type Kind int

const (
	KindSuccess Kind = iota
	KindValidation
	KindNotInitialized
	KindNotFound
	KindCancelled
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindValidation:
		return "validation"
	case KindNotInitialized:
		return "not_initialized"
	case KindNotFound:
		return "not_found"
	case KindCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// Outcome is the result of an action, ready to show to the user.
type Outcome struct {
	Kind    Kind
	Title   string
	Message string

	// Password is set by OnGeneratePassword.
	Password string
	// Copied reports whether Password reached the clipboard.
	Copied bool

	// Record is set by a successful OnSearch.
	Record *vault.Record

	// ClearInputs tells the front end to reset its form after a save.
	ClearInputs bool

	Err error
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Generator produces passwords.
type Generator interface {
	Generate() string
}

// Confirmer asks the user to approve an action.
type Confirmer interface {
	Confirm(title, message string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, message string) (bool, error)

func (f ConfirmFunc) Confirm(title, message string) (bool, error) {
	return f(title, message)
}

// Manager wires the vault, the password generator and the clipboard.
type Manager struct {
	store     vault.Store
	gen       Generator
	clip      clipboard.Sink
	confirmer Confirmer
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithGenerator sets the password generator.
func WithGenerator(g Generator) Option {
	return func(m *Manager) {
		m.gen = g
	}
}

// WithClipboard sets where generated passwords are copied.
func WithClipboard(s clipboard.Sink) Option {
	return func(m *Manager) {
		m.clip = s
	}
}

// WithConfirmer enables a confirmation step before each save.
func WithConfirmer(c Confirmer) Option {
	return func(m *Manager) {
		m.confirmer = c
	}
}

// New creates a Manager backed by store. By default passwords come from
// passgen and are not copied anywhere.
func New(store vault.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.With("component", "manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.gen == nil {
		m.gen = passgen.New()
	}
	if m.clip == nil {
		m.clip = clipboard.Discard{}
	}
	return m
}

// OnGeneratePassword creates a password and copies it to the clipboard.
// A clipboard failure is reported in the message but the password is still
// returned.
func (m *Manager) OnGeneratePassword() Outcome {
	pw := m.gen.Generate()

	out := Outcome{
		Kind:     KindSuccess,
		Title:    "Password Generated",
		Password: pw,
		Message:  "Password copied to clipboard.",
		Copied:   true,
	}
	if err := m.clip.Copy(pw); err != nil {
		m.logger.Warn("clipboard copy failed", "error", err)
		out.Copied = false
		out.Message = fmt.Sprintf("Password generated, but not copied: %v", err)
	}
	return out
}

// OnSearch looks up the login saved for website.
func (m *Manager) OnSearch(website string) Outcome {
	if website == "" {
		return Outcome{
			Kind:    KindValidation,
			Title:   "Empty Field Error",
			Message: "Please enter a website to search for.",
		}
	}

	rec, err := m.store.Lookup(website)
	switch {
	case err == nil:
		return Outcome{
			Kind:    KindSuccess,
			Title:   website,
			Message: fmt.Sprintf("Email/Username: %s\nPassword: %s", rec.Identity, rec.Secret),
			Record:  &rec,
		}
	case errors.Is(err, vault.ErrNotInitialized):
		return Outcome{
			Kind:    KindNotInitialized,
			Title:   "No Data File Found",
			Message: "No accounts saved yet.",
			Err:     err,
		}
	case errors.Is(err, vault.ErrNotFound):
		return Outcome{
			Kind:    KindNotFound,
			Title:   "Not Found",
			Message: fmt.Sprintf("No details for %s exist.", website),
			Err:     err,
		}
	default:
		return m.failure("search", err)
	}
}

// OnSave stores a login, overwriting any earlier login for the same website.
func (m *Manager) OnSave(website, identity, secret string) Outcome {
	if err := vault.Validate(website, identity, secret); err != nil {
		return validationOutcome(err)
	}

	if m.confirmer != nil {
		ok, err := m.confirmer.Confirm(website, confirmMessage(website, identity, secret))
		if err != nil {
			return m.failure("confirm", err)
		}
		if !ok {
			return Outcome{
				Kind:    KindCancelled,
				Title:   "Cancelled",
				Message: "Nothing was saved.",
			}
		}
	}

	if err := m.store.Upsert(website, identity, secret); err != nil {
		if errors.Is(err, vault.ErrEmptyField) || errors.Is(err, vault.ErrInvalidText) {
			return validationOutcome(err)
		}
		return m.failure("save", err)
	}

	m.logger.Debug("saved login", "website", website)
	return Outcome{
		Kind:        KindSuccess,
		Title:       "Saved",
		Message:     fmt.Sprintf("Saved details for %s.", website),
		ClearInputs: true,
	}
}

func (m *Manager) failure(action string, err error) Outcome {
	m.logger.Error(action+" failed", "error", err)
	title := "Error"
	if errors.Is(err, vault.ErrCorrupt) {
		title = "Vault File Corrupt"
	}
	return Outcome{
		Kind:    KindError,
		Title:   title,
		Message: err.Error(),
		Err:     err,
	}
}

func validationOutcome(err error) Outcome {
	out := Outcome{
		Kind:    KindValidation,
		Title:   "Empty Field Error",
		Message: "Please fill all the fields, then try again.",
		Err:     err,
	}
	if !errors.Is(err, vault.ErrEmptyField) {
		out.Title = "Invalid Text"
		out.Message = "Fields must be valid UTF-8 text."
	}
	return out
}

func confirmMessage(website, identity, secret string) string {
	return fmt.Sprintf("These are the details entered:\n\n"+
		"Website: %s\n"+
		"Email/Username: %s\n"+
		"Password: %s\n\n"+
		"Would you like to continue?", website, identity, secret)
}
