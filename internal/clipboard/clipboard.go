// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available, e.g.
// on a headless Linux host without xclip, xsel or wl-copy.
var ErrUnsupported = errors.New("clipboard not available")

// Sink receives text to place on a clipboard.
type Sink interface {
	Copy(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// Discard drops everything. Used when clipboard copying is turned off.
type Discard struct{}

func (Discard) Copy(string) error { return nil }

// Memory records copied text. Used in tests.
type Memory struct {
	mu     sync.Mutex
	copied []string
}

func (m *Memory) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = append(m.copied, text)
	return nil
}

// Last returns the most recently copied text, or "" if nothing was copied.
func (m *Memory) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.copied) == 0 {
		return ""
	}
	return m.copied[len(m.copied)-1]
}
