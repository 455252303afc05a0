// Package tui is the interactive form for passkeep: website, email/username
// and password fields with generate, save and search actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/benaskins/passkeep/internal/manager"
	"github.com/benaskins/passkeep/internal/passgen"
	"github.com/benaskins/passkeep/internal/vault"
)

const (
	fieldWebsite = iota
	fieldIdentity
	fieldSecret
	fieldCount
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Width(17).Foreground(lipgloss.Color("245"))
	focusedLabel = labelStyle.Foreground(lipgloss.Color("212"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusBox    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).MarginTop(1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

var labels = [fieldCount]string{"Website:", "Email/Username:", "Password:"}

// vaultChangedMsg is sent when the vault file changes on disk.
type vaultChangedMsg struct{}

// Model is the bubbletea model for the form.
type Model struct {
	mgr          *manager.Manager
	store        vault.Store
	confirmSaves bool

	inputs [fieldCount]textinput.Model
	focus  int

	status     *manager.Outcome
	confirming bool
	accounts   int
	changes    <-chan struct{}
}

// New builds the form. store is only read, to show the account count; all
// actions go through mgr. mgr must not have its own confirmer: when
// confirmSaves is set the form asks for confirmation itself.
func New(mgr *manager.Manager, store vault.Store, confirmSaves bool) Model {
	m := Model{
		mgr:          mgr,
		store:        store,
		confirmSaves: confirmSaves,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 35
		m.inputs[i] = ti
	}
	m.inputs[fieldWebsite].Placeholder = "example.com"
	m.inputs[fieldIdentity].Placeholder = "you@example.com"
	m.inputs[fieldSecret].Width = 21
	m.inputs[fieldSecret].EchoMode = textinput.EchoPassword
	m.inputs[fieldSecret].EchoCharacter = '•'
	m.inputs[fieldWebsite].Focus()
	m.accounts = countAccounts(store)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case vaultChangedMsg:
		m.accounts = countAccounts(m.store)
		return m, waitForChange(m.changes)

	case tea.KeyMsg:
		if m.confirming {
			return m.updateConfirm(msg)
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "enter":
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case "ctrl+g":
			out := m.mgr.OnGeneratePassword()
			m.inputs[fieldSecret].SetValue(out.Password)
			m.status = &out
			return m, nil
		case "ctrl+s":
			return m.save()
		case "ctrl+f":
			out := m.mgr.OnSearch(m.inputs[fieldWebsite].Value())
			m.status = &out
			return m, nil
		case "ctrl+r":
			m.inputs[fieldSecret].EchoMode = toggleEcho(m.inputs[fieldSecret].EchoMode)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) save() (tea.Model, tea.Cmd) {
	website, identity, secret := m.values()
	if m.confirmSaves && vault.Validate(website, identity, secret) == nil {
		m.confirming = true
		m.status = &manager.Outcome{
			Kind:  manager.KindSuccess,
			Title: "Confirm",
			Message: fmt.Sprintf("Website: %s\nEmail/Username: %s\nPassword: %s\n\nSave these details? (y/n)",
				website, identity, secret),
		}
		return m, nil
	}
	return m.commitSave()
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirming = false
		return m.commitSave()
	case "ctrl+c":
		return m, tea.Quit
	default:
		m.confirming = false
		m.status = &manager.Outcome{Kind: manager.KindCancelled, Title: "Cancelled", Message: "Nothing was saved."}
		return m, nil
	}
}

func (m Model) commitSave() (tea.Model, tea.Cmd) {
	out := m.mgr.OnSave(m.values())
	m.status = &out
	if !out.ClearInputs {
		return m, nil
	}
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.accounts = countAccounts(m.store)
	return m, m.setFocus(fieldWebsite)
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m Model) values() (website, identity, secret string) {
	return m.inputs[fieldWebsite].Value(), m.inputs[fieldIdentity].Value(), m.inputs[fieldSecret].Value()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("passkeep"))
	b.WriteString("\n")

	for i := range m.inputs {
		label := labelStyle
		if i == m.focus {
			label = focusedLabel
		}
		b.WriteString(label.Render(labels[i]))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	if pw := m.inputs[fieldSecret].Value(); pw != "" {
		counts := passgen.Breakdown(pw)
		b.WriteString(labelStyle.Render(""))
		b.WriteString(helpStyle.UnsetMarginTop().Render(fmt.Sprintf("%d letters · %d digits · %d symbols",
			counts[passgen.ClassLetter], counts[passgen.ClassDigit], counts[passgen.ClassPunctuation])))
		b.WriteString("\n")
	}

	if m.status != nil {
		b.WriteString(renderStatus(*m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"%d accounts · tab next field · ctrl+g generate · ctrl+s save · ctrl+f search · ctrl+r show/hide · esc quit",
		m.accounts)))
	b.WriteString("\n")
	return b.String()
}

func renderStatus(out manager.Outcome) string {
	style := okStyle
	switch out.Kind {
	case manager.KindValidation, manager.KindNotFound, manager.KindNotInitialized, manager.KindCancelled:
		style = warnStyle
	case manager.KindError:
		style = errStyle
	}
	body := style.Bold(true).Render(out.Title)
	if out.Message != "" {
		body += "\n" + out.Message
	}
	return statusBox.BorderForeground(style.GetForeground()).Render(body)
}

func toggleEcho(mode textinput.EchoMode) textinput.EchoMode {
	if mode == textinput.EchoPassword {
		return textinput.EchoNormal
	}
	return textinput.EchoPassword
}

func countAccounts(store vault.Store) int {
	entries, err := store.List()
	if err != nil {
		if !errors.Is(err, vault.ErrNotInitialized) {
			slog.Warn("listing accounts failed", "error", err)
		}
		return 0
	}
	return len(entries)
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return vaultChangedMsg{}
	}
}

// Run starts the form on the terminal and blocks until the user quits. When
// vaultPath is set, the account count follows changes made by other
// processes.
func Run(ctx context.Context, m Model, vaultPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if vaultPath != "" {
		if err := os.MkdirAll(filepath.Dir(vaultPath), 0700); err != nil {
			return fmt.Errorf("creating vault dir: %w", err)
		}
		m.changes = watchVault(ctx, vaultPath)
	}

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// watchVault forwards vault changes to the returned channel until ctx is
// done. The channel is closed when the watcher stops.
func watchVault(ctx context.Context, vaultPath string) <-chan struct{} {
	changes := make(chan struct{}, 1)
	var mu sync.Mutex
	closed := false
	go func() {
		err := vault.Watch(ctx, vaultPath, func() {
			mu.Lock()
			defer mu.Unlock()
			if closed {
				return
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if err != nil {
			slog.Warn("vault watcher stopped", "error", err)
		}
		mu.Lock()
		closed = true
		close(changes)
		mu.Unlock()
	}()
	return changes
}
