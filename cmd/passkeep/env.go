package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/benaskins/passkeep/internal/audit"
	"github.com/benaskins/passkeep/internal/clipboard"
	"github.com/benaskins/passkeep/internal/config"
	"github.com/benaskins/passkeep/internal/manager"
	"github.com/benaskins/passkeep/internal/vault"
)

// env holds what every subcommand needs: config, the vault and the audit log.
type env struct {
	cfg   *config.Config
	file  *vault.FileStore
	store vault.Store
	audit *audit.Logger
}

// openEnv loads config and opens the vault. actor is recorded in the audit
// log ("cli" or "ui").
func openEnv(actor string) (*env, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if vaultPath != "" {
		cfg.VaultPath = vaultPath
	}

	e := &env{cfg: cfg, file: vault.NewFileStore(cfg.VaultPath)}
	e.store = e.file

	// Audit logging is best-effort: a vault without an audit log still works.
	if err := os.MkdirAll(filepath.Dir(cfg.AuditLog), 0700); err != nil {
		slog.Warn("audit log disabled", "path", cfg.AuditLog, "error", err)
		return e, nil
	}
	auditLog, err := audit.NewLogger(cfg.AuditLog)
	if err != nil {
		slog.Warn("audit log disabled", "path", cfg.AuditLog, "error", err)
		return e, nil
	}
	e.audit = auditLog
	e.store = vault.NewAuditedStore(e.file, auditLog, actor)
	return e, nil
}

func (e *env) close() {
	if e.audit != nil {
		e.audit.Close()
	}
}

func (e *env) clipboard() clipboard.Sink {
	if e.cfg.ClipboardEnabled() {
		return clipboard.System{}
	}
	return clipboard.Discard{}
}

func (e *env) manager(opts ...manager.Option) *manager.Manager {
	opts = append([]manager.Option{manager.WithClipboard(e.clipboard())}, opts...)
	return manager.New(e.store, opts...)
}
