package vault

import (
	"github.com/benaskins/passkeep/internal/audit"
)

var _ Store = (*AuditedStore)(nil)

// AuditedStore wraps a Store and records every operation to an audit log.
type AuditedStore struct {
	inner Store
	audit *audit.Logger
	actor string // "cli" or "ui"
}

// NewAuditedStore wraps an existing store with audit logging.
func NewAuditedStore(inner Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		audit: auditLog,
		actor: actor,
	}
}

func (s *AuditedStore) Upsert(website, identity, secret string) error {
	err := s.inner.Upsert(website, identity, secret)
	s.log(audit.ActionRecordWrite, website, 0, err)
	return err
}

func (s *AuditedStore) Merge(entries []Entry) error {
	err := s.inner.Merge(entries)
	s.log(audit.ActionRecordImport, "", len(entries), err)
	return err
}

func (s *AuditedStore) Lookup(website string) (Record, error) {
	rec, err := s.inner.Lookup(website)
	s.log(audit.ActionRecordRead, website, 0, err)
	return rec, err
}

func (s *AuditedStore) List() ([]Entry, error) {
	entries, err := s.inner.List()
	s.log(audit.ActionRecordList, "", len(entries), err)
	return entries, err
}

func (s *AuditedStore) Delete(website string) error {
	err := s.inner.Delete(website)
	s.log(audit.ActionRecordDelete, website, 0, err)
	return err
}

// log is best-effort: a failure to log does not fail the operation.
func (s *AuditedStore) log(action audit.Action, website string, count int, opErr error) {
	entry := audit.Entry{
		Action:  action,
		Website: website,
		Actor:   s.actor,
		Count:   count,
	}
	if opErr != nil {
		entry.Error = opErr.Error()
	}
	s.audit.Log(entry)
}
