package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const (
	fileMode = 0600
	dirMode  = 0700
)

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)

// FileStore persists the vault as a JSON document on disk.
//
// Writes hold an exclusive advisory lock on "<path>.lock" for the whole
// read-modify-write cycle and reads hold a shared one, so two processes
// sharing a vault file do not drop each other's updates.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the file at path. The file and its
// directory are created on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		logger: slog.With("component", "vault", "path", path),
	}
}

// Path returns the vault file path.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the vault file has been created.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *FileStore) Upsert(website, identity, secret string) error {
	if err := Validate(website, identity, secret); err != nil {
		return err
	}
	return s.Merge([]Entry{{Website: website, Record: Record{Identity: identity, Secret: secret}}})
}

func (s *FileStore) Merge(entries []Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}

	return s.update(true, func(doc *document) error {
		for _, e := range entries {
			doc.Set(e.Website, e.Record)
		}
		return nil
	})
}

func (s *FileStore) Lookup(website string) (Record, error) {
	doc, err := s.read()
	if err != nil {
		return Record{}, err
	}
	rec, ok := doc.Get(website)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, website)
	}
	return rec, nil
}

func (s *FileStore) List() ([]Entry, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return documentEntries(doc), nil
}

func (s *FileStore) Delete(website string) error {
	return s.update(false, func(doc *document) error {
		if _, ok := doc.Delete(website); !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, website)
		}
		return nil
	})
}

// read loads the document under a shared lock when one can be taken. It
// creates nothing on disk, so lookups work in a read-only directory.
func (s *FileStore) read() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotInitialized
	}

	lock, err := acquireLock(s.lockPath(), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer lock.release()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotInitialized
	}
	return doc, nil
}

// update runs fn against the current document under an exclusive lock and
// writes the result back. When create is set a missing file is treated as an
// empty document; otherwise it is ErrNotInitialized. Nothing is persisted
// unless fn succeeds.
func (s *FileStore) update(create bool, fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("%w: creating vault dir: %w", ErrIO, err)
	}

	lock, err := acquireLock(s.lockPath(), true)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer lock.release()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if doc == nil {
		if !create {
			return ErrNotInitialized
		}
		doc = newDocument()
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	s.logger.Debug("vault written", "records", doc.Len())
	return nil
}

// load reads and parses the vault file. It returns a nil document when the
// file does not exist. Caller must hold the lock.
func (s *FileStore) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: reading vault: %w", ErrIO, err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Warn("vault file could not be parsed", "error", err)
		return nil, err
	}
	return doc, nil
}

func (s *FileStore) lockPath() string {
	return s.path + ".lock"
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, and renames it over path. Readers see either the old or the new file.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(fileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes a directory entry after rename. Best effort: not every
// platform supports fsync on directories.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
