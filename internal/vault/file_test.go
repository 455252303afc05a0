package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data", "vault.json"))
}

func TestFileStore_LookupBeforeFirstWrite(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Lookup("anything")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, s.Exists())

	_, err = s.List()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestFileStore_UpsertCreatesFile(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Upsert("a", "x", "1"))
	assert.True(t, s.Exists())

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(fileMode), info.Mode().Perm())
}

func TestFileStore_NotFoundVsNotInitialized(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Lookup("a")
	require.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, s.Upsert("a", "user", "pw"))

	_, err = s.Lookup("b")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrNotInitialized)

	rec, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, Record{Identity: "user", Secret: "pw"}, rec)
}

func TestFileStore_UpsertIdempotent(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Upsert("w", "u", "p"))
	require.NoError(t, s.Upsert("w", "u", "p"))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Website: "w", Record: Record{Identity: "u", Secret: "p"}}, entries[0])
}

func TestFileStore_UpsertOverwrites(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Upsert("a", "x", "1"))
	require.NoError(t, s.Upsert("a", "y", "2"))

	rec, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, Record{Identity: "y", Secret: "2"}, rec)
}

func TestFileStore_KeysAreCaseSensitive(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Upsert("GitHub.com", "upper", "1"))

	_, err := s.Lookup("github.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Lookup(" GitHub.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_EmptyFieldsRejected(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Upsert("keep", "u", "p"))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	cases := []struct {
		website, identity, secret string
		field                     string
	}{
		{"", "u", "p", "website"},
		{"w", "", "p", "username"},
		{"w", "u", "", "password"},
	}
	for _, c := range cases {
		err := s.Upsert(c.website, c.identity, c.secret)
		require.ErrorIs(t, err, ErrEmptyField)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, []string{c.field}, verr.Fields)
	}

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileStore_EmptyFieldDoesNotInitialize(t *testing.T) {
	s := newTestFileStore(t)

	require.ErrorIs(t, s.Upsert("", "", ""), ErrEmptyField)
	assert.False(t, s.Exists())
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := newTestFileStore(t)

	cases := []Entry{
		{Website: "pipe | site", Record: Record{Identity: "a | b", Secret: "x | y | z"}},
		{Website: "日本.example", Record: Record{Identity: "ユーザー", Secret: "pässwörd✓"}},
		{Website: "  spaced  ", Record: Record{Identity: "\tuser\t", Secret: " leading and trailing "}},
		{Website: "quote\"site", Record: Record{Identity: "back\\slash", Secret: "new\nline"}},
		{Website: "punct", Record: Record{Identity: "me@example.com", Secret: "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"}},
	}
	for _, c := range cases {
		require.NoError(t, s.Upsert(c.Website, c.Identity, c.Secret))
	}

	reopened := NewFileStore(s.Path())
	for _, c := range cases {
		rec, err := reopened.Lookup(c.Website)
		require.NoError(t, err, "website %q", c.Website)
		assert.Equal(t, c.Record, rec)
	}
}

func TestFileStore_Scenario(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.Upsert("github.com", "dev@example.com", "Tr0ub4dor&3"))
	require.NoError(t, s.Upsert("mail.com", "me@example.com", "xyzzy12345"))

	rec, err := s.Lookup("github.com")
	require.NoError(t, err)
	assert.Equal(t, Record{Identity: "dev@example.com", Secret: "Tr0ub4dor&3"}, rec)

	_, err = s.Lookup("nosite.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DocumentFormat(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Upsert("github.com", "dev@example.com", "Tr0ub4dor&3"))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var raw map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]string{
		"github.com": {"username": "dev@example.com", "password": "Tr0ub4dor&3"},
	}, raw)
	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestFileStore_PreservesInsertionOrder(t *testing.T) {
	s := newTestFileStore(t)

	for _, w := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Upsert(w, "u", "p"))
	}
	require.NoError(t, s.Upsert("alpha", "u2", "p2"))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "zeta", entries[0].Website)
	assert.Equal(t, "alpha", entries[1].Website)
	assert.Equal(t, "u2", entries[1].Identity)
	assert.Equal(t, "mid", entries[2].Website)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "zeta"), strings.Index(text, "alpha"))
	assert.Less(t, strings.Index(text, "alpha"), strings.Index(text, "mid"))
}

func TestFileStore_CorruptFile(t *testing.T) {
	cases := map[string]string{
		"garbage":       "not json at all",
		"truncated":     `{"a": {"username": "u", "password": "p"`,
		"array":         `[{"username": "u"}]`,
		"wrong value":   `{"a": "just a string"}`,
		"empty":         "",
		"trailing data": `{"a": {"username": "u", "password": "p"}} extra`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestFileStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0700))
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0600))

			_, err := s.Lookup("a")
			assert.ErrorIs(t, err, ErrCorrupt)

			err = s.Upsert("b", "u", "p")
			assert.ErrorIs(t, err, ErrCorrupt)

			data, err := os.ReadFile(s.Path())
			require.NoError(t, err)
			assert.Equal(t, content, string(data), "corrupt file must not be overwritten")
		})
	}
}

func TestFileStore_Delete(t *testing.T) {
	s := newTestFileStore(t)

	assert.ErrorIs(t, s.Delete("a"), ErrNotInitialized)

	require.NoError(t, s.Upsert("a", "u", "p"))
	require.NoError(t, s.Upsert("b", "u", "p"))
	require.NoError(t, s.Delete("a"))

	_, err := s.Lookup("a")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Lookup("b")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Delete("a"), ErrNotFound)
}

func TestFileStore_MergeLastWriteWins(t *testing.T) {
	s := newTestFileStore(t)

	err := s.Merge([]Entry{
		{Website: "a", Record: Record{Identity: "x", Secret: "1"}},
		{Website: "b", Record: Record{Identity: "y", Secret: "2"}},
		{Website: "a", Record: Record{Identity: "z", Secret: "3"}},
	})
	require.NoError(t, err)

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Website: "a", Record: Record{Identity: "z", Secret: "3"}}, entries[0])
}

func TestFileStore_MergeRejectsInvalidBatch(t *testing.T) {
	s := newTestFileStore(t)

	err := s.Merge([]Entry{
		{Website: "a", Record: Record{Identity: "x", Secret: "1"}},
		{Website: "b", Record: Record{Identity: "", Secret: "2"}},
	})
	require.ErrorIs(t, err, ErrEmptyField)
	assert.False(t, s.Exists())
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	s := newTestFileStore(t)
	for i := range 5 {
		require.NoError(t, s.Upsert("site", "u", strings.Repeat("p", i+1)))
	}

	files, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	for _, f := range files {
		assert.NotContains(t, f.Name(), ".tmp-")
	}
}

func TestFileStore_ConcurrentStoresSameFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	a := NewFileStore(path)
	b := NewFileStore(path)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := a
			if i%2 == 1 {
				s = b
			}
			s.Upsert(strings.Repeat("w", i+1), "u", "p")
		}()
	}
	wg.Wait()

	entries, err := a.List()
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

// readOnlyDir makes dir unwritable for the rest of the test.
func readOnlyDir(t *testing.T, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for this user")
	}
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0700) })
}

func TestFileStore_LookupInReadOnlyDir(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Upsert("a", "u", "p"))
	readOnlyDir(t, filepath.Dir(s.Path()))

	rec, err := s.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, Record{Identity: "u", Secret: "p"}, rec)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.ErrorIs(t, s.Upsert("b", "u", "p"), ErrIO)
}

func TestFileStore_LookupInReadOnlyDirWithoutLockFile(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Upsert("a", "u", "p"))
	require.NoError(t, os.Remove(s.lockPath()))
	readOnlyDir(t, filepath.Dir(s.Path()))

	_, err := s.Lookup("a")
	require.NoError(t, err)
}

func TestFileStore_LookupMissingVaultInReadOnlyDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(dir, 0700))
	s := NewFileStore(filepath.Join(dir, "vault.json"))
	readOnlyDir(t, dir)

	_, err := s.Lookup("a")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NotErrorIs(t, err, ErrIO)
}

func TestFileStore_LookupCreatesNothing(t *testing.T) {
	s := newTestFileStore(t)

	_, err := s.Lookup("a")
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = os.Stat(filepath.Dir(s.Path()))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, s.Upsert("a", "u", "p"))
	require.NoError(t, os.Remove(s.lockPath()))

	_, err = s.Lookup("a")
	require.NoError(t, err)
	_, err = os.Stat(s.lockPath())
	assert.True(t, errors.Is(err, os.ErrNotExist), "lookup must not create the lock file")
}

func TestFileStore_InvalidUTF8Rejected(t *testing.T) {
	s := newTestFileStore(t)

	err := s.Upsert("bad\xffutf8", "u", "p")
	require.ErrorIs(t, err, ErrInvalidText)
	assert.False(t, s.Exists())

	require.NoError(t, s.Upsert("good", "u", "p"))
	assert.ErrorIs(t, s.Merge([]Entry{{Website: "x", Record: Record{Identity: "\xc3", Secret: "p"}}}), ErrInvalidText)

	entries, err := s.List()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
