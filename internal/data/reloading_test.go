package data

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileLookup answers every lookup with the contents of the file it was
// opened from, so tests can tell which generation is being served.
type fileLookup struct {
	code   string
	closed atomic.Bool
}

func (f *fileLookup) LookupCountry(_ net.IP) (Country, error) {
	if f.closed.Load() {
		return Country{}, errors.New("use after close")
	}
	return Country{Code: f.code}, nil
}

func (f *fileLookup) Close() error {
	f.closed.Store(true)
	return nil
}

type fileOpener struct {
	mu     sync.Mutex
	opened []*fileLookup
}

func (o *fileOpener) open(path string) (CountryLookup, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty database")
	}
	l := &fileLookup{code: string(b)}
	o.mu.Lock()
	o.opened = append(o.opened, l)
	o.mu.Unlock()
	return l, nil
}

func (o *fileOpener) first() *fileLookup {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opened[0]
}

func (o *fileOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDB(t *testing.T, path, code string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(code), 0o600))
}

func lookupCode(t *testing.T, l CountryLookup) string {
	t.Helper()
	c, err := l.LookupCountry(net.ParseIP("1.2.3.4"))
	require.NoError(t, err)
	return c.Code
}

func TestReloadingLookup_ServesInitialDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}

	l, err := NewReloadingLookup(path, discardLogger(), WithOpener(opener.open))
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, "US", lookupCode(t, l))
	assert.NoError(t, l.Ready())
}

func TestReloadingLookup_MissingFile(t *testing.T) {
	opener := &fileOpener{}
	_, err := NewReloadingLookup(filepath.Join(t.TempDir(), "missing.mmdb"), discardLogger(), WithOpener(opener.open))
	require.Error(t, err)
}

func TestReloadingLookup_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}
	var reloads atomic.Int32

	l, err := NewReloadingLookup(path, discardLogger(),
		WithOpener(opener.open),
		WithReloadHook(func(err error) {
			if err == nil {
				reloads.Add(1)
			}
		}),
	)
	require.NoError(t, err)
	defer l.Close()

	writeDB(t, path, "CN")

	require.Eventually(t, func() bool {
		c, err := l.LookupCountry(net.ParseIP("1.2.3.4"))
		return err == nil && c.Code == "CN"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, reloads.Load())
	assert.Eventually(t, func() bool { return opener.first().closed.Load() }, time.Second, 10*time.Millisecond,
		"previous database should be closed")
}

func TestReloadingLookup_ReloadsOnRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}

	l, err := NewReloadingLookup(path, discardLogger(), WithOpener(opener.open))
	require.NoError(t, err)
	defer l.Close()

	tmp := filepath.Join(dir, "country.mmdb.tmp")
	writeDB(t, tmp, "RU")
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		c, err := l.LookupCountry(net.ParseIP("1.2.3.4"))
		return err == nil && c.Code == "RU"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReloadingLookup_FailedReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}
	var failures atomic.Int32

	l, err := NewReloadingLookup(path, discardLogger(),
		WithOpener(opener.open),
		WithReloadHook(func(err error) {
			if err != nil {
				failures.Add(1)
			}
		}),
	)
	require.NoError(t, err)
	defer l.Close()

	writeDB(t, path, "")

	require.Eventually(t, func() bool { return failures.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "US", lookupCode(t, l))
	assert.Equal(t, 1, opener.count())
}

func TestReloadingLookup_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}

	l, err := NewReloadingLookup(path, discardLogger(), WithOpener(opener.open))
	require.NoError(t, err)
	defer l.Close()

	writeDB(t, filepath.Join(dir, "other.mmdb"), "CN")
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, opener.count())
	assert.Equal(t, "US", lookupCode(t, l))
}

func TestReloadingLookup_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "country.mmdb")
	writeDB(t, path, "US")
	opener := &fileOpener{}

	l, err := NewReloadingLookup(path, discardLogger(), WithOpener(opener.open))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = l.LookupCountry(net.ParseIP("1.2.3.4"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, l.Ready(), ErrClosed)
	assert.True(t, opener.first().closed.Load())
}
