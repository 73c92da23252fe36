package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaarmann/reasonable-excuse/internal/upload"
)

// sequence returns a generator that walks through names and then sticks on
// the last one.
func sequence(names ...string) upload.NameFunc {
	i := 0
	return func(int) string {
		name := names[i]
		if i < len(names)-1 {
			i++
		}
		return name
	}
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	return storage
}

func TestNewStorageMissingDir(t *testing.T) {
	_, err := NewStorage(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestNewStorageNotADir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a-file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := NewStorage(path)
	assert.Error(t, err)
}

func TestStoreRandom(t *testing.T) {
	storage := newTestStorage(t)

	name, err := storage.StoreRandom(strings.NewReader("hello"), 6, "txt")
	require.NoError(t, err)

	assert.Regexp(t, `^[a-zA-Z0-9]{6}\.txt$`, name)

	content, err := os.ReadFile(filepath.Join(storage.dir, name))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestStoreRandomEmptyExtension(t *testing.T) {
	storage := newTestStorage(t)

	name, err := storage.StoreRandom(strings.NewReader("hello"), 6, "")
	require.NoError(t, err)

	// A name like "trailing." has an empty extension; it is kept verbatim.
	assert.Regexp(t, `^[a-zA-Z0-9]{6}\.$`, name)
	assert.FileExists(t, filepath.Join(storage.dir, name))
}

func TestStoreRandomEmptyContent(t *testing.T) {
	storage := newTestStorage(t)

	name, err := storage.StoreRandom(strings.NewReader(""), 6, "txt")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(storage.dir, name))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStoreRandomRetriesOnCollision(t *testing.T) {
	storage := newTestStorage(t)
	storage.generate = sequence("taken1", "taken2", "free")

	for _, name := range []string{"taken1.txt", "taken2.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(storage.dir, name), []byte("old"), 0o644))
	}

	name, err := storage.StoreRandom(strings.NewReader("new"), 6, "txt")
	require.NoError(t, err)
	assert.Equal(t, "free.txt", name)

	// The colliding files were left alone.
	for _, name := range []string{"taken1.txt", "taken2.txt"} {
		content, err := os.ReadFile(filepath.Join(storage.dir, name))
		require.NoError(t, err)
		assert.Equal(t, "old", string(content))
	}
}

func TestStoreRandomRetriesExhausted(t *testing.T) {
	storage := newTestStorage(t)
	storage.generate = sequence("stuck")

	require.NoError(t, os.WriteFile(filepath.Join(storage.dir, "stuck.txt"), []byte("old"), 0o644))

	_, err := storage.StoreRandom(strings.NewReader("new"), 6, "txt")
	assert.ErrorIs(t, err, upload.ErrRetriesExhausted)
}

func TestStoreRandomDirVanished(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewStorage(dir)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = storage.StoreRandom(strings.NewReader("hello"), 6, "txt")
	require.Error(t, err)
	assert.NotErrorIs(t, err, upload.ErrRetriesExhausted)
	assert.NotErrorIs(t, err, upload.ErrNameCollision)
}

func TestStoreNamed(t *testing.T) {
	storage := newTestStorage(t)

	name, err := storage.StoreNamed(strings.NewReader("hello"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", name)

	content, err := os.ReadFile(filepath.Join(storage.dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestStoreNamedCollision(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.StoreNamed(strings.NewReader("first"), "notes.txt")
	require.NoError(t, err)

	_, err = storage.StoreNamed(strings.NewReader("second"), "notes.txt")
	assert.ErrorIs(t, err, upload.ErrNameCollision)

	// The first upload is untouched by the failed second one.
	content, err := os.ReadFile(filepath.Join(storage.dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}

func TestStoreRandomConcurrent(t *testing.T) {
	storage := newTestStorage(t)

	const workers = 100

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		names = make(map[string]string, workers)
	)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			content := fmt.Sprintf("content-%d", i)
			name, err := storage.StoreRandom(strings.NewReader(content), 6, "txt")
			if err != nil {
				errs <- err
				return
			}

			mu.Lock()
			names[name] = content
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent store failed: %v", err)
	}

	// Every store got its own file and none of them clobbered another.
	require.Len(t, names, workers)
	for name, want := range names {
		content, err := os.ReadFile(filepath.Join(storage.dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	}

	entries, err := os.ReadDir(storage.dir)
	require.NoError(t, err)
	assert.Len(t, entries, workers)
}
