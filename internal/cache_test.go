package internal

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoverse/regexr/internal/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "a.regex")
		writeFile(t, filename, "(a\n")

		issues := []types.Issue{{
			Code:     types.CodeGroupOpen,
			Severity: types.SeverityError,
			Filename: filename,
			Line:     1,
			Pattern:  "(a",
			Start:    0,
			End:      1,
			Message:  "Unmatched opening parenthesis.",
		}}
		require.NoError(t, cache.Set(filename, issues))

		loaded, found := cache.Get(filename)
		assert.True(t, found)
		assert.Equal(t, issues, loaded)

		// a fresh cache over the same directory reads the entry back
		reopened, err := NewCache(filepath.Join(tmpDir, "cache"))
		require.NoError(t, err)
		loaded, found = reopened.Get(filename)
		assert.True(t, found)
		assert.Equal(t, issues, loaded)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.regex")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "modified.regex")
		writeFile(t, filename, "a+\n")
		require.NoError(t, cache.Set(filename, nil))

		writeFile(t, filename, "a+(\n")
		_, found := cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("Expired", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "expired.regex")
		writeFile(t, filename, "a\n")
		require.NoError(t, cache.Set(filename, nil))

		cache.SetMaxAge(-time.Second)
		defer cache.SetMaxAge(defaultCacheAge)
		_, found := cache.Get(filename)
		assert.False(t, found)
	})
}

func TestCache_DependencyChange(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	cfg := filepath.Join(tmpDir, ".regexr.yaml")
	writeFile(t, cfg, "name: a\n")
	filename := filepath.Join(tmpDir, "p.regex")
	writeFile(t, filename, "a\n")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"), cfg)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, nil))

	_, found := cache.Get(filename)
	assert.True(t, found)

	writeFile(t, cfg, "name: b\n")
	_, found = cache.Get(filename)
	assert.False(t, found)

	// entries stored against the old configuration are dropped on load
	writeFile(t, cfg, "name: a\n")
	require.NoError(t, cache.Set(filename, nil))
	writeFile(t, cfg, "name: c\n")
	reopened, err := NewCache(filepath.Join(tmpDir, "cache"), cfg)
	require.NoError(t, err)
	_, found = reopened.Get(filename)
	assert.False(t, found)
}

func TestCache_InvalidateAll(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "p.regex")
	writeFile(t, filename, "a\n")

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, nil))

	cache.InvalidateAll()
	_, found := cache.Get(filename)
	assert.False(t, found)
}

func TestCacheWithEngine(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)
	engine, err := NewEngine(nil, WithCache(cache))
	require.NoError(t, err)

	filename := filepath.Join(tmpDir, "p.regex")
	writeFile(t, filename, "(a\n")

	issues, err := engine.Run(filename)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	cached, found := cache.Get(filename)
	require.True(t, found)
	assert.Equal(t, issues, cached)

	again, err := engine.Run(filename)
	require.NoError(t, err)
	assert.Equal(t, issues, again)

	writeFile(t, filename, "(a)\n")
	fixed, err := engine.Run(filename)
	require.NoError(t, err)
	assert.Empty(t, fixed)
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	var files []string
	for _, name := range []string{"a", "b", "c", "d"} {
		path := filepath.Join(tmpDir, name+".regex")
		writeFile(t, path, name+"\n")
		files = append(files, path)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			assert.NoError(t, cache.Set(path, nil))
			_, _ = cache.Get(path)
		}(files[i%len(files)])
	}
	wg.Wait()

	for _, path := range files {
		_, found := cache.Get(path)
		assert.True(t, found, path)
	}
}
