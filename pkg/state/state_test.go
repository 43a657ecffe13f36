package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger(t *testing.T) context.Context {
	// Create a logger that writes to the test log
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func readRecord(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "reading record file")
	var names []string
	require.NoError(t, json.Unmarshal(data, &names), "record should be a JSON array")
	return names
}

func TestLoad(t *testing.T) {
	ctx := setupTestLogger(t)

	tests := []struct {
		name    string
		content *string
		want    []string
	}{
		{
			name:    "missing_file",
			content: nil,
			want:    []string{},
		},
		{
			name:    "not_json",
			content: ptr("this is not json"),
			want:    []string{},
		},
		{
			name:    "wrong_json_shape",
			content: ptr(`{"a.txt": true}`),
			want:    []string{},
		},
		{
			name:    "truncated",
			content: ptr(`["a.txt", "b.t`),
			want:    []string{},
		},
		{
			name:    "empty_array",
			content: ptr(`[]`),
			want:    []string{},
		},
		{
			name:    "names",
			content: ptr(`["b.txt","a.txt","b.txt"]`),
			want:    []string{"a.txt", "b.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "transfers.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			ledger := Load(ctx, path)
			require.NotNil(t, ledger, "Load never returns nil")
			assert.Equal(t, tt.want, ledger.Names())
			assert.Equal(t, path, ledger.Path())
		})
	}
}

func TestRecordAndReload(t *testing.T) {
	ctx := setupTestLogger(t)
	path := filepath.Join(t.TempDir(), "transfers.json")

	ledger := Load(ctx, path)
	assert.False(t, ledger.Has("a.txt"))

	require.NoError(t, ledger.Record(ctx, "a.txt"))
	require.NoError(t, ledger.Record(ctx, "b.txt"))
	require.NoError(t, ledger.Record(ctx, "a.txt"), "recording twice should be harmless")

	assert.True(t, ledger.Has("a.txt"))
	assert.Equal(t, 2, ledger.Len())
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, readRecord(t, path), "record should hold each name once")

	// a restart sees the same history
	reloaded := Load(ctx, path)
	assert.True(t, reloaded.Has("a.txt"))
	assert.True(t, reloaded.Has("b.txt"))
	assert.Equal(t, 2, reloaded.Len())
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	ctx := setupTestLogger(t)
	path := filepath.Join(t.TempDir(), "state", "nested", "transfers.json")

	ledger := New(path)
	require.NoError(t, ledger.Record(ctx, "a.txt"))
	assert.Equal(t, []string{"a.txt"}, readRecord(t, path))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "transfers.json")

	ledger := New(path)
	for i := 0; i < 5; i++ {
		require.NoError(t, ledger.Record(ctx, fmt.Sprintf("file-%d.txt", i)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"transfers.json", "transfers.json.lock"}, names)
}

func TestSaveFailure(t *testing.T) {
	ctx := setupTestLogger(t)
	dir := t.TempDir()

	// the record path is a directory, so the rename cannot succeed
	path := filepath.Join(dir, "transfers.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))

	ledger := New(path)
	err := ledger.Record(ctx, "a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording a.txt")
}

func TestConcurrentRecord(t *testing.T) {
	ctx := setupTestLogger(t)
	path := filepath.Join(t.TempDir(), "transfers.json")
	ledger := New(path)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, ledger.Record(ctx, fmt.Sprintf("file-%02d.txt", i)))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, ledger.Len())
	assert.Len(t, readRecord(t, path), n, "the last save should carry every name")
}

func TestReset(t *testing.T) {
	ctx := setupTestLogger(t)
	path := filepath.Join(t.TempDir(), "transfers.json")

	ledger := New(path)
	require.NoError(t, ledger.Record(ctx, "a.txt"))

	require.NoError(t, ledger.Reset(ctx))
	assert.Zero(t, ledger.Len())
	assert.NoFileExists(t, path)

	require.NoError(t, ledger.Reset(ctx), "resetting a missing record should succeed")
	assert.Empty(t, Load(ctx, path).Names())
}

func ptr(s string) *string {
	return &s
}
