// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/doc2latex/pkg/types"
)

// --- test helpers ---

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func doneEntry(input, hash string, at time.Time) Entry {
	return Entry{
		InputPath:   input,
		InputHash:   hash,
		OptionsHash: "opts",
		OutputPath:  input + ".tex",
		Format:      types.FormatMarkdown,
		Status:      types.ConversionDone,
		ConvertedAt: at,
	}
}

// --- tests ---

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "history.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.Record(ctx, doneEntry("a.md", "h1", time.Time{}))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordFillsIDAndTime(t *testing.T) {
	l := testLedger(t)

	before := time.Now().UTC()
	e, err := l.Record(context.Background(), doneEntry("a.md", "h1", time.Time{}))
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.False(t, e.ConvertedAt.Before(before.Add(-time.Second)))
	assert.Equal(t, time.UTC, e.ConvertedAt.Location())
}

func TestUnchanged(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := l.Record(ctx, doneEntry("a.md", "h1", base))
	require.NoError(t, err)
	failed := doneEntry("b.md", "h2", base)
	failed.Status = types.ConversionFailed
	failed.Message = "parsing md b.md: boom"
	_, err = l.Record(ctx, failed)
	require.NoError(t, err)

	tests := []struct {
		name        string
		input       string
		output      string
		inputHash   string
		optionsHash string
		want        bool
	}{
		{"same input and options", "a.md", "a.md.tex", "h1", "opts", true},
		{"content changed", "a.md", "a.md.tex", "h9", "opts", false},
		{"options changed", "a.md", "a.md.tex", "h1", "other", false},
		{"different output", "a.md", "elsewhere.tex", "h1", "opts", false},
		{"only failures recorded", "b.md", "b.md.tex", "h2", "opts", false},
		{"never converted", "c.md", "c.md.tex", "h3", "opts", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok, err := l.Unchanged(ctx, tt.input, tt.output, tt.inputHash, tt.optionsHash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, tt.input, e.InputPath)
				assert.True(t, e.ConvertedAt.Equal(base))
			}
		})
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := testLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"a.md", "b.md", "c.md"} {
		_, err := l.Record(ctx, doneEntry(name, "h", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c.md", entries[0].InputPath)
	assert.Equal(t, "b.md", entries[1].InputPath)
	assert.Equal(t, types.FormatMarkdown, entries[0].Format)
	assert.Equal(t, types.ConversionDone, entries[0].Status)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same"), 0o644))

	ha, err := HashFile(a)
	require.NoError(t, err)
	hb, err := HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)

	require.NoError(t, os.WriteFile(b, []byte("different"), 0o644))
	hb, err = HashFile(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)

	_, err = HashFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashOptions(t *testing.T) {
	empty, err := HashOptions(types.PreambleOptions{}, "v1")
	require.NoError(t, err)
	defaults, err := HashOptions(types.PreambleOptions{
		DocClass: types.DefaultDocClass,
		FontSize: types.DefaultFontSize,
		Margins:  types.DefaultMargins,
	}, "v1")
	require.NoError(t, err)
	assert.Equal(t, empty, defaults)

	tests := []struct {
		name    string
		opts    types.PreambleOptions
		version string
	}{
		{"document class", types.PreambleOptions{DocClass: "report"}, "v1"},
		{"extra package", types.PreambleOptions{Packages: []string{"tikz"}}, "v1"},
		{"converter version", types.PreambleOptions{}, "v2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := HashOptions(tt.opts, tt.version)
			require.NoError(t, err)
			assert.NotEqual(t, empty, h)
		})
	}
}
