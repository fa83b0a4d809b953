package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"termsheet/internal/calc"
	"termsheet/internal/grid"
	"termsheet/internal/sheet"
	"termsheet/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleFile(t *testing.T) string {
	t.Helper()
	s := sheet.New()
	require.NoError(t, s.SetType(grid.MustParse("A1"), calc.Int))
	require.NoError(t, s.SetContent(grid.MustParse("A1"), "40"))
	require.NoError(t, s.SetType(grid.MustParse("B1"), calc.Int))
	require.NoError(t, s.SetContent(grid.MustParse("B1"), "=A1+2"))
	require.NoError(t, s.SetType(grid.MustParse("A2"), calc.Int))
	require.NoError(t, s.SetContent(grid.MustParse("A2"), "=A2"))

	path := filepath.Join(t.TempDir(), "book.sheet")
	require.NoError(t, storage.Save(s, path))
	return path
}

func TestEval(t *testing.T) {
	path := sampleFile(t)

	t.Run("all-cells", func(t *testing.T) {
		out, err := run(t, "eval", path)
		require.NoError(t, err)
		assert.Equal(t, "A1\t40\nA2\t#LOOP!\nB1\t42\n", out)
	})

	t.Run("selected-cells", func(t *testing.T) {
		out, err := run(t, "eval", path, "B1", "Z9")
		require.NoError(t, err)
		assert.Equal(t, "B1\t42\nZ9\t\n", out)
	})

	t.Run("bad-address", func(t *testing.T) {
		_, err := run(t, "eval", path, "1A")
		assert.Error(t, err)
	})

	t.Run("missing-file", func(t *testing.T) {
		_, err := run(t, "eval", filepath.Join(t.TempDir(), "nope.sheet"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no-file", func(t *testing.T) {
		_, err := run(t, "eval")
		assert.Error(t, err)
	})
}

func TestExport(t *testing.T) {
	path := sampleFile(t)
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	out, err := run(t, "export", path, csvPath)
	require.NoError(t, err)
	assert.Equal(t, "wrote 2x2 values to "+csvPath+"\n", out)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "40,42\n#LOOP!,\n", string(data))
}

func TestSnapshots(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	db, err := storage.OpenSnapshots(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Put("monday", sheet.New()))
	require.NoError(t, db.Put("friday", sheet.New()))
	require.NoError(t, db.Close())

	out, err := run(t, "snapshots", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "friday\nmonday\n", out)

	out, err = run(t, "snapshots", "--db", dbPath, "--delete", "monday")
	require.NoError(t, err)
	assert.Equal(t, "deleted monday\n", out)

	_, err = run(t, "snapshots", "--db", dbPath, "--delete", "monday")
	assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	out, err = run(t, "snapshots", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "friday\n", out)
}

func TestConfigFlag(t *testing.T) {
	path := sampleFile(t)
	cfgPath := filepath.Join(t.TempDir(), "termsheet.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("layout:\n  cols: 0\n"), 0o644))

	_, err := run(t, "--config", cfgPath, "eval", path)
	assert.ErrorContains(t, err, "layout.cols")

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "eval", path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEditorNeedsTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	_, err := run(t)
	assert.ErrorIs(t, err, errNotTerminal)
}

func TestVersion(t *testing.T) {
	Version = "v1.2.3"
	t.Cleanup(func() { Version = "" })

	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "termsheet v1.2.3\n", out)
}

func TestHelpText(t *testing.T) {
	for _, sub := range []string{"eval", "snapshots"} {
		t.Run(sub, func(t *testing.T) {
			out, err := run(t, sub, "--help")
			require.NoError(t, err)
			assert.Contains(t, out, "\n")
			assert.NotContains(t, out, "\n\t", "long description lines start at the margin")
		})
	}
}
