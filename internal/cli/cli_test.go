package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poster/internal/domain"
	"poster/internal/scenefile"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeScene(t *testing.T, name string, blocks ...domain.Block) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, scenefile.Write(path, &scenefile.Document{Name: "test", Blocks: blocks}))
	return path
}

func block(id string, x, y float64, z int) domain.Block {
	return domain.Block{
		ID:       id,
		Type:     domain.BlockTypePrice,
		Position: domain.Point{X: x, Y: y},
		Size:     domain.Size{Width: 160, Height: 80},
		ZIndex:   z,
		Visible:  true,
	}
}

func TestSetVersion(t *testing.T) {
	defer SetVersion(version, commit, date)
	SetVersion("1.0.0", "abc123", "2024-01-01")

	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("SetVersion did not update build info: %q %q %q", version, commit, date)
	}
}

func TestCheck_Clean(t *testing.T) {
	path := writeScene(t, "ok.yaml", block("a", 0, 0, 1), block("b", 200, 0, 2))
	out, err := run(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 blocks, 0 errors, 0 warnings")
}

func TestCheck_Violations(t *testing.T) {
	tiny := block("tiny", 500, 500, 3)
	tiny.Size = domain.Size{Width: 5, Height: 5}
	path := writeScene(t, "bad.json", block("a", 0, 0, 1), block("b", 0, 0, 1), tiny)

	out, err := run(t, "check", path)
	assert.ErrorIs(t, err, ErrViolations)
	assert.Contains(t, out, "error: ")
	assert.Contains(t, out, "zIndex shared")
	assert.Contains(t, out, "size out of range")
	assert.Contains(t, out, "warning: a overlaps b")
}

func TestCheck_StrictOverlaps(t *testing.T) {
	path := writeScene(t, "overlap.yaml", block("a", 0, 0, 1), block("b", 100, 0, 2))

	_, err := run(t, "check", path)
	require.NoError(t, err, "overlaps are warnings by default")

	_, err = run(t, "check", "--strict", path)
	assert.ErrorIs(t, err, ErrViolations)
}

func TestCheck_MissingFile(t *testing.T) {
	_, err := run(t, "check", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKeys_ReplaysShortcuts(t *testing.T) {
	path := writeScene(t, "poster.yaml", block("a", 0, 0, 1))
	outPath := filepath.Join(t.TempDir(), "result.json")

	out, err := run(t, "keys", path, "--select", "a", "--out", outPath, "ArrowRight", "Shift+ArrowDown", "Ctrl+D", "F5")
	require.NoError(t, err)
	assert.Contains(t, out, "F5: no effect")
	assert.Contains(t, out, "wrote "+outPath)

	doc, err := scenefile.Read(outPath)
	require.NoError(t, err)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, domain.Point{X: 10, Y: 1}, doc.Blocks[0].Position)

	orig, err := scenefile.Read(path)
	require.NoError(t, err)
	assert.Len(t, orig.Blocks, 1, "input untouched with --out")
}

func TestKeys_Errors(t *testing.T) {
	path := writeScene(t, "poster.yaml", block("a", 0, 0, 1))

	_, err := run(t, "keys", path, "--select", "zzz", "Delete")
	assert.Error(t, err)

	_, err = run(t, "keys", path, "Ctrl+Bogus+X")
	assert.Error(t, err)

	out, err := run(t, "keys", path, "Delete")
	require.NoError(t, err)
	assert.Contains(t, out, "no changes", "nothing selected")
}

func TestKeys_List(t *testing.T) {
	path := writeScene(t, "poster.yaml")
	out, err := run(t, "keys", "--list", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+Z\n")
	assert.Contains(t, out, "Shift+ArrowLeft\n")
}

func TestConfig_InvalidFileFails(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "poster.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[canvas]\ngrid_size = -1\n"), 0644))

	var stdout, stderr bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &stdout, &stderr)
	root.SetArgs([]string{"--config", cfg, "check", "x.yaml"})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "grid_size")
}

func TestServe_WatchNeedsScene(t *testing.T) {
	_, err := run(t, "serve", "--watch", "--no-store")
	assert.ErrorContains(t, err, "--watch needs --scene")
}
