package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shakfu/entangled-rs/pkg/log"
)

// runCLI executes the root command against a prepared directory and returns
// stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	lg, _ := log.NewTestLogger(t)
	ctx := log.ContextWithLogger(context.Background(), lg)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCLI_TangleWritesTarget(t *testing.T) {
	dir := t.TempDir()
	md := "```python #hello file=hello.py\nprint(\"hi\")\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"), []byte(md), 0o644))

	out, err := runCLI(t, dir, "tangle")
	require.NoError(t, err)
	require.Contains(t, out, "create")
	require.Contains(t, out, "hello.py")

	content, err := os.ReadFile(filepath.Join(dir, "hello.py"))
	require.NoError(t, err)
	require.Contains(t, string(content), "print(\"hi\")")
	require.FileExists(t, filepath.Join(dir, ".entangled", "filedb.json"))
}

func TestCLI_TangleDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	md := "```python #hello file=hello.py\nprint(\"hi\")\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"), []byte(md), 0o644))

	out, err := runCLI(t, dir, "tangle", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "hello.py")
	require.NoFileExists(t, filepath.Join(dir, "hello.py"))
}

func TestCLI_List(t *testing.T) {
	dir := t.TempDir()
	md := "# My Doc\n\n```python #hello file=hello.py\nprint(\"hi\")\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc.md"), []byte(md), 0o644))

	out, err := runCLI(t, dir, "list")
	require.NoError(t, err)
	require.Contains(t, out, "doc.md")
	require.Contains(t, out, "My Doc")
	require.Contains(t, out, "hello.py")
}

func TestCLI_InitWritesConfigOnce(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "init")
	require.NoError(t, err)
	require.Contains(t, out, "entangled.toml")
	require.FileExists(t, filepath.Join(dir, "entangled.toml"))

	_, err = runCLI(t, dir, "init")
	require.Error(t, err)
}

func TestCLI_Locate(t *testing.T) {
	dir := t.TempDir()
	md := "```python #hello file=hello.py\nprint(\"hi\")\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"), []byte(md), 0o644))

	_, err := runCLI(t, dir, "tangle")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "locate", "hello.py", "2")
	require.NoError(t, err)
	require.Contains(t, out, "hello.md:2")
	require.Contains(t, out, "file:hello.py[0]")
}

func TestCLI_SyncRoundTrip(t *testing.T) {
	dir := t.TempDir()
	md := "```python #hello file=hello.py\nprint(\"hi\")\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.md"), []byte(md), 0o644))

	_, err := runCLI(t, dir, "sync")
	require.NoError(t, err)

	// Edit the tangled file and sync again: the markdown follows.
	target := filepath.Join(dir, "hello.py")
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	edited := bytes.Replace(content, []byte("print(\"hi\")"), []byte("print(\"bye\")"), 1)
	require.NoError(t, os.WriteFile(target, edited, 0o644))

	_, err = runCLI(t, dir, "sync", "--force")
	require.NoError(t, err)

	updated, err := os.ReadFile(filepath.Join(dir, "hello.md"))
	require.NoError(t, err)
	require.Contains(t, string(updated), "print(\"bye\")")
}
