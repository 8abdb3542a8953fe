package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const twoBlocks = "File: a.png\nText:\nA\n" +
	"================================================================================\n\n" +
	"File: b.png\nText:\nB\n" +
	"================================================================================\n\n"

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []Block{{Path: "a.png", Text: "A"}, {Path: "b.png", Text: "B"}}))
	require.Equal(t, twoBlocks, buf.String())
	require.Len(t, Separator, 80)
}

func TestWriteFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	require.NoError(t, WriteFile(out, []Block{{Path: "a.png", Text: "A"}, {Path: "b.png", Text: "B"}}))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, twoBlocks, string(got))
}

func TestWriteFileMultilineUTF8(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(out, []Block{{Path: "ü.png", Text: "línea uno\nlínea dos"}}))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(got), "File: ü.png\nText:\nlínea uno\nlínea dos\n===="))
}

func TestWriteFileBadDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.txt"), []Block{{Path: "a", Text: "b"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "create output")
}

func TestAppendBlock(t *testing.T) {
	out := filepath.Join(t.TempDir(), "watch.txt")
	require.NoError(t, AppendBlock(out, Block{Path: "a.png", Text: "A"}))
	require.NoError(t, AppendBlock(out, Block{Path: "b.png", Text: "B"}))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, twoBlocks, string(got))
}
