package batch

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"imgtext/pkg/ocr"
)

// scripted answers each path from a table; unknown paths fail.
type scripted struct {
	texts map[string]string
	calls []string
}

func (s *scripted) Extract(_ context.Context, path, _, _ string) ocr.Outcome {
	s.calls = append(s.calls, path)
	text, ok := s.texts[path]
	if !ok {
		return ocr.Outcome{Path: path, Err: &ocr.ExtractionError{Path: path, Stage: ocr.StageDecode, Err: errors.New("cannot identify image file")}}
	}
	return ocr.Outcome{Path: path, Text: text}
}

type constEngine string

func (c constEngine) Name() string { return "const" }

func (c constEngine) Recognize(context.Context, ocr.Request) (string, error) {
	return string(c), nil
}

func TestProcessAllMixedBatch(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, imaging.Save(imaging.New(10, 10, color.NRGBA{255, 255, 255, 255}), good))
	require.NoError(t, os.WriteFile(corrupt, []byte{0x89, 'P', 'N', 'G', 0, 0}, 0o644))

	var out bytes.Buffer
	p := New(ocr.NewExtractor(constEngine(" hello \n"), nil), &out, nil)
	results, err := p.ProcessAll(context.Background(), []string{good, corrupt}, Options{Language: "eng"})
	require.NoError(t, err)

	if diff := cmp.Diff([]Result{{Path: good, Text: "hello"}}, results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	console := out.String()
	require.Contains(t, console, "Processing: "+good)
	require.Contains(t, console, "Text extracted successfully from "+good)
	require.Contains(t, console, "Processing: "+corrupt)
	require.Contains(t, console, "Error processing "+corrupt+": ")
	require.Contains(t, console, "Failed to extract text from "+corrupt)
}

func TestProcessAllConsoleFraming(t *testing.T) {
	var out bytes.Buffer
	ex := &scripted{texts: map[string]string{"a.png": "line one\nline two"}}
	_, err := New(ex, &out, nil).ProcessAll(context.Background(), []string{"a.png"}, Options{})
	require.NoError(t, err)

	rule := strings.Repeat("-", 50)
	want := "Processing: a.png\n" +
		"Text extracted successfully from a.png\n" +
		rule + "\nline one\nline two\n" + rule + "\n"
	require.Equal(t, want, out.String())
}

func TestProcessAllPreservesOrder(t *testing.T) {
	ex := &scripted{texts: map[string]string{"1.png": "one", "3.png": "three", "4.png": "four"}}
	paths := []string{"1.png", "2.png", "3.png", "4.png", "1.png"}

	results, err := New(ex, &bytes.Buffer{}, nil).ProcessAll(context.Background(), paths, Options{})
	require.NoError(t, err)
	require.Equal(t, paths, ex.calls)

	want := []Result{{"1.png", "one"}, {"3.png", "three"}, {"4.png", "four"}, {"1.png", "one"}}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	require.LessOrEqual(t, len(results), len(paths))
}

func TestProcessAllWritesOutput(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "out.txt")
	ex := &scripted{texts: map[string]string{"a.png": "A", "b.png": "B"}}
	var console bytes.Buffer

	results, err := New(ex, &console, nil).ProcessAll(context.Background(), []string{"a.png", "bad.png", "b.png"}, Options{Output: outFile})
	require.NoError(t, err)
	require.Len(t, results, 2)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	sep := strings.Repeat("=", 80)
	require.Equal(t, "File: a.png\nText:\nA\n"+sep+"\n\nFile: b.png\nText:\nB\n"+sep+"\n\n", string(data))
	require.Contains(t, console.String(), "Results saved to "+outFile)
}

func TestProcessAllNoOutputFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	ex := &scripted{texts: map[string]string{"a.png": "A"}}

	_, err := New(ex, &bytes.Buffer{}, nil).ProcessAll(context.Background(), []string{"a.png", "b.png"}, Options{})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestProcessAllAllFailedSkipsOutput(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "out.txt")
	var console bytes.Buffer

	results, err := New(&scripted{}, &console, nil).ProcessAll(context.Background(), []string{"x.png"}, Options{Output: outFile})
	require.NoError(t, err)
	require.Empty(t, results)
	_, statErr := os.Stat(outFile)
	require.True(t, os.IsNotExist(statErr))
	require.NotContains(t, console.String(), "Results saved")
}

func TestProcessAllOutputWriteFailure(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "no", "such", "dir", "out.txt")
	ex := &scripted{texts: map[string]string{"a.png": "A"}}

	results, err := New(ex, &bytes.Buffer{}, nil).ProcessAll(context.Background(), []string{"a.png"}, Options{Output: outFile})
	require.Error(t, err)
	require.Len(t, results, 1)
}

func TestProcessOneFailureMessageNamesCause(t *testing.T) {
	var out bytes.Buffer
	_, ok := New(&scripted{}, &out, nil).ProcessOne(context.Background(), "x.gif", Options{})
	require.False(t, ok)
	require.Contains(t, out.String(), "Error processing x.gif: cannot identify image file\n")
}
