package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CLIEngine runs the tesseract executable once per image.
type CLIEngine struct {
	// Command is the tesseract executable, either a bare name resolved via
	// PATH or an absolute path.
	Command string
}

// NewCLIEngine returns a CLIEngine for command, falling back to the
// platform default when command is empty.
func NewCLIEngine(command string) *CLIEngine {
	if command == "" {
		command = DefaultCommand()
	}
	return &CLIEngine{Command: command}
}

func (e *CLIEngine) Name() string { return EngineTesseract }

// Version runs `tesseract --version` and returns its first line.
func (e *CLIEngine) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.Command, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("testing tesseract installation: %w", err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// Recognize writes the image to a temp file and runs
// `tesseract <file> stdout [-l lang] [config...]`.
func (e *CLIEngine) Recognize(ctx context.Context, req Request) (string, error) {
	tmp, err := os.CreateTemp("", "imgtext-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if _, err := tmp.Write(req.Image); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Command, cliArgs(tmpPath, req)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("running tesseract: %w: %s", err, msg)
		}
		return "", fmt.Errorf("running tesseract: %w", err)
	}
	return stdout.String(), nil
}

// cliArgs builds the tesseract argv. The config string is split on
// whitespace into separate arguments and otherwise left untouched.
func cliArgs(imagePath string, req Request) []string {
	args := []string{imagePath, "stdout"}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}
	return append(args, strings.Fields(req.Config)...)
}
