// Package report writes extraction results as plain-text blocks:
//
//	File: <path>
//	Text:
//	<text>
//	<80 '=' characters>
//	<blank line>
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Separator terminates every block.
var Separator = strings.Repeat("=", 80)

// Block is one successful extraction.
type Block struct {
	Path string
	Text string
}

// WriteBlock writes a single block to w.
func WriteBlock(w io.Writer, b Block) error {
	_, err := fmt.Fprintf(w, "File: %s\nText:\n%s\n%s\n\n", b.Path, b.Text, Separator)
	return err
}

// Write writes blocks to w in order.
func Write(w io.Writer, blocks []Block) error {
	for _, b := range blocks {
		if err := WriteBlock(w, b); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile creates (or truncates) name and writes blocks to it.
func WriteFile(name string, blocks []Block) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := Write(bw, blocks); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// AppendBlock appends one block to name, creating the file if needed.
func AppendBlock(name string, b Block) (err error) {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	if err := WriteBlock(f, b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
