// Package batch runs extraction over a list of image paths, one at a time,
// printing progress to the console and optionally saving the successful
// results to a combined text file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"imgtext/pkg/ocr"
	"imgtext/process/report"
)

// rule frames extracted text on the console.
var rule = strings.Repeat("-", 50)

// Result is a successful extraction.
type Result struct {
	Path string
	Text string
}

// Extractor is the per-image extraction step.
type Extractor interface {
	Extract(ctx context.Context, path, lang, config string) ocr.Outcome
}

// Options are forwarded to every extraction in a run.
type Options struct {
	Language string
	Config   string
	// Output, when set, receives all successful results after the run.
	Output string
}

// Processor drives extraction and console reporting.
type Processor struct {
	ex     Extractor
	out    io.Writer
	logger *slog.Logger
}

// New returns a Processor writing console output to out.
func New(ex Extractor, out io.Writer, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{ex: ex, out: out, logger: logger}
}

// ProcessOne extracts a single image and prints its outcome. It reports
// false when extraction failed.
func (p *Processor) ProcessOne(ctx context.Context, path string, opts Options) (Result, bool) {
	fmt.Fprintf(p.out, "Processing: %s\n", path)
	o := p.ex.Extract(ctx, path, opts.Language, opts.Config)
	if !o.OK() {
		fmt.Fprintf(p.out, "Error processing %s: %s\n", path, cause(o.Err))
		fmt.Fprintf(p.out, "Failed to extract text from %s\n", path)
		p.logger.Warn("extraction failed", "path", path, "err", o.Err)
		return Result{}, false
	}
	fmt.Fprintf(p.out, "Text extracted successfully from %s\n", path)
	fmt.Fprintln(p.out, rule)
	fmt.Fprintln(p.out, o.Text)
	fmt.Fprintln(p.out, rule)
	return Result{Path: path, Text: o.Text}, true
}

// ProcessAll extracts every path in order. Failed images are reported and
// skipped. If opts.Output is set and at least one image succeeded, the
// results are written there; an error is returned only when that write
// fails.
func (p *Processor) ProcessAll(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	var results []Result
	for _, path := range paths {
		if res, ok := p.ProcessOne(ctx, path, opts); ok {
			results = append(results, res)
		}
	}
	p.logger.Info("batch finished", "candidates", len(paths), "succeeded", len(results))

	if opts.Output == "" || len(results) == 0 {
		return results, nil
	}
	if err := report.WriteFile(opts.Output, Blocks(results)); err != nil {
		return results, err
	}
	fmt.Fprintf(p.out, "Results saved to %s\n", opts.Output)
	return results, nil
}

// Blocks converts results into report blocks.
func Blocks(results []Result) []report.Block {
	blocks := make([]report.Block, len(results))
	for i, r := range results {
		blocks[i] = report.Block{Path: r.Path, Text: r.Text}
	}
	return blocks
}

// cause strips the stage/path prefix an *ocr.ExtractionError adds, since
// the console line already names the file.
func cause(err error) error {
	var xerr *ocr.ExtractionError
	if errors.As(err, &xerr) && xerr.Err != nil {
		return xerr.Err
	}
	return err
}
