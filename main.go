package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imgtext/pkg/ocr"
	"imgtext/process/batch"
	"imgtext/process/inputs"
)

// exampleImage is used by the demonstration run when no arguments are given.
const exampleImage = "example.jpg"

const usageExamples = `Image Text Reader
Usage examples:
  imgtext image.jpg
  imgtext *.png -o output.txt
  imgtext image.jpg -l eng+fra

For help: imgtext -h
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line. Errors that map to a specific exit code
// are returned as *ExitError.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, cfg: loadConfig(), newEngine: newEngine}
	return a.execute(ctx, args)
}

// app holds the wiring shared by all subcommands.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	cfg       Config
	newEngine func(Config) (ocr.Engine, error)
	logger    *slog.Logger
	// bare is set when the command line was empty; only then does the
	// root command run the demo.
	bare      bool
}

func (a *app) execute(ctx context.Context, args []string) error {
	cmd := a.rootCmd()
	a.bare = len(args) == 0
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgtext <image-path-or-glob>... [flags]",
		Short: "Extract text from images using OCR",
		Long: `imgtext reads text from image files (PNG, JPEG, TIFF, BMP, GIF) with
Tesseract OCR. Arguments are file paths or glob patterns such as "*.jpg".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.validate(); err != nil {
				return err
			}
			a.logger = newLogger(a.cfg.LogLevel, a.cfg.LogFormat, a.stderr)
			slog.SetDefault(a.logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if !a.bare {
					return &ExitError{Code: 2, Message: "requires at least one image path or glob"}
				}
				return a.demo(cmd.Context())
			}
			return a.extract(cmd.Context(), args)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.cfg.Language, "lang", "l", a.cfg.Language, "Language for OCR. Use eng+fra for multiple languages")
	pf.StringVar(&a.cfg.EngineConfig, "config", "", `Additional Tesseract config (e.g. "--psm 6")`)
	pf.StringVar(&a.cfg.Engine, "engine", a.cfg.Engine, "OCR backend: 'tesseract' (executable) or 'gosseract' (linked library)")
	pf.StringVar(&a.cfg.TesseractCmd, "tesseract-cmd", a.cfg.TesseractCmd, "Path to the tesseract executable (default \""+ocr.DefaultCommand()+"\")")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Logging level: 'debug', 'info', 'warn', 'error'")
	pf.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "Log output format: 'text' or 'json'")
	cmd.Flags().StringVarP(&a.cfg.Output, "output", "o", "", "Output file to save extracted text")

	cmd.AddCommand(a.watchCmd(), a.serveCmd())
	return cmd
}

func (a *app) extractor() (*ocr.Extractor, error) {
	engine, err := a.newEngine(a.cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	a.logger.Debug("ocr engine ready", "engine", engine.Name(), "lang", a.cfg.Language)
	return ocr.NewExtractor(engine, a.logger), nil
}

// extract is the batch run: resolve, process each image, summarize.
func (a *app) extract(ctx context.Context, tokens []string) error {
	paths := inputs.Resolve(tokens)
	if len(paths) == 0 {
		fmt.Fprintln(a.stdout, "No valid image files found!")
		return &ExitError{Code: 1}
	}
	ex, err := a.extractor()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Found %d image file(s) to process\n", len(paths))

	proc := batch.New(ex, a.stdout, a.logger)
	results, err := proc.ProcessAll(ctx, paths, batch.Options{
		Language: a.cfg.Language,
		Config:   a.cfg.EngineConfig,
		Output:   a.cfg.Output,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "\nProcessing complete! Successfully extracted text from %d of %d image(s)\n", len(results), len(paths))
	return nil
}

// demo prints usage examples and tries the example image once.
func (a *app) demo(ctx context.Context) error {
	fmt.Fprint(a.stdout, usageExamples)
	fmt.Fprintln(a.stdout, "\nRunning simple example...")
	if _, err := os.Stat(exampleImage); err != nil {
		fmt.Fprintf(a.stdout, "Image file %s not found\n", exampleImage)
		return nil
	}
	ex, err := a.extractor()
	if err != nil {
		return err
	}
	o := ex.Extract(ctx, exampleImage, a.cfg.Language, a.cfg.EngineConfig)
	if !o.OK() {
		fmt.Fprintf(a.stdout, "Error processing %s: %v\n", exampleImage, o.Err)
	}
	if !o.OK() || o.Text == "" {
		fmt.Fprintln(a.stdout, "No text found or error occurred")
		return nil
	}
	fmt.Fprintln(a.stdout, "Extracted text:")
	fmt.Fprintln(a.stdout, o.Text)
	return nil
}
