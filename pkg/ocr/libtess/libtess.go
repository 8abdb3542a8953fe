// Package libtess implements ocr.Engine on top of the tesseract C API via
// gosseract. It needs libtesseract and leptonica at build time.
package libtess

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"imgtext/pkg/ocr"
)

// Engine recognizes images in-process with a fresh gosseract client per
// request.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a gosseract-backed engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return ocr.EngineGosseract }

// Version reports the linked libtesseract version.
func (e *Engine) Version() string { return gosseract.Version() }

// Recognize runs OCR on req.Image. req.Config is read as tesseract
// command-line options and mapped onto client calls.
func (e *Engine) Recognize(ctx context.Context, req ocr.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts, err := parseConfig(req.Config)
	if err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if opts.tessdataDir != "" {
		c.TessdataPrefix = opts.tessdataDir
	}
	if req.Language != "" {
		if err := c.SetLanguage(req.Language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if opts.psm != nil {
		if err := c.SetPageSegMode(gosseract.PageSegMode(*opts.psm)); err != nil {
			return "", fmt.Errorf("set page seg mode: %w", err)
		}
	}
	for _, v := range opts.variables {
		if err := c.SetVariable(gosseract.SettableVariable(v.key), v.value); err != nil {
			return "", fmt.Errorf("set variable %s: %w", v.key, err)
		}
	}
	if err := c.SetImageFromBytes(req.Image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

type variable struct {
	key   string
	value string
}

type options struct {
	psm         *int
	tessdataDir string
	variables   []variable
}

// parseConfig maps the subset of tesseract CLI options the C API exposes:
// --psm N, --dpi N, --tessdata-dir DIR and -c KEY=VALUE.
func parseConfig(config string) (options, error) {
	var opts options
	fields := strings.Fields(config)
	next := func(i int, flag string) (string, error) {
		if i+1 >= len(fields) {
			return "", fmt.Errorf("%w: %s needs a value", ocr.ErrUnsupportedConfig, flag)
		}
		return fields[i+1], nil
	}
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch f {
		case "--psm":
			v, err := next(i, f)
			if err != nil {
				return options{}, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return options{}, fmt.Errorf("%w: --psm %q", ocr.ErrUnsupportedConfig, v)
			}
			opts.psm = &n
			i++
		case "--dpi":
			v, err := next(i, f)
			if err != nil {
				return options{}, err
			}
			opts.variables = append(opts.variables, variable{key: "user_defined_dpi", value: v})
			i++
		case "--tessdata-dir":
			v, err := next(i, f)
			if err != nil {
				return options{}, err
			}
			opts.tessdataDir = v
			i++
		case "-c":
			v, err := next(i, f)
			if err != nil {
				return options{}, err
			}
			key, value, ok := strings.Cut(v, "=")
			if !ok || key == "" {
				return options{}, fmt.Errorf("%w: -c %q", ocr.ErrUnsupportedConfig, v)
			}
			opts.variables = append(opts.variables, variable{key: key, value: value})
			i++
		default:
			return options{}, fmt.Errorf("%w: %q", ocr.ErrUnsupportedConfig, f)
		}
	}
	return opts, nil
}
