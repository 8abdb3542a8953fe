package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"imgtext/pkg/ocr"
	"imgtext/process/batch"
	"imgtext/process/inputs"
	"imgtext/process/report"
)

// failedHeader carries the number of uploaded images that could not be read.
const failedHeader = "X-Imgtext-Failed"

// maxUploadMemory bounds the multipart form kept in memory; larger uploads
// spill to temp files.
const maxUploadMemory = 32 << 20

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve text extraction over HTTP (POST /extract)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.cfg.Addr, "addr", a.cfg.Addr, "Listen address")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ex, err := a.extractor()
	if err != nil {
		return err
	}
	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.MaxMultipartMemory = maxUploadMemory
	setupRoutes(r, newServer(ex, batch.New(ex, a.stdout, a.logger), a.cfg, a.logger))

	srv := &http.Server{Addr: a.cfg.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	a.logger.Info("listening", "addr", a.cfg.Addr, "engine", ex.Engine().Name())
	fmt.Fprintf(a.stdout, "Listening on %s\n", a.cfg.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// batchRunner is the part of *batch.Processor the server needs.
type batchRunner interface {
	ProcessAll(ctx context.Context, paths []string, opts batch.Options) ([]batch.Result, error)
}

// server answers extraction requests one at a time.
type server struct {
	mu       sync.Mutex
	engine   ocr.Engine
	proc     batchRunner
	language string
	config   string
	logger   *slog.Logger
}

func newServer(ex *ocr.Extractor, proc batchRunner, cfg Config, logger *slog.Logger) *server {
	return &server{
		engine:   ex.Engine(),
		proc:     proc,
		language: cfg.Language,
		config:   cfg.EngineConfig,
		logger:   logger,
	}
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/healthz", s.healthHandler)
	r.POST("/extract", s.extractHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok %s\n", s.engine.Name())
}

// extractHandler accepts multipart "image" files plus optional "lang" and
// "config" fields and answers with the results in the output-file format.
func (s *server) extractHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.String(http.StatusBadRequest, "invalid multipart form: %v\n", err)
		return
	}
	lang := c.DefaultPostForm("lang", s.language)
	config := c.DefaultPostForm("config", s.config)

	dir, err := os.MkdirTemp("", "imgtext-upload-*")
	if err != nil {
		c.String(http.StatusInternalServerError, "create upload dir: %v\n", err)
		return
	}
	defer os.RemoveAll(dir)

	var paths []string
	names := map[string]string{}
	for i, fh := range form.File["image"] {
		name := filepath.Base(fh.Filename)
		if !inputs.IsSupported(name) {
			continue
		}
		dst := filepath.Join(dir, strconv.Itoa(i), name)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			c.String(http.StatusInternalServerError, "store upload: %v\n", err)
			return
		}
		if err := c.SaveUploadedFile(fh, dst); err != nil {
			c.String(http.StatusInternalServerError, "store upload: %v\n", err)
			return
		}
		paths = append(paths, dst)
		names[dst] = name
	}
	if len(paths) == 0 {
		c.String(http.StatusBadRequest, "No valid image files found!\n")
		return
	}

	s.mu.Lock()
	results, err := s.proc.ProcessAll(c.Request.Context(), paths, batch.Options{Language: lang, Config: config})
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("extract request failed", "images", len(paths), "err", err)
		c.String(http.StatusInternalServerError, "process images: %v\n", err)
		return
	}

	blocks := batch.Blocks(results)
	for i := range blocks {
		blocks[i].Path = names[blocks[i].Path]
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, blocks); err != nil {
		c.String(http.StatusInternalServerError, "render results: %v\n", err)
		return
	}
	s.logger.Info("extract request", "images", len(paths), "succeeded", len(results))
	c.Header(failedHeader, strconv.Itoa(len(paths)-len(results)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
