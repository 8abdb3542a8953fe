package main

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"imgtext/pkg/ocr"
	"imgtext/process/batch"
)

func setupTestServer(t *testing.T, engine ocr.Engine) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ex := ocr.NewExtractor(engine, nil)
	cfg := Config{Language: ocr.DefaultLanguage, EngineConfig: "--psm 3"}
	r := gin.New()
	setupRoutes(r, newServer(ex, batch.New(ex, io.Discard, nil), cfg, newLogger("error", "text", io.Discard)))
	return r
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(8, 8, color.NRGBA{255, 255, 255, 255}), imaging.PNG))
	return buf.Bytes()
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		w, err := mw.CreateFormFile("image", f.name)
		require.NoError(t, err)
		_, err = w.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func performRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	r := setupTestServer(t, &seqEngine{})
	resp := performRequest(r, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "ok seq\n", resp.Body.String())
}

func TestExtractEndpoint(t *testing.T) {
	eng := &seqEngine{texts: []string{"first page", "second page"}}
	r := setupTestServer(t, eng)

	img := pngBytes(t)
	body, ct := multipartBody(t, map[string]string{"lang": "eng+deu"},
		upload{"a.png", img},
		upload{"notes.txt", []byte("skip me")},
		upload{"broken.jpg", []byte("not a jpeg")},
		upload{"../../b.PNG", img},
	)
	resp := performRequest(r, http.MethodPost, "/extract", body, ct)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, "1", resp.Header().Get(failedHeader))
	require.True(t, strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))

	sep := strings.Repeat("=", 80)
	want := "File: a.png\nText:\nfirst page\n" + sep + "\n\n" +
		"File: b.PNG\nText:\nsecond page\n" + sep + "\n\n"
	require.Equal(t, want, resp.Body.String())

	require.Len(t, eng.reqs, 2)
	for _, req := range eng.reqs {
		require.Equal(t, "eng+deu", req.Language)
		require.Equal(t, "--psm 3", req.Config)
	}
}

func TestExtractEndpointNoValidImages(t *testing.T) {
	r := setupTestServer(t, &seqEngine{})
	body, ct := multipartBody(t, nil, upload{"notes.txt", []byte("x")})
	resp := performRequest(r, http.MethodPost, "/extract", body, ct)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "No valid image files found!\n", resp.Body.String())
}

type failingRunner struct{ calls int }

func (f *failingRunner) ProcessAll(context.Context, []string, batch.Options) ([]batch.Result, error) {
	f.calls++
	return nil, errors.New("disk full")
}

func TestExtractEndpointProcessError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ex := ocr.NewExtractor(&seqEngine{}, nil)
	runner := &failingRunner{}
	r := gin.New()
	setupRoutes(r, newServer(ex, runner, Config{Language: ocr.DefaultLanguage}, newLogger("error", "text", io.Discard)))

	body, ct := multipartBody(t, nil, upload{"a.png", pngBytes(t)})
	resp := performRequest(r, http.MethodPost, "/extract", body, ct)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	require.Contains(t, resp.Body.String(), "disk full")
	require.Empty(t, resp.Header().Get(failedHeader))
	require.Equal(t, 1, runner.calls)
}

func TestExtractEndpointNotMultipart(t *testing.T) {
	r := setupTestServer(t, &seqEngine{})
	resp := performRequest(r, http.MethodPost, "/extract", strings.NewReader("{}"), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}
