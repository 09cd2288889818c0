package net

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPClient(t *testing.T) {
	client, err := GetHTTPClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Jar)
}

func TestPrintHTTPResponse_Nil(t *testing.T) {
	// should not panic
	PrintHTTPResponse(nil)
}

func TestPrintHTTPResponse_WithResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	// should not panic
	PrintHTTPResponse(resp)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.csv"))
	assert.True(t, IsRemote(" HTTP://example.com/a.csv"))
	assert.False(t, IsRemote("./data/a.csv"))
	assert.False(t, IsRemote("/tmp/https.csv"))
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exporters.csv":
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte("Exporter_ID,Industry\nEXP_1,Solar\n"))
		case "/broken.csv":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownload(t *testing.T) {
	srv := newServer(t)
	p := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, Download(context.Background(), srv.URL+"/exporters.csv", p))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "EXP_1")
}

func TestDownload_NotFound(t *testing.T) {
	srv := newServer(t)
	p := filepath.Join(t.TempDir(), "out.csv")

	err := Download(context.Background(), srv.URL+"/missing.csv", p)
	assert.ErrorIs(t, err, ErrURLNotFound)
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownload_ServerError(t *testing.T) {
	srv := newServer(t)
	err := Download(context.Background(), srv.URL+"/broken.csv", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrURLNotFound)
}

func TestDownloadTemp(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()

	p, err := DownloadTemp(context.Background(), srv.URL+"/exporters.csv?v=2", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(p))
	assert.Contains(t, filepath.Base(p), "exporters.csv")

	_, err = DownloadTemp(context.Background(), srv.URL+"/missing.csv", dir)
	assert.ErrorIs(t, err, ErrURLNotFound)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
