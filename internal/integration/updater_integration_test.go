package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brave-tools/brave-updater/internal/config"
	"github.com/brave-tools/brave-updater/internal/repository/marker"
	"github.com/brave-tools/brave-updater/internal/service/updater"
)

// TestUpdater_Run_EndToEnd drives a full update against an HTTP server
// mimicking both the GitHub catalog and the asset host, then verifies the
// second run takes the no-op path without re-downloading.
//
//nolint:funlen // Integration test requires comprehensive setup and verification.
func TestUpdater_Run_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "brave")

	// Assemble the release archive served as the download asset.
	var archive bytes.Buffer

	zw := zip.NewWriter(&archive)

	header := &zip.FileHeader{Name: "brave/brave", Method: zip.Deflate}
	header.SetMode(0o755)

	w, err := zw.CreateHeader(header)
	require.NoError(t, err)
	_, err = w.Write([]byte("#!/bin/sh\necho brave\n"))
	require.NoError(t, err)

	w, err = zw.Create("brave/README.md")
	require.NoError(t, err)
	_, err = w.Write([]byte("browser payload"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	// One server plays catalog and asset host; downloads are counted to
	// prove the no-op path never fetches the archive.
	var downloads atomic.Int32

	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	assetName := "brave-v1.63.162-linux-amd64.zip"

	mux.HandleFunc("/repos/brave/brave-browser/releases",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `[
				{"id": 1, "name": "Nightly v1.64.0", "assets": [
					{"id": 10, "name": %q, "browser_download_url": "%s/download/%s"}
				]},
				{"id": 2, "name": "Release v1.63.162 ", "assets": [
					{"id": 20, "name": "brave-v1.63.162-darwin-arm64.dmg", "browser_download_url": "%s/download/other"},
					{"id": 21, "name": %q, "browser_download_url": "%s/download/%s"}
				]}
			]`, assetName, ts.URL, assetName, ts.URL, assetName, ts.URL, assetName)
		})

	mux.HandleFunc("/download/"+assetName,
		func(w http.ResponseWriter, _ *http.Request) {
			downloads.Add(1)
			_, _ = w.Write(archive.Bytes())
		})

	// Configuration file pointing the catalog client at the test server.
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		Owner:      "brave",
		Repo:       "brave-browser",
		Target:     target,
		Suffix:     "-linux-amd64.zip",
		APIBaseURL: ts.URL,
	}

	require.NoError(t, config.Save(cfgPath, cfg))

	options := &updater.Options{ConfigPath: cfgPath}

	// First run: nothing installed, full upgrade.
	require.NoError(t, updater.Run(context.Background(), options))
	require.Equal(t, int32(1), downloads.Load())

	// The nightly entry is listed first but is skipped by the name prefix
	// filter despite carrying a matching asset; the marker carries the
	// trimmed name of the first qualifying release.
	contents, err := os.ReadFile(filepath.Join(target, marker.Filename))
	require.NoError(t, err)
	require.Equal(t, "Release v1.63.162", string(contents))

	payload, err := os.ReadFile(filepath.Join(target, "brave", "README.md"))
	require.NoError(t, err)
	require.Equal(t, "browser payload", string(payload))

	// No staging directory remains after promotion.
	_, err = os.Stat(target + ".new")
	require.ErrorIs(t, err, os.ErrNotExist)

	// Second run: same catalog state, no-op, no additional download.
	require.NoError(t, updater.Run(context.Background(), options))
	require.Equal(t, int32(1), downloads.Load())
}

// TestUpdater_Run_NoReleaseFound ensures an exhausted catalog page fails the run.
func TestUpdater_Run_NoReleaseFound(t *testing.T) {
	dir := t.TempDir()

	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	defer ts.Close()

	mux.HandleFunc("/repos/brave/brave-browser/releases",
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": 1, "name": "Nightly build", "assets": []}]`))
		})

	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		Owner:      "brave",
		Repo:       "brave-browser",
		Target:     filepath.Join(dir, "brave"),
		Suffix:     "-linux-amd64.zip",
		APIBaseURL: ts.URL,
	}

	require.NoError(t, config.Save(cfgPath, cfg))

	err := updater.Run(context.Background(), &updater.Options{ConfigPath: cfgPath})
	require.Error(t, err)
}
