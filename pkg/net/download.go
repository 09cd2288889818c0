package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
)

var ErrURLNotFound = errors.New("URL not found")

// IsRemote reports whether src is an http(s) URL rather than a local path.
func IsRemote(src string) bool {
	s := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func getResp(ctx context.Context, url string) (*http.Response, error) {
	c, err := GetHTTPClient()
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP client: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP Get request: %w", err)
	}

	req.Header.Set("User-Agent", clientAgent)

	return c.Do(req) //nolint:gosec // URL comes from the user's own config or flags
}

// Download saves the content at url to filepath.
func Download(ctx context.Context, url string, filepath string) (retErr error) {
	resp, err := getResp(ctx, url)
	if err != nil {
		return fmt.Errorf("error downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	PrintHTTPResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrURLNotFound, url)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file (status: %d - %s): %s", resp.StatusCode, resp.Status, url)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("error creating file %s: %w", filepath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if _, err = io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("error saving downloaded content to file: %w", err)
	}

	return nil
}

// DownloadTemp downloads url into a new file under dir and returns its path.
// The caller removes the file.
func DownloadTemp(ctx context.Context, url, dir string) (string, error) {
	name := path.Base(strings.SplitN(url, "?", 2)[0])
	f, err := os.CreateTemp(dir, "*-"+name)
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}
	p := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("error closing temp file: %w", err)
	}

	if err := Download(ctx, url, p); err != nil {
		os.Remove(p)
		return "", err
	}
	return p, nil
}
