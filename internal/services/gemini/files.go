package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reelscript/internal/textutil"
)

// File processing states reported by the Files API.
const (
	StateProcessing = "PROCESSING"
	StateActive     = "ACTIVE"
	StateFailed     = "FAILED"
)

// File describes an uploaded media file.
type File struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	MIMEType  string `json:"mimeType"`
	State     string `json:"state"`
	SizeBytes string `json:"sizeBytes"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Ready reports whether the file can be referenced in a generate request.
func (f File) Ready() bool { return f.State == StateActive }

// Failed reports whether server-side processing gave up on the file.
func (f File) Failed() bool { return f.State == StateFailed }

// UploadFile sends a local file with the resumable upload protocol.
func (c *Client) UploadFile(ctx context.Context, path, mimeType string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("gemini upload: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return File{}, fmt.Errorf("gemini upload: %s is empty", path)
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	var uploaded File
	err = c.withRetry(ctx, "upload", func() error {
		uploadURL, err := c.startUpload(ctx, textutil.SanitizeFileName(filepath.Base(path)), mimeType, len(data))
		if err != nil {
			return err
		}
		uploaded, err = c.finishUpload(ctx, uploadURL, data)
		return err
	})
	if err != nil {
		return File{}, err
	}
	return uploaded, nil
}

func (c *Client) startUpload(ctx context.Context, displayName, mimeType string, size int) (string, error) {
	meta, err := json.Marshal(map[string]any{"file": map[string]string{"display_name": displayName}})
	if err != nil {
		return "", fmt.Errorf("gemini upload: encode metadata: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("upload", apiVersion, "files"), bytes.NewReader(meta))
	if err != nil {
		return "", fmt.Errorf("gemini upload: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(size))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)
	_, header, err := c.do(req, "upload start")
	if err != nil {
		return "", err
	}
	uploadURL := strings.TrimSpace(header.Get("X-Goog-Upload-URL"))
	if uploadURL == "" {
		return "", errors.New("gemini upload: response missing upload url")
	}
	return uploadURL, nil
}

func (c *Client) finishUpload(ctx context.Context, uploadURL string, data []byte) (File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("gemini upload: new request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	body, _, err := c.do(req, "upload finalize")
	if err != nil {
		return File{}, err
	}
	var payload struct {
		File File `json:"file"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return File{}, fmt.Errorf("gemini upload: decode response: %w", err)
	}
	if payload.File.Name == "" {
		return File{}, fmt.Errorf("gemini upload: response missing file name (%s)", summarizePayloadSnippet(string(body)))
	}
	return payload.File, nil
}

// GetFile returns the current metadata of an uploaded file.
func (c *Client) GetFile(ctx context.Context, name string) (File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return File{}, errors.New("gemini get file: name is required")
	}
	var file File
	err := c.withRetry(ctx, "get file", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(apiVersion, name), nil)
		if err != nil {
			return fmt.Errorf("gemini get file: new request: %w", err)
		}
		body, _, err := c.do(req, "get file")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &file); err != nil {
			return fmt.Errorf("gemini get file: decode response: %w", err)
		}
		return nil
	})
	return file, err
}

// DeleteFile removes an uploaded file. It is attempted once.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("gemini delete file: name is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(apiVersion, name), nil)
	if err != nil {
		return fmt.Errorf("gemini delete file: new request: %w", err)
	}
	_, _, err = c.do(req, "delete file")
	return err
}
