package pdfquiz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client talks to the quiz service backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ListFiles fetches all processed files.
func (c *Client) ListFiles(ctx context.Context) ([]FileRecord, error) {
	var out struct {
		Files []FileRecord `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/list-files", nil, "", &out); err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return out.Files, nil
}

// GetFileInfo fetches the current server-side status of a file. It carries
// no local state; merging with a previously seen record is the caller's job
// (see MergeRecord).
func (c *Client) GetFileInfo(ctx context.Context, fileID string) (*FileRecord, error) {
	var rec FileRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/file-info/"+fileID, nil, "", &rec); err != nil {
		return nil, fmt.Errorf("failed to get file info for %s: %w", fileID, err)
	}
	return &rec, nil
}

// UploadPDF uploads a PDF payload and returns the assigned file id. The
// payload is sniffed locally first; anything that is not a PDF is rejected
// with ErrNotPDF before any request is made.
func (c *Client) UploadPDF(ctx context.Context, filename string, payload []byte) (string, error) {
	if http.DetectContentType(payload) != "application/pdf" {
		return "", fmt.Errorf("upload %s: %w", filename, ErrNotPDF)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}

	var out struct {
		FileID string `json:"file_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/upload-pdf", body, writer.FormDataContentType(), &out); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	VerboseLog("Uploaded %s as file %s (%d bytes)", filename, out.FileID, len(payload))
	return out.FileID, nil
}

// GenerateSummary asks the backend for the file's summary in Markdown. The
// endpoint is idempotent: an already generated summary is returned as-is.
func (c *Client) GenerateSummary(ctx context.Context, fileID string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate-summary/"+fileID, nil, "", &out); err != nil {
		return "", fmt.Errorf("failed to generate summary for %s: %w", fileID, err)
	}
	return out.Summary, nil
}

// GenerateQuiz asks the backend for the file's quiz. The endpoint is
// idempotent. The returned document is validated before being handed back:
// a quiz that cannot be played surfaces as a DataError, never as "no quiz".
func (c *Client) GenerateQuiz(ctx context.Context, fileID string) (*QuizDocument, error) {
	var out struct {
		Quiz QuizDocument `json:"quiz"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/generate-quiz/"+fileID, nil, "", &out); err != nil {
		return nil, fmt.Errorf("failed to generate quiz for %s: %w", fileID, err)
	}
	if err := out.Quiz.Validate(); err != nil {
		return nil, err
	}
	return &out.Quiz, nil
}

// DownloadArtifact fetches the raw content of a generated artifact.
func (c *Client) DownloadArtifact(ctx context.Context, kind ArtifactKind, fileID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(kind, fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s for %s: %w", kind, fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s for %s: %w", kind, fileID, err)
	}
	return content, nil
}

// DownloadURL returns the browser-facing URL for an artifact download.
func (c *Client) DownloadURL(kind ArtifactKind, fileID string) string {
	return fmt.Sprintf("%s/api/download/%s/%s", c.baseURL, kind, fileID)
}

// doJSON performs a request against the backend and decodes a JSON response
// into out. Non-2xx responses are converted via decodeAPIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	VerboseLog("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError converts a non-2xx response into an error, preferring the
// backend's {"error": "..."} message over the bare status line.
func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
