package pdfquiz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/list-files", r.URL.Path)
		fmt.Fprint(w, `{"files": [
			{"file_id": "f1", "filename": "a.pdf", "content_length": 100, "has_summary": true, "has_quiz": false},
			{"file_id": "f2", "filename": "b.pdf", "content_length": 200, "has_summary": false, "has_quiz": true}
		]}`)
	}))
	defer backend.Close()

	files, err := NewClient(backend.URL).ListFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Filename)
	assert.True(t, files[0].HasSummary)
	assert.Equal(t, int64(200), files[1].ContentLength)
	assert.True(t, files[1].HasQuiz)
}

func TestGetFileInfo(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/file-info/f1", r.URL.Path)
		fmt.Fprint(w, `{"file_id": "f1", "filename": "a.pdf", "content_length": 100, "has_summary": false, "has_quiz": false}`)
	}))
	defer backend.Close()

	rec, err := NewClient(backend.URL).GetFileInfo(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", rec.FileID)
	assert.Equal(t, "a.pdf", rec.Filename)
}

func TestGetFileInfoNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "no such file"}`)
	}))
	defer backend.Close()

	_, err := NewClient(backend.URL).GetFileInfo(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "no such file")
}

func TestUploadPDF(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/upload-pdf", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "doc.pdf", header.Filename)

		fmt.Fprint(w, `{"file_id": "f9"}`)
	}))
	defer backend.Close()

	payload := []byte("%PDF-1.7 fake body")
	fileID, err := NewClient(backend.URL).UploadPDF(context.Background(), "doc.pdf", payload)
	require.NoError(t, err)
	assert.Equal(t, "f9", fileID)
}

func TestUploadRejectsNonPDFLocally(t *testing.T) {
	var calls int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer backend.Close()

	_, err := NewClient(backend.URL).UploadPDF(context.Background(), "notes.txt", []byte("plain text, not a pdf"))
	require.ErrorIs(t, err, ErrNotPDF)

	// rejected before any network call
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestGenerateSummary(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate-summary/f1", r.URL.Path)
		fmt.Fprint(w, `{"summary": "## Key points"}`)
	}))
	defer backend.Close()

	summary, err := NewClient(backend.URL).GenerateSummary(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "## Key points", summary)
}

func TestGenerateQuizValidatesDocument(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quiz": {"quiz_title": "T", "questions": []}}`)
	}))
	defer backend.Close()

	// an empty quiz from the backend is a data error, not "no quiz"
	_, err := NewClient(backend.URL).GenerateQuiz(context.Background(), "f1")
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
}

func TestBackendErrorMessageSurfaces(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"error": "model overloaded"}`)
	}))
	defer backend.Close()

	_, err := NewClient(backend.URL).GenerateSummary(context.Background(), "f1")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "model overloaded", apiErr.Message)
}

func TestDownloadArtifact(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/download/summary/f1", r.URL.Path)
		fmt.Fprint(w, "raw summary bytes")
	}))
	defer backend.Close()

	content, err := NewClient(backend.URL).DownloadArtifact(context.Background(), ArtifactSummary, "f1")
	require.NoError(t, err)
	assert.Equal(t, "raw summary bytes", string(content))
}

func TestDownloadURL(t *testing.T) {
	c := NewClient("http://backend:5001/")
	assert.Equal(t, "http://backend:5001/api/download/quiz/f1", c.DownloadURL(ArtifactQuiz, "f1"))
}
