package main

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"pdfquiz"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
)

type Server struct {
	client     *pdfquiz.Client
	controller *pdfquiz.GenerationController
	store      *sessions.CookieStore
	templates  map[string]*template.Template
}

func init() {
	gob.Register(pdfquiz.FileRecord{})
	gob.Register(pdfquiz.SessionState{})
}

func main() {
	pdfquiz.SetVerbose(true)

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	apiURL := os.Getenv("QUIZ_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5001"
	}

	sessionKey := os.Getenv("SESSION_KEY")
	if sessionKey == "" {
		sessionKey = "dev-only-session-key"
		log.Printf("SESSION_KEY not set, using a development key")
	}
	store := sessions.NewCookieStore([]byte(sessionKey))

	// Load templates with custom functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"pct": func(part, total int) int {
			if total == 0 {
				return 0
			}
			return part * 100 / total
		},
		"kb": func(n int64) string {
			return fmt.Sprintf("%.1f KB", float64(n)/1024)
		},
		"printf": fmt.Sprintf,
	}

	// Create template map, each page parsed together with base.html
	templates := make(map[string]*template.Template)

	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"upload", "templates/upload.html"},
		{"file", "templates/file.html"},
		{"quiz", "templates/quiz.html"},
		{"error", "templates/error.html"},
	}

	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	server := &Server{
		client:     pdfquiz.NewClient(apiURL),
		controller: pdfquiz.NewGenerationController(pdfquiz.NewClient(apiURL)),
		store:      store,
		templates:  templates,
	}

	// Setup routes
	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/upload", server.handleUpload)
	http.HandleFunc("/file/", server.handleFile)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting web client on port %s (backend %s)", port, apiURL)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// render executes a page template over base.html, logging template failures
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	err := s.templates[name].ExecuteTemplate(w, "base.html", data)
	if err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// renderError shows a standalone error page with a user-facing message
func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	s.render(w, "error", map[string]interface{}{
		"Message": message,
	})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	files, err := s.client.ListFiles(r.Context())
	if err != nil {
		log.Printf("Failed to list files: %v", err)
		s.renderError(w, http.StatusBadGateway, "Failed to fetch files")
		return
	}

	s.render(w, "home", map[string]interface{}{
		"Files": files,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		s.render(w, "upload", nil)
		return
	}

	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.render(w, "upload", map[string]interface{}{"Error": "Please select a PDF file."})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.render(w, "upload", map[string]interface{}{"Error": "Please select a PDF file."})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		s.render(w, "upload", map[string]interface{}{"Error": "Failed to read the selected file."})
		return
	}

	fileID, err := s.client.UploadPDF(r.Context(), header.Filename, payload)
	if err != nil {
		if errors.Is(err, pdfquiz.ErrNotPDF) {
			s.render(w, "upload", map[string]interface{}{"Error": "Only PDF files are allowed."})
			return
		}
		log.Printf("Upload failed: %v", err)
		s.render(w, "upload", map[string]interface{}{"Error": "Upload failed."})
		return
	}

	http.Redirect(w, r, "/file/"+fileID, http.StatusSeeOther)
}

// handleFile dispatches all per-file routes
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/file/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	fileID := parts[0]

	if len(parts) == 1 {
		// /file/{id} - detail page
		s.handleFileDetail(w, r, fileID)
		return
	}

	if len(parts) == 3 && parts[1] == "generate" {
		// /file/{id}/generate/{kind} - trigger generation
		s.handleGenerate(w, r, fileID, pdfquiz.ArtifactKind(parts[2]))
		return
	}

	if len(parts) == 2 && parts[1] == "quiz" {
		// /file/{id}/quiz - quiz play page
		s.handleQuizPage(w, r, fileID)
		return
	}

	if len(parts) == 3 && parts[1] == "quiz" {
		// /file/{id}/quiz/{action} - quiz transitions
		s.handleQuizAction(w, r, fileID, parts[2])
		return
	}

	http.NotFound(w, r)
}

// fileKey is the session key holding the last seen record for one file
func fileKey(fileID string) string {
	return "file:" + fileID
}

// loadFileRecord fetches the file's current status and merges it with the
// record remembered in the session, so that a stale response can never
// regress a ready flag the session has already seen.
func (s *Server) loadFileRecord(ctx context.Context, sess *sessions.Session, fileID string) (pdfquiz.FileRecord, error) {
	rec, err := s.client.GetFileInfo(ctx, fileID)
	if err != nil {
		return pdfquiz.FileRecord{}, err
	}

	merged := *rec
	if prev, ok := sess.Values[fileKey(fileID)].(pdfquiz.FileRecord); ok {
		merged = pdfquiz.MergeRecord(prev, *rec)
	}
	sess.Values[fileKey(fileID)] = merged
	return merged, nil
}

// artifactStatus combines the server-reported ready flag with the
// controller's in-flight view for display
func (s *Server) artifactStatus(rec pdfquiz.FileRecord, kind pdfquiz.ArtifactKind) pdfquiz.ArtifactStatus {
	status := s.controller.Status(rec.FileID, kind)
	ready := rec.HasSummary
	if kind == pdfquiz.ArtifactQuiz {
		ready = rec.HasQuiz
	}
	if ready {
		status = pdfquiz.MergeStatus(status, pdfquiz.StatusReady)
	}
	return status
}

func (s *Server) handleFileDetail(w http.ResponseWriter, r *http.Request, fileID string) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, _ := s.store.Get(r, "pdfquiz-session")
	rec, err := s.loadFileRecord(r.Context(), sess, fileID)
	if err != nil {
		if errors.Is(err, pdfquiz.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "File not found.")
			return
		}
		log.Printf("Failed to load file %s: %v", fileID, err)
		s.renderError(w, http.StatusBadGateway, "Failed to fetch file info.")
		return
	}

	// An existing summary is fetched for display through the idempotent
	// generate endpoint.
	var summary string
	if rec.HasSummary {
		summary, err = s.client.GenerateSummary(r.Context(), fileID)
		if err != nil {
			log.Printf("Failed to fetch summary for %s: %v", fileID, err)
		}
	}

	notices := sess.Flashes()
	if err := sess.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	s.render(w, "file", map[string]interface{}{
		"File":          rec,
		"Summary":       summary,
		"SummaryStatus": s.artifactStatus(rec, pdfquiz.ArtifactSummary),
		"QuizStatus":    s.artifactStatus(rec, pdfquiz.ArtifactQuiz),
		"SummaryURL":    s.client.DownloadURL(pdfquiz.ArtifactSummary, fileID),
		"QuizURL":       s.client.DownloadURL(pdfquiz.ArtifactQuiz, fileID),
		"Notices":       notices,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, fileID string, kind pdfquiz.ArtifactKind) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if kind != pdfquiz.ArtifactSummary && kind != pdfquiz.ArtifactQuiz {
		http.NotFound(w, r)
		return
	}

	sess, _ := s.store.Get(r, "pdfquiz-session")
	rec, err := s.loadFileRecord(r.Context(), sess, fileID)
	if err != nil {
		if errors.Is(err, pdfquiz.ErrNotFound) {
			s.renderError(w, http.StatusNotFound, "File not found.")
			return
		}
		log.Printf("Failed to load file %s: %v", fileID, err)
		s.renderError(w, http.StatusBadGateway, "Failed to fetch file info.")
		return
	}

	updated, _, err := s.controller.Trigger(r.Context(), rec, kind)
	switch {
	case errors.Is(err, pdfquiz.ErrGenerationInFlight):
		sess.AddFlash(fmt.Sprintf("A %s generation is already running for this file.", kind))
	case err != nil:
		log.Printf("Failed to generate %s for %s: %v", kind, fileID, err)
		var dataErr *pdfquiz.DataError
		if errors.As(err, &dataErr) {
			sess.AddFlash(fmt.Sprintf("The generated %s is unusable: %s.", kind, dataErr.Reason))
		} else {
			sess.AddFlash(fmt.Sprintf("Failed to generate %s. Try again.", kind))
		}
	default:
		sess.Values[fileKey(fileID)] = updated
	}

	if err := sess.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/file/"+fileID, http.StatusSeeOther)
}
