package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"pdfquiz"

	"github.com/gorilla/sessions"
)

// quizKey is the session key holding the play-through state for one file
func quizKey(fileID string) string {
	return "quiz:" + fileID
}

// loadQuizSession rebuilds the play-through for a file: the quiz document is
// re-fetched through the idempotent generate endpoint and the small state
// snapshot comes from the cookie session. A missing snapshot starts a fresh
// session; a snapshot that no longer fits the document is discarded.
func (s *Server) loadQuizSession(r *http.Request, sess *sessions.Session, fileID string) (*pdfquiz.QuizSession, error) {
	doc, err := s.client.GenerateQuiz(r.Context(), fileID)
	if err != nil {
		return nil, err
	}

	if state, ok := sess.Values[quizKey(fileID)].(pdfquiz.SessionState); ok {
		session, err := pdfquiz.ResumeQuizSession(doc, state)
		if err == nil {
			return session, nil
		}
		log.Printf("Discarding stale quiz state for %s: %v", fileID, err)
		delete(sess.Values, quizKey(fileID))
	}
	return pdfquiz.NewQuizSession(doc)
}

func (s *Server) handleQuizPage(w http.ResponseWriter, r *http.Request, fileID string) {
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
		s.renderError(w, http.StatusBadGateway, "Failed to load file info.")
		return
	}
	if !rec.HasQuiz {
		s.renderError(w, http.StatusConflict, "No quiz available for this file.")
		return
	}

	session, err := s.loadQuizSession(r, sess, fileID)
	if err != nil {
		s.renderQuizLoadError(w, fileID, err)
		return
	}

	sess.Values[quizKey(fileID)] = session.Snapshot()
	if err := sess.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	s.renderQuiz(w, fileID, session)
}

// handleQuizAction applies one transition (answer, next, restart) and
// redirects back to the quiz page
func (s *Server) handleQuizAction(w http.ResponseWriter, r *http.Request, fileID, action string) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sess, _ := s.store.Get(r, "pdfquiz-session")
	session, err := s.loadQuizSession(r, sess, fileID)
	if err != nil {
		s.renderQuizLoadError(w, fileID, err)
		return
	}

	switch action {
	case "answer":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		optionID, err := strconv.Atoi(r.FormValue("option_id"))
		if err != nil {
			http.Error(w, "Invalid option", http.StatusBadRequest)
			return
		}
		err = session.SelectOption(optionID)
		if errors.Is(err, pdfquiz.ErrUnknownOption) {
			http.Error(w, "Invalid option", http.StatusBadRequest)
			return
		}
		// a repeated answer for the same question is ignored, the first
		// choice is binding

	case "next":
		// advancing before an answer is revealed is ignored
		session.Advance()

	case "restart":
		session.Restart()

	default:
		http.NotFound(w, r)
		return
	}

	sess.Values[quizKey(fileID)] = session.Snapshot()
	if err := sess.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/file/"+fileID+"/quiz", http.StatusSeeOther)
}

// renderQuiz shows the quiz page for whichever phase the session is in
func (s *Server) renderQuiz(w http.ResponseWriter, fileID string, session *pdfquiz.QuizSession) {
	data := map[string]interface{}{
		"FileID":   fileID,
		"Title":    session.Title(),
		"Phase":    session.Phase(),
		"Score":    session.Score(),
		"Total":    session.Total(),
		"Finished": session.Finished(),
	}

	if session.Finished() {
		data["Rating"] = ratingBand(session.Score(), session.Total())
	} else {
		question := session.CurrentQuestion()
		data["Question"] = question
		data["Number"] = session.CurrentIndex() + 1
		data["Revealed"] = session.Phase() == pdfquiz.PhaseRevealed
		data["IsCorrect"] = session.IsCorrect()
		data["CorrectOption"] = session.CorrectOption()
		if selected, ok := session.SelectedOption(); ok {
			data["SelectedID"] = selected.OptionID
		} else {
			data["SelectedID"] = -1
		}
	}

	s.render(w, "quiz", data)
}

// renderQuizLoadError distinguishes unusable quiz content from transport
// failures so the user knows whether the content or the connection is at
// fault
func (s *Server) renderQuizLoadError(w http.ResponseWriter, fileID string, err error) {
	log.Printf("Failed to load quiz for %s: %v", fileID, err)

	var dataErr *pdfquiz.DataError
	if errors.As(err, &dataErr) {
		s.renderError(w, http.StatusUnprocessableEntity, "This file's quiz is unusable: "+dataErr.Reason+".")
		return
	}
	s.renderError(w, http.StatusBadGateway, "Failed to load quiz.")
}

// ratingBand mirrors the completion banner thresholds of the quiz UI
func ratingBand(score, total int) string {
	switch {
	case score == total:
		return "Perfect Score!"
	case score*5 >= total*4:
		return "Excellent!"
	case score*5 >= total*3:
		return "Good effort!"
	default:
		return "Keep practicing!"
	}
}
