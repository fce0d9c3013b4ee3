package pdfquiz

import (
	"context"
	"fmt"
	"sync"
)

// GenerationResult carries whichever artifact a trigger produced.
type GenerationResult struct {
	Summary string
	Quiz    *QuizDocument
}

// GenerationController mediates the transition from "artifact absent" to
// "artifact present" for summaries and quizzes. It allows at most one
// outstanding generation request per (file, artifact kind) pair, and it is
// the only place the ready flags on a FileRecord get set.
type GenerationController struct {
	client *Client

	mu       sync.Mutex
	inflight map[triggerKey]bool
	errored  map[triggerKey]bool
}

type triggerKey struct {
	fileID string
	kind   ArtifactKind
}

// NewGenerationController creates a controller backed by the given client
func NewGenerationController(client *Client) *GenerationController {
	return &GenerationController{
		client:   client,
		inflight: make(map[triggerKey]bool),
		errored:  make(map[triggerKey]bool),
	}
}

// Status reports the controller's view of one artifact: pending while a
// request is outstanding, errored after a failed attempt until the next
// retry, unknown otherwise.
func (gc *GenerationController) Status(fileID string, kind ArtifactKind) ArtifactStatus {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	key := triggerKey{fileID: fileID, kind: kind}
	switch {
	case gc.inflight[key]:
		return StatusPending
	case gc.errored[key]:
		return StatusErrored
	default:
		return StatusUnknown
	}
}

// Trigger requests generation of the given artifact for rec's file. A second
// call for the same (file, kind) while one is outstanding is rejected with
// ErrGenerationInFlight so exactly one backend request is made; the caller
// is always told a request was already running, never silently dropped.
//
// On success the returned record has the artifact's ready flag set and the
// result holds the generated content. On failure the record comes back
// unchanged and a later Trigger may retry; failure is not sticky.
func (gc *GenerationController) Trigger(ctx context.Context, rec FileRecord, kind ArtifactKind) (FileRecord, *GenerationResult, error) {
	key := triggerKey{fileID: rec.FileID, kind: kind}

	gc.mu.Lock()
	if gc.inflight[key] {
		gc.mu.Unlock()
		return rec, nil, fmt.Errorf("%s for file %s: %w", kind, rec.FileID, ErrGenerationInFlight)
	}
	gc.inflight[key] = true
	delete(gc.errored, key)
	gc.mu.Unlock()

	defer func() {
		gc.mu.Lock()
		delete(gc.inflight, key)
		gc.mu.Unlock()
	}()

	result := &GenerationResult{}
	var err error
	switch kind {
	case ArtifactSummary:
		result.Summary, err = gc.client.GenerateSummary(ctx, rec.FileID)
	case ArtifactQuiz:
		result.Quiz, err = gc.client.GenerateQuiz(ctx, rec.FileID)
	default:
		err = fmt.Errorf("unknown artifact kind: %s", kind)
	}
	if err != nil {
		gc.mu.Lock()
		gc.errored[key] = true
		gc.mu.Unlock()
		return rec, nil, err
	}

	switch kind {
	case ArtifactSummary:
		rec = MarkSummaryReady(rec)
	case ArtifactQuiz:
		rec = MarkQuizReady(rec)
	}
	VerboseLog("Generated %s for file %s", kind, rec.FileID)
	return rec, result, nil
}
