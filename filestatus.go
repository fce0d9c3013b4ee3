package pdfquiz

// ArtifactStatus is the client-side view of one artifact's generation state
type ArtifactStatus string

const (
	StatusUnknown ArtifactStatus = "unknown"
	StatusPending ArtifactStatus = "pending"
	StatusReady   ArtifactStatus = "ready"
	StatusErrored ArtifactStatus = "errored"
)

// MergeRecord merges a freshly fetched record into a previously seen record
// for the same file. Ready flags only move forward: a stale response
// arriving after a fresh one can never clear a flag that was already true.
// Records for different files do not merge; the fetched record wins.
func MergeRecord(prev, next FileRecord) FileRecord {
	if prev.FileID != next.FileID {
		return next
	}
	merged := next
	merged.HasSummary = merged.HasSummary || prev.HasSummary
	merged.HasQuiz = merged.HasQuiz || prev.HasQuiz
	return merged
}

// MergeStatus applies the forward-only rule to a tagged artifact status.
// Ready is terminal; an unknown observation never overwrites anything.
func MergeStatus(prev, next ArtifactStatus) ArtifactStatus {
	if prev == StatusReady {
		return StatusReady
	}
	if next == StatusUnknown {
		return prev
	}
	return next
}

// MarkSummaryReady returns a copy of the record with the summary flag set.
// Idempotent: a record that already has a summary is returned unchanged.
func MarkSummaryReady(rec FileRecord) FileRecord {
	rec.HasSummary = true
	return rec
}

// MarkQuizReady returns a copy of the record with the quiz flag set.
// Idempotent like MarkSummaryReady.
func MarkQuizReady(rec FileRecord) FileRecord {
	rec.HasQuiz = true
	return rec
}
