package pdfquiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeRecordFlagsOnlyMoveForward(t *testing.T) {
	fresh := FileRecord{FileID: "f1", Filename: "doc.pdf", ContentLength: 1024, HasSummary: true, HasQuiz: false}
	stale := FileRecord{FileID: "f1", Filename: "doc.pdf", ContentLength: 1024, HasSummary: false, HasQuiz: false}

	// a stale fetch arriving after a fresh one must not regress the flag
	merged := MergeRecord(fresh, stale)
	assert.True(t, merged.HasSummary)
	assert.False(t, merged.HasQuiz)
}

func TestMergeRecordTakesNewFlags(t *testing.T) {
	prev := FileRecord{FileID: "f1", HasSummary: true}
	next := FileRecord{FileID: "f1", Filename: "renamed.pdf", ContentLength: 2048, HasQuiz: true}

	merged := MergeRecord(prev, next)
	assert.True(t, merged.HasSummary)
	assert.True(t, merged.HasQuiz)
	assert.Equal(t, "renamed.pdf", merged.Filename)
	assert.Equal(t, int64(2048), merged.ContentLength)
}

func TestMergeRecordDifferentFiles(t *testing.T) {
	prev := FileRecord{FileID: "f1", HasSummary: true, HasQuiz: true}
	next := FileRecord{FileID: "f2"}

	// flags never leak across files
	merged := MergeRecord(prev, next)
	assert.Equal(t, "f2", merged.FileID)
	assert.False(t, merged.HasSummary)
	assert.False(t, merged.HasQuiz)
}

func TestMergeStatus(t *testing.T) {
	assert.Equal(t, StatusReady, MergeStatus(StatusReady, StatusUnknown))
	assert.Equal(t, StatusReady, MergeStatus(StatusReady, StatusErrored))
	assert.Equal(t, StatusPending, MergeStatus(StatusPending, StatusUnknown))
	assert.Equal(t, StatusErrored, MergeStatus(StatusPending, StatusErrored))
	assert.Equal(t, StatusPending, MergeStatus(StatusErrored, StatusPending))
	assert.Equal(t, StatusReady, MergeStatus(StatusUnknown, StatusReady))
}

func TestMarkReadyIdempotent(t *testing.T) {
	rec := FileRecord{FileID: "f1"}

	once := MarkSummaryReady(rec)
	twice := MarkSummaryReady(once)
	assert.True(t, once.HasSummary)
	assert.Equal(t, once, twice)

	// the original record is untouched
	assert.False(t, rec.HasSummary)

	quizzed := MarkQuizReady(MarkQuizReady(rec))
	assert.True(t, quizzed.HasQuiz)
	assert.False(t, quizzed.HasSummary)
}
