package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/eternals/internal/admission"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting text"},
		{StatusParsing, "parsing lines"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusParsing,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "extraction error")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("page 3 unreadable")
	job.AddError("no extractable text")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "page 3 unreadable" {
		t.Errorf("expected first error %q, got %q", "page 3 unreadable", snap.Progress.Errors[0])
	}
}

func TestJob_SetDocument(t *testing.T) {
	job := &Job{ID: "doc-test", UpdatedAt: time.Now()}
	job.SetDocument("allotment", 3, 120)

	snap := job.Snapshot()
	if snap.Progress.Pages != 3 || snap.Progress.Lines != 120 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if snap.Title != "allotment" || job.Pages() != 3 {
		t.Errorf("unexpected title or pages: %q %d", snap.Title, job.Pages())
	}

	job.SetDocument("other", 1, 1)
	if job.Snapshot().Title != "allotment" {
		t.Error("expected first title to stick")
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("list.txt", []byte("data"), admission.Options{})
	if job.Result() != nil {
		t.Fatal("expected no result before parsing")
	}
	res := &admission.Result{
		Table: &admission.Table{},
		Stats: admission.Stats{Accepted: 4, Rejected: 2, Buffered: 1},
	}
	job.SetResult(res)

	if job.Result() != res {
		t.Error("expected stored result")
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
	p := job.Snapshot().Progress
	if p.Accepted != 4 || p.Rejected != 2 || p.Buffered != 1 {
		t.Errorf("unexpected progress %+v", p)
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("a.pdf", []byte("hello world"), admission.Options{Mode: admission.ModePositional})
	b := NewJob("b.pdf", []byte("hello world"), admission.Options{})
	if a.ID == b.ID {
		t.Error("expected distinct job IDs")
	}
	if len(a.ID) != 26 {
		t.Errorf("expected 26-character ID, got %q", a.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected queued, got %q", a.Status)
	}
	if a.ContentHash != b.ContentHash {
		t.Error("expected identical content to share a hash")
	}
	if a.Snapshot().Options.Mode != admission.ModePositional {
		t.Error("expected options in snapshot")
	}
}

func TestGenerateULID_Sortable(t *testing.T) {
	prev := generateULID()
	for range 100 {
		id := generateULID()
		if id <= prev {
			t.Fatalf("expected increasing IDs, got %q after %q", id, prev)
		}
		prev = id
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
