package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/eternals/internal/admission"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single uploaded admission list.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Options  admission.Options `json:"options"`
	Progress Progress          `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *admission.Result
	pages    int
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	Pages    int      `json:"pages"`
	Lines    int      `json:"lines"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Buffered int      `json:"buffered"`
	Errors   []string `json:"errors"`
}

// NewJob creates a queued job for an upload.
func NewJob(filename string, data []byte, opts admission.Options) *Job {
	now := time.Now()
	return &Job{
		ID:          generateULID(),
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		Options:     opts,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetDocument records the extracted page and line counts.
func (j *Job) SetDocument(title string, pages, lines int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Title == "" {
		j.Title = title
	}
	j.pages = pages
	j.Progress.Pages = pages
	j.Progress.Lines = lines
	j.UpdatedAt = time.Now()
}

// SetResult stores the parse result and copies its counters into progress.
// The file bytes are released once a result exists.
func (j *Job) SetResult(res *admission.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.fileData = nil
	j.Progress.Accepted = res.Stats.Accepted
	j.Progress.Rejected = res.Stats.Rejected
	j.Progress.Buffered = res.Stats.Buffered
	j.UpdatedAt = time.Now()
}

// Result returns the parse result, or nil while the job is unfinished.
func (j *Job) Result() *admission.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Pages returns the number of non-empty pages extracted.
func (j *Job) Pages() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pages
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	Phase       string            `json:"phase"`
	Filename    string            `json:"filename"`
	Title       string            `json:"title"`
	Options     admission.Options `json:"options"`
	Progress    Progress          `json:"progress"`
	ContentHash string            `json:"content_hash,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		Options:     j.Options,
		Progress:    p,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
