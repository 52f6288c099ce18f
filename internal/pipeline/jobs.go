package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/freteiro/internal/report"
)

// JobStatus represents the state of a report job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusReading    JobStatus = "reading"
	StatusSegmenting JobStatus = "segmenting"
	StatusPricing    JobStatus = "pricing"
	StatusExporting  JobStatus = "exporting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks one input document through reading, pricing and export.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	OutputPath  string    `json:"output_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	result   *report.Snapshot
	errors   []string
}

// Progress counts what the job has read so far.
type Progress struct {
	Pages      int      `json:"pages"`
	Blocks     int      `json:"blocks"`
	Records    int      `json:"records"`
	Unresolved int      `json:"unresolved"`
	Errors     []string `json:"errors"`
}

// NewJob returns a queued job for the given file contents.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        ContentHashHex(fmt.Appendf(nil, "%s-%d", filename, now.UnixNano()))[:20],
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry that also remembers
// which content and which output paths are already taken.
type JobStore struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	order   []string
	hashes  map[string]string
	outputs map[string]string
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs:    make(map[string]*Job),
		hashes:  make(map[string]string),
		outputs: make(map[string]string),
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; !ok {
		s.order = append(s.order, job.ID)
	}
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// All returns the jobs in submission order.
func (s *JobStore) All() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id])
	}
	return out
}

// ClaimHash records hash as belonging to jobID. If another job already
// claimed it, that job's id is returned with ok false.
func (s *JobStore) ClaimHash(hash, jobID string) (owner string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return claim(s.hashes, hash, jobID)
}

// ClaimOutput reserves an output path for jobID, with the same contract as
// ClaimHash.
func (s *JobStore) ClaimOutput(path, jobID string) (owner string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return claim(s.outputs, path, jobID)
}

func claim(m map[string]string, key, jobID string) (string, bool) {
	if existing, found := m[key]; found && existing != jobID {
		return existing, false
	}
	m[key] = jobID
	return jobID, true
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

// SetPages records how many pages the reader produced.
func (j *Job) SetPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = n
	j.UpdatedAt = time.Now()
}

// SetRecords records block, record and unresolved-region counts.
func (j *Job) SetRecords(blocks, records, unresolved int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Blocks = blocks
	j.Progress.Records = records
	j.Progress.Unresolved = unresolved
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

func (j *Job) setRead(title, hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Title = title
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

func (j *Job) setDuplicateOf(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DuplicateOf = id
	j.fileData = nil
}

func (j *Job) setResult(snap report.Snapshot, outputPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &snap
	j.OutputPath = outputPath
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the priced report, or nil if the job did not complete.
func (j *Job) Result() *report.Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	OutputPath  string    `json:"output_path,omitempty"`
	Progress    Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		DuplicateOf: j.DuplicateOf,
		OutputPath:  j.OutputPath,
		Progress:    p,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
