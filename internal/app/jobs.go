package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tys-adventure/nsc-carbon-footprint-calculator/internal/logging"
)

type JobEventType string

const (
	JobEventStatus JobEventType = "status"
	JobEventResult JobEventType = "result"
)

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For the final result
	Outcome *Outcome `json:"outcome,omitempty"`
}

// Job is one background measurement run.
type Job struct {
	ID            string        `json:"id"`
	URL           string        `json:"url"`
	PreferBrowser bool          `json:"prefer_browser"`
	Status        JobStatus     `json:"status"`
	Error         string        `json:"error,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       time.Time     `json:"ended_at"`
	Outcome       *Outcome      `json:"outcome,omitempty"`
	Events        chan JobEvent `json:"-"`
}

func (o *Orchestrator) ensureJobMaps() {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if o.jobs == nil {
		o.jobs = make(map[string]*Job)
	}
	if o.jobCancels == nil {
		o.jobCancels = make(map[string]context.CancelFunc)
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

// StartMeasureJob begins measuring rawURL in the background and returns the
// pending job. The job outlives the caller's context; use CancelJob to stop
// it.
func (o *Orchestrator) StartMeasureJob(rawURL string, preferBrowser bool) (*Job, error) {
	o.ensureJobMaps()

	jobID := uuid.New().String()
	now := time.Now().UTC()

	job := &Job{
		ID:            jobID,
		URL:           rawURL,
		PreferBrowser: preferBrowser,
		Status:        JobPending,
		StartedAt:     now,
		Events:        make(chan JobEvent, 16),
	}

	o.jobsMu.Lock()
	o.jobs[jobID] = job
	jobCtx, cancel := context.WithCancel(context.Background())
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go o.runJob(jobCtx, jobID, rawURL, preferBrowser)

	return o.snapshotJob(jobID), nil
}

func (o *Orchestrator) runJob(ctx context.Context, jobID, rawURL string, preferBrowser bool) {
	defer func() {
		o.jobsMu.Lock()
		job := o.jobs[jobID]
		if job != nil {
			job.EndedAt = time.Now().UTC()
		}
		delete(o.jobCancels, jobID)
		o.jobsMu.Unlock()

		// Close events channel so websocket loops terminate cleanly.
		if job != nil && job.Events != nil {
			close(job.Events)
		}
	}()

	o.setJobStatus(jobID, JobRunning, "")
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	outcome, err := o.Run(ctx, rawURL, preferBrowser)
	if err != nil {
		status := JobFailed
		if ctx.Err() != nil {
			status = JobCanceled
		}
		o.setJobStatus(jobID, status, err.Error())
		o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: status, Error: err.Error()})
		o.logger.Error("measurement job failed",
			logging.Field{Key: "job_id", Value: jobID},
			logging.Field{Key: "url", Value: rawURL},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	o.jobsMu.Lock()
	if job := o.jobs[jobID]; job != nil {
		job.Status = JobDone
		job.Outcome = outcome
	}
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventResult, Status: JobDone, Outcome: outcome})
}

func (o *Orchestrator) setJobStatus(jobID string, status JobStatus, errMsg string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if job := o.jobs[jobID]; job != nil {
		job.Status = status
		job.Error = errMsg
	}
}

// snapshotJob returns a copy of the job safe to read without the lock.
// The Events channel is shared; everything else is copied.
func (o *Orchestrator) snapshotJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	job, ok := o.jobs[jobID]
	if !ok || job == nil {
		return nil
	}
	cp := *job
	return &cp
}

// GetJob returns a snapshot of the job, or nil when unknown.
func (o *Orchestrator) GetJob(jobID string) *Job {
	return o.snapshotJob(jobID)
}

// JobEvents exposes the job's event channel for streaming consumers, or nil
// when the job is unknown.
func (o *Orchestrator) JobEvents(jobID string) <-chan JobEvent {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if job := o.jobs[jobID]; job != nil {
		return job.Events
	}
	return nil
}

// ListJobs returns snapshots of all known jobs, newest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	out := make([]*Job, 0, len(o.jobs))
	for _, job := range o.jobs {
		cp := *job
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// CancelJob stops a running job. It reports whether a cancelable job existed.
func (o *Orchestrator) CancelJob(jobID string) bool {
	o.jobsMu.Lock()
	cancel, ok := o.jobCancels[jobID]
	o.jobsMu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

// Shutdown cancels every in-flight job.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.jobsMu.Lock()
	cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
	for _, c := range o.jobCancels {
		cancels = append(cancels, c)
	}
	o.jobsMu.Unlock()

	for _, c := range cancels {
		c()
	}
	return nil
}
