// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pdftools/internal/estimate"
	"github.com/pdiddy/pdftools/internal/pdfco"
	"github.com/pdiddy/pdftools/internal/pdfinfo"
	"github.com/pdiddy/pdftools/pkg/types"
)

// Polling defaults: wait n = min(defaultPollMax, defaultPollInitial + n*defaultPollStep).
const (
	defaultPollInitial = 2 * time.Second
	defaultPollStep    = 500 * time.Millisecond
	defaultPollMax     = 5 * time.Second
	defaultPollTimeout = 5 * time.Minute

	uploadName = "document.pdf"
)

// Progress milestones for the remote flow.
const (
	progressUploading  = 10
	progressSubmitting = 25
	progressPolling    = 40
	progressPollCap    = 70
	progressPollStep   = 3
	progressFinished   = 75
)

// JobAPI is the subset of the remote client the remote strategy uses.
type JobAPI interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	SubmitOptimize(ctx context.Context, fileURL string, profile estimate.Profile) (pdfco.Job, error)
	CheckJob(ctx context.Context, jobID string) (pdfco.JobState, error)
	Download(ctx context.Context, fileURL string) ([]byte, error)
}

// RemoteCompressor delegates compression to the remote optimization API:
// upload, submit, poll with growing waits, download.
type RemoteCompressor struct {
	api         JobAPI
	pollInitial time.Duration
	pollStep    time.Duration
	pollMax     time.Duration
	pollTimeout time.Duration
	logger      *zap.Logger
}

// NewRemoteCompressor creates a remote strategy. Zero polling settings in
// cfg fall back to the defaults (2s initial, +0.5s per poll, 5s cap, 5m
// overall).
func NewRemoteCompressor(api JobAPI, cfg types.RemoteConfig, logger *zap.Logger) *RemoteCompressor {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &RemoteCompressor{
		api:         api,
		pollInitial: cfg.PollInitial,
		pollStep:    cfg.PollStep,
		pollMax:     cfg.PollMax,
		pollTimeout: cfg.PollTimeout,
		logger:      logger,
	}
	if r.pollInitial <= 0 {
		r.pollInitial = defaultPollInitial
	}
	if r.pollStep <= 0 {
		r.pollStep = defaultPollStep
	}
	if r.pollMax <= 0 {
		r.pollMax = defaultPollMax
	}
	if r.pollTimeout <= 0 {
		r.pollTimeout = defaultPollTimeout
	}
	return r
}

// Name implements Compressor.
func (r *RemoteCompressor) Name() string { return string(types.StrategyRemote) }

// Compress implements Compressor.
func (r *RemoteCompressor) Compress(ctx context.Context, input []byte, percentage int, onProgress ProgressFunc) ([]byte, error) {
	report(onProgress, progressUploading)
	fileURL, err := r.api.Upload(ctx, uploadName, input)
	if err != nil {
		return nil, newError(ErrUpload, r.Name(), "upload", err)
	}

	report(onProgress, progressSubmitting)
	job, err := r.api.SubmitOptimize(ctx, fileURL, estimate.ProfileFor(percentage))
	if err != nil {
		return nil, newError(ErrSubmit, r.Name(), "submit", err)
	}
	r.logger.Debug("job submitted", zap.String("job_id", job.ID), zap.Int("percentage", percentage))

	report(onProgress, progressPolling)
	resultURL, err := r.poll(ctx, job.ID, onProgress)
	if err != nil {
		return nil, err
	}

	data, err := r.api.Download(ctx, resultURL)
	if err != nil {
		return nil, newError(ErrDownload, r.Name(), "download", err)
	}
	if _, err := pdfinfo.Sniff(data); err != nil {
		return nil, newError(ErrDownload, r.Name(), "download", err)
	}
	report(onProgress, 100)
	return data, nil
}

// pollWait returns the wait before poll n (0-based).
func (r *RemoteCompressor) pollWait(n int) time.Duration {
	return min(r.pollMax, r.pollInitial+time.Duration(n)*r.pollStep)
}

// poll waits for the job to reach a terminal status and returns its result
// URL. The whole phase is bounded by pollTimeout and by ctx.
func (r *RemoteCompressor) poll(ctx context.Context, jobID string, onProgress ProgressFunc) (string, error) {
	pctx, cancel := context.WithTimeout(ctx, r.pollTimeout)
	defer cancel()

	for n := 0; ; n++ {
		timer := time.NewTimer(r.pollWait(n))
		select {
		case <-pctx.Done():
			timer.Stop()
			return "", r.pollDone(ctx, pctx, jobID)
		case <-timer.C:
		}

		state, err := r.api.CheckJob(pctx, jobID)
		if err != nil {
			if pctx.Err() != nil {
				return "", r.pollDone(ctx, pctx, jobID)
			}
			return "", newError(ErrJobStatus, r.Name(), "poll", err)
		}
		r.logger.Debug("job status", zap.String("job_id", jobID), zap.String("status", string(state.Status)), zap.Int("poll", n+1))

		switch state.Status {
		case types.JobSuccess:
			if state.URL == "" {
				return "", newError(ErrMissingResult, r.Name(), "poll", fmt.Errorf("job %s succeeded without a result URL", jobID))
			}
			report(onProgress, progressFinished)
			return state.URL, nil
		case types.JobError:
			cause := fmt.Errorf("job %s reported failure", jobID)
			if state.Message != "" {
				cause = fmt.Errorf("job %s reported failure: %s", jobID, state.Message)
			}
			return "", newError(ErrJobFailed, r.Name(), "poll", cause)
		}

		report(onProgress, min(progressPollCap, progressPolling+(n+1)*progressPollStep))
	}
}

// pollDone builds the error for an expired or cancelled polling phase. A
// caller cancellation is reported as such; our own deadline is a timeout.
func (r *RemoteCompressor) pollDone(parent, pctx context.Context, jobID string) error {
	if err := parent.Err(); err != nil {
		return newError(ErrJobStatus, r.Name(), "poll", err)
	}
	if errors.Is(pctx.Err(), context.DeadlineExceeded) {
		return newError(ErrPollTimeout, r.Name(), "poll",
			fmt.Errorf("job %s not finished after %v: %w", jobID, r.pollTimeout, pctx.Err()))
	}
	return newError(ErrJobStatus, r.Name(), "poll", pctx.Err())
}
