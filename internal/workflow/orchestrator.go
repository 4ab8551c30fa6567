package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/i18n"
	"veostudio/internal/infra/credentials"
	"veostudio/internal/metrics"
	"veostudio/internal/providers/video"
	"veostudio/internal/storage"
)

const (
	DefaultSettleDelay = 100 * time.Millisecond

	journalTimeout = 5 * time.Second
)

// ErrJobTimedOut is reported when a job exceeds the configured job timeout.
var ErrJobTimedOut = errors.New("generation timed out")

// Config tunes the job lifecycle.
type Config struct {
	PollInterval    time.Duration
	PollMaxAttempts int
	JobTimeout      time.Duration
	SettleDelay     time.Duration
}

// DefaultConfig polls every 10s for at most 90 attempts.
func DefaultConfig() Config {
	return Config{
		PollInterval:    DefaultPollInterval,
		PollMaxAttempts: DefaultPollMaxAttempts,
		SettleDelay:     DefaultSettleDelay,
	}
}

// Snapshot is a point-in-time copy of the workflow state.
type Snapshot struct {
	Status           domain.JobStatus        `json:"status"`
	Message          string                  `json:"message"`
	Error            string                  `json:"error,omitempty"`
	CredentialStatus domain.CredentialStatus `json:"credential_status"`
	JobID            string                  `json:"job_id,omitempty"`
	Operation        string                  `json:"operation,omitempty"`
	Model            string                  `json:"model,omitempty"`
	PollAttempts     int                     `json:"poll_attempts"`
	StartedAt        *time.Time              `json:"started_at,omitempty"`
	FinishedAt       *time.Time              `json:"finished_at,omitempty"`
	Asset            *storage.Handle         `json:"asset,omitempty"`
}

// Observer receives every state transition. It runs on the goroutine that
// caused the transition and must not block.
type Observer func(Snapshot)

type Option func(*Orchestrator)

func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

func WithJournal(j domain.GenerationJournal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func WithCatalog(c *domain.Catalog) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.catalog = c
		}
	}
}

// WithWaitFunc replaces the timer used for the settle delay and poll interval.
func WithWaitFunc(w WaitFunc) Option {
	return func(o *Orchestrator) {
		if w != nil {
			o.wait = w
		}
	}
}

type activeJob struct {
	id        string
	key       string
	prompt    string
	opts      domain.GenerationOptions
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
	cancelled bool
}

// Orchestrator drives validate → submit → poll → fetch for one job at a time
// and owns the state shown to the user.
type Orchestrator struct {
	svc     video.Service
	store   *storage.MemoryStore
	holder  *credentials.Holder
	catalog *domain.Catalog
	journal domain.GenerationJournal
	metrics *metrics.Metrics
	logger  zerolog.Logger
	wait    WaitFunc
	cfg     Config

	validator *Validator
	submitter *Submitter
	poller    *Poller
	fetcher   *Fetcher
	observers []Observer
	now       func() time.Time

	mu         sync.Mutex
	state      Snapshot
	validating bool
	job        *activeJob
	closed     bool
}

func NewOrchestrator(svc video.Service, store *storage.MemoryStore, holder *credentials.Holder, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:     svc,
		store:   store,
		holder:  holder,
		catalog: domain.DefaultCatalog(),
		logger:  zerolog.Nop(),
		wait:    Sleep,
		cfg:     cfg,
		now:     time.Now,
		state: Snapshot{
			Status:           domain.JobStatusIdle,
			CredentialStatus: domain.CredentialUnchecked,
		},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg.SettleDelay < 0 {
		o.cfg.SettleDelay = 0
	}
	o.validator = NewValidator(svc, o.logger)
	o.submitter = NewSubmitter(svc, o.catalog, o.logger)
	o.poller = NewPoller(svc, o.cfg.PollInterval, o.cfg.PollMaxAttempts, o.wait, o.logger)
	o.fetcher = NewFetcher(svc, store, o.metrics, o.logger)
	return o
}

// Catalog returns the models offered for generation.
func (o *Orchestrator) Catalog() *domain.Catalog {
	return o.catalog
}

// ValidateCredential probes key and records the outcome. The key is kept for
// later submissions whatever the outcome.
func (o *Orchestrator) ValidateCredential(ctx context.Context, key string) (domain.CredentialStatus, error) {
	key = strings.TrimSpace(key)

	o.mu.Lock()
	if o.closed || o.validating || o.state.Status.Busy() {
		o.mu.Unlock()
		return o.credentialStatus(), domain.ErrBusy
	}
	o.validating = true
	o.state.Status = domain.JobStatusValidating
	o.state.Message = i18n.MsgValidating
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	o.holder.Set(key)
	valid := o.validator.Validate(ctx, key)
	o.metrics.CredentialChecked(valid)

	status := domain.CredentialInvalid
	if valid {
		status = domain.CredentialValid
	}

	o.mu.Lock()
	o.validating = false
	o.state.CredentialStatus = status
	o.state.Status = domain.JobStatusIdle
	o.state.Message = ""
	snap = o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)

	o.logger.Info().Str("credential_status", string(status)).Msg("workflow: credential checked")
	return status, nil
}

func (o *Orchestrator) credentialStatus() domain.CredentialStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.CredentialStatus
}

// CanSubmit reports whether Start would accept prompt right now.
func (o *Orchestrator) CanSubmit(prompt string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.checkSubmitLocked(prompt) == nil
}

func (o *Orchestrator) checkSubmitLocked(prompt string) error {
	switch {
	case o.closed || o.validating || !o.state.Status.CanSubmit():
		return domain.ErrBusy
	case strings.TrimSpace(prompt) == "":
		return domain.ErrEmptyPrompt
	case o.state.CredentialStatus != domain.CredentialValid:
		return domain.ErrCredentialNotValid
	}
	return nil
}

// Start launches a generation job in the background and returns its id.
func (o *Orchestrator) Start(prompt string, opts domain.GenerationOptions) (string, error) {
	opts = opts.WithDefaults()
	prompt = strings.TrimSpace(prompt)

	o.mu.Lock()
	if err := o.checkSubmitLocked(prompt); err != nil {
		o.mu.Unlock()
		return "", err
	}
	if err := opts.Validate(o.catalog); err != nil {
		o.mu.Unlock()
		return "", err
	}
	key := o.holder.Get()
	if key == "" {
		o.mu.Unlock()
		return "", domain.ErrCredentialRequired
	}

	o.releaseAssetLocked()
	ctx, cancel := context.WithCancel(context.Background())
	if o.cfg.JobTimeout > 0 {
		ctx, cancel = withTimeout(ctx, cancel, o.cfg.JobTimeout)
	}
	startedAt := o.now()
	job := &activeJob{
		id:        uuid.NewString(),
		key:       key,
		prompt:    prompt,
		opts:      opts,
		startedAt: startedAt,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	o.job = job
	o.state = Snapshot{
		Status:           domain.JobStatusGenerating,
		Message:          i18n.MsgStarting,
		CredentialStatus: o.state.CredentialStatus,
		JobID:            job.id,
		Model:            opts.Model,
		StartedAt:        &startedAt,
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.metrics.JobStarted()
	o.notify(snap)
	o.journalStart(job)
	o.logger.Info().Str("job_id", job.id).Str("model", opts.Model).Msg("workflow: generation started")

	go o.run(ctx, job)
	return job.id, nil
}

func withTimeout(parent context.Context, cancelParent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		cancel()
		cancelParent()
	}
}

func (o *Orchestrator) run(ctx context.Context, job *activeJob) {
	defer close(job.done)
	defer job.cancel()

	handle, opName, err := o.execute(ctx, job)
	o.finish(ctx, job, handle, opName, err)
}

func (o *Orchestrator) execute(ctx context.Context, job *activeJob) (storage.Handle, string, error) {
	if err := o.wait(ctx, o.cfg.SettleDelay); err != nil {
		return storage.Handle{}, "", err
	}
	o.update(job, func(s *Snapshot) {
		s.Status = domain.JobStatusPolling
		s.Message = i18n.MsgProcessing
	})

	op, err := o.submitter.Submit(ctx, job.key, job.prompt, job.opts)
	if err != nil {
		return storage.Handle{}, "", err
	}
	o.update(job, func(s *Snapshot) { s.Operation = op.Name })

	op, err = o.poller.PollWithProgress(ctx, job.key, op, func(attempt int, _ domain.Operation) {
		o.metrics.PollCycle()
		o.update(job, func(s *Snapshot) { s.PollAttempts = attempt })
	})
	if err != nil {
		return storage.Handle{}, op.Name, err
	}

	handle, err := o.fetcher.Fetch(ctx, job.key, op)
	return handle, op.Name, err
}

// finish records the outcome. ctx is the job context; its own deadline is the
// only thing reported as a job timeout.
func (o *Orchestrator) finish(ctx context.Context, job *activeJob, handle storage.Handle, opName string, err error) {
	finishedAt := o.now()
	outcome := "success"

	o.mu.Lock()
	if o.job != job {
		o.mu.Unlock()
		if err == nil {
			o.store.Revoke(handle.ID)
		}
		return
	}
	o.job = nil
	if err == nil && o.closed {
		err = domain.ErrCancelled
		o.store.Revoke(handle.ID)
	}
	o.state.FinishedAt = &finishedAt
	if opName != "" {
		o.state.Operation = opName
	}
	if err != nil {
		outcome = "error"
		o.state.Status = domain.JobStatusError
		switch {
		case errors.Is(err, domain.ErrCancelled) || (job.cancelled && errors.Is(err, context.Canceled)):
			outcome = "cancelled"
			o.state.Error = domain.ErrCancelled.Error()
			o.state.Message = i18n.MsgCancelled
		default:
			msg := o.errorMessage(ctx, err)
			o.state.Error = msg
			o.state.Message = msg
		}
	} else {
		h := handle
		o.state.Status = domain.JobStatusSuccess
		o.state.Message = i18n.MsgDone
		o.state.Error = ""
		o.state.Asset = &h
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.metrics.JobFinished(job.opts.Model, outcome, finishedAt.Sub(job.startedAt))
	o.notify(snap)
	o.journalFinish(job, snap)

	if err != nil {
		o.logger.Warn().Str("job_id", job.id).Str("operation", snap.Operation).Str("outcome", outcome).Str("error", snap.Error).Msg("workflow: generation failed")
		return
	}
	o.logger.Info().Str("job_id", job.id).Str("operation", snap.Operation).Str("asset", handle.ID).Msg("workflow: generation succeeded")
}

func (o *Orchestrator) errorMessage(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("%s after %s", ErrJobTimedOut, o.cfg.JobTimeout)
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return i18n.MsgUnknownError
}

// Wait blocks until the active job, if any, reaches a terminal state.
func (o *Orchestrator) Wait(ctx context.Context) error {
	o.mu.Lock()
	job := o.job
	o.mu.Unlock()
	if job == nil {
		return nil
	}
	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts the active job; it ends in the error state.
func (o *Orchestrator) Cancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job == nil {
		return domain.ErrNoActiveJob
	}
	o.job.cancelled = true
	o.job.cancel()
	o.logger.Info().Str("job_id", o.job.id).Msg("workflow: generation cancel requested")
	return nil
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// ReleaseAsset revokes the current asset when id matches it.
func (o *Orchestrator) ReleaseAsset(id string) error {
	o.mu.Lock()
	if o.state.Asset == nil || o.state.Asset.ID != id {
		o.mu.Unlock()
		return domain.ErrNotFound
	}
	o.releaseAssetLocked()
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
	return nil
}

// Close cancels any running job, waits for it and releases the asset.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	o.closed = true
	job := o.job
	if job != nil {
		job.cancelled = true
		job.cancel()
	}
	o.releaseAssetLocked()
	o.mu.Unlock()

	if job != nil {
		<-job.done
	}
	return nil
}

func (o *Orchestrator) releaseAssetLocked() {
	if o.state.Asset == nil {
		return
	}
	o.store.Revoke(o.state.Asset.ID)
	o.state.Asset = nil
}

func (o *Orchestrator) update(job *activeJob, fn func(*Snapshot)) {
	o.mu.Lock()
	if o.job != job {
		o.mu.Unlock()
		return
	}
	fn(&o.state)
	snap := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(snap)
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := o.state
	if o.state.Asset != nil {
		h := *o.state.Asset
		snap.Asset = &h
	}
	return snap
}

func (o *Orchestrator) notify(snap Snapshot) {
	for _, fn := range o.observers {
		fn(snap)
	}
}

func (o *Orchestrator) journalStart(job *activeJob) {
	if o.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	rec := &domain.GenerationRecord{
		ID:             job.id,
		Model:          job.opts.Model,
		Prompt:         job.prompt,
		AspectRatio:    job.opts.AspectRatio,
		Resolution:     job.opts.Resolution,
		SafetyPolicy:   job.opts.SafetyPolicy,
		NegativePrompt: job.opts.NegativePrompt,
		Status:         domain.JobStatusGenerating,
		CreatedAt:      job.startedAt,
		UpdatedAt:      job.startedAt,
	}
	if err := o.journal.Start(ctx, rec); err != nil {
		o.logger.Error().Err(err).Str("job_id", job.id).Msg("workflow: journal start failed")
	}
}

func (o *Orchestrator) journalFinish(job *activeJob, snap Snapshot) {
	if o.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := o.journal.Finish(ctx, job.id, snap.Status, snap.Operation, snap.Error); err != nil {
		o.logger.Error().Err(err).Str("job_id", job.id).Msg("workflow: journal finish failed")
	}
}
