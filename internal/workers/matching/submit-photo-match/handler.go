// internal/workers/matching/submit-photo-match/handler.go
package submitphotomatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/eventloop"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/metrics"
	"petfinder/internal/common/observability"
	"petfinder/internal/models"
	classifyconfidence "petfinder/internal/workers/matching/classify-confidence"
	rankmatches "petfinder/internal/workers/matching/rank-matches"

	"github.com/google/uuid"
)

const (
	TaskType = "submit-photo-match"
)

var (
	ErrEmptyImage = errors.New("EMPTY_IMAGE")
	ErrNoImage    = errors.New("NO_IMAGE_TO_RETRY")
	ErrBusy       = errors.New("SUBMISSION_IN_FLIGHT")
)

type Dependencies struct {
	Service  ComparisonService
	Ranker   *rankmatches.Handler
	Notifier Notifier
	Recorder observability.Recorder
	// Loop is shared with other screen components. Nil starts a private
	// loop that Close shuts down.
	Loop *eventloop.Loop
}

// Workflow runs "select image, submit, interpret" with at most one
// comparison call in flight. All state lives on the event loop.
type Workflow struct {
	config   *Config
	loop     *eventloop.Loop
	ownsLoop bool
	service  ComparisonService
	ranker   *rankmatches.Handler
	notifier Notifier
	recorder observability.Recorder
	logger   logger.Logger
	errs     *apperrors.ErrorHandler
	now      func() time.Time
	alerts   sync.WaitGroup

	// loop-owned
	seq         eventloop.Sequencer
	state       Snapshot
	current     models.Image
	hasCurrent  bool
	queued      *models.Image
	inFlight    bool
	closed      bool
	subscribers map[int]func(Snapshot)
	nextSubID   int

	mu        sync.RWMutex
	published Snapshot
}

func NewWorkflow(config *Config, deps Dependencies, log logger.Logger) *Workflow {
	if config == nil {
		config = LoadConfig()
	}
	componentLog := logger.ForComponent(log, TaskType)
	w := &Workflow{
		config:      config,
		loop:        deps.Loop,
		service:     deps.Service,
		ranker:      deps.Ranker,
		notifier:    deps.Notifier,
		recorder:    observability.OrNop(deps.Recorder),
		logger:      componentLog,
		errs:        apperrors.NewErrorHandler(componentLog),
		now:         time.Now,
		subscribers: make(map[int]func(Snapshot)),
	}
	if w.loop == nil {
		w.loop = eventloop.New(log, config.LoopBuffer)
		w.ownsLoop = true
	}
	if w.ranker == nil {
		w.ranker = rankmatches.NewHandler(nil, nil, log)
	}
	w.state = Snapshot{State: StateIdle}
	w.published = w.state
	return w
}

// Snapshot returns the most recently published state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.published
}

// Subscribe registers fn for every state change. fn runs on the event loop
// and must not call back into the workflow synchronously.
func (w *Workflow) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	var id int
	err := w.loop.Sync(func() {
		if w.closed {
			id = -1
			return
		}
		id = w.nextSubID
		w.nextSubID++
		w.subscribers[id] = fn
	})
	if err != nil || id < 0 {
		return func() {}
	}
	return func() {
		w.loop.Post(func() { delete(w.subscribers, id) })
	}
}

// BeginCapture opens the camera or picker. Ignored while submitting.
func (w *Workflow) BeginCapture() error {
	return w.run(func() error {
		if w.state.State == StateSubmitting {
			w.logger.Debug("capture ignored while submitting", nil)
			return ErrBusy
		}
		w.state.State = StateAwaitingCapture
		w.state.Message = ""
		w.state.ErrorCode = ""
		w.publish()
		return nil
	})
}

// SelectImage submits img, or queues it as the next submission when a
// call is already in flight. A later selection replaces a queued one.
func (w *Workflow) SelectImage(img models.Image) error {
	return w.run(func() error {
		if img.IsEmpty() {
			w.logger.Warn("empty image ignored", map[string]interface{}{"state": string(w.state.State)})
			return ErrEmptyImage
		}
		w.submitOrQueue(img)
		return nil
	})
}

// Retry resubmits the last image from a terminal state.
func (w *Workflow) Retry() error {
	return w.run(func() error {
		if w.state.State == StateSubmitting {
			return ErrBusy
		}
		if !w.state.State.Terminal() || !w.hasCurrent {
			return ErrNoImage
		}
		w.submitOrQueue(w.current)
		return nil
	})
}

// Reset returns to IDLE and drops any queued image. An in-flight call is
// not aborted; its completion is discarded.
func (w *Workflow) Reset() error {
	return w.run(func() error {
		w.seq.Invalidate()
		w.queued = nil
		w.hasCurrent = false
		w.current = models.Image{}
		w.state = Snapshot{State: StateIdle, Attempts: w.state.Attempts}
		w.publish()
		return nil
	})
}

// Close invalidates every outstanding request, stops the workflow and
// waits for pending match alerts. Safe to call more than once.
func (w *Workflow) Close() {
	_ = w.loop.Sync(func() {
		if w.closed {
			return
		}
		w.closed = true
		w.seq.Invalidate()
		w.queued = nil
		w.subscribers = make(map[int]func(Snapshot))
	})
	if w.ownsLoop {
		w.loop.Close()
	}
	w.alerts.Wait()
}

func (w *Workflow) run(fn func() error) error {
	var opErr error
	if err := w.loop.Sync(func() {
		if w.closed {
			opErr = eventloop.ErrClosed
			return
		}
		opErr = fn()
	}); err != nil {
		return err
	}
	return opErr
}

func (w *Workflow) submitOrQueue(img models.Image) {
	if w.inFlight {
		w.seq.Invalidate()
		w.queued = &img
		w.state.State = StateSubmitting
		w.state.Queued = true
		w.publish()
		w.logger.Debug("image queued behind in-flight submission", map[string]interface{}{"image": img.Name})
		return
	}
	w.start(img)
}

func (w *Workflow) start(img models.Image) {
	token := w.seq.Next()
	w.inFlight = true
	w.current = img
	w.hasCurrent = true
	w.queued = nil

	w.state.State = StateSubmitting
	w.state.Queued = false
	w.state.Message = ""
	w.state.ErrorCode = ""
	w.state.Attempts++
	w.publish()

	metrics.MatchSubmissionsInFlight.Inc()
	w.logger.Info("submitting image", map[string]interface{}{
		"image":   img.Name,
		"bytes":   len(img.Data),
		"attempt": w.state.Attempts,
	})

	go func() {
		start := w.now()
		result, err := w.callService(img)
		elapsed := w.now().Sub(start)
		metrics.MatchSubmissionsInFlight.Dec()
		w.loop.Post(func() { w.complete(token, result, err, elapsed) })
	}()
}

func (w *Workflow) callService(img models.Image) (result *models.ComparisonResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnknownError(fmt.Errorf("comparison service panicked: %v", r))
		}
	}()
	if w.service == nil {
		return nil, apperrors.NewUnknownError(errors.New("no comparison service configured"))
	}
	return w.service.Submit(context.Background(), img)
}

func (w *Workflow) complete(token eventloop.Token, result *models.ComparisonResult, err error, elapsed time.Duration) {
	w.inFlight = false

	if w.closed {
		return
	}

	if !w.seq.IsCurrent(token) {
		metrics.StaleCompletionsDiscarded.WithLabelValues(TaskType).Inc()
		w.logger.Debug("stale submission result discarded", map[string]interface{}{"token": uint64(token)})
	} else {
		w.apply(result, err, elapsed)
	}

	if w.queued != nil {
		next := *w.queued
		w.start(next)
	}
}

func (w *Workflow) apply(result *models.ComparisonResult, err error, elapsed time.Duration) {
	ctx := context.Background()
	outcome := "result_ready"

	switch {
	case err != nil:
		stdErr := w.errs.Resolve(TaskType, err)
		outcome = "failed"
		w.state.State = StateFailed
		w.state.Message = stdErr.UserMessage()
		w.state.ErrorCode = stdErr.Code

	case !result.HasMatches():
		outcome = "no_match"
		w.state.State = StateNoMatch
		w.state.Result = result
		w.state.Ranked = nil
		w.state.Summary = rankmatches.Summarize(nil)
		w.state.Overall = classifyconfidence.Classification{}
		w.state.Message = apperrors.MessageFor(apperrors.ErrCodeNoMatchFound)
		w.state.ErrorCode = ""

	default:
		out, rankErr := w.ranker.Execute(ctx, &rankmatches.Input{Result: result})
		if rankErr != nil {
			w.apply(nil, rankErr, elapsed)
			return
		}
		w.state.State = StateResultReady
		w.state.Result = result
		w.state.Ranked = out.Ranked
		w.state.Summary = out.Summary
		w.state.Overall = out.Overall
		w.state.Message = ""
		w.state.ErrorCode = ""
		w.alertOnStrongMatch(result, out.Summary)
	}

	metrics.MatchSubmissions.WithLabelValues(outcome).Inc()
	metrics.MatchSubmissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	w.recorder.RecordOperation(ctx, TaskType, outcome, elapsed)
	w.publish()
}

// alertOnStrongMatch sends a match_found notification off the loop. Close
// waits for any delivery still in flight.
func (w *Workflow) alertOnStrongMatch(result *models.ComparisonResult, summary rankmatches.Summary) {
	if !w.config.NotifyOnHighConfidence || w.notifier == nil || w.config.CallerID == "" {
		return
	}
	if summary.Top == nil || summary.Top.Confidence.Tier != classifyconfidence.TierHigh {
		return
	}

	top := summary.Top
	n := models.Notification{
		ID:          uuid.New().String(),
		RecipientID: w.config.CallerID,
		Type:        models.NotificationMatchFound,
		Title:       "Possible match found",
		Body:        fmt.Sprintf("%s looks like a %s match.", top.Match.DisplayName(), top.Confidence.Percent()),
		Payload: map[string]interface{}{
			"matchId":    string(top.Match.ID),
			"similarity": top.Match.Similarity,
			"confidence": result.Confidence,
			"requestId":  result.RequestID,
		},
		CreatedAt: w.now().UTC().Format(time.RFC3339),
	}

	notifier := w.notifier
	log := w.logger
	timeout := w.config.NotifyTimeout
	w.alerts.Add(1)
	go func() {
		defer w.alerts.Done()
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := notifier.Notify(ctx, n); err != nil {
			log.Warn("match alert not delivered", map[string]interface{}{
				"notificationId": n.ID,
				"error":          err.Error(),
			})
		}
	}()
}

func (w *Workflow) publish() {
	snap := w.state
	w.mu.Lock()
	w.published = snap
	w.mu.Unlock()
	for _, fn := range w.subscribers {
		fn(snap)
	}
}
