// internal/workers/location/last-seen-location/handler.go
package lastseenlocation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "petfinder/internal/common/errors"
	"petfinder/internal/common/eventloop"
	"petfinder/internal/common/logger"
	"petfinder/internal/common/metrics"
	"petfinder/internal/models"
)

const (
	TaskType = "last-seen-location"
)

// Controller owns the current fix and the address text of the "last seen"
// screen. Every acquisition carries a request token and only the most
// recent outstanding token may apply its result.
type Controller struct {
	config   *Config
	loop     *eventloop.Loop
	ownsLoop bool
	locator  Locator
	logger   logger.Logger
	errs     *apperrors.ErrorHandler

	// loop-owned
	seq         eventloop.Sequencer
	state       Snapshot
	closed      bool
	subscribers map[int]func(Snapshot)
	nextSubID   int

	mu        sync.RWMutex
	published Snapshot

	settled atomic.Int64
}

// NewController builds a controller. A nil loop starts a private one that
// Close shuts down.
func NewController(config *Config, locator Locator, loop *eventloop.Loop, log logger.Logger) *Controller {
	if config == nil {
		config = LoadConfig()
	}
	componentLog := logger.ForComponent(log, TaskType)
	c := &Controller{
		config:      config,
		loop:        loop,
		locator:     locator,
		logger:      componentLog,
		errs:        apperrors.NewErrorHandler(componentLog),
		subscribers: make(map[int]func(Snapshot)),
	}
	if c.loop == nil {
		c.loop = eventloop.New(log, config.LoopBuffer)
		c.ownsLoop = true
	}
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published
}

// Subscribe registers fn for every change. fn runs on the event loop.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	id := -1
	_ = c.loop.Sync(func() {
		if c.closed {
			return
		}
		id = c.nextSubID
		c.nextSubID++
		c.subscribers[id] = fn
	})
	if id < 0 {
		return func() {}
	}
	return func() {
		c.loop.Post(func() { delete(c.subscribers, id) })
	}
}

// UseCurrentLocation runs the full acquisition chain.
func (c *Controller) UseCurrentLocation() error {
	return c.run(func() error {
		token := c.begin()
		go func() {
			fix, err := c.acquire()
			c.loop.Post(func() { c.complete(token, fix, err) })
		}()
		return nil
	})
}

// TapMap resolves coord as a MAP_TAP fix. It supersedes every earlier
// request and overwrites the address text when it lands.
func (c *Controller) TapMap(coord models.Coordinate) error {
	if !coord.Valid() {
		return apperrors.NewInvalidInputError(fmt.Sprintf("coordinate out of range: %s", coord.Format()))
	}
	return c.run(func() error {
		token := c.begin()
		go func() {
			fix := c.acquireAt(coord)
			c.loop.Post(func() { c.complete(token, fix, nil) })
		}()
		return nil
	})
}

// EditAddress records a manual edit. Outstanding requests become stale so
// a slow geocode cannot overwrite the user's text.
func (c *Controller) EditAddress(text string) error {
	return c.run(func() error {
		c.seq.Invalidate()
		c.state.AddressText = text
		c.state.Edited = c.state.Fix == nil || text != c.state.Fix.Address
		c.state.Loading = false
		c.publish()
		return nil
	})
}

// Close discards all outstanding requests. Safe to call more than once.
func (c *Controller) Close() {
	_ = c.loop.Sync(func() {
		if c.closed {
			return
		}
		c.closed = true
		c.seq.Invalidate()
		c.subscribers = make(map[int]func(Snapshot))
	})
	if c.ownsLoop {
		c.loop.Close()
	}
}

func (c *Controller) run(fn func() error) error {
	var opErr error
	if err := c.loop.Sync(func() {
		if c.closed {
			opErr = eventloop.ErrClosed
			return
		}
		opErr = fn()
	}); err != nil {
		return err
	}
	return opErr
}

func (c *Controller) begin() eventloop.Token {
	token := c.seq.Next()
	c.state.Loading = true
	c.state.Message = ""
	c.state.ErrorCode = ""
	c.publish()
	return token
}

func (c *Controller) acquire() (fix models.LocationFix, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewUnknownError(fmt.Errorf("locator panicked: %v", r))
		}
	}()
	if c.locator == nil {
		return models.LocationFix{}, apperrors.NewLocationUnavailableError(nil)
	}
	return c.locator.Acquire(context.Background())
}

func (c *Controller) acquireAt(coord models.Coordinate) (fix models.LocationFix) {
	defer func() {
		if r := recover(); r != nil {
			fix = models.NewLocationFix(coord, "", models.SourceMapTap, time.Now().UTC())
		}
	}()
	if c.locator == nil {
		return models.NewLocationFix(coord, "", models.SourceMapTap, time.Now().UTC())
	}
	return c.locator.AcquireAt(context.Background(), coord)
}

func (c *Controller) complete(token eventloop.Token, fix models.LocationFix, err error) {
	defer c.settled.Add(1)

	if c.closed || !c.seq.IsCurrent(token) {
		metrics.StaleCompletionsDiscarded.WithLabelValues(TaskType).Inc()
		c.logger.Debug("stale location completion discarded", map[string]interface{}{
			"token":  uint64(token),
			"latest": uint64(c.seq.Latest()),
		})
		return
	}

	c.state.Loading = false
	if err != nil {
		// prior fix and text stay as they are
		stdErr := c.errs.Resolve(TaskType, err)
		c.state.Message = stdErr.UserMessage()
		c.state.ErrorCode = stdErr.Code
		c.publish()
		return
	}

	coord := fix.Coordinate
	c.state.Fix = &fix
	c.state.AddressText = fix.Address
	c.state.Marker = &coord
	c.state.Camera = &Camera{Center: coord, Zoom: c.config.MapZoom}
	c.state.Edited = false
	c.state.Message = ""
	c.state.ErrorCode = ""
	c.publish()

	c.logger.Info("last seen location updated", map[string]interface{}{
		"source":   string(fix.Source),
		"geocoded": fix.Geocoded(),
	})
}

func (c *Controller) publish() {
	snap := c.state
	c.mu.Lock()
	c.published = snap
	c.mu.Unlock()
	for _, fn := range c.subscribers {
		fn(snap)
	}
}
