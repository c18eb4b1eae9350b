package recorder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultTickInterval = time.Second
	DefaultMaxDuration  = 15 * time.Minute
)

var ErrAlreadyRecording = errors.New("recording already in progress")

// TickSource returns a tick channel and a function that releases it.
type TickSource func(d time.Duration) (<-chan time.Time, func())

func realTicks(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type Options struct {
	Dir          string
	TickInterval time.Duration
	MaxDuration  time.Duration
	Ticks        TickSource
}

// Controller runs one recording at a time and counts its duration.
type Controller struct {
	capture  Capture
	dir      string
	interval time.Duration
	max      time.Duration
	ticks    TickSource

	mu      sync.Mutex
	active  bool
	path    string
	elapsed time.Duration
	done    chan struct{}
	release func()
	onTick  func(time.Duration)
	onLimit func()
	closed  bool
}

func NewController(capture Capture, opts Options) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultMaxDuration
	}
	if opts.Ticks == nil {
		opts.Ticks = realTicks
	}
	if opts.Dir == "" {
		opts.Dir = os.TempDir()
	}
	return &Controller{
		capture:  capture,
		dir:      opts.Dir,
		interval: opts.TickInterval,
		max:      opts.MaxDuration,
		ticks:    opts.Ticks,
	}
}

// OnTick registers a callback invoked after every elapsed-time update.
func (c *Controller) OnTick(fn func(elapsed time.Duration)) {
	c.mu.Lock()
	c.onTick = fn
	c.mu.Unlock()
}

// OnLimit registers the handler run when the maximum duration is reached.
// Without one the controller stops itself and discards the asset.
func (c *Controller) OnLimit(fn func()) {
	c.mu.Lock()
	c.onLimit = fn
	c.mu.Unlock()
}

func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// MaxDuration is the length at which a recording stops on its own.
func (c *Controller) MaxDuration() time.Duration { return c.max }

func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("recorder closed")
	}
	if c.active {
		return ErrAlreadyRecording
	}

	if err := c.capture.RequestPermission(); err != nil {
		log.Error().Err(err).Msg("recording_permission_denied")
		return fmt.Errorf("microphone unavailable: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating audio directory: %w", err)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("recording-%s.m4a", uuid.New()))

	if err := c.capture.Start(path); err != nil {
		log.Error().Err(err).Msg("failed_to_start_recording")
		return fmt.Errorf("starting recording: %w", err)
	}

	ch, release := c.ticks(c.interval)
	c.active = true
	c.path = path
	c.elapsed = 0
	c.done = make(chan struct{})
	c.release = release

	go c.run(ch, c.done)

	log.Info().Str("path", path).Msg("recording_started")
	return nil
}

func (c *Controller) run(ticks <-chan time.Time, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticks:
			c.mu.Lock()
			if !c.active {
				c.mu.Unlock()
				return
			}
			c.elapsed += c.interval
			if c.elapsed > c.max {
				c.elapsed = c.max
			}
			elapsed, onTick, onLimit := c.elapsed, c.onTick, c.onLimit
			c.mu.Unlock()

			if onTick != nil {
				onTick(elapsed)
			}
			if elapsed < c.max {
				continue
			}

			log.Info().Dur("elapsed", elapsed).Msg("recording_limit_reached")
			if onLimit != nil {
				onLimit()
			} else if _, err := c.Stop(); err != nil {
				log.Error().Err(err).Msg("failed_to_stop_recording")
			}
			return
		}
	}
}

// Stop finalizes the active recording. It returns (nil, nil) when nothing
// is being recorded. Stop never waits for the ticker goroutine, so it is
// safe to call from the limit handler.
func (c *Controller) Stop() (*Asset, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return nil, nil
	}
	c.active = false
	close(c.done)
	c.release()
	path, elapsed := c.path, c.elapsed
	c.mu.Unlock()

	if err := c.capture.Stop(); err != nil {
		log.Error().Err(err).Msg("failed_to_stop_recording")
		return nil, fmt.Errorf("stopping recording: %w", err)
	}

	size := int64(-1)
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
	} else {
		log.Warn().Err(err).Str("path", path).Msg("recording_stat_failed")
	}

	log.Info().Str("path", path).Int64("size", size).Dur("elapsed", elapsed).Msg("recording_stopped")
	return &Asset{Path: path, Size: size, Duration: elapsed}, nil
}

// Close stops any active recording and releases the device.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.closed = true
	active := c.active
	c.mu.Unlock()

	if !active {
		return nil
	}
	_, err := c.Stop()
	return err
}
