// internal/game/engine.go
//
// Session controller for a single word-search puzzle.
// Responsibilities:
//   - Drive the generating → playing → completed state machine.
//   - Own the one Session value and the selection tracker.
//   - Run the cancellable 1-second timer while playing.
//   - Validate drag gestures, accrue word points, compute the final score.
//   - Notify the host through Hooks (tick, word found, level complete).
//
// Notes:
//   - HTTP handlers and the timer goroutine share a controller, so every
//     method takes c.mu. Hooks are invoked after the lock is released.
//   - Start may be called again on the same controller (play again / next
//     level). Each call begins a new numbered instance with a fresh epoch;
//     ticks from an older epoch are ignored. Result.Instance tells the host
//     which instance a completion belongs to.
package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const defaultTickInterval = time.Second

// Hooks are optional host callbacks. Any field may be nil.
type Hooks struct {
	OnTick          func(id string, hud HUD)
	OnWordFound     func(id string, word PlacedWord, hud HUD)
	OnLevelComplete func(id string, res Result)
}

// Option customises a Controller.
type Option func(*Controller)

// WithHooks installs host callbacks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) { c.hooks = h }
}

// WithTickInterval overrides the one-second timer period.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tickEvery = d
		}
	}
}

// Controller owns one puzzle's session and timer.
type Controller struct {
	mu        sync.Mutex
	id        string
	session   Session
	tracker   *SelectionTracker
	hooks     Hooks
	tickEvery time.Duration
	epoch     uint64
	instance  uint64
	cancel    context.CancelFunc
}

// Outcome is the result of releasing a drag.
type Outcome struct {
	Path   []Cell      `json:"path"`
	Word   *PlacedWord `json:"word,omitempty"`
	HUD    HUD         `json:"hud"`
	Result *Result     `json:"result,omitempty"`
}

// New constructs an idle controller. Call Start to generate a puzzle.
func New(opts ...Option) *Controller {
	c := &Controller{
		id:        randomID(),
		tickEvery: defaultTickInterval,
		tracker:   NewSelectionTracker(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session.ID = c.id
	return c
}

// ID returns the controller's stable identifier.
func (c *Controller) ID() string { return c.id }

// Start generates a new puzzle instance for level and begins play.
// Any previous instance's timer is cancelled first.
func (c *Controller) Start(level Level, rng RandomSource) Session {
	c.mu.Lock()
	c.stopTimerLocked()
	c.instance++
	c.session = Session{
		ID:         c.id,
		Difficulty: level.Difficulty,
		GridSize:   level.GridSize,
		Status:     StatusGenerating,
		Instance:   c.instance,
	}

	grid, placed := Generate(level.Words, level.GridSize, rng)
	c.session.Grid = grid
	c.session.Words = placed
	c.session.Dropped = len(level.Words) - len(placed)
	c.tracker = NewSelectionTracker(level.GridSize)
	c.session.Status = StatusPlaying

	var res *Result
	if len(placed) == 0 {
		// Nothing to find: the instance is already complete.
		r := c.completeLocked()
		res = &r
	} else {
		c.startTimerLocked()
	}
	snap := c.snapshotLocked()
	hooks := c.hooks
	c.mu.Unlock()

	if res != nil && hooks.OnLevelComplete != nil {
		hooks.OnLevelComplete(c.id, *res)
	}
	return snap
}

// DragStart anchors a selection at cell.
func (c *Controller) DragStart(cell Cell) []Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Status != StatusPlaying {
		return nil
	}
	return c.tracker.Start(cell)
}

// DragOver extends the active selection towards cell.
func (c *Controller) DragOver(cell Cell) []Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Status != StatusPlaying {
		return nil
	}
	return c.tracker.Over(cell)
}

// DragEnd releases the selection and checks it against the unfound words.
// A miss changes nothing; a hit accrues points and may complete the level.
func (c *Controller) DragEnd() Outcome {
	c.mu.Lock()
	if c.session.Status != StatusPlaying {
		out := Outcome{HUD: c.hudLocked()}
		c.mu.Unlock()
		return out
	}
	path := c.tracker.End()
	out := Outcome{Path: path}

	var found *PlacedWord
	var res *Result
	if w := Match(c.session.Grid, path, c.session.Words); w != nil {
		c.session.FoundCount++
		c.session.Score += PointsForWord(c.session.Difficulty)
		cp := w.clone()
		found = &cp
		if c.session.FoundCount == len(c.session.Words) {
			r := c.completeLocked()
			res = &r
		}
	}
	out.Word = found
	out.Result = res
	out.HUD = c.hudLocked()
	hooks := c.hooks
	c.mu.Unlock()

	if found != nil && hooks.OnWordFound != nil {
		hooks.OnWordFound(c.id, *found, out.HUD)
	}
	if res != nil && hooks.OnLevelComplete != nil {
		hooks.OnLevelComplete(c.id, *res)
	}
	return out
}

// Tick advances the elapsed-time counter by one second while playing.
func (c *Controller) Tick() {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()
	c.tick(epoch)
}

func (c *Controller) tick(epoch uint64) {
	c.mu.Lock()
	if epoch != c.epoch || c.session.Status != StatusPlaying {
		c.mu.Unlock()
		return
	}
	c.session.ElapsedSeconds++
	hud := c.hudLocked()
	hooks := c.hooks
	c.mu.Unlock()

	if hooks.OnTick != nil {
		hooks.OnTick(c.id, hud)
	}
}

// Snapshot returns a deep copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Instance returns the number of the current instance; zero before Start.
func (c *Controller) Instance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instance
}

// HUD returns the live counters.
func (c *Controller) HUD() HUD {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hudLocked()
}

// Close stops the timer. The session stays readable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

// completeLocked stops the clock, fixes the final score and marks the instance completed.
func (c *Controller) completeLocked() Result {
	c.stopTimerLocked()
	s := &c.session
	s.Score = FinalScore(s.FoundCount, s.Difficulty, s.ElapsedSeconds)
	s.Status = StatusCompleted
	return Result{
		Difficulty:     s.Difficulty,
		Score:          s.Score,
		ElapsedSeconds: s.ElapsedSeconds,
		FoundCount:     s.FoundCount,
		TotalWords:     len(s.Words),
		Rating:         Rate(s.FoundCount, len(s.Words), s.ElapsedSeconds),
		Instance:       s.Instance,
	}
}

func (c *Controller) startTimerLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.runTimer(ctx, c.epoch, c.tickEvery)
}

// stopTimerLocked cancels the ticker and bumps the epoch so a tick already
// in flight is dropped.
func (c *Controller) stopTimerLocked() {
	c.epoch++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) runTimer(ctx context.Context, epoch uint64, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.tick(epoch)
		}
	}
}

func (c *Controller) hudLocked() HUD {
	return HUD{
		FoundCount:     c.session.FoundCount,
		TotalWords:     len(c.session.Words),
		Score:          c.session.Score,
		ElapsedSeconds: c.session.ElapsedSeconds,
		Status:         c.session.Status,
	}
}

func (c *Controller) snapshotLocked() Session {
	s := c.session
	s.Grid = c.session.Grid.Clone()
	s.Words = make([]PlacedWord, len(c.session.Words))
	for i, w := range c.session.Words {
		s.Words[i] = w.clone()
	}
	return s
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
