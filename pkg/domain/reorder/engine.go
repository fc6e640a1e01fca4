package reorder

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrGestureDisabled = errors.New("gesture family is disabled for this engine")
	ErrDragInProgress  = errors.New("a drag is already in progress")
	ErrNoActiveDrag    = errors.New("no active drag")
	ErrUnknownRow      = errors.New("unknown row")
)

const (
	DefaultTouchDelay = 200 * time.Millisecond
	DefaultTransition = 150 * time.Millisecond
)

// OrderFunc receives the full key order when a gesture ends.
type OrderFunc func(order []string) error

// Options configures an Engine.
type Options struct {
	Family        Family
	TouchDelay    time.Duration
	Transition    time.Duration
	Scheduler     Scheduler
	OnOrderChange OrderFunc
	// OnVisualChange is called after a timer alters visual state outside of a
	// direct call, such as the delayed dragging marker appearing.
	OnVisualChange func(State)
	Logger         *slog.Logger
	Now            func() time.Time
}

// State is a snapshot of an engine for rendering.
type State struct {
	Phase    string             `json:"phase"`
	Active   string             `json:"active,omitempty"`
	Dragging bool               `json:"dragging"`
	Order    []string           `json:"order"`
	Offsets  map[string]float64 `json:"offsets,omitempty"`
}

// Engine turns pointer or touch gestures on a Layout into order changes.
// Calls and timer callbacks are serialized; at most one drag runs at a time.
type Engine struct {
	mu     sync.Mutex
	opts   Options
	layout *Layout
	fsm    *gesture
	logger *slog.Logger

	active   string
	dragging bool
	offsets  map[string]float64

	startY  float64
	anchorY float64
	startAt time.Time

	// gen invalidates timers that fire after the gesture they belong to ended.
	gen         int
	markerTimer Timer
	settle      map[string]Timer
}

// NewEngine creates an engine over layout for one gesture family.
func NewEngine(layout *Layout, opts Options) (*Engine, error) {
	if layout == nil {
		layout = UniformLayout(nil, 0)
	}
	if opts.Family == "" {
		opts.Family = FamilyPointer
	}
	if opts.Family != FamilyPointer && opts.Family != FamilyTouch {
		return nil, fmt.Errorf("unknown drag family %q", opts.Family)
	}
	if opts.TouchDelay <= 0 {
		opts.TouchDelay = DefaultTouchDelay
	}
	if opts.Transition <= 0 {
		opts.Transition = DefaultTransition
	}
	if opts.Scheduler == nil {
		opts.Scheduler = ClockScheduler()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsm, err := newGesture(opts.Family)
	if err != nil {
		return nil, err
	}
	return &Engine{
		opts:    opts,
		layout:  layout,
		fsm:     fsm,
		logger:  logger,
		offsets: make(map[string]float64),
		settle:  make(map[string]Timer),
	}, nil
}

// Family returns the gesture family the engine accepts.
func (e *Engine) Family() Family { return e.opts.Family }

// SetLayout replaces the geometry. It is refused while a drag is active.
func (e *Engine) SetLayout(layout *Layout) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fsm.phase() != PhaseIdle {
		return ErrDragInProgress
	}
	e.layout = layout
	return nil
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Grab starts a pointer drag of key.
func (e *Engine) Grab(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(FamilyPointer, eventGrab, key); err != nil {
		return err
	}
	e.dragging = true
	e.logger.Debug("drag started", "key", key, "family", FamilyPointer)
	return nil
}

// Over repositions the dragged row for a pointer at y.
func (e *Engine) Over(y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.Family != FamilyPointer {
		return ErrGestureDisabled
	}
	if e.fsm.phase() != PhaseDragging {
		return ErrNoActiveDrag
	}
	before := InsertionPoint(e.layout.Rows(), e.active, y)
	return e.layout.MoveBefore(e.active, before)
}

// Release ends a pointer drag and reports the resulting order.
func (e *Engine) Release() error {
	e.mu.Lock()
	if e.opts.Family != FamilyPointer {
		e.mu.Unlock()
		return ErrGestureDisabled
	}
	if !e.fsm.send(eventRelease) {
		e.mu.Unlock()
		return ErrNoActiveDrag
	}
	key := e.active
	e.active = ""
	e.dragging = false
	order := e.layout.Keys()
	e.mu.Unlock()

	e.logger.Debug("drag ended", "key", key, "family", FamilyPointer)
	return e.notify(order)
}

// TouchStart begins a touch gesture on key at y. The dragging marker appears
// only once the touch has been held for the configured delay.
func (e *Engine) TouchStart(key string, y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.begin(FamilyTouch, eventTouch, key); err != nil {
		return err
	}
	e.startY = y
	e.anchorY = y
	e.startAt = e.opts.Now()

	gen := e.gen
	e.markerTimer = e.opts.Scheduler.AfterFunc(e.opts.TouchDelay, func() {
		e.showMarker(gen)
	})
	return nil
}

// TouchMove offsets the touched row to follow y and swaps it with a
// neighbour once its midpoint crosses the neighbour's midpoint.
func (e *Engine) TouchMove(y float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opts.Family != FamilyTouch {
		return ErrGestureDisabled
	}
	if e.fsm.phase() == PhaseIdle {
		return ErrNoActiveDrag
	}

	for {
		row, _ := e.layout.Row(e.active)
		offset := y - e.anchorY
		mid := row.Mid() + offset
		idx := e.layout.Index(e.active)
		rows := e.layout.Rows()

		var sib Row
		switch {
		case offset < 0 && idx > 0 && mid < rows[idx-1].Mid():
			sib = rows[idx-1]
			e.anchorY -= sib.Height
			e.displace(sib.Key, -row.Height)
		case offset > 0 && idx < len(rows)-1 && mid > rows[idx+1].Mid():
			sib = rows[idx+1]
			e.anchorY += sib.Height
			e.displace(sib.Key, row.Height)
		default:
			e.offsets[e.active] = offset
			return nil
		}
		if err := e.layout.Swap(e.active, sib.Key); err != nil {
			return err
		}
	}
}

// TouchEnd finishes a touch gesture and reports the resulting order. A
// pending dragging marker is cancelled before it can appear.
func (e *Engine) TouchEnd() error {
	e.mu.Lock()
	if e.opts.Family != FamilyTouch {
		e.mu.Unlock()
		return ErrGestureDisabled
	}
	if !e.fsm.send(eventRelease) {
		e.mu.Unlock()
		return ErrNoActiveDrag
	}
	key, startY, held := e.active, e.startY, e.opts.Now().Sub(e.startAt)
	e.gen++
	if e.markerTimer != nil {
		e.markerTimer.Stop()
		e.markerTimer = nil
	}
	for k, t := range e.settle {
		t.Stop()
		delete(e.settle, k)
	}
	e.offsets = make(map[string]float64)
	e.dragging = false
	e.active = ""
	e.startY = 0
	e.anchorY = 0
	e.startAt = time.Time{}
	order := e.layout.Keys()
	e.mu.Unlock()

	e.logger.Debug("drag ended", "key", key, "family", FamilyTouch, "start_y", startY, "held", held)
	return e.notify(order)
}

func (e *Engine) begin(family Family, event, key string) error {
	if e.opts.Family != family {
		return ErrGestureDisabled
	}
	if e.fsm.phase() != PhaseIdle {
		return ErrDragInProgress
	}
	if e.layout.Index(key) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRow, key)
	}
	if !e.fsm.send(event) {
		return ErrGestureDisabled
	}
	e.active = key
	return nil
}

// displace gives a swapped sibling a transient offset that keeps it at its
// old position until the transition settles it.
func (e *Engine) displace(key string, offset float64) {
	if t, ok := e.settle[key]; ok {
		t.Stop()
	}
	e.offsets[key] = offset
	gen := e.gen
	e.settle[key] = e.opts.Scheduler.AfterFunc(e.opts.Transition, func() {
		e.mu.Lock()
		if gen != e.gen {
			e.mu.Unlock()
			return
		}
		delete(e.offsets, key)
		delete(e.settle, key)
		state := e.stateLocked()
		e.mu.Unlock()
		e.visualChanged(state)
	})
}

func (e *Engine) showMarker(gen int) {
	e.mu.Lock()
	if gen != e.gen || !e.fsm.send(eventHold) {
		e.mu.Unlock()
		return
	}
	e.dragging = true
	e.markerTimer = nil
	state := e.stateLocked()
	e.mu.Unlock()

	e.logger.Debug("drag started", "key", state.Active, "family", FamilyTouch)
	e.visualChanged(state)
}

func (e *Engine) visualChanged(s State) {
	if e.opts.OnVisualChange != nil {
		e.opts.OnVisualChange(s)
	}
}

func (e *Engine) notify(order []string) error {
	if e.opts.OnOrderChange == nil {
		return nil
	}
	if err := e.opts.OnOrderChange(order); err != nil {
		return fmt.Errorf("order change: %w", err)
	}
	return nil
}

func (e *Engine) stateLocked() State {
	s := State{
		Phase:    e.fsm.phase(),
		Active:   e.active,
		Dragging: e.dragging,
		Order:    e.layout.Keys(),
	}
	if len(e.offsets) > 0 {
		s.Offsets = make(map[string]float64, len(e.offsets))
		for k, v := range e.offsets {
			s.Offsets[k] = v
		}
	}
	return s
}
