package reorder

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Gesture phases.
const (
	PhaseIdle     = "idle"
	PhasePending  = "pending"
	PhaseDragging = "dragging"
)

const (
	eventGrab    = "grab"
	eventTouch   = "touch"
	eventHold    = "hold"
	eventRelease = "release"
)

// Family selects the gesture capability set an engine accepts.
type Family string

const (
	FamilyPointer Family = "pointer"
	FamilyTouch   Family = "touch"
)

// ParseFamily maps a config value to a Family.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyPointer, FamilyTouch:
		return Family(s), nil
	case "":
		return FamilyPointer, nil
	}
	return "", fmt.Errorf("unknown drag family %q", s)
}

type gestureContext struct {
	Family Family
}

// gesture tracks the phase of the single drag an engine may run.
type gesture struct {
	interpreter *statekit.Interpreter[gestureContext]
}

func newGesture(family Family) (*gesture, error) {
	builder := statekit.NewMachine[gestureContext]("drag-gesture").
		WithInitial(statekit.StateID(PhaseIdle)).
		WithContext(gestureContext{Family: family}).
		WithGuard("pointerFamily", func(ctx gestureContext, _ statekit.Event) bool {
			return ctx.Family == FamilyPointer
		}).
		WithGuard("touchFamily", func(ctx gestureContext, _ statekit.Event) bool {
			return ctx.Family == FamilyTouch
		})

	builder.State(PhaseIdle).
		On(eventGrab).Target(PhaseDragging).Guard("pointerFamily").
		On(eventTouch).Target(PhasePending).Guard("touchFamily").
		Done()

	builder.State(PhasePending).
		On(eventHold).Target(PhaseDragging).
		On(eventRelease).Target(PhaseIdle).
		Done()

	builder.State(PhaseDragging).
		On(eventRelease).Target(PhaseIdle).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build gesture machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &gesture{interpreter: interpreter}, nil
}

// send fires event and reports whether the phase changed.
func (g *gesture) send(event string) bool {
	before := g.phase()
	g.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	return g.phase() != before
}

func (g *gesture) phase() string {
	return string(g.interpreter.State().Value)
}
