package controller

// State is the device behavior state. It is owned exclusively by the
// Controller and mutated only through the transition table; sensor
// goroutines raise events, never touch the state directly.
type State int

const (
	Booting State = iota
	Baseline
	Waiting
	Engaged
	GuidingFatigue
	GuidingMode1
	GuidingMode2
	GuidingMode3
	DeskIdle
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Booting:
		return "Booting"
	case Baseline:
		return "Baseline"
	case Waiting:
		return "Waiting"
	case Engaged:
		return "Engaged"
	case GuidingFatigue:
		return "GuidingFatigue"
	case GuidingMode1:
		return "GuidingMode1"
	case GuidingMode2:
		return "GuidingMode2"
	case GuidingMode3:
		return "GuidingMode3"
	case DeskIdle:
		return "DeskIdle"
	default:
		return "Unknown"
	}
}

// Event is a transition trigger raised by monitor goroutines or behavior
// workers. Events whose source state does not match the current state are
// silently ignored.
type Event int

const (
	EvStart Event = iota
	EvBaselineDone
	EvPersonDetected
	EvLostPerson
	EvNeedFatigue
	EvNeedMode1
	EvNeedMode2
	EvNeedMode3
	EvEnterIdle
	EvIdleDone
	EvGuideFinished
)

// String returns a human-readable representation of the event.
func (e Event) String() string {
	switch e {
	case EvStart:
		return "start"
	case EvBaselineDone:
		return "baseline_done"
	case EvPersonDetected:
		return "person_detected"
	case EvLostPerson:
		return "lost_person"
	case EvNeedFatigue:
		return "need_fatigue"
	case EvNeedMode1:
		return "need_mode1"
	case EvNeedMode2:
		return "need_mode2"
	case EvNeedMode3:
		return "need_mode3"
	case EvEnterIdle:
		return "enter_idle"
	case EvIdleDone:
		return "idle_done"
	case EvGuideFinished:
		return "guide_finished"
	default:
		return "unknown"
	}
}

// guiding groups the states that share the lost-person and guide-finished
// transitions.
var guiding = []State{GuidingFatigue, GuidingMode1, GuidingMode2, GuidingMode3}

type transition struct {
	event   Event
	sources []State
	dest    State
}

// transitions is the closed transition table. Dispatch resolves an event
// against the current state here; anything unlisted is a no-op.
var transitions = []transition{
	{EvStart, []State{Booting}, Baseline},
	{EvBaselineDone, []State{Baseline}, Waiting},
	{EvPersonDetected, []State{Waiting}, Engaged},
	{EvLostPerson, append([]State{Engaged, DeskIdle}, guiding...), Waiting},
	{EvNeedFatigue, []State{Engaged}, GuidingFatigue},
	{EvNeedMode1, []State{Engaged, DeskIdle}, GuidingMode1},
	{EvNeedMode2, []State{Engaged, DeskIdle}, GuidingMode2},
	{EvNeedMode3, []State{Engaged, DeskIdle}, GuidingMode3},
	{EvEnterIdle, []State{Engaged, GuidingMode1, GuidingMode2, GuidingMode3}, DeskIdle},
	{EvIdleDone, []State{DeskIdle}, Waiting},
	{EvGuideFinished, guiding, Waiting},
}

// lookup resolves (event, source) to a destination state.
func lookup(ev Event, from State) (State, bool) {
	for _, t := range transitions {
		if t.event != ev {
			continue
		}
		for _, src := range t.sources {
			if src == from {
				return t.dest, true
			}
		}
	}
	return from, false
}
