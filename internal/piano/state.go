package piano

// Edge is the transition a finger made between two consecutive frames.
type Edge int

const (
	EdgeNone Edge = iota
	// EdgePress is a rising edge: extended to curled.
	EdgePress
	// EdgeRelease is a falling edge: curled to extended.
	EdgeRelease
)

func (e Edge) String() string {
	switch e {
	case EdgePress:
		return "press"
	case EdgeRelease:
		return "release"
	}
	return "none"
}

// Step advances one finger's two-state machine (false = Extended,
// true = Curled) with this frame's observation.
func Step(curled, observed bool) (bool, Edge) {
	switch {
	case !curled && observed:
		return true, EdgePress
	case curled && !observed:
		return false, EdgeRelease
	}
	return curled, EdgeNone
}

// Event is one finger transition detected in a frame.
type Event struct {
	Hand   Hand
	Finger Finger
	Edge   Edge
}

// TrackedHand owns the finger states of one hand identity.
type TrackedHand struct {
	hand  Hand
	state Curl
}

// newTrackedHand starts a hand with every finger extended.
func newTrackedHand(h Hand) *TrackedHand {
	return &TrackedHand{hand: h}
}

// seed records the first sighting's classification without producing edges.
func (t *TrackedHand) seed(observed Curl) {
	t.state = observed
}

// Hand returns the identity this state belongs to.
func (t *TrackedHand) Hand() Hand { return t.hand }

// State returns a copy of the current finger states.
func (t *TrackedHand) State() Curl { return t.state }

// Apply feeds one frame's classification through every finger's state
// machine and appends the resulting edges to events.
func (t *TrackedHand) Apply(observed Curl, events []Event) []Event {
	for _, f := range Fingers {
		next, edge := Step(t.state[f], observed[f])
		t.state[f] = next
		if edge != EdgeNone {
			events = append(events, Event{Hand: t.hand, Finger: f, Edge: edge})
		}
	}
	return events
}
