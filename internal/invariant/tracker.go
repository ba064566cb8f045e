package invariant

// Candidate is a predicate synthesis result: varName satisfied Name(Args)
// across every recorded observation.
type Candidate struct {
	Var  string
	Name string
	Args []any
}

// Tracker accumulates per-iteration snapshots of a loop's variables so that,
// once the loop exits, Synthesize can propose invariants that held on every
// observed iteration (spec §4.3's recordState/synthesize). Trackers nest:
// entering a loop pushes a child tracker whose parent is the enclosing
// loop's (or nil when no loop encloses it), and exiting pops back to the
// parent.
type Tracker struct {
	parent  *Tracker
	history map[string][]any
}

// NewTracker creates a tracker for a freshly entered loop, nested under
// parent (nil if no enclosing loop is being tracked).
func NewTracker(parent *Tracker) *Tracker {
	return &Tracker{parent: parent, history: make(map[string][]any)}
}

// Parent returns the enclosing tracker, or nil at the outermost context.
func (t *Tracker) Parent() *Tracker { return t.parent }

// RecordState appends one observation of varName's current value, taken at
// a loop-boundary re-check point.
func (t *Tracker) RecordState(varName string, value any) {
	t.history[varName] = append(t.history[varName], value)
}

// Synthesize proposes predicates that held across every recorded
// observation of each tracked variable. Synthesis is advisory: it never
// raises a VerificationFailure by itself, only suggests refinements for the
// type/invariant layer above to attach.
func (t *Tracker) Synthesize() []Candidate {
	var out []Candidate
	for varName, samples := range t.history {
		if len(samples) == 0 {
			continue
		}
		for _, name := range []string{"sorted", "positive", "negative", "non_negative", "unique", "non_empty"} {
			holds := true
			for _, s := range samples {
				ok, err := Eval(name, s, nil)
				if err != nil || !ok {
					holds = false
					break
				}
			}
			if holds {
				out = append(out, Candidate{Var: varName, Name: name})
			}
		}
	}
	return out
}
