package selection

// Phase is the position of the current selection in its lifecycle.
type Phase int

// Selection lifecycle. PrimaryFailed, DependentFailed and Settled are terminal for a token.
const (
	PhaseIdle Phase = iota
	PhaseFetchingPrimary
	PhasePrimaryFailed
	PhaseFetchingDependent
	PhaseDependentFailed
	PhaseSettled
)

var phaseNames = map[Phase]string{
	PhaseIdle:              "idle",
	PhaseFetchingPrimary:   "fetching_primary",
	PhasePrimaryFailed:     "primary_failed",
	PhaseFetchingDependent: "fetching_dependent",
	PhaseDependentFailed:   "dependent_failed",
	PhaseSettled:           "settled",
}

// String returns the snake_case name of the phase.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions happen for the selection.
func (p Phase) Terminal() bool {
	return p == PhasePrimaryFailed || p == PhaseDependentFailed || p == PhaseSettled
}

// DependentStatus distinguishes "not loaded" from "nothing to load".
type DependentStatus int

const (
	// DependentNone means the dependent resource is not loaded: pending, failed or never requested.
	DependentNone DependentStatus = iota
	// DependentAbsent means the primary resource has no dependent reference.
	DependentAbsent
	// DependentPresent means Value holds the fetched dependent resource.
	DependentPresent
)

// Dependent holds the dependent slot of a ViewState.
type Dependent[D any] struct {
	Status DependentStatus
	Value  D
}

// Get returns the value and true when the dependent resource is present.
func (d Dependent[D]) Get() (D, bool) {
	if d.Status != DependentPresent {
		var zero D
		return zero, false
	}
	return d.Value, true
}

// IsAbsent reports whether the primary resource had nothing to fetch.
func (d Dependent[D]) IsAbsent() bool {
	return d.Status == DependentAbsent
}

// ErrorInfo is the displayable error of a ViewState.
type ErrorInfo struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// ViewState is a snapshot of everything an observer may render.
type ViewState[P any, D any] struct {
	Candidates []Identifier
	SelectedID *Identifier
	Primary    *P
	Dependent  Dependent[D]
	Loading    bool
	Error      *ErrorInfo

	// Phase and Token describe the selection the snapshot belongs to.
	Phase Phase
	Token uint64
}

// clone copies the parts of the snapshot a receiver could mutate.
func (s ViewState[P, D]) clone() ViewState[P, D] {
	out := s
	if s.Candidates != nil {
		out.Candidates = make([]Identifier, len(s.Candidates))
		copy(out.Candidates, s.Candidates)
	}
	if s.Primary != nil {
		primary := *s.Primary
		out.Primary = &primary
	}
	if s.SelectedID != nil {
		id := *s.SelectedID
		out.SelectedID = &id
	}
	if s.Error != nil {
		info := *s.Error
		out.Error = &info
	}
	return out
}
