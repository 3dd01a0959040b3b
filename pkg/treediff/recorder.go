package treediff

// RecordedChange is a change paired with the full relative path it was
// reported at.
type RecordedChange struct {
	Path   string
	Change Change
}

// Recorder is an Observer that rebuilds full paths from the component
// protocol and collects every change. The path lives in one growable buffer
// with a truncation mark per depth, so deep unchanged sub-trees cost nothing
// beyond the mark bookkeeping.
type Recorder struct {
	// CancelAt, when non-nil, is consulted after each change; returning true
	// stops the traversal.
	CancelAt func(RecordedChange) bool

	Changes []RecordedChange

	path  []byte
	marks []int
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// UpdatePathComponent maintains the path buffer for the current depth.
func (r *Recorder) UpdatePathComponent(component PathComponent, update PathUpdate) {
	switch update {
	case PathReplace:
		r.path = append(r.path[:r.base()], component.Name...)
	case PathPush:
		r.path = append(r.path[:r.base()], component.Name...)
		r.path = append(r.path, '/')
		r.marks = append(r.marks, len(r.path))
	case PathPop:
		r.marks = r.marks[:len(r.marks)-1]
	}
}

// Record stores the change under the currently tracked path.
func (r *Recorder) Record(change Change) Action {
	recorded := RecordedChange{Path: string(r.path), Change: change}
	r.Changes = append(r.Changes, recorded)

	if r.CancelAt != nil && r.CancelAt(recorded) {
		return Cancel
	}

	return Continue
}

// Paths returns the recorded paths in emission order.
func (r *Recorder) Paths() []string {
	paths := make([]string, len(r.Changes))
	for i, rc := range r.Changes {
		paths[i] = rc.Path
	}

	return paths
}

func (r *Recorder) base() int {
	if len(r.marks) == 0 {
		return 0
	}

	return r.marks[len(r.marks)-1]
}
