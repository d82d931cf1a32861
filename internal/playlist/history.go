package playlist

// QueueHistory maintains a history of queue states for undo/redo.
type QueueHistory struct {
	states  []QueueState
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewQueueHistory creates a new history with the given maximum size.
func NewQueueHistory(maxSize int) *QueueHistory {
	return &QueueHistory{
		states:  make([]QueueState, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push saves a snapshot of the queue state.
// Clears any redo states and trims if over limit.
func (h *QueueHistory) Push(st QueueState) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, st.Clone())
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = h.states[excess:]
		h.current -= excess
	}
}

// Undo returns the previous queue state.
// Returns false if nothing to undo.
func (h *QueueHistory) Undo() (QueueState, bool) {
	if !h.CanUndo() {
		return QueueState{}, false
	}
	h.current--
	return h.states[h.current].Clone(), true
}

// Redo returns the next queue state.
// Returns false if nothing to redo.
func (h *QueueHistory) Redo() (QueueState, bool) {
	if !h.CanRedo() {
		return QueueState{}, false
	}
	h.current++
	return h.states[h.current].Clone(), true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *QueueHistory) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *QueueHistory) CanRedo() bool {
	return h.current < len(h.states)-1
}

// Reset drops all recorded states.
func (h *QueueHistory) Reset() {
	h.states = h.states[:0]
	h.current = -1
}
