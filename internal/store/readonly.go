package store

// ReadOnly wraps a History for dry runs. Records still land in memory, so
// duplicates within the run are caught, but Save never touches storage.
type ReadOnly struct {
	History
}

// NewReadOnly wraps h. Reads and in-memory Records pass through to h.
func NewReadOnly(h History) *ReadOnly { return &ReadOnly{History: h} }

// Save discards the run's records instead of persisting them.
func (r *ReadOnly) Save() error { return nil }
