package state

import (
	"sync"

	"AnimBoard/internal/logging"
)

// FrameStore holds one Layer per animation frame. Each frame is a
// last-writer-wins register ordered by (Revision, Site), so peers applying the
// same set of updates in any order converge.
type FrameStore struct {
	mu     sync.RWMutex
	frames []Layer
}

// NewFrameStore creates a store with count empty frames (at least one).
func NewFrameStore(count int) *FrameStore {
	if count < 1 {
		count = 1
	}
	return &FrameStore{frames: make([]Layer, count)}
}

// newer reports whether a supersedes b.
func newer(a, b Layer) bool {
	if a.Revision != b.Revision {
		return a.Revision > b.Revision
	}
	return a.Site > b.Site
}

// Len returns the number of frames.
func (fs *FrameStore) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.frames)
}

// Get returns frame i, or an empty layer when out of range.
func (fs *FrameStore) Get(i int) Layer {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if i < 0 || i >= len(fs.frames) {
		return Layer{}
	}
	return fs.frames[i]
}

// Neighbors returns the layers either side of frame i.
func (fs *FrameStore) Neighbors(i int) (prev, next Layer) {
	return fs.Get(i - 1), fs.Get(i + 1)
}

// SetLocal stamps data with a new revision and stores it as frame i.
// The stamped layer is returned for broadcasting.
func (fs *FrameStore) SetLocal(i int, data string) Layer {
	l := Stamp(data)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.grow(i + 1)
	fs.frames[i] = l
	logging.Logger().Debug("[CRDT] local layer", "frame", i, "rev", l.Revision)
	return l
}

// ApplyRemote merges a layer received from a peer and reports whether it
// replaced the stored one.
func (fs *FrameStore) ApplyRemote(i int, l Layer) bool {
	if i < 0 {
		return false
	}
	observeLamport(l.Revision)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.grow(i + 1)
	if !newer(l, fs.frames[i]) {
		logging.Logger().Debug("[CRDT] stale layer ignored", "frame", i, "rev", l.Revision, "site", l.Site)
		return false
	}
	fs.frames[i] = l
	logging.Logger().Debug("[CRDT] remote layer", "frame", i, "rev", l.Revision, "site", l.Site)
	return true
}

// Grow extends the store to at least n frames and reports whether it grew.
func (fs *FrameStore) Grow(n int) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.grow(n)
}

func (fs *FrameStore) grow(n int) bool {
	if n <= len(fs.frames) {
		return false
	}
	fs.frames = append(fs.frames, make([]Layer, n-len(fs.frames))...)
	return true
}

// Snapshot copies every frame.
func (fs *FrameStore) Snapshot() []Layer {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]Layer, len(fs.frames))
	copy(out, fs.frames)
	return out
}
