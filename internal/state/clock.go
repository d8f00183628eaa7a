package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	siteID  = uuid.NewString()
	lamport uint64
)

// SiteID identifies this process in layer revisions.
func SiteID() string { return siteID }

func nextLamport() uint64 {
	return atomic.AddUint64(&lamport, 1)
}

// observeLamport moves the local clock past a remote revision.
func observeLamport(remote uint64) {
	for {
		cur := atomic.LoadUint64(&lamport)
		if remote <= cur || atomic.CompareAndSwapUint64(&lamport, cur, remote) {
			return
		}
	}
}

// Stamp produces a new Layer for data with a fresh id and revision.
func Stamp(data string) Layer {
	return Layer{
		ID:       uuid.NewString(),
		Revision: nextLamport(),
		Site:     siteID,
		Data:     data,
	}
}

// NewEffect returns an effect descriptor with a fresh id.
func NewEffect(t EffectType, color string, intensity float64) Effect {
	return Effect{ID: uuid.NewString(), Type: t, Color: color, Intensity: intensity}
}
