package net

import (
	"encoding/json"
	"fmt"

	"AnimBoard/internal/state"
)

// Message types exchanged between peers.
const (
	TypeLayer  = "layer"  // one frame's layer replaced
	TypeFrames = "frames" // the frame count grew
)

// MaxFrames bounds the frame index a peer may address.
const MaxFrames = 1000

// Message is one JSON websocket message.
type Message struct {
	Type  string       `json:"type"`
	Frame int          `json:"frame,omitempty"`
	Count int          `json:"count,omitempty"`
	Layer *state.Layer `json:"layer,omitempty"`
}

// LayerMessage announces frame i's layer.
func LayerMessage(i int, l state.Layer) Message {
	return Message{Type: TypeLayer, Frame: i, Layer: &l}
}

// FramesMessage announces the frame count.
func FramesMessage(n int) Message {
	return Message{Type: TypeFrames, Count: n}
}

// Validate rejects messages that cannot be applied.
func (m Message) Validate() error {
	switch m.Type {
	case TypeLayer:
		if m.Layer == nil {
			return fmt.Errorf("layer message without layer")
		}
		if m.Frame < 0 || m.Frame >= MaxFrames {
			return fmt.Errorf("frame %d out of range", m.Frame)
		}
	case TypeFrames:
		if m.Count < 1 || m.Count > MaxFrames {
			return fmt.Errorf("frame count %d out of range", m.Count)
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// Apply merges m into store and reports whether anything changed.
func (m Message) Apply(store *state.FrameStore) bool {
	switch m.Type {
	case TypeLayer:
		return store.ApplyRemote(m.Frame, *m.Layer)
	case TypeFrames:
		return store.Grow(m.Count)
	}
	return false
}

func encode(m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		// Message holds only strings and numbers
		panic(err)
	}
	return data
}

// snapshot lists the messages that bring a new peer up to date.
func snapshot(store *state.FrameStore) []Message {
	layers := store.Snapshot()
	out := []Message{FramesMessage(len(layers))}
	for i, l := range layers {
		if l.Revision != 0 {
			out = append(out, LayerMessage(i, l))
		}
	}
	return out
}
