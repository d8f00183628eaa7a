package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"AnimBoard/internal/logging"
	"AnimBoard/internal/state"

	"github.com/gorilla/websocket"
)

// Client is run by a CLIENT. It mirrors the host's frames into a local store
// and sends local edits to the host.
type Client struct {
	store *state.FrameStore

	mu   sync.Mutex // serialises writes
	conn *websocket.Conn

	// OnChange is called after a host message changed the store.
	OnChange func(m Message)
}

// Dial connects to the host at addr ("ip:port").
func Dial(ctx context.Context, addr string, store *state.FrameStore) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to host %s: %w", addr, err)
	}
	conn.SetReadLimit(maxMessage)
	return &Client{store: store, conn: conn}, nil
}

// LocalAddr is the client's side of the connection.
func (c *Client) LocalAddr() string { return c.conn.LocalAddr().String() }

// Run applies host messages until the connection ends or ctx is done.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("disconnected from host: %w", err)
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			logging.Logger().Warn("[CLIENT] bad message", "err", err)
			continue
		}
		if err := m.Validate(); err != nil {
			logging.Logger().Warn("[CLIENT] rejected message", "err", err)
			continue
		}
		if m.Apply(c.store) && c.OnChange != nil {
			c.OnChange(m)
		}
	}
}

func (c *Client) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Type, err)
	}
	return nil
}

// Publish stores a local edit of frame i and sends it to the host.
func (c *Client) Publish(i int, data string) (state.Layer, error) {
	l := c.store.SetLocal(i, data)
	return l, c.send(LayerMessage(i, l))
}

// PublishFrames grows the store to n frames and tells the host.
func (c *Client) PublishFrames(n int) error {
	if !c.store.Grow(n) {
		return nil
	}
	return c.send(FramesMessage(c.store.Len()))
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.conn.Close()
}
