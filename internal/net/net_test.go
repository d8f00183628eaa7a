package net

import (
	"context"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"AnimBoard/internal/raster"
	"AnimBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHost(t *testing.T, store *state.FrameStore) (*Hub, string) {
	t.Helper()
	hub := NewHub(store)
	srv := httptest.NewServer(NewRouter(hub))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, strings.TrimPrefix(srv.URL, "http://")
}

// changes collects OnChange calls.
type changes struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *changes) add(m Message) {
	c.mu.Lock()
	c.msgs = append(c.msgs, m)
	c.mu.Unlock()
}

func (c *changes) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func connect(t *testing.T, addr string) (*Client, *state.FrameStore, *changes) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	store := state.NewFrameStore(1)
	c, err := Dial(ctx, addr, store)
	require.NoError(t, err)
	ch := &changes{}
	c.OnChange = ch.add
	go func() { _ = c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = c.Close()
	})
	return c, store, ch
}

func TestClientReceivesSnapshot(t *testing.T) {
	store := state.NewFrameStore(3)
	store.SetLocal(1, "frame-one")
	_, addr := startHost(t, store)

	_, local, _ := connect(t, addr)
	assert.Eventually(t, func() bool {
		return local.Len() == 3 && local.Get(1).Data == "frame-one"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, store.Get(1), local.Get(1))
}

func TestUpdatesRelayBetweenPeers(t *testing.T) {
	hostStore := state.NewFrameStore(1)
	hub, addr := startHost(t, hostStore)
	hostChanges := &changes{}
	hub.OnChange = hostChanges.add

	a, _, _ := connect(t, addr)
	_, bStore, bChanges := connect(t, addr)
	require.Eventually(t, func() bool { return hub.Peers() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.PublishFrames(2))
	_, err := a.Publish(1, "from-a")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return bStore.Get(1).Data == "from-a" }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "from-a", hostStore.Get(1).Data)
	assert.Eventually(t, func() bool { return hostChanges.len() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return bChanges.len() >= 2 }, 2*time.Second, 10*time.Millisecond)

	// host edits reach every peer
	hub.Publish(0, "from-host")
	assert.Eventually(t, func() bool { return bStore.Get(0).Data == "from-host" }, 2*time.Second, 10*time.Millisecond)
}

func TestStaleUpdateIsNotRelayed(t *testing.T) {
	hostStore := state.NewFrameStore(1)
	hub, addr := startHost(t, hostStore)
	applied := &changes{}
	hub.OnChange = applied.add

	a, _, _ := connect(t, addr)
	require.Eventually(t, func() bool { return hub.Peers() == 1 }, 2*time.Second, 10*time.Millisecond)

	newest := hostStore.SetLocal(0, "newest")
	old := newest
	old.Revision = newest.Revision - 1
	old.Data = "old"
	require.NoError(t, a.send(LayerMessage(0, old)))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "newest", hostStore.Get(0).Data)
	assert.Zero(t, applied.len())
}

func TestMessageValidate(t *testing.T) {
	l := state.Layer{Revision: 1}
	for name, tc := range map[string]struct {
		msg Message
		ok  bool
	}{
		"layer":         {LayerMessage(3, l), true},
		"frames":        {FramesMessage(4), true},
		"missing layer": {Message{Type: TypeLayer}, false},
		"negative":      {LayerMessage(-1, l), false},
		"too far":       {LayerMessage(MaxFrames, l), false},
		"zero frames":   {FramesMessage(0), false},
		"unknown":       {Message{Type: "clear"}, false},
	} {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFrameEndpoints(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	data, err := raster.Encode(img)
	require.NoError(t, err)

	store := state.NewFrameStore(2)
	store.SetLocal(0, data)
	_, addr := startHost(t, store)
	base := "http://" + addr

	res, err := http.Get(base + "/frames/0.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	want, _ := raster.PNG(data)
	assert.Equal(t, want, body)

	for path, code := range map[string]int{
		"/frames/1.png":  http.StatusNotFound,
		"/frames/9.png":  http.StatusNotFound,
		"/frames/x.png":  http.StatusBadRequest,
		"/frames/-1.png": http.StatusBadRequest,
	} {
		res, err := http.Get(base + path)
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, code, res.StatusCode, path)
	}

	res, err = http.Get(base + "/frames")
	require.NoError(t, err)
	defer res.Body.Close()
	var count map[string]int
	require.NoError(t, json.NewDecoder(res.Body).Decode(&count))
	assert.Equal(t, 2, count["count"])
}

func TestLinks(t *testing.T) {
	link := ShareLink("animboard://", []byte{192, 168, 1, 20}, 8888)
	assert.Equal(t, "animboard://192.168.1.20:8888", link)

	addr, err := ParseLink("animboard://", link+"/")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.20:8888", addr)

	addr, err = ParseLink("animboard://", "animboard://")
	require.NoError(t, err)
	assert.Empty(t, addr)

	_, err = ParseLink("animboard://", "localboard://1.2.3.4:1")
	assert.Error(t, err)
	_, err = ParseLink("animboard://", "animboard://nohost")
	assert.Error(t, err)
}
