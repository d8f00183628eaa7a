package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"AnimBoard/internal/config"
	"AnimBoard/internal/logging"
	"AnimBoard/internal/net"
	"AnimBoard/internal/state"
	"AnimBoard/internal/ui"
)

const browseTimeout = 5 * time.Second

var errNotConnected = errors.New("not connected to a host")

// hostSync publishes through the hub, which cannot fail to send.
type hostSync struct{ *net.Hub }

func (h hostSync) Publish(i int, data string) (state.Layer, error) {
	return h.Hub.Publish(i, data), nil
}

func (h hostSync) PublishFrames(n int) error {
	h.Hub.PublishFrames(n)
	return nil
}

// clientSync publishes through the current connection. Without one, edits
// stay in the local store.
type clientSync struct {
	store  *state.FrameStore
	client atomic.Pointer[net.Client]
}

func (c *clientSync) Publish(i int, data string) (state.Layer, error) {
	if cl := c.client.Load(); cl != nil {
		return cl.Publish(i, data)
	}
	return c.store.SetLocal(i, data), errNotConnected
}

func (c *clientSync) PublishFrames(n int) error {
	if cl := c.client.Load(); cl != nil {
		return cl.PublishFrames(n)
	}
	c.store.Grow(n)
	return errNotConnected
}

func main() {
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	path := config.Path()
	cfg, err := config.Load(path)
	if err != nil {
		logging.Logger().Warn("[BOARD] settings ignored, using defaults", "path", path, "err", err)
	}

	args := os.Args
	if len(args) > 1 && strings.HasPrefix(args[1], cfg.Net.Scheme) {
		runClient(cfg, path, args[1])
	} else {
		runHost(cfg, path)
	}
}

func runHost(cfg config.Config, path string) {
	logger := logging.Logger()
	logger.Info("[HOST] starting", "port", cfg.Net.Port, "site", state.SiteID())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewFrameStore(cfg.Timeline.Frames)
	hub := net.NewHub(store)
	defer hub.Close()

	link := net.ShareLink(cfg.Net.Scheme, net.OutgoingIP(), cfg.Net.Port)
	a := ui.New(ui.Options{
		Title:      "AnimBoard (host)",
		Config:     cfg,
		ConfigPath: path,
		Store:      store,
		Sync:       hostSync{hub},
		ShareLink:  link,
	})
	hub.OnChange = a.Remote

	go func() {
		if err := net.Serve(ctx, fmt.Sprintf(":%d", cfg.Net.Port), net.NewRouter(hub)); err != nil {
			logger.Error("[HOST] server stopped", "err", err)
			a.SetStatus(fmt.Sprintf("Sharing unavailable: %v", err))
		}
	}()
	if cfg.Net.MDNS {
		server, err := net.Advertise(cfg.Net.Port)
		if err != nil {
			logger.Warn("[MDNS] not advertising", "err", err)
		} else {
			defer server.Shutdown()
		}
	}
	logger.Info("[HOST] share link", "link", link)
	a.Run(ctx)
}

func runClient(cfg config.Config, path, link string) {
	logger := logging.Logger()
	logger.Info("[CLIENT] starting", "link", link, "site", state.SiteID())
	addr, err := net.ParseLink(cfg.Net.Scheme, link)
	if err != nil {
		logger.Error("[CLIENT] bad link", "err", err)
		os.Exit(2)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewFrameStore(1)
	sync := &clientSync{store: store}
	a := ui.New(ui.Options{
		Title:      "AnimBoard (client)",
		Config:     cfg,
		ConfigPath: path,
		Store:      store,
		Sync:       sync,
	})
	go connectToHost(ctx, addr, store, sync, a)
	a.Run(ctx)
}

func connectToHost(ctx context.Context, addr string, store *state.FrameStore, sync *clientSync, a *ui.App) {
	logger := logging.Logger()
	if addr == "" {
		a.SetStatus("Looking for a host...")
		found, err := net.Browse(browseTimeout)
		if err != nil {
			logger.Warn("[CLIENT] browse", "err", err)
			a.SetStatus(fmt.Sprintf("No host found: %v", err))
			return
		}
		addr = found
	}

	c, err := net.Dial(ctx, addr, store)
	if err != nil {
		logger.Warn("[CLIENT] dial", "addr", addr, "err", err)
		a.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer c.Close()
	c.OnChange = a.Remote
	sync.client.Store(c)
	a.SetStatus("Connected to host as " + c.LocalAddr())
	logger.Info("[CLIENT] connected", "addr", addr, "local", c.LocalAddr())

	err = c.Run(ctx)
	sync.client.Store(nil)
	if ctx.Err() == nil {
		logger.Warn("[CLIENT] connection ended", "err", err)
		a.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
	}
}
