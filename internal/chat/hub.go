// ABOUTME: Registry of chat panels keyed by browser session and panel kind
// ABOUTME: Runs accepted exchanges in the background and evicts idle panels

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/backend"
)

// DefaultIdleTTL is how long an untouched panel is kept
const DefaultIdleTTL = 30 * time.Minute

type hubEntry struct {
	panel    *Panel
	lastUsed time.Time
}

// Hub owns every live panel
type Hub struct {
	mu      sync.Mutex
	panels  map[string]*hubEntry // keyed by "sessionID|kind"
	client  backend.Chatter
	logger  *slog.Logger
	idleTTL time.Duration
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub creates a hub and starts its cleanup loop. A zero idleTTL uses
// DefaultIdleTTL.
func NewHub(client backend.Chatter, idleTTL time.Duration, logger *slog.Logger) *Hub {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		panels:  make(map[string]*hubEntry),
		client:  client,
		logger:  logger.With("component", "chat_hub"),
		idleTTL: idleTTL,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
	}
	h.wg.Add(1)
	go h.cleanupLoop()
	return h
}

// panelKey uses | as delimiter since it's not valid in UUIDs
func panelKey(sessionID string, kind Kind) string {
	return sessionID + "|" + string(kind)
}

// Panel returns the session's panel of the given kind, creating it on first use.
func (h *Hub) Panel(sessionID string, kind Kind) *Panel {
	key := panelKey(sessionID, kind)

	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.panels[key]; ok {
		e.lastUsed = h.now()
		return e.panel
	}

	p := NewPanel(kind, h.client, h.logger)
	h.panels[key] = &hubEntry{panel: p, lastUsed: h.now()}
	return p
}

// Dispatch accepts input on a panel and finishes the exchange in the
// background. Validation errors are returned synchronously.
func (h *Hub) Dispatch(p *Panel, input string) error {
	x, err := p.Begin(input)
	if err != nil {
		return err
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := x.Run(h.ctx); err != nil {
			h.logger.Debug("exchange settled with error", "panel", string(p.Kind()), "error", err)
		}
	}()
	return nil
}

// ResetSession resets every panel owned by the session.
func (h *Hub) ResetSession(sessionID string) {
	h.mu.Lock()
	var targets []*Panel
	for _, kind := range []Kind{KindSingle, KindTeam} {
		if e, ok := h.panels[panelKey(sessionID, kind)]; ok {
			e.lastUsed = h.now()
			targets = append(targets, e.panel)
		}
	}
	h.mu.Unlock()

	for _, p := range targets {
		p.Reset()
	}
}

// Len returns the number of live panels
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.panels)
}

func (h *Hub) cleanupLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.evictIdle()
		}
	}
}

// evictIdle drops panels unused for longer than the idle TTL. Panels with a
// request in flight are kept.
func (h *Hub) evictIdle() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	evicted := 0
	for key, e := range h.panels {
		if now.Sub(e.lastUsed) <= h.idleTTL || e.panel.Loading() {
			continue
		}
		delete(h.panels, key)
		evicted++
	}
	if evicted > 0 {
		h.logger.Debug("evicted idle panels", "count", evicted)
	}
	return evicted
}

// Close cancels in-flight exchanges, stops the cleanup loop and waits for
// background work to finish.
func (h *Hub) Close() {
	h.cancel()
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.panels {
		delete(h.panels, key)
	}
}
