// ABOUTME: Per-session notifications that survive one redirect
// ABOUTME: Backs the toasts shown after token saves, disconnects and agent creation

package web

import (
	"sync"
	"time"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/chat"
)

const (
	// maxFlashes bounds queued notifications per session
	maxFlashes = 8

	// flashTTL is how long a queued notification waits for its session to
	// load a page
	flashTTL = 10 * time.Minute
)

type flashQueue struct {
	notes []chat.Notification
	added time.Time
}

type flashStore struct {
	mu      sync.Mutex
	pending map[string]flashQueue
	ttl     time.Duration
	now     func() time.Time
}

func newFlashStore(ttl time.Duration) *flashStore {
	return &flashStore{
		pending: make(map[string]flashQueue),
		ttl:     ttl,
		now:     time.Now,
	}
}

// add queues a notification. Queues left unread past the TTL are dropped.
func (f *flashStore) add(sessionID string, n chat.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	for key, q := range f.pending {
		if now.Sub(q.added) >= f.ttl {
			delete(f.pending, key)
		}
	}

	q := f.pending[sessionID]
	q.notes = append(q.notes, n)
	if len(q.notes) > maxFlashes {
		q.notes = q.notes[len(q.notes)-maxFlashes:]
	}
	q.added = now
	f.pending[sessionID] = q
}

func (f *flashStore) take(sessionID string) []chat.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	q, ok := f.pending[sessionID]
	delete(f.pending, sessionID)
	if !ok || f.now().Sub(q.added) >= f.ttl {
		return nil
	}
	return q.notes
}

func (f *flashStore) queued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

func successToast(description string) chat.Notification {
	return chat.Notification{Title: "Success", Description: description, Variant: chat.VariantDefault}
}

func errorToast(description string) chat.Notification {
	return chat.Notification{Title: "Error", Description: description, Variant: chat.VariantDestructive}
}
