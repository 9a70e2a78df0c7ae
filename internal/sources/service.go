// ABOUTME: Source token capture and connection status over the key-value store
// ABOUTME: Status is derived from whether a readable token is stored

package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/store"
)

// Service errors
var (
	ErrEmptyToken    = errors.New("token is empty")
	ErrUnknownSource = errors.New("unknown source")
)

// Status is a source's connection state
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Notification messages shared with the web layer
const (
	MsgInvalidToken = "Please enter a valid token"
	msgSavedFmt     = "%s token saved successfully"
	msgRemovedFmt   = "%s disconnected"
)

// SavedMessage is the confirmation shown after a token is stored
func SavedMessage(name string) string {
	return fmt.Sprintf(msgSavedFmt, name)
}

// RemovedMessage is the confirmation shown after a token is deleted
func RemovedMessage(name string) string {
	return fmt.Sprintf(msgRemovedFmt, name)
}

// SourceStatus pairs a source with its derived status
type SourceStatus struct {
	Source
	Status Status
}

// Service writes and inspects source tokens
type Service struct {
	store  store.Store
	logger *slog.Logger
}

// NewService creates a Service over st
func NewService(st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  st,
		logger: logger.With("component", "sources"),
	}
}

// SaveToken stores token under "<id>_token". The token is trimmed; an empty
// result writes nothing. The value is not verified against the source.
func (s *Service) SaveToken(ctx context.Context, sourceID, token string) (Source, error) {
	src, ok := Lookup(sourceID)
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return src, ErrEmptyToken
	}

	if err := s.store.SetToken(ctx, src.TokenKey(), token); err != nil {
		return src, fmt.Errorf("saving %s token: %w", src.ID, err)
	}
	s.logger.Info("source token saved", "source", src.ID)
	return src, nil
}

// DisconnectSource deletes a stored token. Disconnecting a source with no
// token succeeds.
func (s *Service) DisconnectSource(ctx context.Context, sourceID string) (Source, error) {
	src, ok := Lookup(sourceID)
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	err := s.store.DeleteToken(ctx, src.TokenKey())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return src, fmt.Errorf("removing %s token: %w", src.ID, err)
	}
	s.logger.Info("source disconnected", "source", src.ID)
	return src, nil
}

// Status derives one source's connection state from the store.
func (s *Service) Status(ctx context.Context, sourceID string) (Status, error) {
	src, ok := Lookup(sourceID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}
	tok, err := s.store.GetToken(ctx, src.TokenKey())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return StatusDisconnected, nil
	case errors.Is(err, store.ErrUnseal):
		return StatusError, nil
	case err != nil:
		return "", fmt.Errorf("reading %s token: %w", src.ID, err)
	case tok.Value == "":
		return StatusDisconnected, nil
	}
	return StatusConnected, nil
}

// Statuses returns every listed source with its derived status. A store
// failure on one source marks it as errored rather than failing the page.
func (s *Service) Statuses(ctx context.Context, list []Source) []SourceStatus {
	out := make([]SourceStatus, 0, len(list))
	for _, src := range list {
		st, err := s.Status(ctx, src.ID)
		if err != nil {
			s.logger.Warn("reading source status", "source", src.ID, "error", err)
			st = StatusError
		}
		out = append(out, SourceStatus{Source: src, Status: st})
	}
	return out
}

// ConnectedCount counts statuses that are connected
func ConnectedCount(list []SourceStatus) int {
	n := 0
	for _, s := range list {
		if s.Status == StatusConnected {
			n++
		}
	}
	return n
}
