// ABOUTME: In-memory agent preset store behind the agent configuration screen
// ABOUTME: One canonical list addressed by id; each session's selected agent is resolved on read

package agents

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ukasha-khalid-spursol/knowledge-weave-copilot/internal/config"
)

// Preset statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultSelectionTTL is how long an untouched session selection is kept
const DefaultSelectionTTL = 24 * time.Hour

// DefaultSourceNames are the sources every preset can draw from
var DefaultSourceNames = []string{"Jira", "Confluence", "Notion"}

// Store errors
var (
	ErrAgentNotFound = errors.New("agent not found")
	ErrSourceIndex   = errors.New("source index out of range")
	ErrNameRequired  = errors.New("agent name is required")
)

// PresetSource is one data source switch on a preset
type PresetSource struct {
	Name    string
	Enabled bool
}

// Preset is a named agent configuration
type Preset struct {
	ID          string
	Name        string
	Description string
	Tone        string
	Prompt      string
	Sources     []PresetSource
	Status      string
}

// EnabledCount returns how many sources are switched on
func (p Preset) EnabledCount() int {
	n := 0
	for _, s := range p.Sources {
		if s.Enabled {
			n++
		}
	}
	return n
}

func (p Preset) clone() Preset {
	p.Sources = append([]PresetSource(nil), p.Sources...)
	return p
}

// Draft is the content of the creation form
type Draft struct {
	Name        string
	Description string
	Tone        string
	Prompt      string
}

// selection is the preset one session has open in the detail view
type selection struct {
	id      string
	touched time.Time
}

// Store holds presets for the lifetime of the process. Presets are shared;
// the detail view selection is kept per session.
type Store struct {
	mu           sync.RWMutex
	presets      []Preset
	selections   map[string]selection
	selectionTTL time.Duration
	sourceNames  []string
	logger       *slog.Logger
	idFunc       func() string
	now          func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithSelectionTTL sets how long an untouched session selection is kept.
// Non-positive values keep the default.
func WithSelectionTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.selectionTTL = d
		}
	}
}

// NewStore creates a store seeded with presets. Sessions that have not
// selected anything see the first preset.
func NewStore(seed []Preset, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		selections:   make(map[string]selection),
		selectionTTL: DefaultSelectionTTL,
		sourceNames:  append([]string(nil), DefaultSourceNames...),
		logger:       logger.With("component", "agents"),
		idFunc:       uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, p := range seed {
		s.presets = append(s.presets, p.clone())
	}
	return s
}

// FromConfig builds presets from configuration seeds, falling back to the
// built-in defaults when none are configured. Seeds without an id get a slug
// of their name, or a random id when the slug is empty or already taken.
func FromConfig(seeds []config.AgentPreset) []Preset {
	return fromConfig(seeds, uuid.NewString)
}

func fromConfig(seeds []config.AgentPreset, newID func() string) []Preset {
	if len(seeds) == 0 {
		return DefaultPresets()
	}

	used := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		if seed.ID != "" {
			used[seed.ID] = true
		}
	}

	presets := make([]Preset, 0, len(seeds))
	for _, seed := range seeds {
		status := seed.Status
		if status == "" {
			status = StatusActive
		}
		id := seed.ID
		if id == "" {
			id = slugify(seed.Name)
			for id == "" || used[id] {
				id = newID()
			}
			used[id] = true
		}
		presets = append(presets, Preset{
			ID:          id,
			Name:        seed.Name,
			Description: seed.Description,
			Tone:        seed.Tone,
			Prompt:      seed.Prompt,
			Sources:     sourcesFor(seed.Sources),
			Status:      status,
		})
	}
	return presets
}

// sourcesFor lists the default sources with the named ones enabled. Names
// outside the defaults are appended as enabled entries.
func sourcesFor(enabled []string) []PresetSource {
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[strings.ToLower(strings.TrimSpace(name))] = true
	}
	out := make([]PresetSource, 0, len(DefaultSourceNames))
	for _, name := range DefaultSourceNames {
		key := strings.ToLower(name)
		out = append(out, PresetSource{Name: name, Enabled: on[key]})
		delete(on, key)
	}
	for _, name := range enabled {
		key := strings.ToLower(strings.TrimSpace(name))
		if on[key] {
			out = append(out, PresetSource{Name: strings.TrimSpace(name), Enabled: true})
			delete(on, key)
		}
	}
	return out
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// List returns copies of every preset in insertion order.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preset, len(s.presets))
	for i, p := range s.presets {
		out[i] = p.clone()
	}
	return out
}

// Get returns a copy of one preset.
func (s *Store) Get(id string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return Preset{}, fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	return s.presets[i].clone(), nil
}

// Toggle flips one source switch on one preset and returns its new value.
func (s *Store) Toggle(agentID string, sourceIndex int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(agentID)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	sources := s.presets[i].Sources
	if sourceIndex < 0 || sourceIndex >= len(sources) {
		return false, fmt.Errorf("%w: %d", ErrSourceIndex, sourceIndex)
	}
	sources[sourceIndex].Enabled = !sources[sourceIndex].Enabled

	s.logger.Debug("toggled preset source",
		"agent_id", agentID,
		"source", sources[sourceIndex].Name,
		"enabled", sources[sourceIndex].Enabled,
	)
	return sources[sourceIndex].Enabled, nil
}

// Select records which preset the session's detail view shows. Expired
// selections from other sessions are dropped on the way.
func (s *Store) Select(sessionID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, id)
	}
	now := s.now()
	s.pruneLocked(now)
	s.selections[sessionID] = selection{id: id, touched: now}
	return nil
}

// Selected resolves the session's selection against the canonical list,
// falling back to the first preset.
func (s *Store) Selected(sessionID string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := -1
	if sel, ok := s.selections[sessionID]; ok && s.now().Sub(sel.touched) < s.selectionTTL {
		i = s.indexLocked(sel.id)
	}
	if i < 0 && len(s.presets) > 0 {
		i = 0
	}
	if i < 0 {
		return Preset{}, false
	}
	return s.presets[i].clone(), true
}

// pruneLocked must be called with mu held for writing
func (s *Store) pruneLocked(now time.Time) {
	for key, sel := range s.selections {
		if now.Sub(sel.touched) >= s.selectionTTL {
			delete(s.selections, key)
		}
	}
}

// Create validates a draft and appends it as a new active preset with every
// source disabled.
func (s *Store) Create(d Draft) (Preset, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Preset{}, ErrNameRequired
	}

	sources := make([]PresetSource, len(s.sourceNames))
	for i, n := range s.sourceNames {
		sources[i] = PresetSource{Name: n}
	}
	p := Preset{
		ID:          s.idFunc(),
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		Tone:        strings.TrimSpace(d.Tone),
		Prompt:      strings.TrimSpace(d.Prompt),
		Sources:     sources,
		Status:      StatusActive,
	}

	s.mu.Lock()
	s.presets = append(s.presets, p)
	s.mu.Unlock()

	s.logger.Info("created agent preset", "agent_id", p.ID, "name", p.Name)
	return p.clone(), nil
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.presets {
		if s.presets[i].ID == id {
			return i
		}
	}
	return -1
}
