package annotation

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/trendchart/storage"
)

// DefaultKey is the single persistence key all trendlines live under.
const DefaultKey = "tradingChartTrendlines"

var (
	ErrPersistenceRead  = errors.New("annotation: persistence read failed")
	ErrPersistenceWrite = errors.New("annotation: persistence write failed")
)

// Store owns the trendline collection. Every mutation is persisted and the
// full set republished to subscribers. A Store is not safe for concurrent
// use; the widget serialises access.
type Store struct {
	backend storage.Backend
	key     string
	log     logrus.FieldLogger

	lines []Trendline
	subs  []func([]Trendline)
}

// NewStore returns a store persisting to backend under key. An empty key
// means DefaultKey; a nil logger means the standard logrus logger.
func NewStore(backend storage.Backend, key string, log logrus.FieldLogger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		backend: backend,
		key:     key,
		log:     log.WithField("component", "annotation"),
		lines:   []Trendline{},
	}
}

// Subscribe registers fn to receive the full set after every change.
func (s *Store) Subscribe(fn func([]Trendline)) {
	s.subs = append(s.subs, fn)
}

// Load replaces the in-memory set with the persisted one. Missing data,
// read errors and bad payloads all yield the empty set.
func (s *Store) Load(ctx context.Context) []Trendline {
	s.lines = s.read(ctx)
	s.publish()
	return s.Trendlines()
}

func (s *Store) read(ctx context.Context) []Trendline {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.WithError(errors.Wrapf(ErrPersistenceRead, "key %s: %v", s.key, err)).
			Error("failed to load trendlines")
		return []Trendline{}
	}
	if !ok || raw == "" {
		return []Trendline{}
	}

	var lines []Trendline
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.log.WithError(errors.Wrapf(ErrPersistenceRead, "key %s: %v", s.key, err)).
			Error("failed to parse stored trendlines")
		return []Trendline{}
	}
	if lines == nil {
		lines = []Trendline{}
	}
	return lines
}

// Save writes lines as the full persisted set. Failures are logged and the
// session carries on in memory.
func (s *Store) Save(ctx context.Context, lines []Trendline) {
	if lines == nil {
		lines = []Trendline{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.log.WithError(errors.Wrap(ErrPersistenceWrite, err.Error())).Error("failed to encode trendlines")
		return
	}
	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		s.log.WithError(errors.Wrapf(ErrPersistenceWrite, "key %s: %v", s.key, err)).
			Error("failed to save trendlines")
	}
}

// Trendlines returns a copy of the current set.
func (s *Store) Trendlines() []Trendline {
	out := make([]Trendline, len(s.lines))
	copy(out, s.lines)
	return out
}

// Get returns the line with id.
func (s *Store) Get(id string) (Trendline, bool) {
	for _, t := range s.lines {
		if t.ID == id {
			return t, true
		}
	}
	return Trendline{}, false
}

func (s *Store) AddTrendline(t Trendline) []Trendline {
	return s.commit(Add(s.lines, t))
}

func (s *Store) UpdateEndpoint(id string, ep Endpoint, time int64, price float64) []Trendline {
	return s.commit(Update(s.lines, id, ep, time, price))
}

func (s *Store) RemoveTrendline(id string) []Trendline {
	return s.commit(Remove(s.lines, id))
}

func (s *Store) ClearTrendlines() []Trendline {
	return s.commit(Clear())
}

// commit is the mutate-then-persist step. A crash between the two loses at
// most this one mutation.
func (s *Store) commit(lines []Trendline) []Trendline {
	s.lines = lines
	s.Save(context.Background(), lines)
	s.publish()
	return s.Trendlines()
}

func (s *Store) publish() {
	for _, fn := range s.subs {
		fn(s.Trendlines())
	}
}
