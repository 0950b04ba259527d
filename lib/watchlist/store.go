// Package watchlist keeps the user's saved titles. The store is loaded once
// from durable storage and writes its full contents back after every
// mutation.
package watchlist

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/icco/moviq/lib/storage"
	"github.com/icco/moviq/lib/validation"
	"github.com/icco/moviq/models"
)

// DefaultKey is the storage key holding the serialized watchlist.
const DefaultKey = "moviq-watchlist"

const persistTimeout = 5 * time.Second

// Filter selects items by watched state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterWatched   Filter = "watched"
	FilterUnwatched Filter = "unwatched"
)

// ParseFilter accepts all, watched and unwatched. Empty means all.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, true
	case FilterWatched, FilterUnwatched:
		return Filter(s), true
	}
	return "", false
}

// Snapshot is the store contents right after a mutation. Items must be
// treated as read-only.
type Snapshot struct {
	Version uint64
	Items   []models.WatchlistItem
}

// Store is the watchlist. All methods are safe for concurrent use and are
// applied in a single total order.
type Store struct {
	mu      sync.Mutex
	items   []models.WatchlistItem
	keys    map[string]struct{}
	version uint64

	subs    map[int]chan Snapshot
	nextSub int

	storage storage.Storage
	key     string
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock overrides the clock used for addedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New loads the watchlist from st. Missing, unreadable or corrupted data
// yields an empty watchlist; the problem is logged and never returned.
func New(ctx context.Context, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		keys:    make(map[string]struct{}),
		subs:    make(map[int]chan Snapshot),
		storage: st,
		key:     DefaultKey,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load(ctx)
	return s
}

// storedItem is the persisted form, decoded leniently so blobs written by
// older clients still load.
type storedItem struct {
	RawInput
	Watched *bool  `json:"watched"`
	AddedAt string `json:"addedAt"`
}

func (s *Store) load(ctx context.Context) {
	data, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Error("Failed to read watchlist", slog.String("key", s.key), slog.Any("error", err))
		return
	}
	if !ok || len(data) == 0 {
		s.logger.Debug("No stored watchlist", slog.String("key", s.key))
		return
	}

	if err := validation.ValidateWatchlistBlob(data); err != nil {
		s.logger.Error("Failed to parse watchlist, starting empty", slog.String("key", s.key), slog.Any("error", err))
		return
	}

	var stored []storedItem
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Error("Failed to parse watchlist, starting empty", slog.String("key", s.key), slog.Any("error", err))
		return
	}

	loadedAt := s.now().UTC()
	for _, raw := range stored {
		addedAt := loadedAt
		if raw.AddedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, raw.AddedAt); err == nil {
				addedAt = t
			}
		}

		item, ok := Normalize(raw.RawInput, addedAt)
		if !ok {
			s.logger.Warn("Skipping stored watchlist entry", slog.String("id", raw.ID.String()))
			continue
		}
		item.AddedAt = addedAt
		if raw.Watched != nil {
			item.Watched = *raw.Watched
		}

		if _, dup := s.keys[item.Key()]; dup {
			continue
		}
		s.keys[item.Key()] = struct{}{}
		s.items = append(s.items, item)
	}

	s.logger.Info("Loaded watchlist", slog.String("key", s.key), slog.Int("count", len(s.items)))
}

// Add saves a title. Adding a title that is already present does nothing;
// the first saved version wins.
func (s *Store) Add(in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.normalize(in)
	if !ok {
		return
	}
	if s.addLocked(item) {
		s.commitLocked()
	}
}

// Remove deletes the title if present.
func (s *Store) Remove(id models.ID, mediaType models.MediaType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.removeLocked(models.WatchlistKey(id, mediaType)) {
		s.commitLocked()
	}
}

// Toggle removes the title when present and adds it otherwise. It reports
// whether the title is in the watchlist afterwards.
func (s *Store) Toggle(in Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.normalize(in)
	if !ok {
		return false
	}

	if s.removeLocked(item.Key()) {
		s.commitLocked()
		return false
	}
	s.addLocked(item)
	s.commitLocked()
	return true
}

// IsPresent reports whether the title is saved.
func (s *Store) IsPresent(id models.ID, mediaType models.MediaType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.keys[models.WatchlistKey(id, mediaType)]
	return ok
}

// Get returns the saved title with the given identity.
func (s *Store) Get(id models.ID, mediaType models.MediaType) (models.WatchlistItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.WatchlistKey(id, mediaType)
	for _, item := range s.items {
		if item.Key() == key {
			return item, true
		}
	}
	return models.WatchlistItem{}, false
}

// ToggleWatched flips the watched flag of a saved title. It returns the new
// state and whether the title was found.
func (s *Store) ToggleWatched(id models.ID, mediaType models.MediaType) (watched, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.WatchlistKey(id, mediaType)
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Watched = !s.items[i].Watched
			s.commitLocked()
			return s.items[i].Watched, true
		}
	}
	return false, false
}

// Query returns the items matching filter, most recently added first.
func (s *Store) Query(filter Filter) []models.WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.WatchlistItem, 0, len(s.items))
	for _, item := range s.items {
		switch filter {
		case FilterWatched:
			if !item.Watched {
				continue
			}
		case FilterUnwatched:
			if item.Watched {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// Items returns every saved title.
func (s *Store) Items() []models.WatchlistItem {
	return s.Query(FilterAll)
}

// Clear removes everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.keys = make(map[string]struct{})
	s.commitLocked()
}

// Count is the number of saved titles regardless of watched state.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Stats() models.WatchlistStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.WatchlistStats{Total: len(s.items)}
	for _, item := range s.items {
		if item.Watched {
			stats.Watched++
		} else {
			stats.Unwatched++
		}
		switch item.Type {
		case models.MediaMovie:
			stats.Movies++
		case models.MediaTV:
			stats.TVShows++
		}
	}
	return stats
}

// Subscribe returns a channel that receives a snapshot after every
// mutation. A slow subscriber only misses intermediate snapshots; the
// latest one is always delivered. Call cancel to stop receiving.
func (s *Store) Subscribe(buffer int) (<-chan Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, buffer)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close ends every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) normalize(in Input) (models.WatchlistItem, bool) {
	item, ok := Normalize(in, s.now())
	if !ok {
		s.logger.Warn("Ignoring watchlist input that is not a movie or tv show", slog.String("id", in.fields().id.String()))
	}
	return item, ok
}

func (s *Store) addLocked(item models.WatchlistItem) bool {
	key := item.Key()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.items = append([]models.WatchlistItem{item}, s.items...)
	return true
}

func (s *Store) removeLocked(key string) bool {
	if _, ok := s.keys[key]; !ok {
		return false
	}
	delete(s.keys, key)
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// commitLocked persists and publishes the current state. Persistence
// failures are logged only.
func (s *Store) commitLocked() {
	s.version++
	snapshot := Snapshot{
		Version: s.version,
		Items:   append([]models.WatchlistItem(nil), s.items...),
	}

	s.persistLocked(snapshot.Items)

	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (s *Store) persistLocked(items []models.WatchlistItem) {
	if items == nil {
		items = []models.WatchlistItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Error("Failed to encode watchlist", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Error("Failed to save watchlist", slog.String("key", s.key), slog.Any("error", err))
	}
}
