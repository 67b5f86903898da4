package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alecgard/fiveplanner/internal/id"
	"github.com/alecgard/fiveplanner/internal/storage"
)

// Errors returned by the roster Store.
var (
	ErrNotFound           = errors.New("not found")
	ErrNameRequired       = errors.New("name is required")
	ErrAddressRequired    = errors.New("address is required")
	ErrColorInvalid       = errors.New("color must be one of the group palette tokens")
	ErrSurfaceTypeInvalid = errors.New("surfaceType must be one of: synthetic, grass, indoor, concrete")
)

// UnknownGroupLabel is shown for players whose group is unset or dangling.
const UnknownGroupLabel = "Groupe inconnu"

// Options configures a Store.
type Options struct {
	Policy storage.WritePolicy
	Logger *slog.Logger
}

// Store manages players, groups and pitches. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	players *storage.Collection[Player]
	groups  *storage.Collection[PlayerGroup]
	pitches *storage.Collection[Pitch]
	logger  *slog.Logger
}

// Open loads the roster collections from gw. Groups and pitches are seeded
// with their defaults when their key has never been written.
func Open(ctx context.Context, gw storage.Gateway, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	players, err := storage.OpenCollection[Player](ctx, gw, storage.KeyPlayers, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("opening players: %w", err)
	}
	groups, err := storage.OpenCollection[PlayerGroup](ctx, gw, storage.KeyGroups, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("opening groups: %w", err)
	}
	pitches, err := storage.OpenCollection[Pitch](ctx, gw, storage.KeyPitches, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("opening pitches: %w", err)
	}

	s := &Store{players: players, groups: groups, pitches: pitches, logger: logger}
	if err := s.seed(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) seed(ctx context.Context) error {
	if !s.groups.Found() {
		if err := s.groups.Replace(ctx, DefaultGroups()); err != nil {
			return fmt.Errorf("seeding groups: %w", err)
		}
		s.logger.Info("seeded default groups", "count", s.groups.Len())
	}
	if !s.pitches.Found() {
		if err := s.pitches.Replace(ctx, DefaultPitches()); err != nil {
			return fmt.Errorf("seeding pitches: %w", err)
		}
		s.logger.Info("seeded default pitches", "count", s.pitches.Len())
	}
	return nil
}

// --- players ---

// Players returns every player in insertion order.
func (s *Store) Players() []Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players.Items()
}

// Player returns the player with the given id.
func (s *Store) Player(playerID string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players.Items() {
		if p.ID == playerID {
			return p, nil
		}
	}
	return Player{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
}

// AddPlayer creates a player. The group reference is not checked.
func (s *Store) AddPlayer(ctx context.Context, in CreatePlayerInput) (Player, error) {
	added, err := s.BulkAddPlayers(ctx, []CreatePlayerInput{in})
	if err != nil {
		return Player{}, err
	}
	return added[0], nil
}

// BulkAddPlayers creates every player in one write. Either all are added or
// none are.
func (s *Store) BulkAddPlayers(ctx context.Context, in []CreatePlayerInput) ([]Player, error) {
	created := make([]Player, 0, len(in))
	for i, input := range in {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, fmt.Errorf("player %d: %w", i, ErrNameRequired)
		}
		created = append(created, Player{
			ID:    id.ForName(name),
			Name:  name,
			Email: strings.TrimSpace(input.Email),
			Phone: strings.TrimSpace(input.Phone),
			Group: strings.TrimSpace(input.Group),
		})
	}
	if len(created) == 0 {
		return created, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.players.Replace(ctx, append(s.players.Items(), created...)); err != nil {
		return nil, fmt.Errorf("adding players: %w", err)
	}
	return created, nil
}

// UpdatePlayer applies a partial update and returns the updated player.
func (s *Store) UpdatePlayer(ctx context.Context, playerID string, u PlayerUpdate) (Player, error) {
	if u.Name.IsCleared() {
		return Player{}, ErrNameRequired
	}
	if v, ok := u.Name.Get(); ok && strings.TrimSpace(v) == "" {
		return Player{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.players.Items()
	for i := range items {
		if items[i].ID != playerID {
			continue
		}
		p := items[i]
		u.Name.Apply(&p.Name)
		u.Email.Apply(&p.Email)
		u.Phone.Apply(&p.Phone)
		u.Group.Apply(&p.Group)
		p.Name = strings.TrimSpace(p.Name)
		items[i] = p
		if err := s.players.Replace(ctx, items); err != nil {
			return Player{}, fmt.Errorf("updating player: %w", err)
		}
		return p, nil
	}
	return Player{}, fmt.Errorf("player %s: %w", playerID, ErrNotFound)
}

// RemovePlayer deletes a player from the roster. Session responses that
// reference the player are left in place.
func (s *Store) RemovePlayer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := without(s.players.Items(), func(p Player) bool { return p.ID == playerID })
	if !ok {
		return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
	}
	if err := s.players.Replace(ctx, next); err != nil {
		return fmt.Errorf("removing player: %w", err)
	}
	return nil
}

// --- groups ---

// Groups returns every group.
func (s *Store) Groups() []PlayerGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups.Items()
}

// Group returns the group with the given id.
func (s *Store) Group(groupID string) (PlayerGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findGroup(groupID)
}

func (s *Store) findGroup(groupID string) (PlayerGroup, error) {
	for _, g := range s.groups.Items() {
		if g.ID == groupID {
			return g, nil
		}
	}
	return PlayerGroup{}, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
}

// GroupName resolves a player's group to a display name, falling back to
// UnknownGroupLabel when the player has no group or the group is gone.
func (s *Store) GroupName(p Player) string {
	if p.Group == "" {
		return UnknownGroupLabel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, err := s.findGroup(p.Group)
	if err != nil {
		return UnknownGroupLabel
	}
	return g.Name
}

// AddGroup creates a group.
func (s *Store) AddGroup(ctx context.Context, in CreateGroupInput) (PlayerGroup, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return PlayerGroup{}, ErrNameRequired
	}
	if !ValidColor(in.Color) {
		return PlayerGroup{}, ErrColorInvalid
	}
	g := PlayerGroup{ID: id.New(), Name: name, Color: in.Color}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.groups.Replace(ctx, append(s.groups.Items(), g)); err != nil {
		return PlayerGroup{}, fmt.Errorf("adding group: %w", err)
	}
	return g, nil
}

// UpdateGroup applies a partial update and returns the updated group.
func (s *Store) UpdateGroup(ctx context.Context, groupID string, u GroupUpdate) (PlayerGroup, error) {
	if u.Name.IsCleared() {
		return PlayerGroup{}, ErrNameRequired
	}
	if v, ok := u.Name.Get(); ok && strings.TrimSpace(v) == "" {
		return PlayerGroup{}, ErrNameRequired
	}
	if u.Color.IsCleared() {
		return PlayerGroup{}, ErrColorInvalid
	}
	if v, ok := u.Color.Get(); ok && !ValidColor(v) {
		return PlayerGroup{}, ErrColorInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.groups.Items()
	for i := range items {
		if items[i].ID != groupID {
			continue
		}
		g := items[i]
		u.Name.Apply(&g.Name)
		u.Color.Apply(&g.Color)
		g.Name = strings.TrimSpace(g.Name)
		items[i] = g
		if err := s.groups.Replace(ctx, items); err != nil {
			return PlayerGroup{}, fmt.Errorf("updating group: %w", err)
		}
		return g, nil
	}
	return PlayerGroup{}, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
}

// RemoveGroup deletes a group. Players keep their (now dangling) reference.
func (s *Store) RemoveGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := without(s.groups.Items(), func(g PlayerGroup) bool { return g.ID == groupID })
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	}
	if err := s.groups.Replace(ctx, next); err != nil {
		return fmt.Errorf("removing group: %w", err)
	}
	return nil
}

// --- pitches ---

// Pitches returns every pitch.
func (s *Store) Pitches() []Pitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pitches.Items()
}

// Pitch returns the pitch with the given id.
func (s *Store) Pitch(pitchID string) (Pitch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pitches.Items() {
		if p.ID == pitchID {
			return p, nil
		}
	}
	return Pitch{}, fmt.Errorf("pitch %s: %w", pitchID, ErrNotFound)
}

// FindPitchByName returns the first pitch whose name contains name or is
// contained in it, ignoring case.
func (s *Store) FindPitchByName(name string) (Pitch, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Pitch{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pitches.Items() {
		hay := strings.ToLower(p.Name)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return p, true
		}
	}
	return Pitch{}, false
}

// AddPitch creates a pitch.
func (s *Store) AddPitch(ctx context.Context, in CreatePitchInput) (Pitch, error) {
	p := Pitch{
		ID:          id.New(),
		Name:        strings.TrimSpace(in.Name),
		Address:     strings.TrimSpace(in.Address),
		SurfaceType: in.SurfaceType,
		IsFilmed:    in.IsFilmed,
		PriceRange:  strings.TrimSpace(in.PriceRange),
		Description: strings.TrimSpace(in.Description),
	}
	if err := validatePitch(p); err != nil {
		return Pitch{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pitches.Replace(ctx, append(s.pitches.Items(), p)); err != nil {
		return Pitch{}, fmt.Errorf("adding pitch: %w", err)
	}
	return p, nil
}

// UpdatePitch applies a partial update and returns the updated pitch.
// Sessions keep the snapshot they were created with.
func (s *Store) UpdatePitch(ctx context.Context, pitchID string, u PitchUpdate) (Pitch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.pitches.Items()
	for i := range items {
		if items[i].ID != pitchID {
			continue
		}
		p := items[i]
		u.Name.Apply(&p.Name)
		u.Address.Apply(&p.Address)
		u.SurfaceType.Apply(&p.SurfaceType)
		u.IsFilmed.Apply(&p.IsFilmed)
		u.PriceRange.Apply(&p.PriceRange)
		u.Description.Apply(&p.Description)
		p.Name = strings.TrimSpace(p.Name)
		p.Address = strings.TrimSpace(p.Address)
		if err := validatePitch(p); err != nil {
			return Pitch{}, err
		}
		items[i] = p
		if err := s.pitches.Replace(ctx, items); err != nil {
			return Pitch{}, fmt.Errorf("updating pitch: %w", err)
		}
		return p, nil
	}
	return Pitch{}, fmt.Errorf("pitch %s: %w", pitchID, ErrNotFound)
}

// RemovePitch deletes a pitch.
func (s *Store) RemovePitch(ctx context.Context, pitchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := without(s.pitches.Items(), func(p Pitch) bool { return p.ID == pitchID })
	if !ok {
		return fmt.Errorf("pitch %s: %w", pitchID, ErrNotFound)
	}
	if err := s.pitches.Replace(ctx, next); err != nil {
		return fmt.Errorf("removing pitch: %w", err)
	}
	return nil
}

func validatePitch(p Pitch) error {
	if p.Name == "" {
		return ErrNameRequired
	}
	if p.Address == "" {
		return ErrAddressRequired
	}
	if !p.SurfaceType.Valid() {
		return ErrSurfaceTypeInvalid
	}
	return nil
}

// without returns items minus those matching drop, and whether any matched.
func without[T any](items []T, drop func(T) bool) ([]T, bool) {
	out := items[:0]
	found := false
	for _, it := range items {
		if drop(it) {
			found = true
			continue
		}
		out = append(out, it)
	}
	return out, found
}
