// Package session implements the session lifecycle: creation, attendance
// responses and the move from the active list into history.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/alecgard/fiveplanner/internal/id"
	"github.com/alecgard/fiveplanner/internal/storage"
)

// Errors returned by the session Store.
var (
	ErrNotFound           = errors.New("session not found")
	ErrNoSelection        = errors.New("no session selected")
	ErrNotUpcoming        = errors.New("session is no longer upcoming")
	ErrDateRequired       = errors.New("date is required")
	ErrDateInvalid        = errors.New("date must be formatted YYYY-MM-DD")
	ErrTimeInvalid        = errors.New("time must be formatted HH:MM")
	ErrLocationRequired   = errors.New("a pitch or a location is required")
	ErrSessionTypeInvalid = errors.New("sessionType must be indoor or outdoor")
	ErrMaxPlayersInvalid  = errors.New("maxPlayers must be positive")
	ErrDurationInvalid    = errors.New("duration must be positive")
	ErrStatusInvalid      = errors.New("status must be one of: coming, not-coming, optional, pending")
	ErrScoreInvalid       = errors.New("scores must be non-negative integers")
	ErrPlayerRequired     = errors.New("player id is required")
)

// Defaults fill in zero-valued fields of CreateSessionInput.
type Defaults struct {
	Duration    int
	MaxPlayers  int
	SessionType SessionType
}

// DefaultDefaults mirrors the create-session form.
var DefaultDefaults = Defaults{Duration: 90, MaxPlayers: 10, SessionType: TypeOutdoor}

// Observer is notified after every successful state change.
type Observer interface {
	SessionCreated(s Session)
	SessionResolved(s Session)
	ResponseRecorded(s Session, status ResponseStatus)
}

// Options configures a Store.
type Options struct {
	Clock    clockwork.Clock
	Policy   storage.WritePolicy
	Defaults Defaults
	Observer Observer
	Logger   *slog.Logger
}

// Store holds the active sessions, the selected session pointer and the
// history. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	gw       storage.Gateway
	active   *storage.Collection[Session]
	history  *storage.Collection[Session]
	selected string

	clock    clockwork.Clock
	policy   storage.WritePolicy
	defaults Defaults
	observer Observer
	logger   *slog.Logger
}

// Open loads the active sessions, the selection and the history from gw.
func Open(ctx context.Context, gw storage.Gateway, opts Options) (*Store, error) {
	s := &Store{
		gw:       gw,
		clock:    opts.Clock,
		policy:   opts.Policy,
		defaults: opts.Defaults,
		observer: opts.Observer,
		logger:   opts.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.policy == "" {
		s.policy = storage.PolicyRollback
	}
	if s.defaults == (Defaults{}) {
		s.defaults = DefaultDefaults
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	var err error
	if s.active, err = storage.OpenCollection[Session](ctx, gw, storage.KeyActiveSessions, s.policy); err != nil {
		return nil, fmt.Errorf("opening active sessions: %w", err)
	}
	if s.history, err = storage.OpenCollection[Session](ctx, gw, storage.KeySessionHistory, s.policy); err != nil {
		return nil, fmt.Errorf("opening session history: %w", err)
	}
	s.reconcile(ctx)

	selected, _, err := storage.LoadJSON[string](ctx, gw, storage.KeySelectedSessionID)
	if err != nil {
		return nil, fmt.Errorf("opening selected session: %w", err)
	}
	if selected != "" && s.activeIndex(selected) < 0 {
		s.logger.Warn("dropping stale session selection", "session_id", selected)
		selected = ""
	}
	s.selected = selected

	for _, sess := range append(s.active.Items(), s.history.Items()...) {
		if err := sess.Validate(); err != nil {
			s.logger.Warn("stored session violates invariants", "error", err)
		}
	}
	return s, nil
}

// reconcile repairs stores left by an interrupted archive: history keeps the
// newest entry per id, and active sessions already in history are dropped.
func (s *Store) reconcile(ctx context.Context) {
	history := s.history.Items()
	archived := make(map[string]bool, len(history))
	dedup := make([]Session, 0, len(history))
	for _, sess := range history {
		if archived[sess.ID] {
			continue
		}
		archived[sess.ID] = true
		dedup = append(dedup, sess)
	}
	if len(dedup) != len(history) {
		s.logger.Warn("removing duplicate history sessions", "count", len(history)-len(dedup))
		if err := s.history.Replace(ctx, dedup); err != nil {
			s.logger.Warn("persisting repaired history failed", "error", err)
			s.history.SetUnsaved(dedup)
		}
	}

	active := s.active.Items()
	kept := make([]Session, 0, len(active))
	for _, sess := range active {
		if archived[sess.ID] {
			s.logger.Warn("dropping active session already archived", "session_id", sess.ID)
			continue
		}
		kept = append(kept, sess)
	}
	if len(kept) != len(active) {
		if err := s.active.Replace(ctx, kept); err != nil {
			s.logger.Warn("persisting repaired active sessions failed", "error", err)
			s.active.SetUnsaved(kept)
		}
	}
}

// Active returns the active sessions, newest first.
func (s *Store) Active() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.active.Items())
}

// History returns resolved sessions, most recently resolved first.
func (s *Store) History() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.history.Items())
}

// Get returns the session with the given id from the active list or history.
func (s *Store) Get(sessionID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.activeIndex(sessionID); i >= 0 {
		return s.active.Items()[i].clone(), nil
	}
	if i := s.historyIndex(sessionID); i >= 0 {
		return s.history.Items()[i].clone(), nil
	}
	return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
}

// SelectedID returns the selected session id, or "" when none is selected.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Selected returns the selected active session.
func (s *Store) Selected() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return Session{}, ErrNoSelection
	}
	i := s.activeIndex(s.selected)
	if i < 0 {
		return Session{}, ErrNoSelection
	}
	return s.active.Items()[i].clone(), nil
}

// Select points subsequent responses at an active session. An empty id clears
// the selection.
func (s *Store) Select(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sessionID != "" {
		if _, err := s.lookupActive(sessionID); err != nil {
			return err
		}
	}
	prev := s.selected
	if err := s.setSelected(ctx, sessionID); err != nil {
		if s.policy == storage.PolicyRollback {
			s.selected = prev
		}
		return err
	}
	return nil
}

// Create validates in, adds a new upcoming session at the front of the active
// list and selects it.
func (s *Store) Create(ctx context.Context, in CreateSessionInput) (Session, error) {
	in = s.applyDefaults(in)
	if err := validateCreate(in); err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:          id.New(),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
		Duration:    in.Duration,
		Location:    strings.TrimSpace(in.Location),
		SessionType: in.SessionType,
		PaymentLink: strings.TrimSpace(in.PaymentLink),
		MaxPlayers:  in.MaxPlayers,
		Responses:   []PlayerResponse{},
		Status:      StatusUpcoming,
		CreatedAt:   s.now(),
	}
	if in.Pitch != nil {
		p := *in.Pitch
		sess.Pitch = &p
		if sess.Location == "" {
			sess.Location = p.Name
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.active.Replace(ctx, append([]Session{sess}, s.active.Items()...)); err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	s.selected = sess.ID
	s.persistSelection(ctx)

	s.logger.Info("session created", "session_id", sess.ID, "date", sess.Date, "time", sess.Time)
	if s.observer != nil {
		s.observer.SessionCreated(sess)
	}
	return sess.clone(), nil
}

// RespondPlayer records playerID's answer on an active session, replacing any
// earlier answer. An empty sessionID targets the selected session.
func (s *Store) RespondPlayer(ctx context.Context, sessionID, playerID string, status ResponseStatus) (Session, error) {
	if strings.TrimSpace(playerID) == "" {
		return Session{}, ErrPlayerRequired
	}
	if !status.Valid() {
		return Session{}, ErrStatusInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.target(sessionID)
	if err != nil {
		return Session{}, err
	}
	items := s.active.Items()
	sess := items[i].clone()
	if sess.Status != StatusUpcoming {
		return Session{}, fmt.Errorf("session %s: %w", sess.ID, ErrNotUpcoming)
	}

	now := s.now()
	resp := PlayerResponse{PlayerID: playerID, Status: status, RespondedAt: &now}
	replaced := false
	for j := range sess.Responses {
		if sess.Responses[j].PlayerID == playerID {
			sess.Responses[j] = resp
			replaced = true
			break
		}
	}
	if !replaced {
		sess.Responses = append(sess.Responses, resp)
	}

	items[i] = sess
	if err := s.active.Replace(ctx, items); err != nil {
		return Session{}, fmt.Errorf("recording response: %w", err)
	}
	if s.observer != nil {
		s.observer.ResponseRecorded(sess, status)
	}
	return sess.clone(), nil
}

// Complete marks an upcoming session completed with an optional score and
// moves it to the front of the history. An empty sessionID targets the
// selected session.
func (s *Store) Complete(ctx context.Context, sessionID string, score *Score) (Session, error) {
	if score != nil {
		if err := score.Validate(); err != nil {
			return Session{}, err
		}
	}
	return s.resolve(ctx, sessionID, StatusCompleted, score)
}

// Cancel marks an upcoming session cancelled and moves it to the front of the
// history. An empty sessionID targets the selected session.
func (s *Store) Cancel(ctx context.Context, sessionID string) (Session, error) {
	return s.resolve(ctx, sessionID, StatusCancelled, nil)
}

func (s *Store) resolve(ctx context.Context, sessionID string, status Status, score *Score) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.target(sessionID)
	if err != nil {
		return Session{}, err
	}
	active := s.active.Items()
	sess := active[i].clone()
	if sess.Status != StatusUpcoming {
		return Session{}, fmt.Errorf("session %s: %w", sess.ID, ErrNotUpcoming)
	}

	now := s.now()
	sess.Status = status
	sess.CompletedAt = &now
	sess.Score = nil
	if score != nil {
		sc := *score
		sess.Score = &sc
	}

	prevHistory := s.history.Items()
	archived := append([]Session{sess}, withoutID(prevHistory, sess.ID)...)
	remaining := append(active[:i:i], active[i+1:]...)

	if err := s.history.Replace(ctx, archived); err != nil {
		if s.policy == storage.PolicyKeep {
			// The history mirror kept the session; take it out of the active one.
			if aerr := s.active.Replace(ctx, remaining); aerr != nil {
				s.logger.Warn("active sessions not persisted", "session_id", sess.ID, "error", aerr)
			}
			s.dropSelection(ctx, sess.ID)
		}
		return Session{}, fmt.Errorf("archiving session: %w", err)
	}
	if err := s.active.Replace(ctx, remaining); err != nil {
		if s.policy == storage.PolicyKeep {
			s.dropSelection(ctx, sess.ID)
		} else if rerr := s.history.Replace(ctx, prevHistory); rerr != nil {
			// History is stored with the session in it: treat it as archived.
			s.logger.Error("restoring session history failed", "session_id", sess.ID, "error", rerr)
			s.active.SetUnsaved(remaining)
			s.dropSelection(ctx, sess.ID)
		}
		return Session{}, fmt.Errorf("archiving session: %w", err)
	}
	s.dropSelection(ctx, sess.ID)

	s.logger.Info("session resolved", "session_id", sess.ID, "status", sess.Status)
	if s.observer != nil {
		s.observer.SessionResolved(sess)
	}
	return sess.clone(), nil
}

// Clear deletes an active session without recording it in history. An empty
// sessionID targets the selected session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.target(sessionID)
	if err != nil {
		return err
	}
	active := s.active.Items()
	cleared := active[i].ID
	if err := s.active.Replace(ctx, append(active[:i:i], active[i+1:]...)); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	s.dropSelection(ctx, cleared)
	s.logger.Info("session cleared", "session_id", cleared)
	return nil
}

// DeleteHistory permanently removes a resolved session.
func (s *Store) DeleteHistory(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.historyIndex(sessionID)
	if i < 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	history := s.history.Items()
	if err := s.history.Replace(ctx, append(history[:i:i], history[i+1:]...)); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	s.logger.Info("history session deleted", "session_id", sessionID)
	return nil
}

// target resolves sessionID (or the selection when empty) to an index in the
// active list. Callers hold s.mu.
func (s *Store) target(sessionID string) (int, error) {
	if sessionID == "" {
		if s.selected == "" {
			return -1, ErrNoSelection
		}
		sessionID = s.selected
	}
	return s.lookupActive(sessionID)
}

func (s *Store) lookupActive(sessionID string) (int, error) {
	if i := s.activeIndex(sessionID); i >= 0 {
		return i, nil
	}
	if s.historyIndex(sessionID) >= 0 {
		return -1, fmt.Errorf("session %s: %w", sessionID, ErrNotUpcoming)
	}
	return -1, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
}

func (s *Store) activeIndex(sessionID string) int {
	return indexOf(s.active.Items(), sessionID)
}

func (s *Store) historyIndex(sessionID string) int {
	return indexOf(s.history.Items(), sessionID)
}

func (s *Store) setSelected(ctx context.Context, sessionID string) error {
	s.selected = sessionID
	if sessionID == "" {
		return storage.RemoveKey(ctx, s.gw, storage.KeySelectedSessionID)
	}
	return storage.SaveJSON(ctx, s.gw, storage.KeySelectedSessionID, sessionID)
}

// dropSelection clears the selection when it points at sessionID.
func (s *Store) dropSelection(ctx context.Context, sessionID string) {
	if s.selected == sessionID {
		s.selected = ""
		s.persistSelection(ctx)
	}
}

// persistSelection writes the in-memory selection. A failure is logged only:
// a stale stored pointer is dropped on the next Open.
func (s *Store) persistSelection(ctx context.Context) {
	if err := s.setSelected(ctx, s.selected); err != nil {
		s.logger.Warn("persisting session selection failed", "error", err)
	}
}

func (s *Store) applyDefaults(in CreateSessionInput) CreateSessionInput {
	if in.Duration == 0 {
		in.Duration = s.defaults.Duration
	}
	if in.MaxPlayers == 0 {
		in.MaxPlayers = s.defaults.MaxPlayers
	}
	if in.SessionType == "" {
		in.SessionType = s.defaults.SessionType
	}
	return in
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

func validateCreate(in CreateSessionInput) error {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return ErrDateRequired
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return ErrDateInvalid
	}
	if !ValidClock(strings.TrimSpace(in.Time)) {
		return ErrTimeInvalid
	}
	if in.Pitch == nil && strings.TrimSpace(in.Location) == "" {
		return ErrLocationRequired
	}
	if !in.SessionType.Valid() {
		return ErrSessionTypeInvalid
	}
	if in.MaxPlayers <= 0 {
		return ErrMaxPlayersInvalid
	}
	if in.Duration <= 0 {
		return ErrDurationInvalid
	}
	return nil
}

// ValidClock reports whether t is a 24-hour "HH:MM" time of day.
func ValidClock(t string) bool {
	if len(t) != 5 {
		return false
	}
	_, err := time.Parse("15:04", t)
	return err == nil
}

func indexOf(items []Session, sessionID string) int {
	for i, sess := range items {
		if sess.ID == sessionID {
			return i
		}
	}
	return -1
}

// withoutID returns items minus every session with the given id.
func withoutID(items []Session, sessionID string) []Session {
	out := make([]Session, 0, len(items))
	for _, sess := range items {
		if sess.ID != sessionID {
			out = append(out, sess)
		}
	}
	return out
}

func cloneAll(items []Session) []Session {
	for i := range items {
		items[i] = items[i].clone()
	}
	return items
}
