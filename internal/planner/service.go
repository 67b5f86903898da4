// Package planner composes the roster and session stores into the operations
// exposed by the CLI and the HTTP API.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alecgard/fiveplanner/internal/emailparse"
	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
	"github.com/alecgard/fiveplanner/internal/stats"
	"github.com/alecgard/fiveplanner/internal/summary"
)

// ErrEmailUnparsed wraps the message of a failed email parse.
var ErrEmailUnparsed = errors.New("email could not be parsed")

// Auto-added pitch defaults for locations found in booking emails.
const (
	emailPitchPriceRange  = "€€€"
	emailPitchDescription = "Terrain ajouté automatiquement depuis un email"
)

// Service is the planner facade.
type Service struct {
	roster   *roster.Store
	sessions *session.Store
	avatars  *summary.AvatarColors
	loc      *time.Location
	logger   *slog.Logger
}

// Options configures a Service.
type Options struct {
	// Location is the time zone session dates and times are read in.
	Location *time.Location
	Logger   *slog.Logger
}

// NewService creates a new planner service.
func NewService(r *roster.Store, s *session.Store, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		roster:   r,
		sessions: s,
		avatars:  summary.NewAvatarColors(),
		loc:      loc,
		logger:   logger,
	}
}

// Roster returns the underlying roster store.
func (s *Service) Roster() *roster.Store { return s.roster }

// Sessions returns the underlying session store.
func (s *Service) Sessions() *session.Store { return s.sessions }

// CreateSessionInput describes a new session whose pitch is referenced by id.
type CreateSessionInput struct {
	Date        string              `json:"date"`
	Time        string              `json:"time"`
	Duration    int                 `json:"duration,omitempty"`
	Location    string              `json:"location,omitempty"`
	PitchID     string              `json:"pitchId,omitempty"`
	SessionType session.SessionType `json:"sessionType,omitempty"`
	PaymentLink string              `json:"paymentLink,omitempty"`
	MaxPlayers  int                 `json:"maxPlayers,omitempty"`
}

// CreateSession snapshots the referenced pitch into a new session.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (session.Session, error) {
	create := session.CreateSessionInput{
		Date:        in.Date,
		Time:        in.Time,
		Duration:    in.Duration,
		Location:    in.Location,
		SessionType: in.SessionType,
		PaymentLink: in.PaymentLink,
		MaxPlayers:  in.MaxPlayers,
	}
	if in.PitchID != "" {
		p, err := s.roster.Pitch(in.PitchID)
		if err != nil {
			return session.Session{}, err
		}
		create.Pitch = &p
		if create.Location == "" {
			create.Location = p.Name
		}
	}
	return s.sessions.Create(ctx, create)
}

// EmailSession is the result of CreateSessionFromEmail.
type EmailSession struct {
	Session    session.Session   `json:"session"`
	Parsed     emailparse.Result `json:"parsed"`
	AddedPitch *roster.Pitch     `json:"addedPitch,omitempty"`
}

// CreateSessionFromEmail parses a booking email and creates an indoor session
// from it. A location that matches no pitch is added to the roster.
func (s *Service) CreateSessionFromEmail(ctx context.Context, text string) (EmailSession, error) {
	parsed := emailparse.Parse(text)
	if !parsed.Success {
		return EmailSession{Parsed: parsed}, fmt.Errorf("%w: %s", ErrEmailUnparsed, parsed.Error)
	}

	out := EmailSession{Parsed: parsed}
	create := session.CreateSessionInput{
		Date:        parsed.Date,
		Time:        parsed.Time,
		Duration:    parsed.Duration(),
		Location:    parsed.Location,
		SessionType: session.TypeIndoor,
		PaymentLink: parsed.PaymentLink,
	}

	if p, ok := s.roster.FindPitchByName(parsed.Location); ok {
		create.Pitch = &p
	} else if parsed.HasLocation() {
		p, err := s.roster.AddPitch(ctx, roster.CreatePitchInput{
			Name:        parsed.Location,
			Address:     parsed.Location,
			SurfaceType: roster.SurfaceSynthetic,
			PriceRange:  emailPitchPriceRange,
			Description: emailPitchDescription,
		})
		if err != nil {
			return out, fmt.Errorf("adding pitch from email: %w", err)
		}
		s.logger.Info("pitch added from email", "pitch_id", p.ID, "name", p.Name)
		out.AddedPitch = &p
		create.Pitch = &p
	}

	sess, err := s.sessions.Create(ctx, create)
	if err != nil {
		return out, err
	}
	out.Session = sess
	return out, nil
}

// Respond records a player's answer. The player must exist in the roster; an
// empty sessionID targets the selected session.
func (s *Service) Respond(ctx context.Context, sessionID, playerID string, status session.ResponseStatus) (session.Session, error) {
	if _, err := s.roster.Player(playerID); err != nil {
		return session.Session{}, err
	}
	return s.sessions.RespondPlayer(ctx, sessionID, playerID, status)
}

// Complete validates the score and completes the session.
func (s *Service) Complete(ctx context.Context, sessionID string, score *session.Score) (session.Session, error) {
	if score != nil {
		if err := score.Validate(); err != nil {
			return session.Session{}, err
		}
	}
	return s.sessions.Complete(ctx, sessionID, score)
}

// Cancel cancels an upcoming session.
func (s *Service) Cancel(ctx context.Context, sessionID string) (session.Session, error) {
	return s.sessions.Cancel(ctx, sessionID)
}

// Clear deletes an active session without archiving it.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

// DeleteHistory permanently deletes a resolved session.
func (s *Service) DeleteHistory(ctx context.Context, sessionID string) error {
	return s.sessions.DeleteHistory(ctx, sessionID)
}

// RemovePlayer removes a player from the roster. Their responses stay on
// sessions and render as an unknown player.
func (s *Service) RemovePlayer(ctx context.Context, playerID string) error {
	return s.roster.RemovePlayer(ctx, playerID)
}

// Stats computes attendance for every roster player.
func (s *Service) Stats() []stats.PlayerStats {
	return stats.Compute(s.roster.Players(), s.sessions.History())
}

// Leaderboard computes attendance joined with player names.
func (s *Service) Leaderboard() []stats.Entry {
	return stats.Leaderboard(s.roster.Players(), s.sessions.History())
}

// PlayerStats computes attendance for one player.
func (s *Service) PlayerStats(playerID string) (stats.PlayerStats, error) {
	if _, err := s.roster.Player(playerID); err != nil {
		return stats.PlayerStats{}, err
	}
	return stats.ForPlayer(playerID, s.sessions.History()), nil
}

// Summary renders the share text of a session, active or archived.
func (s *Service) Summary(sessionID string) (title, text string, err error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", "", err
	}
	return summary.ShareTitle(sess), summary.Session(sess, s.roster.Players()), nil
}

// CalendarURL builds the calendar link of a session.
func (s *Service) CalendarURL(sessionID string, minimal bool) (string, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	if minimal {
		return summary.CalendarURLMinimal(sess, s.loc)
	}
	return summary.CalendarURL(sess, s.roster.Players(), s.loc)
}

// EndTime returns the end time of day of a session.
func (s *Service) EndTime(sess session.Session) (string, error) {
	d := sess.Duration
	if d <= 0 {
		d = summary.DefaultDuration
	}
	return summary.EndTime(sess.Time, d)
}

// AvatarColors returns colours for the given players, each avoiding the
// colours of the others in the list.
func (s *Service) AvatarColors(playerIDs []string) map[string]string {
	out := make(map[string]string, len(playerIDs))
	for _, id := range playerIDs {
		out[id] = s.avatars.Color(id, playerIDs)
	}
	return out
}

// ResetAvatars forgets every avatar colour assignment.
func (s *Service) ResetAvatars() {
	s.avatars.Reset()
}
