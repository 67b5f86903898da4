package session

import (
	"fmt"
	"time"

	"github.com/alecgard/fiveplanner/internal/roster"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Resolved reports whether the session has left the upcoming state.
func (s Status) Resolved() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SessionType tells whether the match is played indoors or outdoors.
type SessionType string

const (
	TypeIndoor  SessionType = "indoor"
	TypeOutdoor SessionType = "outdoor"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == TypeIndoor || t == TypeOutdoor
}

// Label returns the French display label.
func (t SessionType) Label() string {
	if t == TypeIndoor {
		return "Intérieur"
	}
	return "Extérieur"
}

// ResponseStatus is a player's attendance answer for one session.
type ResponseStatus string

const (
	ResponseComing    ResponseStatus = "coming"
	ResponseNotComing ResponseStatus = "not-coming"
	ResponseOptional  ResponseStatus = "optional"
	ResponsePending   ResponseStatus = "pending"
)

// Valid reports whether r is a known response status.
func (r ResponseStatus) Valid() bool {
	switch r {
	case ResponseComing, ResponseNotComing, ResponseOptional, ResponsePending:
		return true
	}
	return false
}

// PlayerResponse records one player's answer. A session holds at most one
// response per player.
type PlayerResponse struct {
	PlayerID    string         `json:"playerId"`
	Status      ResponseStatus `json:"status"`
	RespondedAt *time.Time     `json:"respondedAt,omitempty"`
}

// Score is the final score of a completed session.
type Score struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Validate rejects negative scores.
func (s Score) Validate() error {
	if s.Team1 < 0 || s.Team2 < 0 {
		return ErrScoreInvalid
	}
	return nil
}

// Session is one scheduled match with its attendance responses.
type Session struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Duration    int              `json:"duration,omitempty"`
	Location    string           `json:"location"`
	Pitch       *roster.Pitch    `json:"pitch,omitempty"`
	SessionType SessionType      `json:"sessionType"`
	PaymentLink string           `json:"paymentLink,omitempty"`
	MaxPlayers  int              `json:"maxPlayers"`
	Responses   []PlayerResponse `json:"responses"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`
	Score       *Score           `json:"score,omitempty"`
}

// Response returns the response recorded for playerID.
func (s Session) Response(playerID string) (PlayerResponse, bool) {
	for _, r := range s.Responses {
		if r.PlayerID == playerID {
			return r, true
		}
	}
	return PlayerResponse{}, false
}

// Count returns how many responses have the given status.
func (s Session) Count(status ResponseStatus) int {
	n := 0
	for _, r := range s.Responses {
		if r.Status == status {
			n++
		}
	}
	return n
}

// IsFull reports whether confirmed players have reached MaxPlayers.
func (s Session) IsFull() bool {
	return s.MaxPlayers > 0 && s.Count(ResponseComing) >= s.MaxPlayers
}

// Validate checks the lifecycle invariants of a stored session.
func (s Session) Validate() error {
	if !s.Status.Valid() {
		return fmt.Errorf("session %s: unknown status %q", s.ID, s.Status)
	}
	if s.Status.Resolved() != (s.CompletedAt != nil) {
		return fmt.Errorf("session %s: completedAt must be set exactly when resolved", s.ID)
	}
	if s.Score != nil {
		if s.Status != StatusCompleted {
			return fmt.Errorf("session %s: score on a %s session", s.ID, s.Status)
		}
		if err := s.Score.Validate(); err != nil {
			return fmt.Errorf("session %s: %w", s.ID, err)
		}
	}
	seen := make(map[string]bool, len(s.Responses))
	for _, r := range s.Responses {
		if seen[r.PlayerID] {
			return fmt.Errorf("session %s: duplicate response for player %s", s.ID, r.PlayerID)
		}
		seen[r.PlayerID] = true
	}
	return nil
}

// clone returns a copy that shares no mutable state with s.
func (s Session) clone() Session {
	out := s
	out.Responses = append([]PlayerResponse(nil), s.Responses...)
	if out.Responses == nil {
		out.Responses = []PlayerResponse{}
	}
	if s.Pitch != nil {
		p := *s.Pitch
		out.Pitch = &p
	}
	if s.Score != nil {
		sc := *s.Score
		out.Score = &sc
	}
	return out
}

// CreateSessionInput holds the fields for a new session.
type CreateSessionInput struct {
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Duration    int           `json:"duration,omitempty"`
	Location    string        `json:"location"`
	Pitch       *roster.Pitch `json:"pitch,omitempty"`
	SessionType SessionType   `json:"sessionType,omitempty"`
	PaymentLink string        `json:"paymentLink,omitempty"`
	MaxPlayers  int           `json:"maxPlayers,omitempty"`
}
