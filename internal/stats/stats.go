// Package stats derives per-player attendance figures from session history.
// Nothing here is stored; every call recomputes from its inputs.
package stats

import (
	"sort"

	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
)

// UnknownPlayerLabel names a player id that is not in the roster.
const UnknownPlayerLabel = "Joueur inconnu"

// PlayerStats is the attendance record of one player over completed sessions.
type PlayerStats struct {
	PlayerID         string  `json:"playerId"`
	TotalSessions    int     `json:"totalSessions"`
	AttendedSessions int     `json:"attendedSessions"`
	AttendanceRate   float64 `json:"attendanceRate"`
}

// ForPlayer computes the stats of one player. Only completed sessions count;
// a session counts toward the total when the player answered it at all.
func ForPlayer(playerID string, history []session.Session) PlayerStats {
	st := PlayerStats{PlayerID: playerID}
	for _, s := range history {
		if s.Status != session.StatusCompleted {
			continue
		}
		r, ok := s.Response(playerID)
		if !ok {
			continue
		}
		st.TotalSessions++
		if r.Status == session.ResponseComing {
			st.AttendedSessions++
		}
	}
	if st.TotalSessions > 0 {
		st.AttendanceRate = float64(st.AttendedSessions) / float64(st.TotalSessions) * 100
	}
	return st
}

// Compute returns one entry per player sorted by attendance rate, highest
// first. Equal rates keep roster order.
func Compute(players []roster.Player, history []session.Session) []PlayerStats {
	out := make([]PlayerStats, 0, len(players))
	for _, p := range players {
		out = append(out, ForPlayer(p.ID, history))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AttendanceRate > out[j].AttendanceRate
	})
	return out
}

// Entry is a leaderboard row: stats joined with the player's display name.
type Entry struct {
	PlayerStats
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

// Leaderboard computes stats and attaches names and 1-based ranks.
func Leaderboard(players []roster.Player, history []session.Session) []Entry {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	computed := Compute(players, history)
	out := make([]Entry, len(computed))
	for i, st := range computed {
		name, ok := names[st.PlayerID]
		if !ok {
			name = UnknownPlayerLabel
		}
		out[i] = Entry{PlayerStats: st, Name: name, Rank: i + 1}
	}
	return out
}
