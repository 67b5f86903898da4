package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
)

// UnknownPlayerLabel stands in for responses whose player left the roster.
const UnknownPlayerLabel = "Joueur inconnu"

var (
	frenchWeekdays = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths   = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre"}
)

// LongDate renders an ISO date as "samedi 26 juillet 2025". Unparseable input
// is returned unchanged.
func LongDate(iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return fmt.Sprintf("%s %d %s %d", frenchWeekdays[d.Weekday()], d.Day(), frenchMonths[d.Month()-1], d.Year())
}

// NumericDate renders an ISO date as "26/07/2025".
func NumericDate(iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return d.Format("02/01/2006")
}

func shortDate(iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return ""
	}
	return d.Format("02/01")
}

type nameIndex map[string]string

func indexPlayers(players []roster.Player) nameIndex {
	idx := make(nameIndex, len(players))
	for _, p := range players {
		idx[p.ID] = p.Name
	}
	return idx
}

func (n nameIndex) name(playerID string) string {
	if name, ok := n[playerID]; ok && name != "" {
		return name
	}
	return UnknownPlayerLabel
}

func (n nameIndex) names(s session.Session, status session.ResponseStatus) []string {
	var out []string
	for _, r := range s.Responses {
		if r.Status == status {
			out = append(out, n.name(r.PlayerID))
		}
	}
	return out
}

// Session renders the French summary shared with players.
func Session(s session.Session, players []roster.Player) string {
	idx := indexPlayers(players)
	var b strings.Builder

	location := "📍 " + s.Location
	if s.Pitch != nil {
		location = s.Pitch.Name + "\n📍 " + s.Pitch.Address
	}
	fmt.Fprintf(&b, "⚽ %s\n", location)
	fmt.Fprintf(&b, "📅 %s\n", LongDate(s.Date))
	fmt.Fprintf(&b, "🕐 %s\n", s.Time)
	fmt.Fprintf(&b, "🏟️ %s\n\n", s.SessionType.Label())

	sections := []struct {
		heading string
		status  session.ResponseStatus
	}{
		{"✅ JOUEURS CONFIRMÉS", session.ResponseComing},
		{"❓ JOUEURS OPTIONNELS", session.ResponseOptional},
		{"⏳ EN ATTENTE DE RÉPONSE", session.ResponsePending},
	}
	for _, sec := range sections {
		names := idx.names(s, sec.status)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (%d):\n", sec.heading, len(names))
		for _, n := range names {
			fmt.Fprintf(&b, "• %s\n", n)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "👥 Places: %d/%d\n", s.Count(session.ResponseComing), s.MaxPlayers)
	if s.PaymentLink != "" {
		fmt.Fprintf(&b, "💳 Paiement: %s\n", s.PaymentLink)
	}
	return b.String()
}

// ShareTitle is the title used when sharing a session.
func ShareTitle(s session.Session) string {
	return "Session Football 5v5 - " + NumericDate(s.Date)
}
