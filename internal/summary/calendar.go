package summary

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alecgard/fiveplanner/internal/roster"
	"github.com/alecgard/fiveplanner/internal/session"
)

const (
	calendarBase     = "https://calendar.google.com/calendar/render"
	calendarStamp    = "20060102T150405Z"
	maxCalendarNames = 5
)

// span returns the session start and end as instants. The end is start plus
// duration, so a late session correctly ends on the next day.
func span(s session.Session, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	h, m, err := ParseClock(s.Time)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	d, err := time.ParseInLocation(time.DateOnly, s.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid session date %q: %w", s.Date, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc)
	end := start.Add(time.Duration(durationOf(s.Duration)) * time.Minute)
	return start, end, nil
}

func calendarLink(title, details string, start, end time.Time, location string) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.UTC().Format(calendarStamp)+"/"+end.UTC().Format(calendarStamp))
	q.Set("details", details)
	q.Set("location", location)
	return calendarBase + "?" + q.Encode()
}

// CalendarURL builds a Google Calendar event link listing up to five
// confirmed players. Date and time are read in loc.
func CalendarURL(s session.Session, players []roster.Player, loc *time.Location) (string, error) {
	start, end, err := span(s, loc)
	if err != nil {
		return "", err
	}

	idx := indexPlayers(players)
	confirmed := idx.names(s, session.ResponseComing)
	optional := s.Count(session.ResponseOptional)

	kind := "Outdoor"
	if s.SessionType == session.TypeIndoor {
		kind = "Indoor"
	}
	details := fmt.Sprintf("%s - %d/%d joueurs", kind, len(confirmed), s.MaxPlayers)
	if len(confirmed) > 0 {
		shown := confirmed
		if len(shown) > maxCalendarNames {
			shown = shown[:maxCalendarNames]
		}
		details += ". Confirmés: " + strings.Join(shown, ", ")
		if extra := len(confirmed) - maxCalendarNames; extra > 0 {
			details += fmt.Sprintf(" et %d autres", extra)
		}
	}
	if optional > 0 {
		details += fmt.Sprintf(". Optionnels: %d", optional)
	}

	return calendarLink("Foot "+shortDate(s.Date), details, start, end, s.Location), nil
}

// CalendarURLMinimal builds a shorter link with only the head count.
func CalendarURLMinimal(s session.Session, loc *time.Location) (string, error) {
	start, end, err := span(s, loc)
	if err != nil {
		return "", err
	}
	details := fmt.Sprintf("⚽ %d/%d", s.Count(session.ResponseComing), s.MaxPlayers)
	return calendarLink("Football", details, start, end, s.Location), nil
}
