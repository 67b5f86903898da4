// Package emailparse extracts session details from a pasted booking
// confirmation email. It is best-effort: failures are reported in the Result,
// never as a panic or error value.
package emailparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// UnknownLocation is used when no location pattern matches.
const UnknownLocation = "Lieu non spécifié"

// Failure messages.
const (
	MsgEmpty     = "Veuillez coller le contenu de l'email"
	MsgNoDate    = "Impossible de trouver la date dans l'email"
	MsgBadDate   = "La date trouvée dans l'email est invalide"
	MsgNoTime    = "Impossible de trouver l'heure dans l'email"
	MsgBadTime   = "L'heure trouvée dans l'email est invalide"
	msgUnhandled = "Erreur lors de l'analyse de l'email"
)

// Result is the outcome of Parse. When Success is false only Error is set.
type Result struct {
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
	PaymentLink string `json:"paymentLink,omitempty"`
}

// Duration returns the minutes between Time and EndTime, wrapping past
// midnight, or 0 when the end time is unknown.
func (r Result) Duration() int {
	start, ok1 := minutesOf(r.Time)
	end, ok2 := minutesOf(r.EndTime)
	if !ok1 || !ok2 {
		return 0
	}
	d := end - start
	if d <= 0 {
		d += 24 * 60
	}
	return d
}

// HasLocation reports whether a location was found.
func (r Result) HasLocation() bool {
	return r.Location != "" && r.Location != UnknownLocation
}

const frenchMonthAlt = `janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre`

var monthNumbers = map[string]int{
	"janvier": 1, "février": 2, "mars": 3, "avril": 4, "mai": 5, "juin": 6,
	"juillet": 7, "août": 8, "septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12,
}

type dateOrder int

const (
	orderFrench dateOrder = iota
	orderDMY
	orderYMD
)

var datePatterns = []struct {
	re    *regexp.Regexp
	order dateOrder
}{
	{regexp.MustCompile(`(?i)(?:lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\s+(\d{1,2})\s+(` + frenchMonthAlt + `)\s+(\d{4})`), orderFrench},
	{regexp.MustCompile(`(?i)(\d{1,2})\s+(` + frenchMonthAlt + `)\s+(\d{4})`), orderFrench},
	{regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`), orderDMY},
	{regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`), orderYMD},
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)entre\s+(\d{1,2}):(\d{2})\s+et\s+(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`(?i)de\s+(\d{1,2}):(\d{2})\s+à\s+(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})\s*[-–]\s*(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`(?i)(\d{1,2})h(\d{2})\s+à\s+(\d{1,2})h(\d{2})`),
	regexp.MustCompile(`(?i)à\s+(\d{1,2}):(\d{2})`),
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dans le centre\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)(LE FIVE[^.]*)`),
	regexp.MustCompile(`(?i)centre\s+([^.]+)`),
	regexp.MustCompile(`(?i)(?:lieu|à)\s+([^.]+)`),
}

var (
	linkPattern  = regexp.MustCompile(`(?i)https?://\S+`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Parse extracts the date, time range, location and first link from text.
func Parse(text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failure(msgUnhandled)
		}
	}()

	text = norm.NFC.String(text)
	clean := strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
	if clean == "" {
		return failure(MsgEmpty)
	}

	date, msg := parseDate(clean)
	if msg != "" {
		return failure(msg)
	}
	start, end, msg := parseTimes(clean)
	if msg != "" {
		return failure(msg)
	}

	res = Result{
		Success:  true,
		Date:     date,
		Time:     start,
		EndTime:  end,
		Location: UnknownLocation,
	}
	for _, re := range locationPatterns {
		if m := re.FindStringSubmatch(clean); m != nil {
			if loc := strings.TrimSpace(m[1]); loc != "" {
				res.Location = loc
				break
			}
		}
	}
	if link := linkPattern.FindString(text); link != "" {
		res.PaymentLink = strings.TrimRight(link, ".,;:)>]\"'")
	}
	return res
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

func parseDate(s string) (string, string) {
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var year, month, day int
		switch p.order {
		case orderFrench:
			day, _ = strconv.Atoi(m[1])
			month = monthNumbers[strings.ToLower(m[2])]
			year, _ = strconv.Atoi(m[3])
		case orderDMY:
			day, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		case orderYMD:
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		}
		iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if _, err := time.Parse(time.DateOnly, iso); err != nil {
			return "", MsgBadDate
		}
		return iso, ""
	}
	return "", MsgNoDate
}

func parseTimes(s string) (start, end, msg string) {
	for _, re := range timePatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		from, ok := clock(m[1], m[2])
		if !ok {
			return "", "", MsgBadTime
		}
		to := ""
		if len(m) > 4 {
			if to, ok = clock(m[3], m[4]); !ok {
				return "", "", MsgBadTime
			}
		}
		return from, to, ""
	}
	return "", "", MsgNoTime
}

func clock(h, m string) (string, bool) {
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), true
}

func minutesOf(hhmm string) (int, bool) {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return 0, false
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return hh*60 + mm, true
}
