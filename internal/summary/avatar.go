package summary

import (
	"sync"
	"unicode/utf16"
)

// AvatarPalette is the set of avatar background tokens.
var AvatarPalette = []string{
	"bg-red-500", "bg-blue-500", "bg-green-500", "bg-yellow-500",
	"bg-purple-500", "bg-pink-500", "bg-indigo-500", "bg-orange-500",
	"bg-teal-500", "bg-cyan-500", "bg-emerald-500", "bg-violet-500",
	"bg-rose-500", "bg-amber-500", "bg-lime-500", "bg-sky-500",
	"bg-fuchsia-500", "bg-slate-500",
}

// AvatarColors assigns each player a stable colour, avoiding colours already
// taken by the players shown alongside. Assignments live in the value, keyed
// by player id; create one per rendering context.
type AvatarColors struct {
	mu       sync.Mutex
	assigned map[string]string
}

// NewAvatarColors returns an empty assignment context.
func NewAvatarColors() *AvatarColors {
	return &AvatarColors{assigned: make(map[string]string)}
}

// Color returns the colour for playerID. A first assignment picks, by hash of
// the id, among the colours not used by others; when all are used it picks
// among the whole palette.
func (a *AvatarColors) Color(playerID string, others []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if c, ok := a.assigned[playerID]; ok {
		return c
	}

	used := make(map[string]bool, len(others))
	for _, o := range others {
		if c, ok := a.assigned[o]; ok {
			used[c] = true
		}
	}
	available := make([]string, 0, len(AvatarPalette))
	for _, c := range AvatarPalette {
		if !used[c] {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		available = AvatarPalette
	}

	c := available[hashIndex(playerID, len(available))]
	a.assigned[playerID] = c
	return c
}

// Preassign resets the context and hands out palette colours in order.
func (a *AvatarColors) Preassign(playerIDs []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.assigned = make(map[string]string, len(playerIDs))
	for i, id := range playerIDs {
		a.assigned[id] = AvatarPalette[i%len(AvatarPalette)]
	}
}

// Reset forgets every assignment.
func (a *AvatarColors) Reset() {
	a.mu.Lock()
	a.assigned = make(map[string]string)
	a.mu.Unlock()
}

// Assignments returns a copy of the current assignments.
func (a *AvatarColors) Assignments() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.assigned))
	for k, v := range a.assigned {
		out[k] = v
	}
	return out
}

// hashIndex is the 31-multiplier string hash over UTF-16 code units, folded
// into [0, n).
func hashIndex(key string, n int) int {
	var h int32
	for _, u := range utf16.Encode([]rune(key)) {
		h = h<<5 - h + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(n))
}
