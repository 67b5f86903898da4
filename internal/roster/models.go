package roster

import "github.com/alecgard/fiveplanner/internal/opt"

// Player is someone who can be invited to sessions.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Group string `json:"group,omitempty"`
}

// PlayerGroup labels players, e.g. regulars or substitutes.
type PlayerGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SurfaceType is the playing surface of a pitch.
type SurfaceType string

const (
	SurfaceSynthetic SurfaceType = "synthetic"
	SurfaceGrass     SurfaceType = "grass"
	SurfaceIndoor    SurfaceType = "indoor"
	SurfaceConcrete  SurfaceType = "concrete"
)

// Valid reports whether s is a known surface type.
func (s SurfaceType) Valid() bool {
	switch s {
	case SurfaceSynthetic, SurfaceGrass, SurfaceIndoor, SurfaceConcrete:
		return true
	}
	return false
}

// Label returns the French display label.
func (s SurfaceType) Label() string {
	switch s {
	case SurfaceSynthetic:
		return "Synthétique"
	case SurfaceGrass:
		return "Herbe naturelle"
	case SurfaceIndoor:
		return "Indoor"
	case SurfaceConcrete:
		return "Béton"
	}
	return string(s)
}

// Pitch is a venue sessions can be booked at.
type Pitch struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	SurfaceType SurfaceType `json:"surfaceType"`
	IsFilmed    bool        `json:"isFilmed"`
	PriceRange  string      `json:"priceRange,omitempty"`
	Description string      `json:"description,omitempty"`
}

// CreatePlayerInput holds the fields for a new player.
type CreatePlayerInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Group string `json:"group,omitempty"`
}

// PlayerUpdate is a partial update; absent fields are left unchanged.
type PlayerUpdate struct {
	Name  opt.Field[string] `json:"name"`
	Email opt.Field[string] `json:"email"`
	Phone opt.Field[string] `json:"phone"`
	Group opt.Field[string] `json:"group"`
}

// CreateGroupInput holds the fields for a new group.
type CreateGroupInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GroupUpdate is a partial update; absent fields are left unchanged.
type GroupUpdate struct {
	Name  opt.Field[string] `json:"name"`
	Color opt.Field[string] `json:"color"`
}

// CreatePitchInput holds the fields for a new pitch.
type CreatePitchInput struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	SurfaceType SurfaceType `json:"surfaceType"`
	IsFilmed    bool        `json:"isFilmed"`
	PriceRange  string      `json:"priceRange,omitempty"`
	Description string      `json:"description,omitempty"`
}

// PitchUpdate is a partial update; absent fields are left unchanged.
type PitchUpdate struct {
	Name        opt.Field[string]      `json:"name"`
	Address     opt.Field[string]      `json:"address"`
	SurfaceType opt.Field[SurfaceType] `json:"surfaceType"`
	IsFilmed    opt.Field[bool]        `json:"isFilmed"`
	PriceRange  opt.Field[string]      `json:"priceRange"`
	Description opt.Field[string]      `json:"description"`
}
