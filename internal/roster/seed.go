package roster

// GroupPalette is the fixed set of colour tokens a group may use.
var GroupPalette = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-purple-500",
	"bg-orange-500",
	"bg-red-500",
	"bg-yellow-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-teal-500",
	"bg-cyan-500",
}

// ValidColor reports whether c belongs to GroupPalette.
func ValidColor(c string) bool {
	for _, p := range GroupPalette {
		if p == c {
			return true
		}
	}
	return false
}

// DefaultGroups seeds an empty store on first use.
func DefaultGroups() []PlayerGroup {
	return []PlayerGroup{
		{ID: "1", Name: "Réguliers", Color: "bg-blue-500"},
		{ID: "2", Name: "Occasionnels", Color: "bg-green-500"},
		{ID: "3", Name: "Nouveaux", Color: "bg-purple-500"},
		{ID: "4", Name: "Remplaçants", Color: "bg-orange-500"},
	}
}

// DefaultPitches seeds an empty store on first use.
func DefaultPitches() []Pitch {
	return []Pitch{
		{
			ID:          "1",
			Name:        "LE FIVE Paris 18ᵉ (Moussorgski)",
			Address:     "32 rue Moussorgski, Paris 18ᵉ",
			SurfaceType: SurfaceIndoor,
			IsFilmed:    true,
			PriceRange:  "€€€",
			Description: "Le plus grand centre intramuros avec club-house",
		},
		{
			ID:          "2",
			Name:        "LE FIVE Paris 17ᵉ",
			Address:     "Porte Pouchet, Paris 17ᵉ",
			SurfaceType: SurfaceIndoor,
			IsFilmed:    true,
			PriceRange:  "€€€",
			Description: "Centre sous porche, moderne",
		},
		{
			ID:          "3",
			Name:        "LE FIVE La Villette / Aubervilliers",
			Address:     "25 rue Sadi Carnot, Aubervilliers",
			SurfaceType: SurfaceIndoor,
			IsFilmed:    true,
			PriceRange:  "€€€",
			Description: "Centre de zone nord",
		},
		{
			ID:          "4",
			Name:        "LE FIVE Créteil",
			Address:     "1 rue Le Corbusier, Créteil",
			SurfaceType: SurfaceIndoor,
			IsFilmed:    false,
			PriceRange:  "€€",
			Description: "Centre éducatif Five Académie",
		},
		{
			ID:          "5",
			Name:        "LE FIVE Marville & Morangis",
			Address:     "Périphérie parisienne",
			SurfaceType: SurfaceIndoor,
			IsFilmed:    false,
			PriceRange:  "€€",
			Description: "Nouveaux complexes multi-sports",
		},
	}
}
