package models

// Person represents one participant at the table.
type Person struct {
	// ID is the unique, stable identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name. Defaults to "Eu" for the first person and
	// "Pessoa N" for the rest until renamed.
	Name string `json:"name"`

	// AvatarColor is a hex color picked from a fixed palette by position.
	AvatarColor string `json:"avatarColor"`
}

// AvatarPalette is cycled by registry position when people are created.
var AvatarPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEEAD", "#FFD93D", "#6C5CE7", "#A8E6CF",
}

// AvatarColorAt returns the palette color for the person at index.
func AvatarColorAt(index int) string {
	return AvatarPalette[index%len(AvatarPalette)]
}
