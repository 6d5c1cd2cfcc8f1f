package generation

import "strings"

// Style is a coloring style. The zero value is StyleSurprise.
type Style int

const (
	StyleSurprise Style = iota
	StyleStorybook
	StyleCrayons
	StyleBold
	StyleFantasy
)

type styleDef struct {
	id          string
	name        string
	description string
	prompt      string
}

var styleDefs = map[Style]styleDef{
	StyleStorybook: {
		id:          "storybook",
		name:        "Storybook Magic",
		description: "Soft, dreamy colors like fairy tale illustrations",
		prompt:      "Transform this drawing into a magical storybook illustration with soft, dreamy pastel colors, warm lighting, and enchanting fairy tale atmosphere. Use gentle watercolor-like tones with subtle gradients.",
	},
	StyleCrayons: {
		id:          "crayons",
		name:        "Crayon Fun",
		description: "Bold, vibrant crayon-like colors",
		prompt:      "Color this drawing with bold, vibrant crayon-like colors. Use bright primary and secondary colors with a slightly textured, waxy appearance typical of children's crayon artwork.",
	},
	StyleBold: {
		id:          "bold",
		name:        "Bold & Bright",
		description: "High contrast, eye-catching colors",
		prompt:      "Apply high contrast, eye-catching colors to this drawing. Use bold, saturated colors with strong contrasts between light and dark areas for maximum visual impact.",
	},
	StyleFantasy: {
		id:          "fantasy",
		name:        "Fantasy World",
		description: "Magical colors with shimmer and shine",
		prompt:      "Transform this into a magical fantasy world with shimmering, iridescent colors. Use mystical purples, blues, and pinks with magical sparkles and ethereal lighting effects.",
	},
	StyleSurprise: {
		id:          "surprise",
		name:        "Surprise Me!",
		description: "Let AI choose the perfect style",
		prompt:      "Color this drawing creatively with an unexpected and delightful color palette that would surprise and amaze. Use artistic color combinations that are visually stunning.",
	},
}

// catalogOrder is the order styles are offered to clients.
var catalogOrder = []Style{StyleStorybook, StyleCrayons, StyleBold, StyleFantasy, StyleSurprise}

// ParseStyle resolves a style key. Unknown keys, including the empty key,
// resolve to StyleSurprise.
func ParseStyle(key string) Style {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, s := range catalogOrder {
		if styleDefs[s].id == key {
			return s
		}
	}
	return StyleSurprise
}

// String returns the style key.
func (s Style) String() string {
	return s.def().id
}

// Name returns the display name.
func (s Style) Name() string {
	return s.def().name
}

// Description returns the short description shown next to the name.
func (s Style) Description() string {
	return s.def().description
}

// Prompt returns the provider prompt for the style.
func (s Style) Prompt() string {
	return s.def().prompt
}

func (s Style) def() styleDef {
	if d, ok := styleDefs[s]; ok {
		return d
	}
	return styleDefs[StyleSurprise]
}

// Styles returns all styles in catalog order.
func Styles() []Style {
	out := make([]Style, len(catalogOrder))
	copy(out, catalogOrder)
	return out
}
