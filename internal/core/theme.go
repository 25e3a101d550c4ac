package core

import (
	"regexp"
	"strings"
	"unicode"
)

// Theme is a display preference: background and text colors.
type Theme struct {
	Background string `json:"bg"`
	Text       string `json:"text"`
}

// NamedTheme is one entry of the fixed palette.
type NamedTheme struct {
	Name  string
	Theme Theme
}

// Palette lists the selectable themes in display order.
var Palette = []NamedTheme{
	{"Light", Theme{"#ffffff", "#0f172a"}},
	{"Soft Gray", Theme{"#f3f4f6", "#111827"}},
	{"Dark", Theme{"#0f172a", "#f8fafc"}},
	{"Midnight", Theme{"#0b1220", "#e2e8f0"}},
	{"Ocean", Theme{"#06283D", "#E3F6FF"}},
	{"Forest", Theme{"#0f2d1d", "#e6ffed"}},
	{"Plum", Theme{"#2d1436", "#f5e9ff"}},
	{"Sepia", Theme{"#f9f1e7", "#4a3428"}},
	{"Solarized Light", Theme{"#fdf6e3", "#073642"}},
	{"Solarized Dark", Theme{"#002b36", "#eee8d5"}},
	{"High Contrast", Theme{"#000000", "#ffffff"}},
	{"Night Owl", Theme{"#011627", "#d6deeb"}},
	{"Sand", Theme{"#f7f3e9", "#2d2a26"}},
}

// DefaultTheme is "Light".
func DefaultTheme() Theme {
	return Palette[0].Theme
}

// PaletteNames returns the theme names in display order.
func PaletteNames() []string {
	names := make([]string, len(Palette))
	for i, p := range Palette {
		names[i] = p.Name
	}
	return names
}

// MatchTheme finds a palette entry ignoring case, spaces and punctuation.
func MatchTheme(name string) (NamedTheme, bool) {
	key := normalizeThemeName(name)
	if key == "" {
		return NamedTheme{}, false
	}
	for _, p := range Palette {
		if normalizeThemeName(p.Name) == key {
			return p, true
		}
	}
	return NamedTheme{}, false
}

// ThemeName returns the palette name whose colors equal t, or "Custom".
func ThemeName(t Theme) string {
	for _, p := range Palette {
		if strings.EqualFold(p.Theme.Background, t.Background) && strings.EqualFold(p.Theme.Text, t.Text) {
			return p.Name
		}
	}
	return "Custom"
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Valid reports whether both colors are #rgb or #rrggbb.
func (t Theme) Valid() bool {
	return hexColor.MatchString(t.Background) && hexColor.MatchString(t.Text)
}

func normalizeThemeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
