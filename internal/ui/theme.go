package ui

import (
	"github.com/BurntSushi/toml"
)

// Theme holds the resolved color palette as hex strings.
type Theme struct {
	Foreground  string
	Background  string
	Accent      string
	Dim         string
	Red         string
	Green       string
	Yellow      string
	Blue        string
	Border      string
	BrightWhite string
}

// T is the active theme. Set it with Apply.
var T = defaultTheme()

// colorsFile matches the colors.toml format (terminal palette keys).
type colorsFile struct {
	Accent     string `toml:"accent"`
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Color0     string `toml:"color0"`
	Color1     string `toml:"color1"`
	Color2     string `toml:"color2"`
	Color3     string `toml:"color3"`
	Color4     string `toml:"color4"`
	Color8     string `toml:"color8"`
	Color15    string `toml:"color15"`
}

// defaultTheme returns the built-in fallback theme.
func defaultTheme() Theme {
	return Theme{
		Foreground:  "#e5e7eb",
		Background:  "#1a1b26",
		Accent:      "#ef4444",
		Dim:         "#6b7280",
		Red:         "#ef4444",
		Green:       "#22c55e",
		Yellow:      "#eab308",
		Blue:        "#3b82f6",
		Border:      "#374151",
		BrightWhite: "#f9fafb",
	}
}

// LoadTheme reads a colors.toml file over the defaults. An empty path or an
// unreadable file yields the default theme.
func LoadTheme(path string) Theme {
	t := defaultTheme()
	if path == "" {
		return t
	}

	var cf colorsFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return t
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.Foreground, cf.Foreground)
	set(&t.Background, cf.Background)
	set(&t.Accent, cf.Accent)
	set(&t.Dim, cf.Color0)
	set(&t.Red, cf.Color1)
	set(&t.Green, cf.Color2)
	set(&t.Yellow, cf.Color3)
	set(&t.Blue, cf.Color4)
	set(&t.Border, cf.Color8)
	set(&t.BrightWhite, cf.Color15)
	return t
}
