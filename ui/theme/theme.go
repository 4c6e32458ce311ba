// Package theme holds the quadscan palette and the ttk styles the views refer
// to by name.
package theme

import tk "modernc.org/tk9.0"

// Selection window colors. SelectionFill doubles as the transparent key on
// platforms that support one.
const (
	SelectionFill = "#008080"
	SelectionEdge = "#ffffff"
)

// Style names used with Style(...).
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleStateLabel    = "state.TLabel"
	StyleFoundLabel    = "found.TLabel"
)

// Palette is the resolved set of colors for one mode.
type Palette struct {
	AppBg    string
	Surface  string
	Primary  string
	Danger   string
	Found    string
	FoundFg  string
	Text     string
	ButtonFg string
}

var (
	light = Palette{
		AppBg:    "#f7f9fb",
		Surface:  "#ffffff",
		Primary:  "#2563eb",
		Danger:   "#dc2626",
		Found:    "#10b981",
		FoundFg:  "#ffffff",
		Text:     "#1e293b",
		ButtonFg: "#ffffff",
	}
	dark = Palette{
		AppBg:    "#0f172a",
		Surface:  "#1e293b",
		Primary:  "#3b82f6",
		Danger:   "#ef4444",
		Found:    "#10b981",
		FoundFg:  "#f0fdf4",
		Text:     "#f1f5f9",
		ButtonFg: "#ffffff",
	}
)

var darkMode bool

// CurrentPalette returns the colors of the active mode.
func CurrentPalette() Palette {
	if darkMode {
		return dark
	}
	return light
}

// StateStyle picks the state label style: highlighted while a quad is
// tracked, neutral otherwise.
func StateStyle(found bool) string {
	if found {
		return StyleFoundLabel
	}
	return StyleStateLabel
}

// InitStyles applies the styles of the current mode.
func InitStyles() { applyStyles(CurrentPalette()) }

// SetDark switches mode and reapplies styles.
func SetDark(on bool) bool {
	darkMode = on
	applyStyles(CurrentPalette())
	return darkMode
}

func applyStyles(p Palette) {
	_ = tk.ActivateTheme("azure light")
	tk.App.Configure(tk.Background(p.AppBg))

	button := func(style, bg string) {
		tk.StyleConfigure(style,
			tk.Background(bg),
			tk.Foreground(p.ButtonFg),
			tk.Padding("4p 3p"),
			tk.Borderwidth(1),
			tk.Relief("ridge"),
		)
	}
	button(StylePrimaryButton, p.Primary)
	button(StyleDangerButton, p.Danger)

	label := func(style, fg, bg string) {
		tk.StyleConfigure(style,
			tk.Foreground(fg),
			tk.Background(bg),
			tk.Padding("4p 2p"),
			tk.Borderwidth(1),
			tk.Relief("groove"),
		)
	}
	label(StyleStateLabel, p.Text, p.Surface)
	label(StyleFoundLabel, p.FoundFg, p.Found)
}
