package display

import (
	"path/filepath"
	"strings"
)

// Macro is a single name/value substitution pair passed to the display tool.
type Macro struct {
	Name  string
	Value string
}

// Screen is a display screen plus the macros it is launched with.
type Screen struct {
	// Name is the catalog name used on the command line
	Name string

	// File is the screen file name, resolved against the screens directory
	File string

	// Macros are appended to the locator in this exact order
	Macros []Macro
}

// Locator renders the resource locator for this screen rooted at dir,
// e.g. file:/opt/tomoscan/overview.bob?P=TA1:CT_CAM:&R=cam1:.
//
// Macros are written in catalog order with no escaping: PV prefixes
// carry colons and trailing separators that must reach the display tool
// byte for byte, and macro order is significant to it. net/url would
// sort and percent-encode, so the query string is assembled by hand.
func (s Screen) Locator(dir string) string {
	var b strings.Builder
	b.WriteString("file:")
	b.WriteString(filepath.Join(dir, s.File))

	for i, m := range s.Macros {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(m.Name)
		b.WriteByte('=')
		b.WriteString(m.Value)
	}

	return b.String()
}
