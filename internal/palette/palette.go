// Package palette assigns participants a stable display colour.
package palette

import "unicode/utf16"

// Colors are the sender colours, as hex strings.
var Colors = []string{
	"#2563eb", // blue
	"#16a34a", // green
	"#9333ea", // purple
	"#dc2626", // red
	"#ca8a04", // yellow
	"#db2777", // pink
	"#4f46e5", // indigo
	"#0d9488", // teal
	"#ea580c", // orange
	"#0891b2", // cyan
}

// Index returns the palette slot for name. The hash walks the UTF-16 code
// units of name with a 31 multiplier where only the shifted term wraps at 32
// bits, so browser clients computing the same hash pick the same colour.
func Index(name string) int {
	var h int64
	for _, u := range utf16.Encode([]rune(name)) {
		h = int64(u) + int64(int32(h)<<5) - h
	}
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(Colors)))
}

// ForParticipant returns the hex colour for name.
func ForParticipant(name string) string {
	return Colors[Index(name)]
}
