package game

// Palette is the fixed set of player colors. Slots are assigned round-robin
// by join order; two players only share a color once the room exceeds the
// palette size.
var Palette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#ffe119", // yellow
}

// ColorForSlot maps any join index onto the palette.
func ColorForSlot(slot int) string {
	if slot < 0 {
		slot = -slot
	}
	return Palette[slot%len(Palette)]
}
