package game

// Display palette, cycled when a session outgrows it.
var palette = []string{
	"#e74c3c",
	"#3498db",
	"#2ecc71",
	"#9b59b6",
	"#f39c12",
	"#1abc9c",
}

// ColorFor maps a zero-based color index to a stable display color.
func ColorFor(index int) string {
	if index < 0 {
		index = 0
	}
	return palette[index%len(palette)]
}

// PaletteSize reports how many distinct colors exist before cycling.
func PaletteSize() int { return len(palette) }
