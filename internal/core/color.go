package core

// Color is the foreground color of a screen cell, mapped to an ANSI 256-color
// code by the platform layer.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightYellow
	ColorBrightCyan
	ColorOrange
	ColorBrown
	ColorGray
)

// Palette lists the celebration colors.
var Palette = []Color{
	ColorBrightYellow,
	ColorBlue,
	ColorOrange,
	ColorGreen,
	ColorRed,
	ColorMagenta,
}
