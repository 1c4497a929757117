package ui

import "fmt"

const (
	// Standard colors
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	// Inverse video colors
	RedInverse    = "\033[7;31m"
	GreenInverse  = "\033[7;32m"
	YellowInverse = "\033[7;33m"

	ResetColor = "\033[0m" // Reset to default color
)

var MethodColors = map[string]string{
	"GET":     Green,
	"POST":    Blue,
	"PUT":     Cyan,
	"DELETE":  Yellow,
	"PATCH":   Magenta,
	"OPTIONS": Gray,
}

// StateColors maps session state names to the colour they are shown in
var StateColors = map[string]string{
	"uninitialized":     Gray,
	"initialized":       Cyan,
	"agreement_pending": Yellow,
	"authenticated":     Green,
	"failed":            Red,
}

// Colourise wraps text in colour unless plain is set
func Colourise(colour, text string, plain bool) string {
	if plain || colour == "" {
		return text
	}
	return colour + text + ResetColor
}

// Method pads an HTTP method to a fixed width and colours it
func Method(method string, plain bool) string {
	padded := fmt.Sprintf(" %-7s", method)
	colour, ok := MethodColors[method]
	if !ok {
		colour = Gray
	}
	return Colourise(colour, padded, plain)
}
