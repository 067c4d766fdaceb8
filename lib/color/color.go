package color

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

const (
	// Used for segments and rings without a color.
	Primary = "#6011D9"
	// Ring wedge outline.
	Stroke = "#666666"

	White = "#fff"
	Dark  = "#1a1a1a"

	Empty = ""
	None  = "none"
)

// Validate reports whether colorString is a CSS color.
func Validate(colorString string) error {
	if colorString == None {
		return nil
	}
	_, err := csscolorparser.Parse(colorString)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", colorString, err)
	}
	return nil
}

// Darken lowers the lightness of colorString by 10%.
func Darken(colorString string) (string, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return "", err
	}
	h, s, l := colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	return colorful.Hsl(h, s, l-.1).Clamped().Hex(), nil
}

func LuminanceCategory(colorString string) (string, error) {
	l, err := Luminance(colorString)
	if err != nil {
		return "", err
	}

	switch {
	case l >= .88:
		return "bright", nil
	case l >= .55:
		return "normal", nil
	case l >= .30:
		return "dark", nil
	default:
		return "darker", nil
	}
}

func Luminance(colorString string) (float64, error) {
	c, err := csscolorparser.Parse(colorString)
	if err != nil {
		return 0, err
	}

	l := float64(
		float64(0.299)*float64(c.R) +
			float64(0.587)*float64(c.G) +
			float64(0.114)*float64(c.B),
	)
	return l, nil
}

// Contrast picks a font color readable on top of background.
func Contrast(background string) (string, error) {
	category, err := LuminanceCategory(background)
	if err != nil {
		return "", err
	}
	switch category {
	case "bright", "normal":
		return Dark, nil
	default:
		return White, nil
	}
}
