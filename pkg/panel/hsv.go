package panel

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSVToRGB converts a color with hue, saturation and value each
// scaled to [0, 255] into RGB.
func HSVToRGB(c Color) Color {
	h := float64(c[0]) * 360 / 256
	r, g, b := colorful.Hsv(h, float64(c[1])/255, float64(c[2])/255).Clamped().RGB255()
	return Color{r, g, b}
}

// ToRGB converts a color in space into RGB.
func ToRGB(c Color, space ColorSpace) Color {
	if space == HSV {
		return HSVToRGB(c)
	}
	return c
}

// Scale scales a component by brightness, where 255 leaves it as is.
func Scale(v, brightness byte) byte {
	return byte(uint16(v) * (1 + uint16(brightness)) >> 8)
}
