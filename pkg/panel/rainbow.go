package panel

// Rainbow fills every panel with a hue gradient starting at hue and
// stepping by delta per pixel.
func Rainbow(d Driver, hue, delta byte) error {
	for n := 0; n < d.PanelCount(); n++ {
		h := hue
		for i := 0; i < d.PanelLength(n); i++ {
			if err := d.SetPixel(n, i, Color{h, 255, 255}, HSV); err != nil {
				return err
			}
			h += delta
		}
	}
	return nil
}
