package processor

import "math"

// standardWidths maps common 16:9 heights to their canonical widths.
var standardWidths = map[int]int{
	2160: 3840,
	1440: 2560,
	1080: 1920,
	720:  1280,
	480:  854,
	360:  640,
	240:  426,
	144:  256,
}

// WidthForHeight returns the 16:9 width for a rung height. Heights outside
// the table use round(h*16/9), rounded up to an even value for the encoder.
func WidthForHeight(height int) int {
	if w, ok := standardWidths[height]; ok {
		return w
	}
	return evenWidth(height)
}

func evenWidth(height int) int {
	w := int(math.Round(float64(height) * 16 / 9))
	if w%2 != 0 {
		w++
	}
	return w
}
