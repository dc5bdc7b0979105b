package image

import (
	"image"
	"image/color"
)

// CountColours returns the number of distinct 8-bit RGB values in img.
// Alpha is ignored: the sweep quantises the RGB channels only, so a
// translucent pixel shares its colour with an opaque one.
func CountColours(img image.Image) int {
	bounds := img.Bounds()
	seen := make(map[uint32]struct{})
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			seen[uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B)] = struct{}{}
		}
	}
	return len(seen)
}
