//go:build ignore

// Generates input.png, a smooth two-axis gradient that makes quantisation
// banding easy to see. Run with: go run testdata/generate_test_image.go [path]
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

func main() {
	out := "input.png"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	const size = 600
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (size - 1)),
				G: uint8(y * 255 / (size - 1)),
				B: uint8((size - 1 - x) * 255 / (size - 1)),
				A: 255,
			})
		}
	}

	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create %s: %v\n", out, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode %s: %v\n", out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", out, size, size)
}
