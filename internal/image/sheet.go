package image

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// labelHeight is the strip under each thumbnail reserved for its caption.
const labelHeight = 16

// Tile is one image placed on a contact sheet.
type Tile struct {
	Label string
	Image image.Image
}

// ContactSheet lays tiles out left to right, top to bottom, cols per row.
// Each image is scaled to fit a cell x cell box with its aspect ratio kept,
// and its label is drawn underneath.
func ContactSheet(tiles []Tile, cols, cell int) (*image.RGBA, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("contact sheet needs at least one image")
	}
	if cols < 1 {
		return nil, fmt.Errorf("columns must be at least 1, got %d", cols)
	}
	if cell < 8 {
		return nil, fmt.Errorf("cell size must be at least 8 pixels, got %d", cell)
	}

	cols = min(cols, len(tiles))
	rows := (len(tiles) + cols - 1) / cols
	rowHeight := cell + labelHeight

	sheet := image.NewRGBA(image.Rect(0, 0, cols*cell, rows*rowHeight))
	draw.Draw(sheet, sheet.Bounds(), image.White, image.Point{}, draw.Src)

	for i, tile := range tiles {
		origin := image.Pt((i%cols)*cell, (i/cols)*rowHeight)
		if tile.Image != nil {
			dst := fitRect(tile.Image.Bounds(), cell).Add(origin)
			draw.CatmullRom.Scale(sheet, dst, tile.Image, tile.Image.Bounds(), draw.Over, nil)
		}
		drawLabel(sheet, tile.Label, origin.X+2, origin.Y+cell+labelHeight-3)
	}

	return sheet, nil
}

// fitRect returns a rectangle inside a cell x cell box, at the origin,
// matching the aspect ratio of src and centred in the box.
func fitRect(src image.Rectangle, cell int) image.Rectangle {
	w, h := src.Dx(), src.Dy()
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	dw, dh := cell, cell
	if w > h {
		dh = max(1, h*cell/w)
	} else if h > w {
		dw = max(1, w*cell/h)
	}
	x := (cell - dw) / 2
	y := (cell - dh) / 2
	return image.Rect(x, y, x+dw, y+dh)
}

func drawLabel(dst draw.Image, label string, x, y int) {
	if label == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

// WritePNG encodes img to path as PNG.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
