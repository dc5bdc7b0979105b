package image

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a w x h PNG whose pixels cycle through colours.
func writeTestPNG(t *testing.T, path string, w, h int, colours []color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, colours[(y*w+x)%len(colours)])
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
}

func TestFileLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.png")
	writeTestPNG(t, path, 4, 3, []color.NRGBA{{255, 0, 0, 255}})

	img, err := NewFileLoader().Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("Expected 4x3 image, got %v", img.Bounds())
	}
}

func TestFileLoaderLoadErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(dir, "missing.png")},
		{"directory", dir},
		{"undecodable", garbage},
	}

	loader := NewFileLoader()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loader.Load(tt.path); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
			if err := ValidateImagePath(tt.path); err == nil {
				t.Errorf("Expected validation error for %s", tt.name)
			}
		})
	}
}

func TestGetImageDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dims.png")
	writeTestPNG(t, path, 7, 5, []color.NRGBA{{0, 0, 0, 255}})

	w, h, err := GetImageDimensions(path)
	if err != nil {
		t.Fatalf("GetImageDimensions failed: %v", err)
	}
	if w != 7 || h != 5 {
		t.Errorf("Expected 7x5, got %dx%d", w, h)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"output_1.png": true,
		"photo.JPG":    true,
		"anim.gif":     true,
		"pic.webp":     true,
		"notes.txt":    false,
		"noext":        false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCountColours(t *testing.T) {
	tests := []struct {
		name    string
		colours []color.NRGBA
		want    int
	}{
		{"single", []color.NRGBA{{10, 20, 30, 255}}, 1},
		{"three", []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}}, 3},
		{"alpha ignored", []color.NRGBA{{255, 0, 0, 255}, {255, 0, 0, 128}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
			for i := range 36 {
				img.SetNRGBA(i%6, i/6, tt.colours[i%len(tt.colours)])
			}
			if got := CountColours(img); got != tt.want {
				t.Errorf("CountColours() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContactSheet(t *testing.T) {
	tiles := make([]Tile, 5)
	for i := range tiles {
		img := image.NewRGBA(image.Rect(0, 0, 40, 20))
		tiles[i] = Tile{Label: "colours", Image: img}
	}

	sheet, err := ContactSheet(tiles, 3, 32)
	if err != nil {
		t.Fatalf("ContactSheet failed: %v", err)
	}

	// 5 tiles at 3 per row -> 2 rows.
	wantW, wantH := 3*32, 2*(32+labelHeight)
	if sheet.Bounds().Dx() != wantW || sheet.Bounds().Dy() != wantH {
		t.Errorf("Expected %dx%d sheet, got %v", wantW, wantH, sheet.Bounds())
	}
}

func TestContactSheetClampsColumns(t *testing.T) {
	tiles := []Tile{{Label: "1", Image: image.NewRGBA(image.Rect(0, 0, 10, 10))}}
	sheet, err := ContactSheet(tiles, 8, 16)
	if err != nil {
		t.Fatalf("ContactSheet failed: %v", err)
	}
	if sheet.Bounds().Dx() != 16 {
		t.Errorf("Expected width 16 for a single tile, got %d", sheet.Bounds().Dx())
	}
}

func TestContactSheetErrors(t *testing.T) {
	tile := []Tile{{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}}
	if _, err := ContactSheet(nil, 2, 32); err == nil {
		t.Error("Expected error for no tiles")
	}
	if _, err := ContactSheet(tile, 0, 32); err == nil {
		t.Error("Expected error for zero columns")
	}
	if _, err := ContactSheet(tile, 2, 4); err == nil {
		t.Error("Expected error for tiny cell")
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name string
		src  image.Rectangle
		want image.Rectangle
	}{
		{"square", image.Rect(0, 0, 50, 50), image.Rect(0, 0, 100, 100)},
		{"wide", image.Rect(0, 0, 200, 100), image.Rect(0, 25, 100, 75)},
		{"tall", image.Rect(0, 0, 100, 200), image.Rect(25, 0, 75, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitRect(tt.src, 100); got != tt.want {
				t.Errorf("fitRect(%v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	if err := WritePNG(path, img); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
	if err := ValidateImagePath(path); err != nil {
		t.Errorf("Written PNG should validate: %v", err)
	}
}
