package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/paperview/texturize"
	"github.com/paperview/texturize/imageutil"
	"golang.org/x/image/font/gofont/goregular"
)

func main() {
	outputFile := flag.String("output", "",
		"Path to save the generated PNG (required)")
	base := flag.Int("base", 0,
		"First marker ID of the template's corner set (IDs base..base+3)")
	singleID := flag.Int("id", -1,
		"Render a single marker with this ID instead of a template sheet")
	sheetSize := flag.Int("size", 1200,
		"Template sheet edge length in pixels")
	margin := flag.Int("margin", 60,
		"Inset of the marker outer corners from the sheet edges, in pixels")
	cellSize := flag.Int("cell", 12,
		"Marker cell edge length in pixels")
	labels := flag.Bool("labels", true,
		"Print the marker ID next to each marker")
	flag.Parse()

	if *outputFile == "" {
		fmt.Println("Please provide an output path using the -output flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var (
		sheet *imageutil.RGBAImage
		err   error
	)
	if *singleID >= 0 {
		sheet, err = renderSingle(*singleID, *cellSize, *labels)
	} else {
		sheet, err = renderSheet(*base, *sheetSize, *margin, *cellSize, *labels)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := imageutil.SavePNG(sheet.RGBA, *outputFile); err != nil {
		fmt.Printf("Error saving output: %v\n", err)
		os.Exit(1)
	}
}

// renderSheet draws a four-marker template: one marker per corner, IDs
// base..base+3 in top-left, top-right, bottom-right, bottom-left
// order, outer corners inset by margin from the sheet edges.
func renderSheet(base, size, margin, cell int, labels bool) (*imageutil.RGBAImage, error) {
	side := texturize.MarkerSide(cell)
	if 2*(margin+side) >= size {
		return nil, fmt.Errorf(
			"markers do not fit: sheet %dpx, margin %dpx, marker %dpx",
			size, margin, side)
	}

	sheet := imageutil.CreateSolidImage(size, size, imageutil.RGB{R: 255, G: 255, B: 255})
	far := size - margin - side
	corners := []struct {
		id, x, y int
	}{
		{base, margin, margin},
		{base + 1, far, margin},
		{base + 2, far, far},
		{base + 3, margin, far},
	}
	for _, c := range corners {
		if !texturize.DrawMarker(sheet, c.id, c.x, c.y, cell) {
			return nil, fmt.Errorf("marker ID %d is outside the dictionary", c.id)
		}
	}

	if labels {
		fnt, err := loadFont()
		if err != nil {
			return nil, err
		}
		fontSize := float64(cell)
		for _, c := range corners {
			// Label toward the sheet center so it stays clear of the
			// marker's quiet zone.
			lx, ly := c.x, c.y+side+2*cell
			if c.y == far {
				ly = c.y - cell
			}
			if err := drawLabel(sheet, fnt, fontSize, lx, ly,
				fmt.Sprintf("%d", c.id)); err != nil {
				return nil, err
			}
		}
	}
	return sheet, nil
}

// renderSingle draws one marker with a quiet zone of one marker cell
// on every side.
func renderSingle(id, cell int, labels bool) (*imageutil.RGBAImage, error) {
	side := texturize.MarkerSide(cell)
	quiet := 2 * cell
	size := side + 2*quiet
	extra := 0
	if labels {
		extra = 3 * cell
	}

	sheet := imageutil.CreateSolidImage(size, size+extra, imageutil.RGB{R: 255, G: 255, B: 255})
	if !texturize.DrawMarker(sheet, id, quiet, quiet, cell) {
		return nil, fmt.Errorf("marker ID %d is outside the dictionary", id)
	}

	if labels {
		fnt, err := loadFont()
		if err != nil {
			return nil, err
		}
		if err := drawLabel(sheet, fnt, float64(2*cell), quiet, size+2*cell,
			fmt.Sprintf("%d", id)); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

func loadFont() (*truetype.Font, error) {
	fnt, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded font: %w", err)
	}
	return fnt, nil
}

// drawLabel renders text with its baseline at (x, y).
func drawLabel(img *imageutil.RGBAImage, fnt *truetype.Font, size float64, x, y int, text string) error {
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(fnt)
	ctx.SetFontSize(size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.RGBA)
	ctx.SetSrc(image.NewUniform(color.Black))
	if _, err := ctx.DrawString(text, freetype.Pt(x, y)); err != nil {
		return fmt.Errorf("failed to draw label %q: %w", text, err)
	}
	return nil
}
