// Package render draws the fixed 296x128 forecast layout: a temperature band
// with icons and values positioned by relative temperature, a precipitation
// probability band, and an hour label band.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mesembria/Magtag-Weather-Odin/internal/modules/forecast/types"
)

const (
	DisplayWidth  = 296
	DisplayHeight = 128

	popBandHeight  = 18
	hourBandHeight = 16
	// The temperature band takes the rest, plus the 2px fudge the layout was
	// tuned with on hardware.
	tempBandHeight = DisplayHeight - popBandHeight - hourBandHeight + 2

	// Vertical room one icon plus its temperature label needs inside the
	// temperature band.
	iconTempHeight = glyphSize + 10
)

var (
	black     = color.Gray{Y: 0x00}
	white     = color.Gray{Y: 0xFF}
	barGray   = color.Gray{Y: 0x99}
	labelGray = color.Gray{Y: 0x22}
)

// Frame renders the sampled forecast columns into a fresh grayscale frame.
func Frame(cols []types.Hour) (*image.Gray, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("no forecast columns to render")
	}

	img := image.NewGray(image.Rect(0, 0, DisplayWidth, DisplayHeight))
	fillRect(img, 0, 0, DisplayWidth, DisplayHeight, white)

	colWidth := DisplayWidth / len(cols)
	drawTempBand(img, cols, colWidth)
	drawPopBand(img, cols, colWidth, tempBandHeight)
	drawHourBand(img, cols, colWidth, tempBandHeight+popBandHeight+4)
	return img, nil
}

// EncodePNG encodes a rendered frame for storage and publishing.
func EncodePNG(img *image.Gray) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTempBand(img *image.Gray, cols []types.Hour, colWidth int) {
	minTemp, span := types.TempRange(cols)
	usable := tempBandHeight - iconTempHeight

	for col, h := range cols {
		x := col*colWidth + 5

		// Position each column vertically by where its temperature sits in
		// the min..max range: warmest at the top of the band.
		per := 0.0
		if span > 0 {
			per = (h.Temp - minTemp) / span
		}
		y := int(per * float64(usable))

		if idx, ok := IconIndex(h.Icon); ok {
			drawGlyph(img, idx, x+5, usable-y-2)
		}

		tempText := strconv.Itoa(int(math.Round(h.Temp)))
		drawText(img, tempText, x+10, usable-y+23, black)
	}
}

func drawPopBand(img *image.Gray, cols []types.Hour, colWidth, bandY int) {
	for col, h := range cols {
		x := col*colWidth + 5

		rectHeight := int(popBandHeight * h.Pop)
		if rectHeight == 0 {
			rectHeight = 1
		}
		fillRect(img, x, bandY+popBandHeight-rectHeight, colWidth-2, rectHeight, barGray)

		if h.Pop > 0.3 {
			popText := strconv.Itoa(int(math.Round(h.Pop*100))) + "%"
			offset := 7
			if h.Pop == 1 {
				offset = 4
			}
			drawText(img, popText, x+offset, bandY+popBandHeight-10, labelGray)
		}
	}
}

func drawHourBand(img *image.Gray, cols []types.Hour, colWidth, bandY int) {
	for col, h := range cols {
		x := col*colWidth + 5

		var hourText string
		if h.Hour > 12 {
			hourText = strconv.Itoa(h.Hour%12) + "P"
		} else {
			hourText = strconv.Itoa(h.Hour) + "A"
		}
		drawText(img, hourText, x+10, bandY, black)
	}
}

// drawText draws s with its left edge at x and its vertical center at y,
// matching the (0, 0.5) anchor the labels were laid out with.
func drawText(img *image.Gray, s string, x, y int, c color.Gray) {
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent-face.Height/2),
	}
	d.DrawString(s)
}

func setPx(img *image.Gray, x, y int, c color.Gray) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetGray(x, y, c)
	}
}

func fillRect(img *image.Gray, x, y, w, h int, c color.Gray) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			setPx(img, x+dx, y+dy, c)
		}
	}
}

func fillCircle(img *image.Gray, cx, cy, r int, c color.Gray) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setPx(img, cx+dx, cy+dy, c)
			}
		}
	}
}
