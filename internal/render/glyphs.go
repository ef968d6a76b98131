package render

import "image"

// Glyph tiles are 20x20, drawn procedurally; the device-side BMP sprite sheet
// stays on the device. Indexes follow the icon map: 0 clear day, 1 few clouds
// day, 2 scattered clouds, 3 broken clouds, 4 shower rain, 5 rain, 6
// thunderstorm, 7 snow, 8 mist, 9 clear night, 10 few clouds night.

const glyphSize = 20

func drawGlyph(img *image.Gray, index, x, y int) {
	switch index {
	case 0: // clear day
		drawSun(img, x+10, y+10, 5)
	case 1: // few clouds, day
		drawSun(img, x+7, y+7, 4)
		drawCloud(img, x+4, y+9)
	case 2: // scattered clouds
		drawCloud(img, x+2, y+6)
	case 3: // broken clouds
		drawCloud(img, x+1, y+3)
		drawCloud(img, x+4, y+9)
	case 4: // shower rain
		drawCloud(img, x+2, y+3)
		drawRain(img, x, y, 4)
	case 5: // rain
		drawCloud(img, x+2, y+3)
		drawRain(img, x, y, 3)
	case 6: // thunderstorm
		drawCloud(img, x+2, y+3)
		drawBolt(img, x+8, y+11)
	case 7: // snow
		drawSnow(img, x, y)
	case 8: // mist
		drawMist(img, x, y)
	case 9: // clear night
		drawMoon(img, x+10, y+10, 6)
	case 10: // few clouds, night
		drawMoon(img, x+7, y+7, 5)
		drawCloud(img, x+4, y+9)
	}
}

func drawSun(img *image.Gray, cx, cy, r int) {
	fillCircle(img, cx, cy, r, black)
	// 8 rays
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
		for i := r + 2; i <= r+4; i++ {
			setPx(img, cx+d[0]*i, cy+d[1]*i, black)
		}
	}
}

func drawMoon(img *image.Gray, cx, cy, r int) {
	fillCircle(img, cx, cy, r, black)
	// Punch out the crescent with the background color.
	fillCircle(img, cx+r/2+1, cy-r/2+1, r, white)
}

func drawCloud(img *image.Gray, x, y int) {
	fillCircle(img, x+4, y+5, 3, black)
	fillCircle(img, x+8, y+3, 4, black)
	fillCircle(img, x+12, y+5, 3, black)
	fillRect(img, x+3, y+5, 10, 4, black)
}

func drawRain(img *image.Gray, x, y, drops int) {
	for i := 0; i < drops; i++ {
		dx := x + 3 + i*4
		for dy := 13; dy <= 17; dy++ {
			setPx(img, dx, y+dy, black)
		}
	}
}

func drawBolt(img *image.Gray, x, y int) {
	// Zig-zag stroke.
	for i := 0; i < 4; i++ {
		setPx(img, x+3-i, y+i, black)
		setPx(img, x+4-i, y+i, black)
	}
	for i := 0; i < 4; i++ {
		setPx(img, x+3-i, y+3+i, black)
		setPx(img, x+2-i, y+3+i, black)
	}
}

func drawSnow(img *image.Gray, x, y int) {
	for _, c := range [][2]int{{5, 6}, {13, 6}, {9, 11}, {5, 16}, {13, 16}} {
		cx, cy := x+c[0], y+c[1]
		for i := -2; i <= 2; i++ {
			setPx(img, cx+i, cy, black)
			setPx(img, cx, cy+i, black)
		}
	}
}

func drawMist(img *image.Gray, x, y int) {
	for _, row := range []int{5, 9, 13, 17} {
		for dx := 2; dx <= 17; dx++ {
			setPx(img, x+dx, y+row-1, black)
		}
	}
}
