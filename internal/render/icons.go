package render

// iconMap maps OpenWeather icon codes to glyph tile indexes. Entries ending in
// "X" cover both the day ("d") and night ("n") variant of the code.
var iconMap = map[string]int{
	"01d": 0,
	"01n": 9,
	"02d": 1,
	"02n": 10,
	"03X": 2,
	"04X": 3,
	"09X": 4,
	"10X": 5,
	"11X": 6,
	"13X": 7,
	"50X": 8,
}

// IconIndex resolves an OpenWeather icon code ("10d", "01n", ...) to a glyph
// index. Codes match on their two-digit prefix; an "X" entry matches either
// suffix, otherwise the day/night suffix must match exactly.
func IconIndex(code string) (int, bool) {
	if len(code) < 3 {
		return 0, false
	}
	for k, idx := range iconMap {
		if k[:2] != code[:2] {
			continue
		}
		if k[2] == 'X' || k[2] == code[2] {
			return idx, true
		}
	}
	return 0, false
}
