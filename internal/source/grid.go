package source

const (
	fieldLetters = "ABCDEFGHIJKLMNOPQR"
	subsqLetters = "abcdefghijklmnopqrstuvwx"
)

// Maidenhead converts a position to an 8-character grid locator
// (field pair, square pair, subsquare pair, extended square pair).
// Coordinates are clamped to the valid grid range.
func Maidenhead(lat, lon float64) string {
	lonField, lonRem := split(lon+180.0, 20.0, 17)
	lonSq, lonRem := split(lonRem, 2.0, 9)
	lonSub, lonRem := split(lonRem*12.0, 1.0, 23)
	lonExt, _ := split(lonRem*10.0, 1.0, 9)

	latField, latRem := split(lat+90.0, 10.0, 17)
	latSq, latRem := split(latRem, 1.0, 9)
	latSub, latRem := split(latRem*24.0, 1.0, 23)
	latExt, _ := split(latRem*10.0, 1.0, 9)

	return string([]byte{
		fieldLetters[lonField],
		fieldLetters[latField],
		'0' + byte(lonSq),
		'0' + byte(latSq),
		subsqLetters[lonSub],
		subsqLetters[latSub],
		'0' + byte(lonExt),
		'0' + byte(latExt),
	})
}

// split divides v by unit, clamps the quotient to [0, max], and returns it
// with the remainder scaled back to unit terms.
func split(v, unit float64, max int) (int, float64) {
	q := int(v / unit)
	if q < 0 {
		q = 0
	} else if q > max {
		q = max
	}
	return q, v - float64(q)*unit
}
