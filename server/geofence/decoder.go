package geofence

import (
	"strconv"
	"strings"
)

// Server area strings look like "POLYGON((lon lat, lon lat, ...))". Only the
// fixed-width wrapping is stripped; this is not a general WKT parser.
const (
	areaPrefixLen = 9 // "POLYGON(("
	areaSuffixLen = 2 // "))"
)

// DecodeArea parses one server area string into a ring.
//
// Algorithm:
//  1. Drop the first 9 and the last 2 characters
//  2. Split on "," and trim every token
//  3. Split each token on whitespace: first field is longitude, second latitude
//  4. Read the leading number of each field, ignoring trailing characters
//     such as a leftover ")"
//
// Any malformed input (too short, missing field, a field with no leading
// number, fewer than MinRingPoints vertices) yields an empty ring rather than
// an error.
func DecodeArea(area string) Ring {
	if len(area) <= areaPrefixLen+areaSuffixLen {
		return Ring{}
	}

	body := area[areaPrefixLen : len(area)-areaSuffixLen]
	tokens := strings.Split(body, ",")

	ring := make(Ring, 0, len(tokens))
	for _, token := range tokens {
		fields := strings.Fields(strings.TrimSpace(token))
		if len(fields) < 2 {
			return Ring{}
		}

		lon, ok := leadingFloat(fields[0])
		if !ok {
			return Ring{}
		}
		lat, ok := leadingFloat(fields[1])
		if !ok {
			return Ring{}
		}

		ring = append(ring, Coordinate{Latitude: lat, Longitude: lon})
	}

	if len(ring) < MinRingPoints {
		return Ring{}
	}

	return ring
}

// DecodeRings decodes every area independently, keeping positions so that
// index 0 stays the primary (innermost) ring even when it fails to decode.
func DecodeRings(areas []string) []Ring {
	rings := make([]Ring, len(areas))
	for i, area := range areas {
		rings[i] = DecodeArea(area)
	}
	return rings
}

// leadingFloat parses the longest decimal prefix of s, so "44.0)S" reads as
// 44.0. It reports false when s does not start with a number.
func leadingFloat(s string) (float64, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digits := 0
	for end < len(s) && isDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && isDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}

	// Exponent only counts when at least one digit follows it.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && isDigit(s[exp]) {
			for exp < len(s) && isDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
