// Package timeparse converts compact duration tokens like "30m" or "2d"
// into second counts.
package timeparse

import (
	"regexp"
	"strconv"
)

var tokenRegex = regexp.MustCompile(`^(\d+)([mhdw])$`)

// seconds per unit
var units = map[string]int64{
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// Kind classifies a parse result.
type Kind int

const (
	// None means no token was given at all.
	None Kind = iota
	// Invalid means the token does not match the duration grammar.
	Invalid
	// Valid means the token parsed to a positive second count.
	Valid
)

// Duration is the result of parsing a duration token. Callers that want
// the historical "malformed means permanent" behavior use Seconds, which
// collapses None and Invalid to zero; callers that want to reject bad
// input check Kind.
type Duration struct {
	Kind    Kind
	seconds int64
}

// Seconds returns the parsed second count, or 0 for None and Invalid.
func (d Duration) Seconds() int64 {
	if d.Kind != Valid {
		return 0
	}
	return d.seconds
}

// IsZero reports whether the duration carries no positive second count.
func (d Duration) IsZero() bool {
	return d.Seconds() == 0
}

// Parse parses a duration token matching ^\d+[mhdw]$.
func Parse(token string) Duration {
	if token == "" {
		return Duration{Kind: None}
	}

	match := tokenRegex.FindStringSubmatch(token)
	if match == nil {
		return Duration{Kind: Invalid}
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		// Digits that overflow int64 are treated the same as any other
		// malformed token.
		return Duration{Kind: Invalid}
	}

	return Duration{Kind: Valid, seconds: value * units[match[2]]}
}

// Matches reports whether the token looks like a duration token at all,
// used by command parsing to decide between a duration and reason text.
func Matches(token string) bool {
	return tokenRegex.MatchString(token)
}
