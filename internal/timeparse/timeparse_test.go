package timeparse

import "testing"

func TestParseValidTokens(t *testing.T) {
	cases := []struct {
		token string
		want  int64
	}{
		{"30m", 1800},
		{"1m", 60},
		{"6h", 21600},
		{"2d", 172800},
		{"1w", 604800},
		{"0m", 0},
	}

	for _, tc := range cases {
		d := Parse(tc.token)
		if d.Kind != Valid {
			t.Errorf("Parse(%q) kind = %v, want Valid", tc.token, d.Kind)
		}
		if d.Seconds() != tc.want {
			t.Errorf("Parse(%q) = %d seconds, want %d", tc.token, d.Seconds(), tc.want)
		}
	}
}

func TestParseInvalidTokens(t *testing.T) {
	for _, token := range []string{"5x", "abc", "m30", "30", "h", "1.5h", "-1h", "2dd"} {
		d := Parse(token)
		if d.Kind != Invalid {
			t.Errorf("Parse(%q) kind = %v, want Invalid", token, d.Kind)
		}
		if d.Seconds() != 0 {
			t.Errorf("Parse(%q) = %d seconds, want 0", token, d.Seconds())
		}
	}
}

func TestParseEmptyToken(t *testing.T) {
	d := Parse("")
	if d.Kind != None {
		t.Errorf("Parse(\"\") kind = %v, want None", d.Kind)
	}
	if !d.IsZero() {
		t.Error("Parse(\"\") should be zero")
	}
}

func TestMatches(t *testing.T) {
	if !Matches("10m") {
		t.Error("Matches(\"10m\") = false, want true")
	}
	if Matches("spam") {
		t.Error("Matches(\"spam\") = true, want false")
	}
}
