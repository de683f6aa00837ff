package fmtx

import "testing"

func TestSprintf(t *testing.T) {
	cases := []struct {
		format string
		args   []any
		want   string
	}{
		{"plain", nil, "plain"},
		{"freq=%d duty=%d", []any{50, uint32(7)}, "freq=50 duty=7"},
		{"phase %d", []any{int32(-4000)}, "phase -4000"},
		{"%s: %v", []any{"steer", true}, "steer: true"},
		{"100%%", nil, "100%"},
	}
	for _, c := range cases {
		if got := Sprintf(c.format, c.args...); got != c.want {
			t.Errorf("Sprintf(%q, %v) = %q, want %q", c.format, c.args, got, c.want)
		}
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("set_params failed: %s", "invalid_duty")
	if err.Error() != "set_params failed: invalid_duty" {
		t.Errorf("unexpected error text: %q", err.Error())
	}
}
