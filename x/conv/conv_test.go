package conv

import "testing"

func TestItoa(t *testing.T) {
	var buf [20]byte
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{-4000, "-4000"},
		{25000, "25000"},
		{-9223372036854775808, "-9223372036854775808"},
	}
	for _, c := range cases {
		if got := string(Itoa(buf[:], c.in)); got != c.want {
			t.Errorf("Itoa(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUtoa(t *testing.T) {
	var buf [20]byte
	if got := string(Utoa(buf[:], 4294967295)); got != "4294967295" {
		t.Errorf("Utoa(4294967295) = %q", got)
	}
	if got := string(Utoa(buf[:], 0)); got != "0" {
		t.Errorf("Utoa(0) = %q", got)
	}
}

func TestHex(t *testing.T) {
	var buf [16]byte
	if got := string(Hex(buf[:], 0x2d6)); got != "2d6" {
		t.Errorf("Hex(0x2d6) = %q", got)
	}
	if got := string(Hex(buf[:], 0)); got != "0" {
		t.Errorf("Hex(0) = %q", got)
	}
}
