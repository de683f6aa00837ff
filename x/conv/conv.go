// Package conv holds allocation-free number formatting for MCU builds,
// where fmt/strconv pull in too much code.
package conv

const hexdigits = "0123456789abcdef"

// Itoa writes the base-10 representation of n into buf and returns the used
// tail slice. buf should be at least 20 bytes for int64.
func Itoa(buf []byte, n int64) []byte {
	if n < 0 {
		s := Utoa(buf[1:], uint64(-n))
		i := len(buf) - len(s) - 1
		buf[i] = '-'
		return buf[i:]
	}
	return Utoa(buf, uint64(n))
}

// Utoa writes the base-10 representation of n into buf and returns the used
// tail slice.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}
	if n == 0 {
		i--
		buf[i] = '0'
		return buf[i:]
	}
	for n > 0 && i > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return buf[i:]
}

// Hex writes the base-16 representation of n into buf and returns the used
// tail slice. buf should be at least 16 bytes for uint64.
func Hex(buf []byte, n uint64) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}
	if n == 0 {
		i--
		buf[i] = '0'
		return buf[i:]
	}
	for n > 0 && i > 0 {
		i--
		buf[i] = hexdigits[n&0xf]
		n >>= 4
	}
	return buf[i:]
}
