//go:build rp2040 || rp2350

package fmtx

import (
	"io"

	"soundsteer-go/x/conv"
)

// DefaultOutput is used by Printf on MCU builds.
// Set this from the platform bootstrap (e.g. a UART writer).
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// --- Public API (signatures match fmt) ---

func Sprintf(format string, a ...any) string {
	var b buf
	b.format(format, a...)
	return string(b.p)
}

func Printf(format string, a ...any) (int, error) {
	return Fprintf(DefaultOutput, format, a...)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	return w.Write([]byte(Sprintf(format, a...)))
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

// --- Internals: minimal formatter ---
// Supports %s %d %x %v %t %% only. No width, no flags; keeps MCU cost low.

type buf struct{ p []byte }

func (b *buf) str(s string) { b.p = append(b.p, s...) }

func (b *buf) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.p = append(b.p, format[i])
			continue
		}
		i++
		if i >= len(format) {
			return
		}
		if format[i] == '%' {
			b.p = append(b.p, '%')
			continue
		}
		if ai >= len(args) {
			b.str("%!")
			b.p = append(b.p, format[i])
			continue
		}
		arg := args[ai]
		ai++
		switch format[i] {
		case 's':
			switch v := arg.(type) {
			case string:
				b.str(v)
			case []byte:
				b.p = append(b.p, v...)
			case error:
				b.str(v.Error())
			default:
				b.value(arg)
			}
		case 'd', 'v':
			b.value(arg)
		case 'x':
			var scratch [16]byte
			b.p = append(b.p, conv.Hex(scratch[:], toU64(arg))...)
		case 't':
			if v, ok := arg.(bool); ok && v {
				b.str("true")
			} else {
				b.str("false")
			}
		default:
			b.str("%!")
			b.p = append(b.p, format[i])
		}
	}
}

func (b *buf) value(v any) {
	var scratch [20]byte
	switch x := v.(type) {
	case string:
		b.str(x)
	case error:
		b.str(x.Error())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case int:
		b.p = append(b.p, conv.Itoa(scratch[:], int64(x))...)
	case int8:
		b.p = append(b.p, conv.Itoa(scratch[:], int64(x))...)
	case int16:
		b.p = append(b.p, conv.Itoa(scratch[:], int64(x))...)
	case int32:
		b.p = append(b.p, conv.Itoa(scratch[:], int64(x))...)
	case int64:
		b.p = append(b.p, conv.Itoa(scratch[:], x)...)
	case uint, uint8, uint16, uint32, uint64, uintptr:
		b.p = append(b.p, conv.Utoa(scratch[:], toU64(x))...)
	default:
		b.str("<unk>")
	}
}

func toU64(v any) uint64 {
	switch t := v.(type) {
	case uint:
		return uint64(t)
	case uint8:
		return uint64(t)
	case uint16:
		return uint64(t)
	case uint32:
		return uint64(t)
	case uint64:
		return t
	case uintptr:
		return uint64(t)
	case int:
		return uint64(t)
	case int32:
		return uint64(t)
	case int64:
		return uint64(t)
	default:
		return 0
	}
}
