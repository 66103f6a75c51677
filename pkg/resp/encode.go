package resp

import (
	"strconv"
)

// Encode serializes a frame to its wire form.
func Encode(f *Frame) []byte {
	var buf []byte
	return appendFrame(buf, f)
}

func appendFrame(buf []byte, f *Frame) []byte {
	switch f.Kind {
	case SimpleString:
		buf = append(buf, '+')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case Error:
		buf = append(buf, '-')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case Integer:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, f.Int, 10)
		return append(buf, '\r', '\n')
	case BulkString:
		if f.Null {
			return append(buf, '$', '-', '1', '\r', '\n')
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Str)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')
	case Array:
		if f.Null {
			return append(buf, '*', '-', '1', '\r', '\n')
		}
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Items)), 10)
		buf = append(buf, '\r', '\n')
		for _, it := range f.Items {
			buf = appendFrame(buf, it)
		}
		return buf
	default:
		panic("resp: unknown frame kind")
	}
}

// EncodeRawBulk produces the intentional PSYNC-only deviation: a bulk
// string header followed by the raw payload with NO trailing CRLF.
func EncodeRawBulk(payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+16)
	buf = append(buf, '$')
	buf = strconv.AppendInt(buf, int64(len(payload)), 10)
	buf = append(buf, '\r', '\n')
	buf = append(buf, payload...)
	return buf
}

// EncodeCommand builds the array-of-bulk-strings frame used for both
// client commands and propagated write commands.
func EncodeCommand(args ...string) []byte {
	return Encode(BulkStrings(args...))
}
