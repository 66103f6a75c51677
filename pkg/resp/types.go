// Package resp implements the five-frame wire codec described by the
// protocol: simple strings, errors, integers, bulk strings, and arrays,
// each CRLF-terminated, plus the raw (CRLF-less) bulk payload used once
// during a PSYNC snapshot transfer.
package resp

import "fmt"

type Kind int

const (
	SimpleString Kind = iota
	Error
	Integer
	BulkString
	Array
)

// Frame is the parsed form of one wire unit. Exactly one of the fields
// below is meaningful, selected by Kind:
//   - SimpleString/Error: Str
//   - Integer: Int
//   - BulkString: Str (Null true means a "$-1\r\n" null bulk string)
//   - Array: Items (Null true means a "*-1\r\n" null array)
type Frame struct {
	Kind  Kind
	Str   string
	Int   int64
	Items []*Frame
	Null  bool
}

func Simple(s string) *Frame { return &Frame{Kind: SimpleString, Str: s} }
func Err(s string) *Frame    { return &Frame{Kind: Error, Str: s} }
func Errf(format string, args ...interface{}) *Frame {
	return &Frame{Kind: Error, Str: fmt.Sprintf(format, args...)}
}
func Int(i int64) *Frame       { return &Frame{Kind: Integer, Int: i} }
func Bulk(s string) *Frame     { return &Frame{Kind: BulkString, Str: s} }
func BulkBytes(b []byte) *Frame {
	return &Frame{Kind: BulkString, Str: string(b)}
}
func NullBulk() *Frame { return &Frame{Kind: BulkString, Null: true} }
func NullArray() *Frame { return &Frame{Kind: Array, Null: true} }
func Arr(items ...*Frame) *Frame {
	return &Frame{Kind: Array, Items: items}
}

// BulkStrings builds an Array of BulkString frames, the common shape for
// command replies like LRANGE or XRANGE field lists.
func BulkStrings(ss ...string) *Frame {
	items := make([]*Frame, len(ss))
	for i, s := range ss {
		items[i] = Bulk(s)
	}
	return &Frame{Kind: Array, Items: items}
}

func (f *Frame) IsNull() bool {
	return f != nil && f.Null
}

// StringArgs extracts the bulk-string payloads of an Array frame, in
// order. Used by command dispatch once a client command has been parsed
// into its top-level array.
func (f *Frame) StringArgs() ([]string, error) {
	if f == nil || f.Kind != Array {
		return nil, fmt.Errorf("resp: not an array frame")
	}
	out := make([]string, len(f.Items))
	for i, it := range f.Items {
		if it == nil || it.Kind != BulkString || it.Null {
			return nil, fmt.Errorf("resp: array element %d is not a bulk string", i)
		}
		out[i] = it.Str
	}
	return out, nil
}
