package resp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, f *Frame) {
	t.Helper()
	wire := Encode(f)
	got, n, err := Parse(wire, 0)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)
	require.Equal(t, Encode(f), Encode(got))
}

func TestRoundTripSimpleString(t *testing.T) {
	roundTrip(t, Simple("PONG"))
}

func TestRoundTripError(t *testing.T) {
	roundTrip(t, Err("ERR value is not an integer or out of range"))
}

func TestRoundTripInteger(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, -9223372036854775808, 9223372036854775807} {
		roundTrip(t, Int(n))
	}
}

func TestRoundTripBulkString(t *testing.T) {
	roundTrip(t, Bulk(""))
	roundTrip(t, Bulk("hello world"))
	roundTrip(t, NullBulk())
}

func TestRoundTripArray(t *testing.T) {
	roundTrip(t, NullArray())
	roundTrip(t, Arr())
	roundTrip(t, BulkStrings("SET", "foo", "bar"))
	roundTrip(t, Arr(Bulk("k"), Arr(Bulk("id1"), BulkStrings("f1", "v1"))))
}

func TestParseIncompleteAllowsRetry(t *testing.T) {
	wire := Encode(BulkStrings("SET", "foo", "bar"))
	for cut := 0; cut < len(wire); cut++ {
		_, _, err := Parse(wire[:cut], 0)
		require.ErrorIs(t, err, ErrIncomplete)
	}
	f, n, err := Parse(wire, 0)
	require.NoError(t, err)
	require.Equal(t, len(wire), n)
	args, err := f.StringArgs()
	require.NoError(t, err)
	require.Equal(t, []string{"SET", "foo", "bar"}, args)
}

func TestParseMalformedIsProtocolError(t *testing.T) {
	_, _, err := Parse([]byte("!nope\r\n"), 0)
	require.Error(t, err)
	var protoErr *ErrProtocol
	require.ErrorAs(t, err, &protoErr)
}

func TestParseMultipleFramesSequentially(t *testing.T) {
	buf := append(Encode(Simple("OK")), Encode(Int(7))...)
	f1, n1, err := Parse(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "OK", f1.Str)

	f2, n2, err := Parse(buf, n1)
	require.NoError(t, err)
	require.Equal(t, int64(7), f2.Int)
	require.Equal(t, len(buf), n2)
}

func TestEncodeRawBulkHasNoTrailingCRLF(t *testing.T) {
	payload := []byte("REDIS0011somebytes")
	wire := EncodeRawBulk(payload)
	require.Equal(t, "$18\r\n"+string(payload), string(wire))
}
