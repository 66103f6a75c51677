package rdb

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSnapshot(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("REDIS0011")

	// one metadata pair
	buf.WriteByte(opMetadata)
	buf.WriteByte(4)
	buf.WriteString("name")
	buf.WriteByte(9)
	buf.WriteString("minikv-rs")

	// database section with two keys, one with a ms-expiry
	buf.WriteByte(opDatabase)
	buf.WriteByte(0) // db index
	buf.WriteByte(opResizeDB)
	buf.WriteByte(2) // total keys
	buf.WriteByte(1) // expiring keys

	// key "foo" -> "bar", no expiry
	buf.WriteByte(valueTypeString)
	buf.WriteByte(3)
	buf.WriteString("foo")
	buf.WriteByte(3)
	buf.WriteString("bar")

	// key "baz" -> "qux", ms expiry
	buf.WriteByte(opExpireMS)
	le64 := func(v uint64) []byte {
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v >> (8 * i))
		}
		return b
	}
	buf.Write(le64(1700000000000))
	buf.WriteByte(valueTypeString)
	buf.WriteByte(3)
	buf.WriteString("baz")
	buf.WriteByte(3)
	buf.WriteString("qux")

	buf.WriteByte(opEOF)
	return buf.Bytes()
}

func TestLoadParsesEntries(t *testing.T) {
	entries, err := Load(bytes.NewReader(buildSnapshot(t)))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.Equal(t, "foo", entries[0].Key)
	require.Equal(t, "bar", string(entries[0].Value))
	require.False(t, entries[0].HasExpiry)

	require.Equal(t, "baz", entries[1].Key)
	require.Equal(t, "qux", string(entries[1].Value))
	require.True(t, entries[1].HasExpiry)
	require.EqualValues(t, 1700000000000, entries[1].ExpireAtMillis)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("NOTREDIS0011")))
	require.Error(t, err)
}

func TestEmptySnapshotRoundTrips(t *testing.T) {
	entries, err := Load(bytes.NewReader(EmptySnapshot()))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestIntegerEncodedStrings(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("REDIS0011")
	buf.WriteByte(opDatabase)
	buf.WriteByte(0)
	buf.WriteByte(opResizeDB)
	buf.WriteByte(1)
	buf.WriteByte(0)

	buf.WriteByte(valueTypeString)
	buf.WriteByte(3)
	buf.WriteString("num")
	// 1-byte signed int encoding: 0xC0 | 0
	buf.WriteByte(0xC0)
	buf.WriteByte(42)

	buf.WriteByte(opEOF)

	entries, err := Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "42", string(entries[0].Value))
}
