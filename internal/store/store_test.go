package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringExpiryMonotonicity(t *testing.T) {
	s := New()
	s.SetString("k", []byte("v"), 100, true, 1000)

	_, ok := s.GetString("k", 1050)
	require.True(t, ok)

	_, ok = s.GetString("k", 1100)
	require.False(t, ok, "expired key must read as absent")

	require.Equal(t, KindNone, s.Type("k", 1100))
}

func TestIncrCreatesAndIncrements(t *testing.T) {
	s := New()
	n, err := s.Incr("counter", 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Incr("counter", 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestIncrNonIntegerErrors(t *testing.T) {
	s := New()
	s.SetString("k", []byte("not-a-number"), 0, false, 0)
	_, err := s.Incr("k", 0)
	require.Error(t, err)
}

func TestIncrWrongTypeErrors(t *testing.T) {
	s := New()
	_, err := s.RPush("k", [][]byte{[]byte("a")}, 0)
	require.NoError(t, err)
	_, err = s.Incr("k", 0)
	require.Error(t, err)
	var te *TypeError
	require.ErrorAs(t, err, &te)
}

func TestLPushOrderAndRPush(t *testing.T) {
	s := New()
	n, err := s.LPush("k", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 0)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	vals, err := s.LRange("k", 0, -1, 0)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("c"), []byte("b"), []byte("a")}, vals)

	_, err = s.RPush("k", [][]byte{[]byte("d")}, 0)
	require.NoError(t, err)
	vals, _ = s.LRange("k", 0, -1, 0)
	require.Equal(t, "d", string(vals[len(vals)-1]))
}

func TestLRangeClamping(t *testing.T) {
	s := New()
	s.RPush("k", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 0)

	vals, _ := s.LRange("k", -100, 100, 0)
	require.Len(t, vals, 3)

	vals, _ = s.LRange("k", 5, 10, 0)
	require.Len(t, vals, 0)
}

func TestLPopCounts(t *testing.T) {
	s := New()
	s.RPush("k", [][]byte{[]byte("a"), []byte("b"), []byte("c")}, 0)

	one, err := s.LPop("k", 0, 0)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a")}, one)

	many, err := s.LPop("k", 5, 0)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("b"), []byte("c")}, many)

	none, err := s.LPop("k", 1, 0)
	require.NoError(t, err)
	require.Nil(t, none)
}

func TestBLPOPWaitQueueFIFO(t *testing.T) {
	s := New()
	require.NoError(t, s.EnqueueWaiter("k", "c1", 0))
	require.NoError(t, s.EnqueueWaiter("k", "c2", 0))
	require.NoError(t, s.EnqueueWaiter("k", "c1", 0)) // dup is a no-op

	s.RPush("k", [][]byte{[]byte("only")}, 0)

	_, ok := s.TryServeWaiter("k", "c2")
	require.False(t, ok, "c2 is not at the front")

	val, ok := s.TryServeWaiter("k", "c1")
	require.True(t, ok)
	require.Equal(t, "only", string(val))

	s.RPush("k", [][]byte{[]byte("next")}, 0)
	val, ok = s.TryServeWaiter("k", "c2")
	require.True(t, ok)
	require.Equal(t, "next", string(val))
}

func TestXAddMonotoneIDs(t *testing.T) {
	s := New()
	id, err := s.XAdd("s", "0-1", []string{"a", "1"}, 0)
	require.NoError(t, err)
	require.Equal(t, StreamID{0, 1}, id)

	_, err = s.XAdd("s", "0-0", nil, 0)
	require.ErrorIs(t, err, ErrXAddZero)

	_, err = s.XAdd("s", "0-1", nil, 0)
	require.ErrorIs(t, err, ErrXAddOutOfOrder)

	id2, err := s.XAdd("s", "5-*", nil, 0)
	require.NoError(t, err)
	require.Equal(t, StreamID{5, 0}, id2)

	id3, err := s.XAdd("s", "5-*", nil, 0)
	require.NoError(t, err)
	require.Equal(t, StreamID{5, 1}, id3)
}

func TestXAddAutoSeqZeroMsEmptyStream(t *testing.T) {
	s := New()
	id, err := s.XAdd("s", "0-*", nil, 0)
	require.NoError(t, err)
	require.Equal(t, StreamID{0, 1}, id, "0-0 must never be produced for insertion")
}

func TestXRangeStructuralComparison(t *testing.T) {
	s := New()
	s.XAdd("s", "1-1", nil, 0)
	s.XAdd("s", "2-1", nil, 0)
	s.XAdd("s", "10-1", nil, 0)

	entries, err := s.XRange("s", "-", "+", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	entries, err = s.XRange("s", "2", "10", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "string compare would have put 10 before 2")
}

func TestKeysOnlyLiveKeys(t *testing.T) {
	s := New()
	s.SetString("a", []byte("1"), 0, false, 0)
	s.SetString("b", []byte("2"), 10, true, 0)

	require.ElementsMatch(t, []string{"a", "b"}, s.Keys(5))
	require.ElementsMatch(t, []string{"a"}, s.Keys(20))
}
