// Package store implements the shared data model: a process-wide mapping
// from binary-safe key to a tagged value (string/list/stream), its
// per-key invariants, and expiry checks.
//
// Store itself holds no lock. Per §5 of the design, exactly one
// mutual-exclusion primitive protects the store, the pub/sub map, the
// followers set, and the replication accounting all together; that lock
// lives on the engine that embeds a Store, not here. Every method below
// assumes the caller already holds it.
package store

import (
	"fmt"
	"strconv"
)

// TypeError is returned when an operation is attempted against a key
// holding the wrong value variant.
type TypeError struct {
	Op   string
	Have Kind
}

func (e *TypeError) Error() string {
	return "WRONGTYPE Operation against a key holding the wrong kind of value"
}

type Store struct {
	data map[string]*Value
}

func New() *Store {
	return &Store{data: make(map[string]*Value)}
}

// lookup returns the value for key, treating an expired string as absent
// and deleting it eagerly (lazy expiry, per spec.md §3's presence rule).
func (s *Store) lookup(key string, now int64) (*Value, bool) {
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if v.expired(now) {
		delete(s.data, key)
		return nil, false
	}
	return v, true
}

// SweepExpired deletes every string key whose expiry has passed, for the
// background active-expiry sweep. It supplements, rather than changes,
// lazy expiry: lookup already treats an expired key as absent even before
// a sweep removes it.
func (s *Store) SweepExpired(now int64) int {
	var n int
	for k, v := range s.data {
		if v.expired(now) {
			delete(s.data, k)
			n++
		}
	}
	return n
}

// Type reports the variant of key, or KindNone if absent/expired.
func (s *Store) Type(key string, now int64) Kind {
	v, ok := s.lookup(key, now)
	if !ok {
		return KindNone
	}
	return v.Kind
}

// Keys returns all live keys. Only the "*" pattern is required by spec;
// callers are expected to have already validated the pattern.
func (s *Store) Keys(now int64) []string {
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		if v := s.data[k]; !v.expired(now) {
			out = append(out, k)
		}
	}
	return out
}

// --- strings ---

// GetString returns the value and true if key holds an unexpired string.
// A key holding a non-string variant yields ("", false) rather than an
// error — GET on the wrong type replies a null bulk string, per spec.md.
func (s *Store) GetString(key string, now int64) ([]byte, bool) {
	v, ok := s.lookup(key, now)
	if !ok || v.Kind != KindString {
		return nil, false
	}
	return v.Str, true
}

// SetString writes a string value, replacing whatever was there before
// (wholesale replace, including variant).
func (s *Store) SetString(key string, val []byte, pxMillis int64, hasTTL bool, now int64) {
	expireAt := int64(0)
	if hasTTL {
		expireAt = now + pxMillis
	}
	s.data[key] = newString(val, expireAt, hasTTL)
}

// Incr implements INCR's semantics: create-as-1, or parse+increment an
// existing string, preserving its expiry. Returns the new value, or an
// error if the key holds a non-integer string. A non-string variant is a
// type error.
func (s *Store) Incr(key string, now int64) (int64, error) {
	v, ok := s.lookup(key, now)
	if !ok {
		s.data[key] = newString([]byte("1"), 0, false)
		return 1, nil
	}
	if v.Kind != KindString {
		return 0, &TypeError{Op: "INCR", Have: v.Kind}
	}

	n, err := strconv.ParseInt(string(v.Str), 10, 64)
	if err != nil || n == (1<<63-1) {
		return 0, fmt.Errorf("ERR value is not an integer or out of range")
	}
	n++
	v.Str = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// --- lists ---

// listValue returns (creating if absent) the list Value for key, or a
// TypeError if key holds a non-list variant.
func (s *Store) listValue(key string, now int64, create bool) (*Value, error) {
	v, ok := s.lookup(key, now)
	if !ok {
		if !create {
			return nil, nil
		}
		v = &Value{Kind: KindList}
		s.data[key] = v
		return v, nil
	}
	if v.Kind != KindList {
		return nil, &TypeError{Op: "list", Have: v.Kind}
	}
	return v, nil
}

func (s *Store) RPush(key string, vals [][]byte, now int64) (int, error) {
	v, err := s.listValue(key, now, true)
	if err != nil {
		return 0, err
	}
	v.List = append(v.List, vals...)
	return len(v.List), nil
}

// LPush prepends vals in argument order, so LPush(k, [a,b,c]) yields
// [c,b,a,...].
func (s *Store) LPush(key string, vals [][]byte, now int64) (int, error) {
	v, err := s.listValue(key, now, true)
	if err != nil {
		return 0, err
	}
	next := make([][]byte, 0, len(vals)+len(v.List))
	for i := len(vals) - 1; i >= 0; i-- {
		next = append(next, vals[i])
	}
	next = append(next, v.List...)
	v.List = next
	return len(v.List), nil
}

func (s *Store) LLen(key string, now int64) (int, error) {
	v, err := s.listValue(key, now, false)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, nil
	}
	return len(v.List), nil
}

// LPop removes and returns up to count items from the head. count==0
// behaves like the no-count form (pop exactly one, if present).
func (s *Store) LPop(key string, count int, now int64) ([][]byte, error) {
	v, err := s.listValue(key, now, false)
	if err != nil {
		return nil, err
	}
	if v == nil || len(v.List) == 0 {
		return nil, nil
	}
	if count < 1 {
		count = 1
	}
	if count > len(v.List) {
		count = len(v.List)
	}
	out := v.List[:count]
	v.List = v.List[count:]
	return out, nil
}

// LRange returns an inclusive range, clamping and normalizing negative
// indices; it never errors (out-of-range yields an empty slice).
func (s *Store) LRange(key string, start, end int, now int64) ([][]byte, error) {
	v, err := s.listValue(key, now, false)
	if err != nil {
		return nil, err
	}
	if v == nil || len(v.List) == 0 {
		return nil, nil
	}

	n := len(v.List)
	start = normalizeIndex(start, n)
	end = normalizeIndex(end, n)

	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if start > end || start >= n {
		return nil, nil
	}
	return v.List[start : end+1], nil
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		i = n + i
	}
	return i
}

// --- list wait queue (BLPOP fairness), see internal/blocking for the
// polling/blocking loop that drives these primitives. ---

// EnsureListShell creates an empty list key (if absent) so a BLPOP caller
// has somewhere to register as a waiter, per spec.md §3's lifecycle rule.
func (s *Store) EnsureListShell(key string, now int64) error {
	_, err := s.listValue(key, now, true)
	return err
}

func (s *Store) EnqueueWaiter(key, connID string, now int64) error {
	v, err := s.listValue(key, now, true)
	if err != nil {
		return err
	}
	for _, id := range v.Waiters {
		if id == connID {
			return nil
		}
	}
	v.Waiters = append(v.Waiters, connID)
	return nil
}

func (s *Store) RemoveWaiter(key, connID string) {
	v, ok := s.data[key]
	if !ok || v.Kind != KindList {
		return
	}
	for i, id := range v.Waiters {
		if id == connID {
			v.Waiters = append(v.Waiters[:i], v.Waiters[i+1:]...)
			return
		}
	}
}

// TryServeWaiter pops the head value and dequeues connID iff connID is at
// the front of key's wait queue and the list is non-empty. Returns
// (value, true) on success.
func (s *Store) TryServeWaiter(key, connID string) ([]byte, bool) {
	v, ok := s.data[key]
	if !ok || v.Kind != KindList {
		return nil, false
	}
	if len(v.Waiters) == 0 || v.Waiters[0] != connID {
		return nil, false
	}
	if len(v.List) == 0 {
		return nil, false
	}
	val := v.List[0]
	v.List = v.List[1:]
	v.Waiters = v.Waiters[1:]
	return val, true
}
