package store

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrXAddZero and ErrXAddOutOfOrder carry the canonical XADD error texts.
var (
	ErrXAddZero      = fmt.Errorf("ERR The ID specified in XADD must be greater than 0-0")
	ErrXAddOutOfOrder = fmt.Errorf("ERR The ID specified in XADD is equal or smaller than the target stream top item")
)

func (s *Store) streamValue(key string, now int64, create bool) (*Value, error) {
	v, ok := s.lookup(key, now)
	if !ok {
		if !create {
			return nil, nil
		}
		v = &Value{Kind: KindStream}
		s.data[key] = v
		return v, nil
	}
	if v.Kind != KindStream {
		return nil, &TypeError{Op: "stream", Have: v.Kind}
	}
	return v, nil
}

// ResolveStreamID implements the three XADD id forms described in
// spec.md §4.3: "*", "<ms>-*", and an explicit "<ms>-<seq>".
func ResolveStreamID(idSpec string, last StreamID, empty bool, nowMillis int64) (StreamID, error) {
	if idSpec == "*" {
		ms := uint64(nowMillis)
		seq := uint64(0)
		if !empty && last.MS == ms {
			seq = last.Seq + 1
		}
		return StreamID{MS: ms, Seq: seq}, nil
	}

	if strings.HasSuffix(idSpec, "-*") {
		msStr := strings.TrimSuffix(idSpec, "-*")
		ms, err := strconv.ParseUint(msStr, 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
		}
		seq := uint64(0)
		if ms == 0 && empty {
			seq = 1
		} else if !empty && last.MS == ms {
			seq = last.Seq + 1
		}
		return StreamID{MS: ms, Seq: seq}, nil
	}

	parts := strings.SplitN(idSpec, "-", 2)
	if len(parts) != 2 {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	ms, err1 := strconv.ParseUint(parts[0], 10, 64)
	seq, err2 := strconv.ParseUint(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	return StreamID{MS: ms, Seq: seq}, nil
}

// XAdd resolves idSpec against key's current tail, validates monotonicity,
// and appends. Returns the resolved id.
func (s *Store) XAdd(key, idSpec string, fields []string, nowMillis int64) (StreamID, error) {
	v, err := s.streamValue(key, nowMillis, true)
	if err != nil {
		return StreamID{}, err
	}

	empty := len(v.Stream) == 0
	last := v.lastStreamID()

	id, err := ResolveStreamID(idSpec, last, empty, nowMillis)
	if err != nil {
		return StreamID{}, err
	}

	if id.IsZero() {
		return StreamID{}, ErrXAddZero
	}
	if !empty && id.LessEq(last) {
		return StreamID{}, ErrXAddOutOfOrder
	}

	v.Stream = append(v.Stream, StreamEntry{ID: id, Fields: append([]string(nil), fields...)})
	return id, nil
}

// XRange returns entries in [start, end] inclusive, using structural
// (ms, seq) comparison. "-" means from the first entry, "+" to the last.
func (s *Store) XRange(key, startSpec, endSpec string, now int64) ([]StreamEntry, error) {
	v, err := s.streamValue(key, now, false)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	var start, end StreamID
	if startSpec == "-" {
		start = StreamID{}
	} else {
		start, err = parseRangeID(startSpec, 0)
		if err != nil {
			return nil, err
		}
	}
	if endSpec == "+" {
		end = StreamID{MS: ^uint64(0), Seq: ^uint64(0)}
	} else {
		end, err = parseRangeID(endSpec, ^uint64(0))
		if err != nil {
			return nil, err
		}
	}

	var out []StreamEntry
	for _, e := range v.Stream {
		if start.LessEq(e.ID) && e.ID.LessEq(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

// parseRangeID accepts a bare "ms" (seq defaults to defaultSeq) or "ms-seq".
func parseRangeID(spec string, defaultSeq uint64) (StreamID, error) {
	if !strings.Contains(spec, "-") {
		ms, err := strconv.ParseUint(spec, 10, 64)
		if err != nil {
			return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
		}
		return StreamID{MS: ms, Seq: defaultSeq}, nil
	}
	parts := strings.SplitN(spec, "-", 2)
	ms, err1 := strconv.ParseUint(parts[0], 10, 64)
	seq, err2 := strconv.ParseUint(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return StreamID{}, fmt.Errorf("ERR Invalid stream ID specified as stream command argument")
	}
	return StreamID{MS: ms, Seq: seq}, nil
}

// ParseID parses a bare "ms" or full "ms-seq" stream id, such as those
// given as XREAD's per-stream start ids (the "$" and "-"/"+" markers are
// handled by the callers that have access to stream-specific context).
func ParseID(spec string) (StreamID, error) {
	return parseRangeID(spec, 0)
}

// LastStreamIDOrZero returns key's last entry id, or the zero id if the
// stream is empty/absent — used to resolve XREAD's "$" start marker.
func (s *Store) LastStreamIDOrZero(key string, now int64) StreamID {
	v, ok := s.lookup(key, now)
	if !ok || v.Kind != KindStream || len(v.Stream) == 0 {
		return StreamID{}
	}
	return v.lastStreamID()
}

// XReadSince returns entries in key strictly greater than after.
func (s *Store) XReadSince(key string, after StreamID, now int64) ([]StreamEntry, error) {
	v, err := s.streamValue(key, now, false)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	var out []StreamEntry
	for _, e := range v.Stream {
		if after.Less(e.ID) {
			out = append(out, e)
		}
	}
	return out, nil
}
