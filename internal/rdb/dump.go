package rdb

// Dump renders entries into the wire snapshot format of §4.4, for PSYNC's
// full-resync payload. This is the one place the core produces snapshot
// bytes rather than only reading them — it never touches disk, so it does
// not conflict with the "no persistence writing" non-goal, which is about
// there being no background save-to-file feature.
//
// The format's raw string encoding caps length at 63 bytes and its
// resizedb header caps the key count at 255; entries that would overflow
// either limit are skipped rather than corrupting the stream.
func Dump(entries []Entry) []byte {
	var live []Entry
	for _, e := range entries {
		if len(e.Key) <= 63 && len(e.Value) <= 63 {
			live = append(live, e)
		}
	}
	if len(live) > 255 {
		live = live[:255]
	}

	buf := []byte("REDIS0011")
	if len(live) == 0 {
		return append(buf, opEOF)
	}

	var expiring int
	for _, e := range live {
		if e.HasExpiry {
			expiring++
		}
	}
	buf = append(buf, opDatabase, 0, opResizeDB, byte(len(live)), byte(expiring))
	for _, e := range live {
		if e.HasExpiry {
			buf = append(buf, opExpireMS)
			buf = appendUint64LE(buf, uint64(e.ExpireAtMillis))
		}
		buf = append(buf, valueTypeString)
		buf = appendLengthPrefixedString(buf, []byte(e.Key))
		buf = appendLengthPrefixedString(buf, e.Value)
	}
	buf = append(buf, opEOF)
	return buf
}

func appendLengthPrefixedString(buf []byte, s []byte) []byte {
	buf = append(buf, byte(len(s)))
	return append(buf, s...)
}

func appendUint64LE(buf []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}
