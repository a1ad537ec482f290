package diyredis

import (
	"strings"

	resp3 "github.com/flonle/diyredis/app/diyredis/resp3"
	streams "github.com/flonle/diyredis/app/diyredis/streams"
)

// writeStrArr writes arr as a RESP array of bulk strings.
func writeStrArr(enc *resp3.Encoder, arr []string) {
	enc.WriteArrHeader(len(arr))
	for _, v := range arr {
		enc.WriteBulkStr(v)
	}
}

// writeByteArr writes arr as a RESP array of bulk strings backed by raw
// byte slices (list/string values are stored as []byte, see value.go).
func writeByteArr(enc *resp3.Encoder, arr [][]byte) {
	enc.WriteArrHeader(len(arr))
	for _, v := range arr {
		enc.WriteBulkStr(string(v))
	}
}

// writeEntries encodes a slice of stream entries per spec.md §4.C: each
// entry is a 2-element array, the id bulk string followed by a flat array
// of alternating field/value bulk strings in original insertion order.
func writeEntries(enc *resp3.Encoder, entries []streams.Entry) {
	enc.WriteArrHeader(len(entries))
	for _, entry := range entries {
		enc.WriteArrHeader(2)
		enc.WriteBulkStr(entry.Key.String())
		writeStrArr(enc, entry.Val)
	}
}

// foldEqual compares s against a lowercase keyword, case-insensitively.
func foldEqual(s, keyword string) bool {
	return strings.EqualFold(s, keyword)
}
