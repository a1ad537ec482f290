// Package resp3 formats engine replies onto the wire. Despite the package
// name (kept from the teacher's original import path), the shapes emitted
// are the RESP2 octets the protocol spec requires bit-exact: a null is
// "$-1\r\n", not RESP3's "_\r\n".
package resp3

import (
	"strconv"
	"unsafe"
)

const (
	simpleStrPrefix = '+'
	simpleErrPrefix = '-'
	numberPrefix    = ':'
	bulkStrPrefix   = '$'
	arrPrefix       = '*'
	CRLF            = "\r\n"
)

var nullBulkSlice = []byte("$-1\r\n")
var emptyArrSlice = []byte("*0\r\n")

// Encoder accumulates a reply into Buf. The buffer is an exported field to
// mutate as you like; this exists mainly to attach a bunch of convenience
// methods for encoding engine results into their wire counterpart.
type Encoder struct {
	Buf []byte
}

func (e *Encoder) Reset() { e.Buf = nil }

// WriteNullBulk writes the null bulk string "$-1\r\n".
func (e *Encoder) WriteNullBulk() {
	e.Buf = append(e.Buf, nullBulkSlice...)
}

// WriteEmptyArr writes the empty array "*0\r\n".
func (e *Encoder) WriteEmptyArr() {
	e.Buf = append(e.Buf, emptyArrSlice...)
}

func (e *Encoder) WriteBulkStr(val string) {
	e.Buf = append(e.Buf, bulkStrPrefix)
	e.Buf = append(e.Buf, strconv.Itoa(len(val))...)
	e.Buf = append(e.Buf, CRLF...)
	e.Buf = append(e.Buf, val...)
	e.Buf = append(e.Buf, CRLF...)
}

func (e *Encoder) WriteSimpleStr(val string) {
	e.Buf = append(e.Buf, simpleStrPrefix)
	e.Buf = append(e.Buf, val...)
	e.Buf = append(e.Buf, CRLF...)
}

// WriteError writes msg as a RESP error. msg should already contain any
// leading error-kind word (e.g. "ERR", "WRONGTYPE"); no prefix is added
// beyond the '-' that marks the reply kind.
func (e *Encoder) WriteError(msg string) {
	e.Buf = append(e.Buf, simpleErrPrefix)
	e.Buf = append(e.Buf, msg...)
	e.Buf = append(e.Buf, CRLF...)
}

func (e *Encoder) WriteInt(val int64) {
	e.Buf = append(e.Buf, numberPrefix)
	e.Buf = append(e.Buf, strconv.FormatInt(val, 10)...)
	e.Buf = append(e.Buf, CRLF...)
}

// WriteArrHeader writes an array header of length arrLen. Don't forget to
// write the arrLen items that follow it.
func (e *Encoder) WriteArrHeader(arrLen int) {
	e.Buf = append(e.Buf, arrPrefix)
	e.Buf = append(e.Buf, strconv.Itoa(arrLen)...)
	e.Buf = append(e.Buf, CRLF...)
}

// StringAndReset returns the buffer as a string sharing its backing array,
// and resets the encoder. The returned string must not be retained past the
// next write to this encoder, since Reset does not copy.
func (e *Encoder) StringAndReset() (str string) {
	str = unsafe.String(unsafe.SliceData(e.Buf), len(e.Buf))
	e.Reset()
	return str
}
