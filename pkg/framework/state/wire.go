package state

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Wire layout, little endian:
//
//	magic[8] formatVersion:u32
//	vendor:str pluginID:str name:str major:u16 minor:u16 patch:u16
//	count:u32
//	count * { module:str mslot:u32 param:str pslot:u32 tag:u8 len:u32 payload[len] }
//
// str is u16 length + UTF-8 bytes.

var magic = [8]byte{'P', 'L', 'U', 'G', 'S', 'T', 'A', 'T'}

const formatVersion uint32 = 1

// Entry payload tags.
const (
	tagBool uint8 = 1 // payload: u8 0/1
	tagStep uint8 = 2 // payload: i64
	tagReal uint8 = 3 // payload: f64 bits
	tagList uint8 = 4 // payload: raw item id bytes
)

func tagName(tag uint8) string {
	switch tag {
	case tagBool:
		return "bool"
	case tagStep:
		return "step"
	case tagReal:
		return "real"
	case tagList:
		return "list"
	default:
		return fmt.Sprintf("tag(%d)", tag)
	}
}

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) str(s string) {
	if len(s) > math.MaxUint16 {
		s = s[:math.MaxUint16]
	}
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// field writes tag, length and payload.
func (w *writer) field(tag uint8, payload []byte) {
	w.u8(tag)
	w.u32(uint32(len(payload)))
	w.buf = append(w.buf, payload...)
}

// reader consumes a blob and remembers the first short read.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data)-r.off < n {
		r.err = fmt.Errorf("%w: reading %s at offset %d: need %d bytes, have %d",
			ErrTruncated, what, r.off, n, len(r.data)-r.off)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8(what string) uint8 {
	if b := r.take(1, what); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16(what string) uint16 {
	if b := r.take(2, what); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32(what string) uint32 {
	if b := r.take(4, what); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) str(what string) string {
	n := int(r.u16(what))
	return string(r.take(n, what))
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}
