// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"fmt"
	"math"
)

// Reader walks a byte slice one MessagePack atom at a time. Once an error
// occurs, every further method returns the zero value without consuming
// more input; callers check Error() after a sequence of reads.
type Reader struct {
	buf []byte
	pos int
	err error
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Error returns the error that stopped reading, or nil if reading has not
// stopped.
func (r *Reader) Error() error { return r.err }

// SetError sets the error state, after which all further reads are
// no-ops returning zero values. Setting a nil error is itself a no-op.
func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Remaining reports how many bytes are left unconsumed.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Rest returns every byte not yet consumed, without consuming it.
func (r *Reader) Rest() []byte { return r.buf[r.pos:] }

func (r *Reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.Remaining() < n {
		r.SetError(fmt.Errorf("wire: need %d bytes, have %d", n, r.Remaining()))
		return false
	}
	return true
}

func (r *Reader) byte() byte {
	if !r.need(1) {
		return 0
	}
	b := r.buf[r.pos]
	r.pos++
	return b
}

func (r *Reader) take(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) get16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return uint16(b[0])<<8 | uint16(b[1])
}

func (r *Reader) get32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (r *Reader) get64() uint64 {
	hi := uint64(r.get32())
	lo := uint64(r.get32())
	return hi<<32 | lo
}

// PeekCode returns the next format byte without consuming it.
func (r *Reader) PeekCode() (byte, bool) {
	if r.err != nil || r.Remaining() < 1 {
		return 0, false
	}
	return r.buf[r.pos], true
}

// KindOf classifies a format byte into the Kind it introduces.
func KindOf(code byte) Kind {
	switch {
	case code <= codePosFixintMax:
		return KindUint
	case code >= codeNegFixintMin:
		return KindInt
	case code >= codeFixmapMin && code <= codeFixmapMax:
		return KindMap
	case code >= codeFixarrayMin && code <= codeFixarrayMax:
		return KindArray
	case code >= codeFixstrMin && code <= codeFixstrMax:
		return KindStr
	case code == codeNil:
		return KindNil
	case code == codeFalse || code == codeTrue:
		return KindBool
	case code == codeBin8 || code == codeBin16 || code == codeBin32:
		return KindBin
	case code == codeExt8 || code == codeExt16 || code == codeExt32,
		code == codeFixext1 || code == codeFixext2 || code == codeFixext4 ||
			code == codeFixext8 || code == codeFixext16:
		return KindExt
	case code == codeFloat32:
		return KindFloat32
	case code == codeFloat64:
		return KindFloat64
	case code == codeUint8 || code == codeUint16 || code == codeUint32 || code == codeUint64:
		return KindUint
	case code == codeInt8 || code == codeInt16 || code == codeInt32 || code == codeInt64:
		return KindInt
	case code == codeStr8 || code == codeStr16 || code == codeStr32:
		return KindStr
	case code == codeArray16 || code == codeArray32:
		return KindArray
	case code == codeMap16 || code == codeMap32:
		return KindMap
	default:
		return KindNil
	}
}

// Nil consumes a MessagePack nil.
func (r *Reader) Nil() {
	code := r.byte()
	if r.err != nil {
		return
	}
	if code != codeNil {
		r.SetError(fmt.Errorf("wire: expected nil, got code 0x%02x", code))
	}
}

// Bool consumes and returns a MessagePack bool.
func (r *Reader) Bool() bool {
	code := r.byte()
	if r.err != nil {
		return false
	}
	switch code {
	case codeTrue:
		return true
	case codeFalse:
		return false
	default:
		r.SetError(fmt.Errorf("wire: expected bool, got code 0x%02x", code))
		return false
	}
}

// Uint consumes and returns an unsigned integer of any width, including
// positive fixint. It fails if the code names a negative value.
func (r *Reader) Uint() uint64 {
	code, ok := r.PeekCode()
	if !ok {
		return 0
	}
	switch {
	case code <= codePosFixintMax:
		r.pos++
		return uint64(code)
	case code == codeUint8:
		r.pos++
		return uint64(r.byte())
	case code == codeUint16:
		r.pos++
		return uint64(r.get16())
	case code == codeUint32:
		r.pos++
		return uint64(r.get32())
	case code == codeUint64:
		r.pos++
		return r.get64()
	default:
		r.SetError(fmt.Errorf("wire: expected uint, got code 0x%02x", code))
		return 0
	}
}

// Sint consumes and returns a signed integer of any width.
func (r *Reader) Sint() int64 {
	code, ok := r.PeekCode()
	if !ok {
		return 0
	}
	switch {
	case code <= codePosFixintMax:
		r.pos++
		return int64(code)
	case code >= codeNegFixintMin:
		r.pos++
		return int64(int8(code))
	case code == codeInt8:
		r.pos++
		return int64(int8(r.byte()))
	case code == codeInt16:
		r.pos++
		return int64(int16(r.get16()))
	case code == codeInt32:
		r.pos++
		return int64(int32(r.get32()))
	case code == codeInt64:
		r.pos++
		return int64(r.get64())
	case code == codeUint8:
		r.pos++
		return int64(r.byte())
	case code == codeUint16:
		r.pos++
		return int64(r.get16())
	case code == codeUint32:
		r.pos++
		return int64(r.get32())
	case code == codeUint64:
		r.pos++
		v := r.get64()
		if v > math.MaxInt64 {
			r.SetError(fmt.Errorf("wire: uint64 %d does not fit int64", v))
			return 0
		}
		return int64(v)
	default:
		r.SetError(fmt.Errorf("wire: expected int, got code 0x%02x", code))
		return 0
	}
}

// Float32 consumes and returns a MessagePack 32 bit float.
func (r *Reader) Float32() float32 {
	code := r.byte()
	if r.err != nil {
		return 0
	}
	if code != codeFloat32 {
		r.SetError(fmt.Errorf("wire: expected float32, got code 0x%02x", code))
		return 0
	}
	return math.Float32frombits(r.get32())
}

// Float64 consumes and returns a MessagePack 64 bit float.
func (r *Reader) Float64() float64 {
	code := r.byte()
	if r.err != nil {
		return 0
	}
	if code != codeFloat64 {
		r.SetError(fmt.Errorf("wire: expected float64, got code 0x%02x", code))
		return 0
	}
	return math.Float64frombits(r.get64())
}

// StrBytes consumes a MessagePack str and returns its raw bytes, without
// validating UTF-8 (the caller decides how to treat invalid UTF-8).
func (r *Reader) StrBytes() []byte {
	code := r.byte()
	if r.err != nil {
		return nil
	}
	var n int
	switch {
	case code >= codeFixstrMin && code <= codeFixstrMax:
		n = int(code & 0x1f)
	case code == codeStr8:
		n = int(r.byte())
	case code == codeStr16:
		n = int(r.get16())
	case code == codeStr32:
		n = int(r.get32())
	default:
		r.SetError(fmt.Errorf("wire: expected str, got code 0x%02x", code))
		return nil
	}
	return r.take(n)
}

// Bin consumes and returns a MessagePack bin's raw bytes.
func (r *Reader) Bin() []byte {
	n, ok := r.binLen()
	if !ok {
		return nil
	}
	return r.take(n)
}

func (r *Reader) binLen() (int, bool) {
	code := r.byte()
	if r.err != nil {
		return 0, false
	}
	switch code {
	case codeBin8:
		return int(r.byte()), true
	case codeBin16:
		return int(r.get16()), true
	case codeBin32:
		return int(r.get32()), true
	default:
		r.SetError(fmt.Errorf("wire: expected bin, got code 0x%02x", code))
		return 0, false
	}
}

// ArrayHeader consumes a MessagePack array header and returns its length.
func (r *Reader) ArrayHeader() uint32 {
	code, ok := r.PeekCode()
	if !ok {
		return 0
	}
	switch {
	case code >= codeFixarrayMin && code <= codeFixarrayMax:
		r.pos++
		return uint32(code & 0x0f)
	case code == codeArray16:
		r.pos++
		return uint32(r.get16())
	case code == codeArray32:
		r.pos++
		return r.get32()
	default:
		r.SetError(fmt.Errorf("wire: expected array, got code 0x%02x", code))
		return 0
	}
}

// MapHeader consumes a MessagePack map header and returns its pair count.
func (r *Reader) MapHeader() uint32 {
	code, ok := r.PeekCode()
	if !ok {
		return 0
	}
	switch {
	case code >= codeFixmapMin && code <= codeFixmapMax:
		r.pos++
		return uint32(code & 0x0f)
	case code == codeMap16:
		r.pos++
		return uint32(r.get16())
	case code == codeMap32:
		r.pos++
		return r.get32()
	default:
		r.SetError(fmt.Errorf("wire: expected map, got code 0x%02x", code))
		return 0
	}
}

// ExtHeader consumes a MessagePack ext header and returns its type code
// and payload length.
func (r *Reader) ExtHeader() (typ int8, n uint32) {
	code := r.byte()
	if r.err != nil {
		return 0, 0
	}
	switch code {
	case codeFixext1:
		n = 1
	case codeFixext2:
		n = 2
	case codeFixext4:
		n = 4
	case codeFixext8:
		n = 8
	case codeFixext16:
		n = 16
	case codeExt8:
		n = uint32(r.byte())
	case codeExt16:
		n = uint32(r.get16())
	case codeExt32:
		n = r.get32()
	default:
		r.SetError(fmt.Errorf("wire: expected ext, got code 0x%02x", code))
		return 0, 0
	}
	if r.err != nil {
		return 0, 0
	}
	typ = int8(r.byte())
	return typ, n
}

// Ext consumes a complete MessagePack ext value and returns its type code
// and payload.
func (r *Reader) Ext() (typ int8, data []byte) {
	typ, n := r.ExtHeader()
	if r.err != nil {
		return 0, nil
	}
	return typ, r.take(int(n))
}

// Skip consumes and discards exactly one complete MessagePack value,
// descending into composites as needed.
func (r *Reader) Skip() {
	code, ok := r.PeekCode()
	if !ok {
		return
	}
	switch KindOf(code) {
	case KindNil:
		r.Nil()
	case KindBool:
		r.Bool()
	case KindUint:
		r.Uint()
	case KindInt:
		r.Sint()
	case KindFloat32:
		r.Float32()
	case KindFloat64:
		r.Float64()
	case KindStr:
		r.StrBytes()
	case KindBin:
		r.Bin()
	case KindArray:
		n := r.ArrayHeader()
		for i := uint32(0); i < n && r.err == nil; i++ {
			r.Skip()
		}
	case KindMap:
		n := r.MapHeader()
		for i := uint32(0); i < n && r.err == nil; i++ {
			r.Skip()
			r.Skip()
		}
	case KindExt:
		r.Ext()
	}
}
