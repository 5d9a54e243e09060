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
	"math"
)

// Writer appends MessagePack atoms to an internal byte buffer. Once an
// error occurs, every further method becomes a no-op; callers check
// Error() once at the end of a sequence of writes rather than after each
// one, mirroring the sticky-error style of a primitive binary encoder.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a Writer with an empty buffer.
func NewWriter() *Writer { return &Writer{} }

// Error returns the error that stopped writing, or nil if writing has not
// stopped.
func (w *Writer) Error() error { return w.err }

// SetError sets the error state, after which all further writes are
// no-ops. Setting a nil error is itself a no-op.
func (w *Writer) SetError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Bytes returns the buffer accumulated so far.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Raw appends data to the buffer verbatim, bypassing any MessagePack
// framing. Used to splice pre-encoded entry blocks during intern-table
// finalization.
func (w *Writer) Raw(data []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, data...)
}

func (w *Writer) byte(b byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b)
}

func (w *Writer) put8(v uint8)   { w.byte(v) }
func (w *Writer) put16(v uint16) { w.byte(byte(v >> 8)); w.byte(byte(v)) }
func (w *Writer) put32(v uint32) {
	w.byte(byte(v >> 24))
	w.byte(byte(v >> 16))
	w.byte(byte(v >> 8))
	w.byte(byte(v))
}
func (w *Writer) put64(v uint64) {
	w.put32(uint32(v >> 32))
	w.put32(uint32(v))
}

// Nil writes a MessagePack nil.
func (w *Writer) Nil() { w.byte(codeNil) }

// Bool writes a MessagePack bool.
func (w *Writer) Bool(v bool) {
	if v {
		w.byte(codeTrue)
	} else {
		w.byte(codeFalse)
	}
}

// Uint writes v using the shortest MessagePack unsigned integer form that
// fits it.
func (w *Writer) Uint(v uint64) {
	switch {
	case v <= codePosFixintMax:
		w.byte(uint8(v))
	case v <= math.MaxUint8:
		w.byte(codeUint8)
		w.put8(uint8(v))
	case v <= math.MaxUint16:
		w.byte(codeUint16)
		w.put16(uint16(v))
	case v <= math.MaxUint32:
		w.byte(codeUint32)
		w.put32(uint32(v))
	default:
		w.byte(codeUint64)
		w.put64(v)
	}
}

// Sint writes v using the shortest MessagePack signed integer form that
// fits it. Non-negative values are written by Uint's policy instead, per
// the codec's write-time integer encoding rule.
func (w *Writer) Sint(v int64) {
	if v >= 0 {
		w.Uint(uint64(v))
		return
	}
	switch {
	case v >= -32:
		w.byte(uint8(int8(v)))
	case v >= math.MinInt8:
		w.byte(codeInt8)
		w.put8(uint8(int8(v)))
	case v >= math.MinInt16:
		w.byte(codeInt16)
		w.put16(uint16(int16(v)))
	case v >= math.MinInt32:
		w.byte(codeInt32)
		w.put32(uint32(int32(v)))
	default:
		w.byte(codeInt64)
		w.put64(uint64(v))
	}
}

// Float32 writes a MessagePack 32 bit float.
func (w *Writer) Float32(v float32) {
	w.byte(codeFloat32)
	w.put32(math.Float32bits(v))
}

// Float64 writes a MessagePack 64 bit float.
func (w *Writer) Float64(v float64) {
	w.byte(codeFloat64)
	w.put64(math.Float64bits(v))
}

// Str writes a length-prefixed UTF-8 string using the shortest applicable
// MessagePack str form.
func (w *Writer) Str(v string) {
	n := len(v)
	switch {
	case n <= 31:
		w.byte(uint8(codeFixstrMin | n))
	case n <= math.MaxUint8:
		w.byte(codeStr8)
		w.put8(uint8(n))
	case n <= math.MaxUint16:
		w.byte(codeStr16)
		w.put16(uint16(n))
	default:
		w.byte(codeStr32)
		w.put32(uint32(n))
	}
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v...)
}

// Bin writes a length-prefixed byte sequence using the shortest applicable
// MessagePack bin form.
func (w *Writer) Bin(v []byte) {
	w.BinHeader(len(v))
	w.Raw(v)
}

// BinHeader writes just the bin header for a payload of the given length;
// the caller is responsible for then writing exactly that many raw bytes.
func (w *Writer) BinHeader(n int) {
	switch {
	case n <= math.MaxUint8:
		w.byte(codeBin8)
		w.put8(uint8(n))
	case n <= math.MaxUint16:
		w.byte(codeBin16)
		w.put16(uint16(n))
	default:
		w.byte(codeBin32)
		w.put32(uint32(n))
	}
}

// ArrayHeader writes a MessagePack array header for n elements. The
// caller writes the n element values immediately afterwards.
func (w *Writer) ArrayHeader(n uint32) {
	switch {
	case n <= 15:
		w.byte(uint8(codeFixarrayMin | n))
	case n <= math.MaxUint16:
		w.byte(codeArray16)
		w.put16(uint16(n))
	default:
		w.byte(codeArray32)
		w.put32(n)
	}
}

// MapHeader writes a MessagePack map header for n pairs. The caller
// writes the n key/value pairs immediately afterwards.
func (w *Writer) MapHeader(n uint32) {
	switch {
	case n <= 15:
		w.byte(uint8(codeFixmapMin | n))
	case n <= math.MaxUint16:
		w.byte(codeMap16)
		w.put16(uint16(n))
	default:
		w.byte(codeMap32)
		w.put32(n)
	}
}

// ExtHeader writes a MessagePack ext header for a payload of length n and
// the given extension type code. The caller writes the n payload bytes
// immediately afterwards.
func (w *Writer) ExtHeader(typ int8, n uint32) {
	switch n {
	case 1:
		w.byte(codeFixext1)
	case 2:
		w.byte(codeFixext2)
	case 4:
		w.byte(codeFixext4)
	case 8:
		w.byte(codeFixext8)
	case 16:
		w.byte(codeFixext16)
	default:
		switch {
		case n <= math.MaxUint8:
			w.byte(codeExt8)
			w.put8(uint8(n))
		case n <= math.MaxUint16:
			w.byte(codeExt16)
			w.put16(uint16(n))
		default:
			w.byte(codeExt32)
			w.put32(n)
		}
	}
	w.byte(uint8(typ))
}

// Ext writes a complete MessagePack ext value (header plus payload).
func (w *Writer) Ext(typ int8, data []byte) {
	w.ExtHeader(typ, uint32(len(data)))
	w.Raw(data)
}
