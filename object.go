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

package tobytes

import "fmt"

// Object is the tagged union of every value this codec can encode and
// decode. The concrete types below are the only valid implementations;
// isObject is unexported so no other package can add cases.
type Object interface {
	isObject()
}

// Nil is the Object case for a MessagePack nil.
type Nil struct{}

func (Nil) isObject() {}

// Boolean is the Object case for a MessagePack bool.
type Boolean bool

func (Boolean) isObject() {}

// Integer is the Object case for a MessagePack integer. It preserves
// signedness so that values can round-trip bit-exactly across the full
// i64 ∪ u64 range; Unsigned distinguishes which field is meaningful.
type Integer struct {
	Unsigned bool
	U        uint64
	S        int64
}

func (Integer) isObject() {}

// NewUint builds an Integer from an unsigned value.
func NewUint(v uint64) Integer { return Integer{Unsigned: true, U: v} }

// NewInt builds an Integer from a signed value.
func NewInt(v int64) Integer {
	if v >= 0 {
		return Integer{Unsigned: true, U: uint64(v)}
	}
	return Integer{Unsigned: false, S: v}
}

// AsInt64 returns the Integer as an int64 plus whether it fits.
func (i Integer) AsInt64() (int64, bool) {
	if i.Unsigned {
		if i.U > 1<<63-1 {
			return 0, false
		}
		return int64(i.U), true
	}
	return i.S, true
}

// AsUint64 returns the Integer as a uint64 plus whether it fits.
func (i Integer) AsUint64() (uint64, bool) {
	if i.Unsigned {
		return i.U, true
	}
	if i.S < 0 {
		return 0, false
	}
	return uint64(i.S), true
}

// F32 is the Object case for a MessagePack 32 bit float.
type F32 float32

func (F32) isObject() {}

// F64 is the Object case for a MessagePack 64 bit float.
type F64 float64

func (F64) isObject() {}

// String is the Object case for a MessagePack str; it is always valid
// UTF-8 — decoding an invalid str fails before an Object is ever built.
type String string

func (String) isObject() {}

// Binary is the Object case for a MessagePack bin.
type Binary []byte

func (Binary) isObject() {}

// Array is the Object case for a MessagePack array. Order is significant.
type Array []Object

func (Array) isObject() {}

// MapEntry is one key/value pair of a Map, kept in insertion order.
type MapEntry struct {
	Key   Object
	Value Object
}

// Map is the Object case for a MessagePack map. Order is preserved
// end-to-end; key uniqueness is not enforced by this codec.
type Map []MapEntry

func (Map) isObject() {}

// Ext is the Object case for a MessagePack extension this codec does not
// otherwise interpret (any type code other than 6 and 8).
type Ext struct {
	Type int8
	Data []byte
}

func (Ext) isObject() {}

// NamespaceRef identifies a custom-type namespace either by name or by a
// numeric id, matching the two forms the wire format allows.
type NamespaceRef struct {
	hasName bool
	Name    string
	ID      uint32
}

// NamespaceName builds a name-keyed NamespaceRef.
func NamespaceName(name string) NamespaceRef { return NamespaceRef{hasName: true, Name: name} }

// NamespaceID builds an id-keyed NamespaceRef.
func NamespaceID(id uint32) NamespaceRef { return NamespaceRef{ID: id} }

// IsName reports whether the reference carries a name rather than an id.
func (n NamespaceRef) IsName() bool { return n.hasName }

func (n NamespaceRef) String() string {
	if n.hasName {
		return n.Name
	}
	return fmt.Sprintf("#%d", n.ID)
}

// EncodedCustomType carries a custom type's own, already-serialized
// payload plus the namespace and type id needed to find a decoder for it.
// Data is copied verbatim into the EXT payload suffix and is not
// re-walked by the codec.
type EncodedCustomType struct {
	Namespace NamespaceRef
	TypeID    uint32
	Data      []byte
}

// Custom is the Object case wrapping an EncodedCustomType.
type Custom struct {
	Value EncodedCustomType
}

func (Custom) isObject() {}

// Shared is a reference-counted-in-spirit handle around an Object: two
// InternValues built from the same logical value must share one Shared
// so that identity equality (pointer equality of the Shared handle) is
// meaningful to the intern table. Go has no Arc, so Shared is just a
// pointer wrapper; its address is what identity-mode interning keys on.
type Shared struct {
	value Object
}

// NewShared wraps value in a new Shared handle.
func NewShared(value Object) *Shared { return &Shared{value: value} }

// Value returns the wrapped Object.
func (s *Shared) Value() Object { return s.value }

// InternValue wraps a shared Object selected for deduplication.
// ByIdentity selects identity-mode interning (deduplicate by the address
// of the Shared handle); otherwise interning deduplicates by value
// equality.
type InternValue struct {
	shared     *Shared
	ByIdentity bool
}

// NewInternValue creates an identity-mode InternValue around a fresh
// Shared handle.
func NewInternValue(value Object) InternValue {
	return InternValue{shared: NewShared(value), ByIdentity: true}
}

// NewInternValueByEquality creates an equality-mode InternValue around a
// fresh Shared handle.
func NewInternValueByEquality(value Object) InternValue {
	return InternValue{shared: NewShared(value)}
}

// NewInternValueShared builds an InternValue around an existing Shared
// handle, so callers can construct multiple Intern nodes that refer to
// the exact same storage (required for identity interning to be
// meaningful across more than one occurrence).
func NewInternValueShared(shared *Shared, byIdentity bool) InternValue {
	return InternValue{shared: shared, ByIdentity: byIdentity}
}

// Shared returns the underlying Shared handle.
func (v InternValue) Shared() *Shared { return v.shared }

// Value returns the wrapped Object.
func (v InternValue) Value() Object { return v.shared.value }

// Intern is the Object case wrapping an InternValue.
type Intern struct {
	Value InternValue
}

func (Intern) isObject() {}

// FromBool wraps a bool as an Object.
func FromBool(v bool) Object { return Boolean(v) }

// FromString wraps a string as an Object.
func FromString(v string) Object { return String(v) }

// FromBytes wraps a byte slice as a Binary Object.
func FromBytes(v []byte) Object { return Binary(v) }

// NewArray builds an Array Object from the given values.
func NewArray(values ...Object) Object { return Array(values) }

// NewMap builds a Map Object from the given entries.
func NewMap(entries ...MapEntry) Object { return Map(entries) }
