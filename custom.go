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

import (
	"io"
	"math"

	"github.com/stestagg/tobytes/internal/wire"
)

// CustomTypeCodec knows how to turn one registered type's values into an
// EncodedCustomType and back. Dispatch by value rather than by type id is
// optional: a codec opts in by also implementing MatchingCodec, and a
// codec that does not is never offered a value by Box.
type CustomTypeCodec interface {
	Encode(Object) (EncodedCustomType, error)
	Decode(EncodedCustomType) (Object, error)
}

// MatchingCodec is implemented by a CustomTypeCodec that can also report
// whether it applies to a given value, so a Codec can find the right
// codec for a concrete value without the caller naming it explicitly.
type MatchingCodec interface {
	CustomTypeCodec
	Matches(Object) bool
}

// Namespace is the capability set shared by both forms a namespace can
// take: a Static table keyed by type id, or a Dynamic handler for the
// whole namespace. It stands in for a Rust-style
// Namespace::{Static,Dynamic} enum, expressed here as an interface so
// callers may also supply their own implementation.
type Namespace interface {
	// Lookup returns the codec responsible for type_id, or false if this
	// namespace has none.
	Lookup(typeID uint32) (CustomTypeCodec, bool)
}

// StaticNamespace is a fixed mapping from type id to codec.
type StaticNamespace map[uint32]CustomTypeCodec

// Lookup implements Namespace.
func (s StaticNamespace) Lookup(typeID uint32) (CustomTypeCodec, bool) {
	c, ok := s[typeID]
	return c, ok
}

// CustomNamespace is a single handler answering for an entire namespace,
// dispatching internally however it likes (e.g. by inspecting the
// EncodedCustomType's type id itself). It is the "Dynamic" counterpart to
// StaticNamespace.
type CustomNamespace interface {
	Encode(typeID uint32, value Object) (EncodedCustomType, bool, error)
	Decode(c EncodedCustomType) (Object, bool, error)
}

// dynamicNamespace adapts a CustomNamespace into the Namespace interface
// used by the registry's decode path; its Encode-side dispatch happens
// directly against the registered CustomNamespace in resolveEncode.
type dynamicNamespace struct {
	handler CustomNamespace
}

// Lookup always reports no static codec: a dynamic namespace is consulted
// directly during decode instead of through a type-id table.
func (dynamicNamespace) Lookup(uint32) (CustomTypeCodec, bool) { return nil, false }

// namespaceRegistry maps a namespace name to a Namespace. Registration is
// always by name (the wire format's numeric NamespaceRef form exists for
// compact encoding, not for a separate registration path).
type namespaceRegistry struct {
	byName map[string]Namespace
	// dynamic holds the original CustomNamespace handlers, keyed the same
	// way, so resolveEncode can offer them a value for matching and
	// resolveCustom can hand them a decoded payload, without going through
	// the Namespace.Lookup indirection.
	dynamic map[string]CustomNamespace
}

func newNamespaceRegistry() *namespaceRegistry {
	return &namespaceRegistry{
		byName:  make(map[string]Namespace),
		dynamic: make(map[string]CustomNamespace),
	}
}

func (r *namespaceRegistry) addStatic(name string, table StaticNamespace) error {
	if _, ok := r.byName[name]; ok {
		return InvalidState{Op: "add_namespace"}
	}
	r.byName[name] = table
	return nil
}

func (r *namespaceRegistry) addDynamic(name string, handler CustomNamespace) error {
	if _, ok := r.byName[name]; ok {
		return InvalidState{Op: "add_namespace"}
	}
	r.byName[name] = dynamicNamespace{handler: handler}
	r.dynamic[name] = handler
	return nil
}

func (r *namespaceRegistry) lookup(ref NamespaceRef) (Namespace, bool) {
	if !ref.IsName() {
		return nil, false
	}
	ns, ok := r.byName[ref.Name]
	return ns, ok
}

// MatchingNamespace is implemented by a CustomNamespace that can also
// report whether it applies to a given value, letting resolveEncode offer
// plain domain values to dynamic namespaces the same way it does to a
// MatchingCodec in a static table.
type MatchingNamespace interface {
	CustomNamespace
	Matches(Object) bool
}

// resolveEncode walks every registered namespace looking for one whose
// codec claims value, and returns the EncodedCustomType it produces. This
// is the ergonomic counterpart to constructing a Custom by hand: callers
// may instead register namespaces capable of recognizing their own
// domain types and let the codec find them. Iteration order over
// registered namespaces is unspecified.
func (r *namespaceRegistry) resolveEncode(value Object) (EncodedCustomType, bool, error) {
	for name, ns := range r.byName {
		if table, ok := ns.(StaticNamespace); ok {
			for typeID, codec := range table {
				m, ok := codec.(MatchingCodec)
				if !ok || !m.Matches(value) {
					continue
				}
				c, err := m.Encode(value)
				if err != nil {
					return EncodedCustomType{}, false, err
				}
				c.Namespace = NamespaceName(name)
				c.TypeID = typeID
				return c, true, nil
			}
			continue
		}
		handler, ok := r.dynamic[name]
		if !ok {
			continue
		}
		m, ok := handler.(MatchingNamespace)
		if !ok || !m.Matches(value) {
			continue
		}
		c, matched, err := m.Encode(0, value)
		if err != nil {
			return EncodedCustomType{}, false, err
		}
		if !matched {
			continue
		}
		c.Namespace = NamespaceName(name)
		return c, true, nil
	}
	return EncodedCustomType{}, false, nil
}

// resolveCustom resolves a decoded Custom's EncodedCustomType to a
// concrete Object using the registry, falling back to the Custom wrapper
// unchanged when no namespace or codec claims it — the spec leaves
// further resolution optional, so an unresolved Custom is not an error.
func (r *namespaceRegistry) resolveCustom(c EncodedCustomType) (Object, error) {
	if c.Namespace.IsName() {
		if handler, ok := r.dynamic[c.Namespace.Name]; ok {
			v, matched, err := handler.Decode(c)
			if err != nil {
				return nil, err
			}
			if matched {
				return v, nil
			}
			return Custom{Value: c}, nil
		}
	}
	ns, ok := r.lookup(c.Namespace)
	if !ok {
		return Custom{Value: c}, nil
	}
	codec, ok := ns.Lookup(c.TypeID)
	if !ok {
		return Custom{Value: c}, nil
	}
	return codec.Decode(c)
}

// encodeCustomPayload builds the EXT(8) payload for an EncodedCustomType,
// per the wire layout: namespace discriminant, then type id, then a bin
// header wrapping the verbatim data.
func encodeCustomPayload(c EncodedCustomType) ([]byte, error) {
	w := wire.NewWriter()
	if c.Namespace.IsName() {
		w.Str(c.Namespace.Name)
	} else {
		w.Uint(uint64(c.Namespace.ID))
	}
	w.Uint(uint64(c.TypeID))
	w.Bin(c.Data)
	if err := w.Error(); err != nil {
		return nil, wrapEncode(err)
	}
	return w.Bytes(), nil
}

// decodeCustomPayload parses the EXT(8) payload back into an
// EncodedCustomType. Per documented behavior, the bin header the encoder
// wrote ahead of data is left inside the returned Data rather than
// stripped — this is the asymmetry the wire format preserves verbatim.
func decodeCustomPayload(payload []byte) (EncodedCustomType, error) {
	r := wire.NewReader(payload)

	code, ok := r.PeekCode()
	if !ok {
		if err := r.Error(); err != nil {
			return EncodedCustomType{}, wrapDecode(err)
		}
		return EncodedCustomType{}, wrapDecode(io.ErrUnexpectedEOF)
	}
	var ns NamespaceRef
	switch wire.KindOf(code) {
	case wire.KindStr:
		ns = NamespaceName(string(r.StrBytes()))
	case wire.KindUint:
		v := r.Uint()
		if r.Error() != nil {
			return EncodedCustomType{}, wrapDecode(r.Error())
		}
		if v > math.MaxUint32 {
			return EncodedCustomType{}, ErrInvalidCustomNamespace
		}
		ns = NamespaceID(uint32(v))
	default:
		return EncodedCustomType{}, ErrInvalidCustomNamespace
	}
	if r.Error() != nil {
		return EncodedCustomType{}, ErrInvalidCustomNamespace
	}

	tcode, ok := r.PeekCode()
	if !ok || wire.KindOf(tcode) != wire.KindUint {
		return EncodedCustomType{}, ErrInvalidCustomTypeId
	}
	typeID := r.Uint()
	if r.Error() != nil || typeID > math.MaxUint32 {
		return EncodedCustomType{}, ErrInvalidCustomTypeId
	}

	data := append([]byte(nil), r.Rest()...)
	return EncodedCustomType{Namespace: ns, TypeID: uint32(typeID), Data: data}, nil
}
