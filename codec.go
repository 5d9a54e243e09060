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
	"unicode/utf8"

	"github.com/stestagg/tobytes/internal/wire"
)

// Codec is the top-level entry point: it owns a namespace registry and a
// per-call intern context, and exposes Dumps/Loads to turn an Object tree
// into MessagePack bytes and back.
//
// A Codec is not safe for concurrent use; build one Codec per goroutine,
// or serialize access to a shared one.
type Codec struct {
	namespaces *namespaceRegistry
	intern     *internContext
}

// New returns an empty Codec. Use AddNamespace to register custom-type
// namespaces before the first Dumps/Loads that needs them.
func New() *Codec {
	return &Codec{
		namespaces: newNamespaceRegistry(),
		intern:     newInternContext(),
	}
}

// AddNamespace registers a static, type-id-keyed table of custom type
// codecs under name. It fails with InvalidState if name is already
// registered.
func (c *Codec) AddNamespace(name string, table StaticNamespace) error {
	return c.namespaces.addStatic(name, table)
}

// AddDynamicNamespace registers a single handler that answers for an
// entire namespace under name, dispatching however it likes by type id.
// It fails with InvalidState if name is already registered.
func (c *Codec) AddDynamicNamespace(name string, handler CustomNamespace) error {
	return c.namespaces.addDynamic(name, handler)
}

// Box offers value to every registered namespace's codec, in search of
// one whose Matches reports true, and returns the Custom wrapping the
// EncodedCustomType that codec produced. It reports false if no
// registered namespace claims value, in which case callers should build
// a Custom by hand or encode value as-is. Registering a namespace capable
// of recognizing its own domain types lets callers skip constructing
// EncodedCustomType values themselves.
func (c *Codec) Box(value Object) (Object, bool, error) {
	ct, matched, err := c.namespaces.resolveEncode(value)
	if err != nil || !matched {
		return nil, matched, err
	}
	return Custom{Value: ct}, true, nil
}

// Dumps encodes one Object into MessagePack bytes, applying the
// intern-table prefix transformation if the tree contained any Intern
// nodes. The intern context is reset before and after every call.
func (c *Codec) Dumps(value Object) ([]byte, error) {
	c.intern.reset()

	w := wire.NewWriter()
	if err := c.encodeValue(w, value); err != nil {
		c.intern.reset()
		return nil, err
	}
	if err := w.Error(); err != nil {
		c.intern.reset()
		return nil, wrapEncode(err)
	}

	return c.intern.finalize(w.Bytes())
}

// encodeBytes encodes value into a fresh buffer, used both by Dumps
// itself and to produce the pre-encoded entry blocks the intern context
// accumulates.
func (c *Codec) encodeBytes(value Object) ([]byte, error) {
	w := wire.NewWriter()
	if err := c.encodeValue(w, value); err != nil {
		return nil, err
	}
	if err := w.Error(); err != nil {
		return nil, wrapEncode(err)
	}
	return w.Bytes(), nil
}

func (c *Codec) encodeValue(w *wire.Writer, value Object) error {
	switch v := value.(type) {
	case Nil:
		w.Nil()
	case Boolean:
		w.Bool(bool(v))
	case Integer:
		if v.Unsigned {
			w.Uint(v.U)
		} else {
			w.Sint(v.S)
		}
	case F32:
		w.Float32(float32(v))
	case F64:
		w.Float64(float64(v))
	case String:
		w.Str(string(v))
	case Binary:
		w.Bin([]byte(v))
	case Array:
		w.ArrayHeader(uint32(len(v)))
		for _, elem := range v {
			if err := c.encodeValue(w, elem); err != nil {
				return err
			}
		}
	case Map:
		w.MapHeader(uint32(len(v)))
		for _, entry := range v {
			if err := c.encodeValue(w, entry.Key); err != nil {
				return err
			}
			if err := c.encodeValue(w, entry.Value); err != nil {
				return err
			}
		}
	case Ext:
		w.Ext(v.Type, v.Data)
	case Custom:
		payload, err := encodeCustomPayload(v.Value)
		if err != nil {
			return err
		}
		w.Ext(customTypeExt, payload)
	case Intern:
		idx, err := c.intern.encode(v.Value, c.encodeBytes)
		if err != nil {
			return err
		}
		ref := wire.NewWriter()
		ref.Uint(uint64(idx))
		if err := ref.Error(); err != nil {
			return wrapEncode(err)
		}
		w.Ext(internTableExt, ref.Bytes())
	default:
		return wrapEncode(errUnknownObjectType)
	}
	return nil
}

// Loads decodes exactly one top-level MessagePack value into an Object.
// The intern context is reset before and after every call; no Intern
// node is ever present in the result, since every reference is resolved
// inline.
func (c *Codec) Loads(data []byte) (Object, error) {
	c.intern.reset()
	defer c.intern.reset()

	r := wire.NewReader(data)
	v, err := c.decodeValue(r)
	if err != nil {
		return nil, err
	}
	if err := r.Error(); err != nil {
		return nil, wrapDecode(err)
	}
	return v, nil
}

func (c *Codec) decodeValue(r *wire.Reader) (Object, error) {
	code, ok := r.PeekCode()
	if !ok {
		if err := r.Error(); err != nil {
			return nil, wrapDecode(err)
		}
		return nil, wrapDecode(io.ErrUnexpectedEOF)
	}
	if code == 0xc1 {
		return nil, wrapDecode(errUnknownObjectType)
	}

	switch wire.KindOf(code) {
	case wire.KindNil:
		r.Nil()
		return Nil{}, wireErr(r)
	case wire.KindBool:
		v := r.Bool()
		return Boolean(v), wireErr(r)
	case wire.KindUint:
		v := r.Uint()
		return NewUint(v), wireErr(r)
	case wire.KindInt:
		v := r.Sint()
		return NewInt(v), wireErr(r)
	case wire.KindFloat32:
		v := r.Float32()
		return F32(v), wireErr(r)
	case wire.KindFloat64:
		v := r.Float64()
		return F64(v), wireErr(r)
	case wire.KindStr:
		raw := r.StrBytes()
		if err := wireErr(r); err != nil {
			return nil, err
		}
		if !utf8.Valid(raw) {
			return nil, ErrInvalidUtf8
		}
		return String(raw), nil
	case wire.KindBin:
		raw := r.Bin()
		if err := wireErr(r); err != nil {
			return nil, err
		}
		return Binary(append([]byte(nil), raw...)), nil
	case wire.KindArray:
		n := r.ArrayHeader()
		if err := wireErr(r); err != nil {
			return nil, err
		}
		out := make(Array, n)
		for i := range out {
			elem, err := c.decodeValue(r)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case wire.KindMap:
		n := r.MapHeader()
		if err := wireErr(r); err != nil {
			return nil, err
		}
		out := make(Map, n)
		for i := range out {
			key, err := c.decodeValue(r)
			if err != nil {
				return nil, err
			}
			val, err := c.decodeValue(r)
			if err != nil {
				return nil, err
			}
			out[i] = MapEntry{Key: key, Value: val}
		}
		return out, nil
	case wire.KindExt:
		typ, payload := r.Ext()
		if err := wireErr(r); err != nil {
			return nil, err
		}
		return c.decodeExt(typ, payload)
	default:
		return nil, wrapDecode(errUnknownObjectType)
	}
}

func (c *Codec) decodeExt(typ int8, payload []byte) (Object, error) {
	switch typ {
	case internTableExt:
		if c.intern.decoding() {
			return c.decodeInternReference(payload)
		}
		return c.intern.startDecoding(payload, c.decodeValue)
	case customTypeExt:
		ct, err := decodeCustomPayload(payload)
		if err != nil {
			return nil, err
		}
		return c.namespaces.resolveCustom(ct)
	default:
		return Ext{Type: typ, Data: append([]byte(nil), payload...)}, nil
	}
}

func (c *Codec) decodeInternReference(payload []byte) (Object, error) {
	r := wire.NewReader(payload)
	code, ok := r.PeekCode()
	if !ok || wire.KindOf(code) != wire.KindUint {
		return nil, ErrInvalidInternReferencePayload
	}
	idx := r.Uint()
	if r.Error() != nil || r.Remaining() != 0 {
		return nil, ErrInvalidInternReferencePayload
	}
	if idx > uint64(^uint32(0)) {
		return nil, ErrInvalidInternReferencePayload
	}
	return c.intern.resolve(uint32(idx))
}

func wireErr(r *wire.Reader) error {
	if err := r.Error(); err != nil {
		return wrapDecode(err)
	}
	return nil
}

var errUnknownObjectType = unknownObjectTypeErr{}

type unknownObjectTypeErr struct{}

func (unknownObjectTypeErr) Error() string { return "tobytes: unrecognized value" }
