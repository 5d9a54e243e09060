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
	"reflect"

	"github.com/stestagg/tobytes/internal/wire"
)

// internTableExt is the EXT type code shared by the intern-table envelope
// and by back-references into it.
const internTableExt int8 = 6

// customTypeExt is the EXT type code for custom-type values.
const customTypeExt int8 = 8

type internState int

const (
	internIdle internState = iota
	internEncoding
	internDecoding
)

// encodingTable accumulates already-encoded entries during one dumps call.
type encodingTable struct {
	entries   [][]byte
	originals []*Shared
	byID      map[*Shared]int
}

func newEncodingTable() *encodingTable {
	return &encodingTable{byID: make(map[*Shared]int)}
}

// decodingTable holds entries populated, strictly left-to-right, while
// consuming an intern-table envelope during one loads call.
type decodingTable struct {
	entries []Object
}

// internContext is the per-call state machine described by the codec: it
// is Idle between calls, Encoding while dumps accumulates a table, and
// Decoding once loads has entered a table-populated region.
type internContext struct {
	state internState
	enc   *encodingTable
	dec   *decodingTable
}

func newInternContext() *internContext { return &internContext{} }

// reset returns the context to Idle, discarding any in-progress table.
// Called at the start of every dumps/loads, and whenever one aborts.
func (c *internContext) reset() {
	c.state = internIdle
	c.enc = nil
	c.dec = nil
}

// encode resolves an InternValue encountered during a tree walk to an
// index in the encoding table, encoding v's wrapped value via encodeFn the
// first time it is seen. encodeFn recurses back into the codec's own
// dispatch so that values nested inside an interned value can themselves
// contain further Intern nodes, sharing this same table.
func (c *internContext) encode(v InternValue, encodeFn func(Object) ([]byte, error)) (uint32, error) {
	if c.state == internDecoding {
		return 0, InvalidState{Op: "dumps"}
	}
	if c.state == internIdle {
		c.state = internEncoding
		c.enc = newEncodingTable()
	}

	if v.ByIdentity {
		if idx, ok := c.enc.byID[v.shared]; ok {
			return uint32(idx), nil
		}
	} else {
		for i, orig := range c.enc.originals {
			if objectEqual(orig.value, v.shared.value) {
				return uint32(i), nil
			}
		}
	}

	block, err := encodeFn(v.shared.value)
	if err != nil {
		return 0, err
	}
	idx := len(c.enc.entries)
	c.enc.entries = append(c.enc.entries, block)
	c.enc.originals = append(c.enc.originals, v.shared)
	if v.ByIdentity {
		c.enc.byID[v.shared] = idx
	}
	return uint32(idx), nil
}

// finalize wraps mainBuf in the intern-table envelope if any entries were
// accumulated during this dumps call, splicing without re-walking the
// tree: [ext-header, array-header, entry blocks..., main buffer].
func (c *internContext) finalize(mainBuf []byte) ([]byte, error) {
	defer c.reset()

	if c.state != internEncoding || len(c.enc.entries) == 0 {
		return mainBuf, nil
	}

	body := wire.NewWriter()
	body.ArrayHeader(uint32(len(c.enc.entries)))
	for _, e := range c.enc.entries {
		body.Raw(e)
	}
	body.Raw(mainBuf)
	if err := body.Error(); err != nil {
		return nil, wrapEncode(err)
	}

	out := wire.NewWriter()
	out.Ext(internTableExt, body.Bytes())
	if err := out.Error(); err != nil {
		return nil, wrapEncode(err)
	}
	return out.Bytes(), nil
}

// startDecoding enters Decoding mode for the top-level intern-table
// envelope found in payload, populates the table strictly left to right
// using decodeOne, and returns the decoded main value that follows the
// table in payload.
func (c *internContext) startDecoding(payload []byte, decodeOne func(*wire.Reader) (Object, error)) (Object, error) {
	// The Codec's own decode dispatch never reaches this branch while
	// already Decoding — it routes a second EXT(6) straight to a
	// back-reference lookup instead. The guard stays for any caller
	// driving the table directly.
	if c.state == internDecoding {
		return nil, ErrNestedInternTable
	}
	c.state = internDecoding
	c.dec = &decodingTable{}
	defer c.reset()

	r := wire.NewReader(payload)
	code, ok := r.PeekCode()
	if !ok || wire.KindOf(code) != wire.KindArray {
		return nil, ErrInvalidInternTable
	}
	n := r.ArrayHeader()
	if err := r.Error(); err != nil {
		return nil, wrapDecode(err)
	}
	for i := uint32(0); i < n; i++ {
		v, err := decodeOne(r)
		if err != nil {
			return nil, err
		}
		c.dec.entries = append(c.dec.entries, v)
	}
	if r.Remaining() == 0 {
		return nil, ErrInvalidInternTable
	}
	return decodeOne(r)
}

// resolve returns entry i of the table currently being populated or
// consumed. The stored Object itself is returned, not a deep copy: every
// reference to an Array, Map, Binary or Ext entry shares that entry's
// backing storage. Because the table is populated strictly left-to-right,
// an index at or beyond the number of entries seen so far is always a
// forward reference.
func (c *internContext) resolve(i uint32) (Object, error) {
	if c.dec == nil || i >= uint32(len(c.dec.entries)) {
		size := 0
		if c.dec != nil {
			size = len(c.dec.entries)
		}
		return nil, ForwardInternReference{Index: int(i), Size: size}
	}
	return c.dec.entries[i], nil
}

// decoding reports whether the context currently has a table being
// consumed, distinguishing a top-level intern envelope from a
// back-reference to one already in progress.
func (c *internContext) decoding() bool { return c.state == internDecoding }

// objectEqual implements equality-mode intern lookup: two Object trees
// are equal when reflect.DeepEqual reports them structurally the same,
// without regard to the storage address of any Shared handles inside
// them. Floats compare with ==, so +0 and -0 count as equal and NaN is
// never equal to itself.
func objectEqual(a, b Object) bool {
	return reflect.DeepEqual(a, b)
}
