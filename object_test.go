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

package tobytes_test

import (
	"testing"

	"github.com/stestagg/tobytes"
)

func TestIntegerConversions(t *testing.T) {
	cases := []struct {
		name string
		v    tobytes.Integer
		i64  int64
		iok  bool
		u64  uint64
		uok  bool
	}{
		{"small positive", tobytes.NewInt(3), 3, true, 3, true},
		{"negative", tobytes.NewInt(-1), -1, true, 0, false},
		{"large unsigned", tobytes.NewUint(1 << 63), 0, false, 1 << 63, true},
		{"zero", tobytes.NewInt(0), 0, true, 0, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if i, ok := c.v.AsInt64(); i != c.i64 || ok != c.iok {
				t.Errorf("AsInt64() = (%d, %v), want (%d, %v)", i, ok, c.i64, c.iok)
			}
			if u, ok := c.v.AsUint64(); u != c.u64 || ok != c.uok {
				t.Errorf("AsUint64() = (%d, %v), want (%d, %v)", u, ok, c.u64, c.uok)
			}
		})
	}
}

func TestNamespaceRefString(t *testing.T) {
	if got, want := tobytes.NamespaceName("table").String(), "table"; got != want {
		t.Errorf("NamespaceName(...).String() = %q, want %q", got, want)
	}
	if got, want := tobytes.NamespaceID(7).String(), "#7"; got != want {
		t.Errorf("NamespaceID(7).String() = %q, want %q", got, want)
	}
	if tobytes.NamespaceID(7).IsName() {
		t.Error("NamespaceID(7).IsName() = true, want false")
	}
	if !tobytes.NamespaceName("x").IsName() {
		t.Error(`NamespaceName("x").IsName() = false, want true`)
	}
}

func TestSharedIdentity(t *testing.T) {
	value := tobytes.NewArray(tobytes.FromString("alpha"))
	shared := tobytes.NewShared(value)
	a := tobytes.NewInternValueShared(shared, true)
	b := tobytes.NewInternValueShared(shared, true)
	if a.Shared() != b.Shared() {
		t.Error("InternValues built from the same Shared handle have different Shared()")
	}
	other := tobytes.NewInternValue(value)
	if other.Shared() == a.Shared() {
		t.Error("independently constructed InternValues unexpectedly share a Shared handle")
	}
}
