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

// Package tobytes implements a binary Object codec built on top of the
// MessagePack wire format.
//
// It walks a tree of Object values and emits MessagePack bytes, and reads
// MessagePack bytes back into an Object tree. Two capabilities are layered
// on top of plain MessagePack:
//
//   - a custom-type extension (EXT 8) that carries a (namespace, type id,
//     payload) triple for user-defined types through a Codec's namespace
//     registry, and
//   - an intern table (EXT 6) that deduplicates repeated or explicitly
//     shared Object values into a side table, replacing repeat occurrences
//     with a compact index reference.
//
// A Codec is not safe for concurrent use: Dumps and Loads mutate an
// internal intern-table state machine over the course of one call.
// Distinct Codec instances are independent and may be used from separate
// goroutines concurrently.
package tobytes
