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
	"fmt"

	"github.com/pkg/errors"
)

// codecError is a typed string sentinel: a constant that implements error
// so callers can compare it with == or errors.Is without allocating.
type codecError string

func (e codecError) Error() string { return string(e) }

// Sentinel errors for the argument-less error kinds.
const (
	// ErrInvalidUtf8 is returned when a decoded str's bytes are not valid
	// UTF-8.
	ErrInvalidUtf8 = codecError("tobytes: decoded string is not valid utf-8")
	// ErrNestedInternTable is returned when an intern-table EXT is seen
	// while already decoding one.
	ErrNestedInternTable = codecError("tobytes: nested intern table")
	// ErrInvalidInternTable is returned when an intern-table payload is
	// not an array, or has no trailing main value.
	ErrInvalidInternTable = codecError("tobytes: invalid intern table payload")
	// ErrInvalidInternReferencePayload is returned when a reference EXT's
	// payload is not a MessagePack uint.
	ErrInvalidInternReferencePayload = codecError("tobytes: intern reference payload is not a uint")
	// ErrInvalidCustomNamespace is returned when a custom-type namespace
	// discriminant is neither a str nor a uint fitting in u32.
	ErrInvalidCustomNamespace = codecError("tobytes: invalid custom type namespace")
	// ErrInvalidCustomTypeId is returned when a custom-type's type id is
	// not a uint fitting in u32.
	ErrInvalidCustomTypeId = codecError("tobytes: invalid custom type id")
)

// IntegerOutOfRange is returned when an Integer fits neither u64 nor i64.
type IntegerOutOfRange struct{}

func (IntegerOutOfRange) Error() string {
	return "tobytes: integer value out of range for i64 or u64"
}

// InvalidState is returned when an operation is requested of the Codec or
// InternContext that its current state does not allow — a duplicate
// namespace registration, or an encode/decode call made while the other
// direction is in progress.
type InvalidState struct {
	Op string
}

func (e InvalidState) Error() string {
	return fmt.Sprintf("tobytes: invalid state for operation %q", e.Op)
}

// ForwardInternReference is returned when a reference index is seen
// before that many entries have been populated in the intern table being
// decoded (forward references are illegal: the table is populated
// strictly left-to-right).
type ForwardInternReference struct {
	Index int
	Size  int
}

func (e ForwardInternReference) Error() string {
	return fmt.Sprintf("tobytes: forward intern reference to index %d, table has %d entries", e.Index, e.Size)
}

// InvalidInternReference is returned when, after a decode has completed,
// a reference index is found to be out of bounds of the final table.
type InvalidInternReference struct {
	Index int
	Size  int
}

func (e InvalidInternReference) Error() string {
	return fmt.Sprintf("tobytes: intern reference index %d out of bounds for table of size %d", e.Index, e.Size)
}

// EncodeFailure wraps a failure from the underlying MessagePack writer.
type EncodeFailure struct {
	cause error
}

func (e EncodeFailure) Error() string { return "tobytes: encode failure: " + e.cause.Error() }

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e EncodeFailure) Unwrap() error { return e.cause }

func wrapEncode(err error) error {
	if err == nil {
		return nil
	}
	return EncodeFailure{cause: errors.WithStack(err)}
}

// DecodeFailure wraps a failure from the underlying MessagePack reader.
type DecodeFailure struct {
	cause error
}

func (e DecodeFailure) Error() string { return "tobytes: decode failure: " + e.cause.Error() }

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e DecodeFailure) Unwrap() error { return e.cause }

func wrapDecode(err error) error {
	if err == nil {
		return nil
	}
	return DecodeFailure{cause: errors.WithStack(err)}
}

// IoFailure wraps a failure from writing or reading the underlying byte
// buffer itself, as distinct from a malformed-MessagePack EncodeFailure
// or DecodeFailure.
type IoFailure struct {
	cause error
}

func (e IoFailure) Error() string { return "tobytes: io failure: " + e.cause.Error() }

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e IoFailure) Unwrap() error { return e.cause }
