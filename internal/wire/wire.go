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

// Package wire is the raw MessagePack primitive facade: it knows how to
// write and read the fixed set of MessagePack atoms (nil, bool, uint, sint,
// f32, f64, str, bin, array header, map header, ext header) and nothing
// about the higher-level Object model built on top of it.
package wire

// Format codes, per the MessagePack specification.
const (
	codePosFixintMax = 0x7f
	codeFixmapMin    = 0x80
	codeFixmapMax    = 0x8f
	codeFixarrayMin  = 0x90
	codeFixarrayMax  = 0x9f
	codeFixstrMin    = 0xa0
	codeFixstrMax    = 0xbf
	codeNil          = 0xc0
	codeFalse        = 0xc2
	codeTrue         = 0xc3
	codeBin8         = 0xc4
	codeBin16        = 0xc5
	codeBin32        = 0xc6
	codeExt8         = 0xc7
	codeExt16        = 0xc8
	codeExt32        = 0xc9
	codeFloat32      = 0xca
	codeFloat64      = 0xcb
	codeUint8        = 0xcc
	codeUint16       = 0xcd
	codeUint32       = 0xce
	codeUint64       = 0xcf
	codeInt8         = 0xd0
	codeInt16        = 0xd1
	codeInt32        = 0xd2
	codeInt64        = 0xd3
	codeFixext1      = 0xd4
	codeFixext2      = 0xd5
	codeFixext4      = 0xd6
	codeFixext8      = 0xd7
	codeFixext16     = 0xd8
	codeStr8         = 0xd9
	codeStr16        = 0xda
	codeStr32        = 0xdb
	codeArray16      = 0xdc
	codeArray32      = 0xdd
	codeMap16        = 0xde
	codeMap32        = 0xdf
	codeNegFixintMin = 0xe0
)

// Kind classifies the value a decoded header describes, for callers that
// need to branch on shape before reading the payload.
type Kind int

// The kinds a MessagePack value can take.
const (
	KindNil Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat32
	KindFloat64
	KindStr
	KindBin
	KindArray
	KindMap
	KindExt
)
