// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import (
	"bytes"

	"github.com/intuitivelabs/bytescase"
)

// HTTPMethod is the type used to hold the numeric request method.
type HTTPMethod uint8

// method types
const (
	MethodUnknown HTTPMethod = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
	MethodOther // must be last
)

// method2Name translates between a numeric HTTPMethod and the ASCII name.
var method2Name = [MethodOther + 1][]byte{
	MethodUnknown: []byte(""),
	MethodGet:     []byte("GET"),
	MethodHead:    []byte("HEAD"),
	MethodPost:    []byte("POST"),
	MethodPut:     []byte("PUT"),
	MethodDelete:  []byte("DELETE"),
	MethodConnect: []byte("CONNECT"),
	MethodOptions: []byte("OPTIONS"),
	MethodTrace:   []byte("TRACE"),
	MethodPatch:   []byte("PATCH"),
	MethodOther:   []byte("OTHER"),
}

// Name returns the ASCII method name.
func (m HTTPMethod) Name() []byte {
	if m > MethodOther {
		return method2Name[MethodUnknown]
	}
	return method2Name[m]
}

// String implements the Stringer interface.
func (m HTTPMethod) String() string {
	return string(m.Name())
}

// GetMethodNo converts an ASCII method token to its numeric HTTPMethod,
// returning MethodOther for anything not in the known set (still a valid
// request method token, just not one this framer special-cases).
func GetMethodNo(buf []byte) HTTPMethod {
	if len(buf) == 0 {
		return MethodUnknown
	}
	i := hashMthName(buf)
	for _, m := range mthNameLookup[i] {
		if bytes.Equal(buf, m.n) {
			return m.t
		}
	}
	return MethodOther
}

// magic values: after adding/removing methods re-check bucket fill
// (currently HEAD/POST and GET/OPTIONS each share a bucket; lookup
// compares every entry in the bucket).
const (
	mthBitsLen   uint = 2
	mthBitsFChar uint = 3
)

type mth2Type struct {
	n []byte
	t HTTPMethod
}

var mthNameLookup [1 << (mthBitsLen + mthBitsFChar)][]mth2Type

func hashMthName(n []byte) int {
	const (
		mC = (1 << mthBitsFChar) - 1
		mL = (1 << mthBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << mthBitsFChar)
}

func init() {
	for i := MethodUnknown + 1; i < MethodOther; i++ {
		h := hashMthName(method2Name[i])
		mthNameLookup[h] = append(mthNameLookup[h], mth2Type{method2Name[i], i})
	}
}
