// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "github.com/intuitivelabs/bytescase"

// TrEncT is the numeric encoding flag a Transfer-Encoding token resolves
// to, trimmed to the codings this framer needs to special-case for body
// framing (everything else collapses to TrEncOtherF).
type TrEncT uint8

const (
	TrEncNone TrEncT = iota
	TrEncChunkedF
	TrEncIdentityF
	TrEncOtherF // compress, deflate, gzip, or anything unrecognized
)

// trEncResolve resolves one Transfer-Encoding token to its TrEncT flag,
// case-insensitively.
func trEncResolve(n []byte) TrEncT {
	switch len(n) {
	case 7:
		if bytescase.CmpEq(n, []byte("chunked")) {
			return TrEncChunkedF
		}
	case 8:
		if bytescase.CmpEq(n, []byte("identity")) {
			return TrEncIdentityF
		}
	}
	return TrEncOtherF
}

// resolveTransferEncoding applies §4.5's Transfer-Encoding resolution
// rules to a recorded Transfer-Encoding header value: the value must be
// exactly one token, "chunked" or "identity" being the only codings this
// framer gives body-framing meaning to. A comma-separated list (even one
// naming only "chunked, identity") is always rejected -- this framer never
// combines codings, per RFC 7230 §3.3.1 -- and an unrecognized single
// token is rejected unless policy.AcceptUnknownTE is set. More than one
// Transfer-Encoding header is handled by the caller (MultipleTransferEncodingKeys).
func resolveTransferEncoding(value []byte, policy Policy) (chunked bool, code ErrorCode) {
	start := skipSpaceTab(value, 0)
	end := trimTrailingLWS(value, start, len(value))
	if end == start {
		return false, BalsaNoError
	}
	for _, c := range value[start:end] {
		if c == ',' {
			return false, UnknownTransferEncoding
		}
	}
	enc := trEncResolve(value[start:end])
	if enc == TrEncOtherF {
		if policy.AcceptUnknownTE {
			return false, BalsaNoError
		}
		return false, UnknownTransferEncoding
	}
	return enc == TrEncChunkedF, BalsaNoError
}
