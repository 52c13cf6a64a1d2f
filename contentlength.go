// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// parseContentLength decodes a decimal Content-Length value, tolerating
// surrounding LWS (already trimmed by the caller) and rejecting anything
// that is not all-digits, empty, or that overflows 63 bits, per §4.5.
func parseContentLength(value []byte) (int64, ErrorCode) {
	if len(value) == 0 {
		return 0, UnparsableContentLength
	}
	var n int64
	for _, c := range value {
		if !isDigit(c) {
			return 0, UnparsableContentLength
		}
		d := int64(c - '0')
		if n > (1<<63-1-d)/10 {
			return 0, UnparsableContentLength
		}
		n = n*10 + d
	}
	return n, BalsaNoError
}

// duplicateContentLengthsAgree reports whether two Content-Length values
// (already trimmed of surrounding LWS by the caller) are, once parsed,
// numerically identical -- the one tolerated form of a duplicate
// Content-Length header (see §4.5, §8 edge cases).
func duplicateContentLengthsAgree(a, b []byte) bool {
	av, aerr := parseContentLength(a)
	bv, berr := parseContentLength(b)
	return aerr == BalsaNoError && berr == BalsaNoError && av == bv
}
