// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "testing"

func TestResolveTransferEncoding(t *testing.T) {
	cases := []struct {
		value       string
		policy      Policy
		wantChunked bool
		wantCode    ErrorCode
	}{
		{"chunked", DefaultPolicy(), true, BalsaNoError},
		{"Chunked", DefaultPolicy(), true, BalsaNoError},
		{"identity", DefaultPolicy(), false, BalsaNoError},
		{"gzip, chunked", DefaultPolicy(), false, UnknownTransferEncoding},
		{"chunked, gzip", DefaultPolicy(), false, UnknownTransferEncoding},
		{"chunked, identity", DefaultPolicy(), false, UnknownTransferEncoding},
		{"gzip", DefaultPolicy(), false, UnknownTransferEncoding},
		{"gzip", Policy{AcceptUnknownTE: true}, false, BalsaNoError},
		{"", DefaultPolicy(), false, BalsaNoError},
	}
	for _, c := range cases {
		chunked, code := resolveTransferEncoding([]byte(c.value), c.policy)
		if code != c.wantCode {
			t.Errorf("%q: code = %v, want %v", c.value, code, c.wantCode)
			continue
		}
		if code == BalsaNoError && chunked != c.wantChunked {
			t.Errorf("%q: chunked = %t, want %t", c.value, chunked, c.wantChunked)
		}
	}
}

func TestTrEncResolve(t *testing.T) {
	if trEncResolve([]byte("chunked")) != TrEncChunkedF {
		t.Error("chunked must resolve to TrEncChunkedF")
	}
	if trEncResolve([]byte("identity")) != TrEncIdentityF {
		t.Error("identity must resolve to TrEncIdentityF")
	}
	if trEncResolve([]byte("gzip")) != TrEncOtherF {
		t.Error("gzip must resolve to TrEncOtherF")
	}
}
