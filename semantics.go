// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// bodyMode is the resolved body-framing mode for a message, computed by
// resolveBodyMode once the header block has been fully parsed, covering
// chunked, sized, until-close, and no-body framing.
type bodyMode uint8

const (
	bodyModeNone bodyMode = iota
	bodyModeSized
	bodyModeChunked
	bodyModeUntilClose
)

// resolveBodyMode implements §4.5: inspect the recorded Content-Length and
// Transfer-Encoding header(s) (at most one of each is tolerated, modulo
// identical-valued Content-Length duplicates) and combine them with
// whether this is a request or a response and, for responses, the
// request-method hint (§4.12) to pick the body-framing mode.
func resolveBodyMode(hdrs BalsaHeaders, isRequest bool, respToMethod HTTPMethod, status int, policy Policy) (mode bodyMode, contentLength int64, code ErrorCode) {
	buf := hdrs.Bytes()
	var clRecords, teRecords []HeaderLineRecord
	for _, r := range hdrs.Headers() {
		switch r.Type {
		case HdrContentLength:
			clRecords = append(clRecords, r)
		case HdrTransferEncoding:
			teRecords = append(teRecords, r)
		}
	}

	if len(teRecords) > 1 {
		return bodyModeNone, 0, MultipleTransferEncodingKeys
	}

	chunked := false
	if len(teRecords) == 1 {
		var c bool
		c, code = resolveTransferEncoding(teRecords[0].Value.Get(buf), policy)
		if code != BalsaNoError {
			return bodyModeNone, 0, code
		}
		chunked = c
	}

	var cl int64
	haveCL := false
	if len(clRecords) > 0 {
		first := clRecords[0].Value.Get(buf)
		v, cErr := parseContentLength(first)
		if cErr != BalsaNoError {
			return bodyModeNone, 0, cErr
		}
		cl = v
		haveCL = true
		for _, r := range clRecords[1:] {
			if !duplicateContentLengthsAgree(first, r.Value.Get(buf)) {
				return bodyModeNone, 0, MultipleContentLengthKeys
			}
		}
	}

	if chunked {
		return bodyModeChunked, 0, BalsaNoError
	}

	if !isRequest && noBodyAllowed(status, respToMethod) {
		return bodyModeNone, 0, BalsaNoError
	}

	if haveCL {
		if cl == 0 {
			return bodyModeNone, 0, BalsaNoError
		}
		return bodyModeSized, cl, BalsaNoError
	}

	if !isRequest {
		return bodyModeUntilClose, 0, BalsaNoError
	}

	if policy.RequireContentLength {
		return bodyModeNone, 0, RequiredBodyButNoContentLength
	}
	return bodyModeNone, 0, BalsaNoError
}

// noBodyAllowed reports the §4.1/§4.12 response-side exceptions where a
// response never carries a body regardless of header framing: 1xx, 204,
// 304, any response to a HEAD request, and a 2xx response to CONNECT
// (the connection becomes a tunnel at that point, never until-close body
// framing).
func noBodyAllowed(status int, respToMethod HTTPMethod) bool {
	if respToMethod == MethodHead {
		return true
	}
	if respToMethod == MethodConnect && status/100 == 2 {
		return true
	}
	if status >= 100 && status < 200 {
		return true
	}
	return status == 204 || status == 304
}
