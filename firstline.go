// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// First-line parsing operates on a single, already fully-buffered logical
// line (CR/LF stripped by the caller): the framer accumulates the whole
// header block up to the terminator before parsing begins (see framer.go),
// so there is no suspend/resume state to carry between calls here -- the
// span-splitting logic is applied to a complete line in one pass.

// parseRequestLine splits a request start-line into its (method,
// request-target, version) tokens per §4.3, tolerating runs of space/tab
// between tokens and a missing target/version (graceful HTTP/0.9-style
// degradation reported as a warning, never fatal).
func parseRequestLine(line []byte) (method, target, version Span, methodNo HTTPMethod, warn ErrorCode) {
	i := skipSpaceTab(line, 0)
	mStart := i
	i = findWSOrLineEnd(line, i)
	method.Set(mStart, i)
	methodNo = GetMethodNo(method.Get(line))

	i = skipSpaceTab(line, i)
	if i >= len(line) {
		// only a method token present
		warn = FailedToFindWsAfterRequestMethod
		return
	}
	tStart := i
	i = findWSOrLineEnd(line, i)
	target.Set(tStart, i)

	i = skipSpaceTab(line, i)
	if i >= len(line) {
		// method + target, no version: HTTP/0.9-style request
		warn = FailedToFindWsAfterRequestRequestUri
		return
	}
	vStart := i
	i = findWSOrLineEnd(line, i)
	version.Set(vStart, i)
	return
}

// parseStatusLine splits a response start-line into (version, status-code,
// reason-phrase) per §4.3. Missing status code is fatal; missing reason is
// tolerated.
func parseStatusLine(line []byte) (version Span, status int, reason Span, fatal ErrorCode) {
	i := skipSpaceTab(line, 0)
	vStart := i
	i = findWSOrLineEnd(line, i)
	version.Set(vStart, i)
	if version.Empty() {
		fatal = FailedToFindWsAfterResponseVersion
		return
	}

	i = skipSpaceTab(line, i)
	if i >= len(line) {
		fatal = FailedToFindWsAfterResponseStatuscode
		return
	}
	scStart := i
	i = findWSOrLineEnd(line, i)
	scEnd := i
	if scEnd == scStart {
		fatal = FailedToFindWsAfterResponseStatuscode
		return
	}
	status, fatal = parseStatusCode(line[scStart:scEnd])
	if fatal != BalsaNoError {
		return
	}

	i = skipSpaceTab(line, i)
	rStart := i
	if i < len(line) {
		i = len(line)
	}
	reason.Set(rStart, i)
	return
}

// parseStatusCode decodes a decimal, non-negative status code, rejecting
// sign characters, non-digits, and 32-bit overflow per §4.3.
func parseStatusCode(tok []byte) (int, ErrorCode) {
	if len(tok) == 0 {
		return 0, FailedConvertingStatusCodeToInt
	}
	var n int64
	for _, c := range tok {
		if !isDigit(c) {
			return 0, FailedConvertingStatusCodeToInt
		}
		n = n*10 + int64(c-'0')
		if n > 0xffffffff {
			return 0, FailedConvertingStatusCodeToInt
		}
	}
	return int(n), BalsaNoError
}
