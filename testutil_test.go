// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "fmt"

// recorder is a Visitor that appends a one-line description of every event
// to log, for assertions in property and scenario tests. Body, interim
// header, and chunk-extension payloads are recorded as their content so
// tests can assert on exact bytes; header and trailer input are recorded
// by length only.
type recorder struct {
	NopVisitor
	log []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.log = append(r.log, fmt.Sprintf(format, args...))
}

func (r *recorder) OnRequestFirstLine(full Span, method HTTPMethod, methodTok, requestURI, version Span) {
	r.add("request-line %s", method)
}

func (r *recorder) OnResponseFirstLine(full Span, version Span, statusCode int, reason Span) {
	r.add("status-line %d", statusCode)
}

func (r *recorder) ContinueHeaderDone() {
	r.add("continue-header-done")
}

func (r *recorder) OnInterimHeaders(chunk []byte) {
	r.add("interim-headers %q", chunk)
}

func (r *recorder) OnHeaderInput(chunk []byte) {
	r.add("header-input %d", len(chunk))
}

func (r *recorder) OnHeader(typ HdrType, name, value Span) {
	r.add("header %s", typ)
}

func (r *recorder) ProcessHeaders() {
	r.add("process-headers")
}

func (r *recorder) HeaderDone(bodyLen int64, chunked bool) {
	r.add("header-done %d %t", bodyLen, chunked)
}

func (r *recorder) OnRawBodyInput(chunk []byte) {
	r.add("raw-body %q", chunk)
}

func (r *recorder) OnChunkLength(size uint64, extension Span) {
	r.add("chunk-length %d", size)
}

func (r *recorder) OnChunkExtensionInput(chunk []byte) {
	r.add("chunk-extension-input %q", chunk)
}

func (r *recorder) OnBodyChunkInput(chunk []byte) {
	r.add("body-chunk %q", chunk)
}

func (r *recorder) OnTrailerInput(chunk []byte) {
	r.add("trailer-input %d", len(chunk))
}

func (r *recorder) ProcessTrailers() {
	r.add("process-trailers")
}

func (r *recorder) MessageDone() {
	r.add("message-done")
}

func (r *recorder) HandleWarning(code ErrorCode, offset int) {
	r.add("warning %s", code)
}

func (r *recorder) HandleError(code ErrorCode, offset int) {
	r.add("error %s", code)
}

// feedPiecewise drives fr with data split into chunks of at most n bytes
// (n <= 0 means "all at once"), returning the total number of bytes
// consumed across every ProcessInput call.
func feedPiecewise(fr *Framer, data []byte, n int) int {
	if n <= 0 {
		n = len(data)
		if n == 0 {
			n = 1
		}
	}
	total := 0
	for len(data) > 0 {
		end := n
		if end > len(data) {
			end = len(data)
		}
		slice := data[:end]
		for len(slice) > 0 {
			if fr.IsError() || fr.MessageFullyRead() {
				return total
			}
			c := fr.ProcessInput(slice)
			total += c
			slice = slice[c:]
			if c == 0 {
				break
			}
		}
		data = data[end:]
	}
	return total
}
