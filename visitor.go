// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// Visitor receives the stream of parse events a Framer produces while
// consuming ProcessInput calls. Every method has a no-op default via
// NopVisitor, so a caller only needs to embed NopVisitor and override the
// handful of events it actually cares about.
type Visitor interface {
	// OnRequestFirstLine fires once a request start-line has been fully
	// parsed: full is the raw start-line (terminator excluded), followed
	// by the method, request-target, and HTTP version spans -- all
	// relative to the same underlying buffer.
	OnRequestFirstLine(full Span, method HTTPMethod, methodTok, requestURI, version Span)

	// OnResponseFirstLine fires once a response status-line has been fully
	// parsed; full is the raw start-line (terminator excluded).
	OnResponseFirstLine(full Span, version Span, statusCode int, reason Span)

	// ContinueHeaderDone fires once a 1xx response's header block has
	// been fully parsed and delivered into the continue-header buffer;
	// the framer then resets its header state and waits for the final
	// status line on the same connection.
	ContinueHeaderDone()

	// OnInterimHeaders fires once per 1xx prelude with the raw bytes of
	// its header lines after the status-line (terminator included). A 1xx header block is
	// delivered only through this event and ProcessHeaders -- unlike a
	// final header block, individual OnHeader/OnHeaderInput calls are
	// skipped, per the collapsed event sequence a continue prelude gets.
	OnInterimHeaders(chunk []byte)

	// OnHeaderInput fires once per final header block, after its OnHeader
	// calls, with the raw bytes of the header lines that follow the
	// start-line (terminator included), unfolded and unsplit; useful for
	// passthrough/logging use cases.
	OnHeaderInput(chunk []byte)

	// OnHeader fires once per parsed header line, after obs-fold joining.
	// name and value are spans into the storage the line was recorded in
	// (the buffer set with SetHeaderBuffer, or SetTrailerBuffer for trailer
	// fields; the framer's own scratch buffer when no header buffer is
	// attached), not into the original input. For trailer fields with no
	// trailer buffer attached both spans are empty.
	OnHeader(typ HdrType, name, value Span)

	// ProcessHeaders fires once, after the full header block (all OnHeader
	// calls) has been delivered, and before body or HeaderDone.
	ProcessHeaders()

	// HeaderDone fires once the header block is fully parsed and the
	// framer has resolved the body-framing mode for the message.
	HeaderDone(bodyLen int64, chunked bool)

	// OnRawBodyInput fires for each contiguous slice of body bytes as it
	// becomes available: all of a Content-Length or until-close body, and
	// the chunk payload of a chunked body. Chunk-size lines, chunk
	// extensions, the CRLF after each chunk, and the trailer are not
	// delivered through it.
	OnRawBodyInput(chunk []byte)

	// OnChunkLength fires once a chunk-size line has been fully parsed;
	// size is the decoded chunk size. extension is Span{0, n} where n is
	// the byte count of the chunk extension (empty when there is none);
	// the extension bytes themselves arrive via OnChunkExtensionInput.
	OnChunkLength(size uint64, extension Span)

	// OnChunkExtensionInput fires once for a chunk-size line that carries
	// a ';' extension, with the extension bytes after the ';' (CR bytes
	// dropped), when the line's LF is reached and before OnChunkLength.
	OnChunkExtensionInput(chunk []byte)

	// OnBodyChunkInput fires for each contiguous slice of decoded body
	// data: all of a Content-Length or until-close body, and the chunk
	// payload of a chunked body (excluding the chunk-size line and
	// trailing CRLF).
	OnBodyChunkInput(chunk []byte)

	// OnTrailerInput fires once, after the trailer's OnHeader calls, with
	// the raw trailer-block bytes (terminator included), mirroring
	// OnHeaderInput.
	OnTrailerInput(chunk []byte)

	// ProcessTrailers fires once, after every trailer field has been
	// parsed (via repeated internal header-parsing), before MessageDone.
	// It fires only when a trailer buffer is attached.
	ProcessTrailers()

	// MessageDone fires once the entire message (headers, body, and any
	// trailers) has been fully parsed.
	MessageDone()

	// HandleWarning fires for a non-fatal ErrorCode; parsing continues.
	HandleWarning(code ErrorCode, offset int)

	// HandleError fires for a fatal ErrorCode; parsing halts and
	// ProcessInput will not consume any further bytes until Reset.
	HandleError(code ErrorCode, offset int)
}

// NopVisitor implements Visitor with every method a no-op. Embed it in a
// concrete visitor type to only override the events of interest.
type NopVisitor struct{}

func (NopVisitor) OnRequestFirstLine(Span, HTTPMethod, Span, Span, Span) {}
func (NopVisitor) OnResponseFirstLine(Span, Span, int, Span)             {}
func (NopVisitor) ContinueHeaderDone()                                   {}
func (NopVisitor) OnInterimHeaders([]byte)                               {}
func (NopVisitor) OnHeaderInput([]byte)                                  {}
func (NopVisitor) OnHeader(HdrType, Span, Span)                          {}
func (NopVisitor) ProcessHeaders()                                       {}
func (NopVisitor) HeaderDone(int64, bool)                                {}
func (NopVisitor) OnRawBodyInput([]byte)                                 {}
func (NopVisitor) OnChunkLength(uint64, Span)                            {}
func (NopVisitor) OnChunkExtensionInput([]byte)                          {}
func (NopVisitor) OnBodyChunkInput([]byte)                               {}
func (NopVisitor) OnTrailerInput([]byte)                                 {}
func (NopVisitor) ProcessTrailers()                                      {}
func (NopVisitor) MessageDone()                                          {}
func (NopVisitor) HandleWarning(ErrorCode, int)                          {}
func (NopVisitor) HandleError(ErrorCode, int)                            {}

var _ Visitor = NopVisitor{}
