// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "bytes"

// ParseState is the framer's top-level state, widened with explicit
// chunked sub-states.
type ParseState uint8

const (
	ReadingHeaderAndFirstline ParseState = iota
	ReadingChunkLength
	ReadingChunkExtension
	ReadingChunkData
	ReadingChunkTerm
	ReadingLastChunkTerm
	ReadingTrailer
	ReadingUntilClose
	ReadingContent
	MessageFullyRead
	ErrorState
)

func (s ParseState) String() string {
	switch s {
	case ReadingHeaderAndFirstline:
		return "ReadingHeaderAndFirstline"
	case ReadingChunkLength:
		return "ReadingChunkLength"
	case ReadingChunkExtension:
		return "ReadingChunkExtension"
	case ReadingChunkData:
		return "ReadingChunkData"
	case ReadingChunkTerm:
		return "ReadingChunkTerm"
	case ReadingLastChunkTerm:
		return "ReadingLastChunkTerm"
	case ReadingTrailer:
		return "ReadingTrailer"
	case ReadingUntilClose:
		return "ReadingUntilClose"
	case ReadingContent:
		return "ReadingContent"
	case MessageFullyRead:
		return "MessageFullyRead"
	case ErrorState:
		return "Error"
	default:
		return "Unknown"
	}
}

const defaultMaxHeaderLength = 64 * 1024

// Framer is the incremental HTTP/1.x message framer. The zero value is not
// usable; construct one with New.
type Framer struct {
	state     ParseState
	isRequest bool

	headerBuf   BalsaHeaders
	trailerBuf  BalsaHeaders
	continueBuf BalsaHeaders
	visitor     Visitor

	// internalHdrs backs semantics resolution (Content-Length,
	// Transfer-Encoding) when the caller attaches no header buffer: the
	// framer still has to inspect those headers to frame the body even
	// though nothing is retained for the caller to read afterwards.
	internalHdrs *HeaderBuffer
	// internalContinue backs a 1xx prelude's header storage when no
	// continue buffer is attached: buffer attachment only suppresses
	// what the caller retains (§6), it never changes whether a 1xx is
	// parsed as an interim prelude.
	internalContinue *HeaderBuffer

	maxHeaderLength uint64
	invalidChars    InvalidCharPolicy
	policy          Policy

	// invalidCharCounts tallies offending value octets by byte value.
	// Left nil (zero allocation) whenever invalidChars is Off or no
	// offending octet has been seen yet.
	invalidCharCounts map[byte]int

	errCode ErrorCode
	fatal   bool

	respToMethod HTTPMethod

	// header-block accumulation (first line + headers, up to and
	// including the terminator); reset at the start of every block,
	// including the continue-response re-arm.
	rawHeader   []byte
	hdrScan     headerTerminatorScan
	headerBytes uint64
	// skippingLeadingCRLF is true only at the very start of a fresh parse:
	// any number of leading CR/LF bytes are discarded before real
	// accumulation begins. It never reactivates mid-message.
	skippingLeadingCRLF bool

	// resolved body framing
	contentRemaining uint64
	closeSignaled    bool

	chunk chunkDecoder
}

// New returns a ready-to-use Framer with default policy and limits.
func New() *Framer {
	f := &Framer{policy: DefaultPolicy()}
	f.Reset()
	return f
}

// Reset returns the framer to its initial state for a new message,
// preserving is_request, visitor, storage pointers, and policy per §4.10.
func (f *Framer) Reset() {
	f.state = ReadingHeaderAndFirstline
	f.errCode = BalsaNoError
	f.fatal = false
	f.rawHeader = f.rawHeader[:0]
	f.hdrScan.reset()
	f.headerBytes = 0
	f.skippingLeadingCRLF = true
	f.contentRemaining = 0
	f.closeSignaled = false
	f.invalidCharCounts = nil
	f.chunk.reset()
	if f.visitor == nil {
		f.visitor = NopVisitor{}
	}
	if f.maxHeaderLength == 0 {
		f.maxHeaderLength = defaultMaxHeaderLength
	}
	if f.internalHdrs == nil {
		f.internalHdrs = NewHeaderBuffer(0)
	} else {
		f.internalHdrs.Reset()
	}
	if f.internalContinue == nil {
		f.internalContinue = NewHeaderBuffer(0)
	} else {
		f.internalContinue.Reset()
	}
}

// headerStorage returns the BalsaHeaders that this message's non-trailer,
// non-continue headers are recorded into: the caller-supplied buffer if
// one was attached, else the framer's own scratch buffer (semantics
// resolution needs the recorded Content-Length/Transfer-Encoding either
// way).
func (f *Framer) headerStorage() BalsaHeaders {
	if f.headerBuf != nil {
		return f.headerBuf
	}
	return f.internalHdrs
}

// continueStorage is headerStorage's counterpart for a 1xx prelude.
func (f *Framer) continueStorage() BalsaHeaders {
	if f.continueBuf != nil {
		return f.continueBuf
	}
	return f.internalContinue
}

func (f *Framer) SetIsRequest(v bool)              { f.isRequest = v }
func (f *Framer) SetHeaderBuffer(b BalsaHeaders)    { f.headerBuf = b }
func (f *Framer) SetTrailerBuffer(b BalsaHeaders)   { f.trailerBuf = b }
func (f *Framer) SetContinueBuffer(b BalsaHeaders)  { f.continueBuf = b }
func (f *Framer) SetVisitor(v Visitor) {
	if v == nil {
		v = NopVisitor{}
	}
	f.visitor = v
}
func (f *Framer) SetMaxHeaderLength(n uint64)              { f.maxHeaderLength = n }
func (f *Framer) SetInvalidCharsLevel(p InvalidCharPolicy) { f.invalidChars = p }
func (f *Framer) SetHTTPValidationPolicy(p Policy)         { f.policy = p }

// SetResponseToMethod tells the framer which request method the next
// response corresponds to, so §4.12's HEAD and 2xx-to-CONNECT no-body
// exceptions can be applied (the 1xx/204/304 exceptions follow from the
// status code alone). It has no effect on requests. It is not tracked
// automatically across messages -- the caller owns request/response
// correlation -- and defaults to MethodUnknown.
func (f *Framer) SetResponseToMethod(m HTTPMethod) { f.respToMethod = m }

// InvalidCharCounts returns the per-octet frequency of offending value
// bytes seen so far under the Warn or Fatal invalid-char policy, keyed by
// the raw byte value. It is nil if the policy is Off or no offending
// octet has been seen since the last Reset.
func (f *Framer) InvalidCharCounts() map[byte]int { return f.invalidCharCounts }

func (f *Framer) ParseState() ParseState   { return f.state }
func (f *Framer) ErrorCode() ErrorCode     { return f.errCode }
func (f *Framer) IsError() bool           { return f.fatal }
func (f *Framer) MessageFullyRead() bool  { return f.state == MessageFullyRead }

// SignalConnectionClosed tells a response framer currently in
// ReadingUntilClose that the underlying connection has been closed, so
// MessageFullyRead becomes true. It is a no-op in any other state.
func (f *Framer) SignalConnectionClosed() {
	if f.state == ReadingUntilClose {
		f.closeSignaled = true
		f.state = MessageFullyRead
		f.visitor.MessageDone()
	}
}

func (f *Framer) fail(code ErrorCode) {
	f.errCode = code
	f.fatal = true
	f.state = ErrorState
	f.visitor.HandleError(code, 0)
}

func (f *Framer) warn(code ErrorCode) {
	f.errCode = code
	f.visitor.HandleWarning(code, 0)
}

// BytesSafeToSplice returns the number of body bytes the framer would
// otherwise expect next via ProcessInput, per §4.8. It is unbounded
// (reported as the maximum uint64) in ReadingUntilClose.
func (f *Framer) BytesSafeToSplice() uint64 {
	switch f.state {
	case ReadingContent:
		return f.contentRemaining
	case ReadingChunkData:
		return f.chunk.remaining
	case ReadingUntilClose:
		return ^uint64(0)
	default:
		return 0
	}
}

// BytesSpliced accounts for n body bytes delivered out of band, per §4.8.
func (f *Framer) BytesSpliced(n uint64) {
	if f.fatal {
		return
	}
	switch f.state {
	case ReadingContent:
		if n > f.contentRemaining {
			f.fail(CalledBytesSplicedAndExceededSafeSpliceAmount)
			return
		}
		f.contentRemaining -= n
		if f.contentRemaining == 0 {
			f.finishBody()
		}
	case ReadingChunkData:
		if n > f.chunk.remaining {
			f.fail(CalledBytesSplicedAndExceededSafeSpliceAmount)
			return
		}
		f.chunk.remaining -= n
		if f.chunk.remaining == 0 {
			f.state = ReadingChunkTerm
			f.chunk.afterCR = false
		}
	case ReadingUntilClose:
		// unbounded; nothing to account for.
	default:
		f.fail(CalledBytesSplicedWhenUnsafeToDoSo)
	}
}

// ProcessInput feeds data into the framer and returns how many leading
// bytes of data were consumed. Once IsError() is true, it always returns 0.
func (f *Framer) ProcessInput(data []byte) int {
	if f.fatal {
		return 0
	}
	total := 0
	for total < len(data) {
		if f.fatal || f.state == MessageFullyRead {
			break
		}
		n := f.step(data[total:])
		total += n
		if n == 0 {
			break
		}
	}
	return total
}

func (f *Framer) step(data []byte) int {
	switch f.state {
	case ReadingHeaderAndFirstline:
		return f.stepHeaderBlock(data)
	case ReadingContent:
		return f.stepContent(data)
	case ReadingUntilClose:
		return f.stepUntilClose(data)
	case ReadingChunkLength:
		return f.stepChunkLength(data)
	case ReadingChunkExtension:
		return f.stepChunkExtension(data)
	case ReadingChunkData:
		return f.stepChunkData(data)
	case ReadingChunkTerm:
		return f.stepChunkTerm(data)
	case ReadingLastChunkTerm:
		return f.stepLastChunkTerm(data)
	case ReadingTrailer:
		return f.stepTrailer(data)
	default:
		return 0
	}
}

// stepHeaderBlock accumulates raw bytes of the first-line + header block
// until the two-terminator sequence is recognized (or, for a request, until
// a start-line with fewer than three tokens ends), enforcing
// max_header_length along the way (§4.2, §4.10).
func (f *Framer) stepHeaderBlock(data []byte) int {
	for i, b := range data {
		if f.skippingLeadingCRLF {
			if b == '\r' || b == '\n' {
				continue
			}
			f.skippingLeadingCRLF = false
		}
		f.rawHeader = append(f.rawHeader, b)
		f.headerBytes++
		if f.headerBytes > f.maxHeaderLength {
			f.fail(HeadersTooLong)
			return i + 1
		}
		done := f.hdrScan.step(b)
		if !done && b == '\n' && f.isRequest && bytes.IndexByte(f.rawHeader, '\n') == len(f.rawHeader)-1 {
			// a request start-line with fewer than three tokens (HTTP/0.9
			// style) has no header block: the message ends with that line.
			line := bytes.TrimSuffix(f.rawHeader[:len(f.rawHeader)-1], []byte{'\r'})
			_, _, _, _, w := parseRequestLine(line)
			done = w != BalsaNoError
		}
		if done {
			consumed := i + 1
			f.finishHeaderBlock()
			return consumed
		}
	}
	return len(data)
}

func (f *Framer) finishHeaderBlock() {
	block := f.rawHeader

	lineEnd, termLen, sig := findLineEnd(block, 0)
	if sig != sigOK {
		f.fail(InternalLogicError)
		return
	}
	line := block[0:lineEnd]
	rest := block[lineEnd+termLen:]
	var full Span
	full.Set(0, lineEnd)

	if f.isRequest {
		method, target, version, methodNo, warnCode := parseRequestLine(line)
		f.visitor.OnRequestFirstLine(full, methodNo, method, target, version)
		if warnCode != BalsaNoError {
			f.warn(warnCode)
		}
		f.finishHeaders(rest, f.headerStorage(), false)
		if f.fatal {
			return
		}
		f.visitor.OnHeaderInput(rest)
		f.visitor.ProcessHeaders()
		f.resolveAndEnterBody(0)
		return
	}

	version, status, reason, fatalCode := parseStatusLine(line)
	if fatalCode != BalsaNoError {
		f.fail(fatalCode)
		return
	}
	f.visitor.OnResponseFirstLine(full, version, status, reason)

	if status >= 100 && status < 200 {
		f.finishHeadersOpts(rest, f.continueStorage(), false, true)
		if f.fatal {
			return
		}
		f.visitor.OnInterimHeaders(rest)
		f.visitor.ProcessHeaders()
		f.visitor.ContinueHeaderDone()
		// re-arm for the follow-on final response on the same connection.
		f.rawHeader = f.rawHeader[:0]
		f.hdrScan.reset()
		f.headerBytes = 0
		return
	}

	f.finishHeaders(rest, f.headerStorage(), false)
	if f.fatal {
		return
	}
	f.visitor.OnHeaderInput(rest)
	f.visitor.ProcessHeaders()
	f.resolveAndEnterBody(status)
}

// finishHeaders drives splitHeaderBlock over a complete header (or
// trailer) region, appending parsed lines into storage (if non-nil, and
// handling obs-fold joins) and dispatching on_header/warn/error events.
func (f *Framer) finishHeaders(block []byte, storage BalsaHeaders, isTrailer bool) {
	f.finishHeadersOpts(block, storage, isTrailer, false)
}

// finishHeadersOpts is finishHeaders with the 1xx-prelude collapse: when
// suppressOnHeader is set, headers are still recorded into storage (and
// warn/error events still fire), but OnHeader itself is not called --
// a continue prelude is only visible through OnInterimHeaders and
// ProcessHeaders, per §4.9's collapsed event sequence for 1xx responses.
func (f *Framer) finishHeadersOpts(block []byte, storage BalsaHeaders, isTrailer, suppressOnHeader bool) {
	opts := headerBlockOpts{
		isTrailer:    isTrailer,
		allowObsFold: f.policy.AllowObsFoldInHeader && !isTrailer,
		invalidChars: f.invalidChars,
	}
	if f.invalidChars != InvalidCharsOff {
		opts.countInvalid = func(c byte) {
			if f.invalidCharCounts == nil {
				f.invalidCharCounts = make(map[byte]int)
			}
			f.invalidCharCounts[c]++
		}
	}
	var lastName, lastValue Span
	var lastTyp HdrType
	haveLast := false
	// OnHeader is held back until the next line shows whether an obs-fold
	// continuation extends the value.
	pending := false
	flush := func() {
		if pending && !suppressOnHeader {
			f.visitor.OnHeader(lastTyp, lastName, lastValue)
		}
		pending = false
	}

	splitHeaderBlock(block, opts, func(ph parsedHeader) bool {
		if ph.fatal != BalsaNoError {
			flush()
			f.fail(ph.fatal)
			return false
		}
		if ph.folded == nil {
			flush()
		}
		if ph.warnCode != BalsaNoError {
			f.warn(ph.warnCode)
		}
		if ph.folded != nil {
			if !haveLast || storage == nil {
				return true
			}
			storage.Append([]byte("\r\n"))
			storage.Append(ph.folded)
			lastValue.Extend(lastValue.EndOffs() + 2 + len(ph.folded))
			f.replaceLastHeader(storage, lastName, lastValue)
			return true
		}
		if ph.name.Empty() && ph.value.Empty() && ph.warnCode != BalsaNoError {
			// HeaderMissingColon/TrailerMissingColon: no name/value to record.
			haveLast = false
			return true
		}
		typ := HdrOther
		var storedName, storedValue Span
		nameBytes := ph.name.Get(block)
		valueBytes := ph.value.Get(block)
		if !isTrailer {
			typ = GetHdrType(nameBytes)
		}
		if storage != nil {
			nOff := storage.Append(nameBytes)
			storedName.Set(nOff, nOff+len(nameBytes))
			vOff := storage.Append(valueBytes)
			storedValue.Set(vOff, vOff+len(valueBytes))
			storage.AddHeader(typ, storedName, storedValue)
		}
		lastTyp, lastName, lastValue = typ, storedName, storedValue
		haveLast = true
		pending = true
		return true
	})
	if !f.fatal {
		flush()
	}
}

// replaceLastHeader updates the most recently recorded header's value
// span after an obs-fold extension; HeaderBuffer records are append-only,
// so this rewrites the last record in place.
func (f *Framer) replaceLastHeader(storage BalsaHeaders, name, value Span) {
	recs := storage.Headers()
	if len(recs) == 0 {
		return
	}
	recs[len(recs)-1].Value = value
}

func (f *Framer) resolveAndEnterBody(status int) {
	mode, cl, code := resolveBodyMode(f.headerStorage(), f.isRequest, f.respToMethod, status, f.policy)
	if code != BalsaNoError {
		f.fail(code)
		return
	}
	f.visitor.HeaderDone(cl, mode == bodyModeChunked)
	switch mode {
	case bodyModeNone:
		f.finishMessage()
	case bodyModeSized:
		f.contentRemaining = uint64(cl)
		f.state = ReadingContent
		if f.contentRemaining == 0 {
			f.finishMessage()
		}
	case bodyModeChunked:
		f.state = ReadingChunkLength
	case bodyModeUntilClose:
		f.state = ReadingUntilClose
	}
}

func (f *Framer) stepContent(data []byte) int {
	n := len(data)
	if uint64(n) > f.contentRemaining {
		n = int(f.contentRemaining)
	}
	if n > 0 {
		chunk := data[:n]
		f.visitor.OnRawBodyInput(chunk)
		f.visitor.OnBodyChunkInput(chunk)
		f.contentRemaining -= uint64(n)
	}
	if f.contentRemaining == 0 {
		f.finishBody()
	}
	if n == 0 {
		return 0
	}
	return n
}

func (f *Framer) stepUntilClose(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	f.visitor.OnRawBodyInput(data)
	f.visitor.OnBodyChunkInput(data)
	return len(data)
}

func (f *Framer) finishBody() {
	f.finishMessage()
}

func (f *Framer) stepChunkLength(data []byte) int {
	for i, b := range data {
		sig, code := f.chunk.stepLength(b)
		switch sig {
		case sigBug:
			f.fail(code)
			return i + 1
		case sigMoreBytes:
			// continue
		case sigOK:
			f.state = ReadingChunkExtension
			return i + 1
		case sigEndOfHeader:
			f.visitor.OnChunkLength(f.chunk.size, Span{})
			f.enterPostChunkLengthState()
			return i + 1
		}
	}
	return len(data)
}

// enterPostChunkLengthState transitions out of a just-parsed chunk-size
// line (with its own terminating CRLF already consumed by stepLength):
// to chunk data for a normal chunk, or to trailer scanning -- reusing the
// header-block scanner, since a last-chunk is immediately followed by
// either a bare terminator (empty trailer, message done) or trailer
// fields ending in the same terminator -- for the last chunk.
func (f *Framer) enterPostChunkLengthState() {
	if f.chunk.isLast {
		f.rawHeader = f.rawHeader[:0]
		f.hdrScan.reset()
		f.headerBytes = 0
		// the chunk-size line's LF counts as the first newline, so a bare
		// CRLF right after it ends an empty trailer.
		f.hdrScan.newlines = 1
		f.state = ReadingLastChunkTerm
		return
	}
	f.state = ReadingChunkData
}

func (f *Framer) stepChunkExtension(data []byte) int {
	for i, b := range data {
		sig := f.chunk.stepExtension(b)
		if sig == sigEndOfHeader {
			var ext Span
			if len(f.chunk.extBuf) > 0 {
				ext.Set(0, len(f.chunk.extBuf))
			}
			f.visitor.OnChunkExtensionInput(f.chunk.extBuf)
			f.visitor.OnChunkLength(f.chunk.size, ext)
			f.chunk.extBuf = nil
			f.enterPostChunkLengthState()
			return i + 1
		}
	}
	return len(data)
}

func (f *Framer) stepChunkData(data []byte) int {
	n := len(data)
	if uint64(n) > f.chunk.remaining {
		n = int(f.chunk.remaining)
	}
	if n > 0 {
		chunk := data[:n]
		f.visitor.OnRawBodyInput(chunk)
		f.visitor.OnBodyChunkInput(chunk)
		f.chunk.remaining -= uint64(n)
	}
	if f.chunk.remaining == 0 {
		f.state = ReadingChunkTerm
		f.chunk.afterCR = false
	}
	if n == 0 {
		return 0
	}
	return n
}

func (f *Framer) stepChunkTerm(data []byte) int {
	for i, b := range data {
		sig, code := f.chunk.stepCRLF(b)
		switch sig {
		case sigBug:
			f.fail(code)
			return i + 1
		case sigOK:
			f.chunk.hexDigits = 0
			f.chunk.sawDigit = false
			f.chunk.size = 0
			f.state = ReadingChunkLength
			return i + 1
		}
	}
	return len(data)
}

// stepLastChunkTerm scans for the terminator following the last chunk's
// "0" line: either immediately (an empty trailer, per §4.6) or after one
// or more trailer fields. Both cases are the same header-terminator scan
// trailer parsing performs, so this simply delegates to it.
func (f *Framer) stepLastChunkTerm(data []byte) int {
	return f.stepTrailer(data)
}

func (f *Framer) stepTrailer(data []byte) int {
	for i, b := range data {
		f.rawHeader = append(f.rawHeader, b)
		f.headerBytes++
		if f.headerBytes > f.maxHeaderLength {
			f.fail(TrailerTooLong)
			return i + 1
		}
		if f.hdrScan.step(b) {
			consumed := i + 1
			f.finishTrailerBlock()
			return consumed
		}
	}
	return len(data)
}

func (f *Framer) finishTrailerBlock() {
	block := f.rawHeader

	// an empty trailer block is just the terminator itself; finishHeaders
	// handles that fine (splitHeaderBlock sees only blank lines).
	f.finishHeaders(block, f.trailerBuf, true)
	if f.fatal {
		return
	}
	f.visitor.OnTrailerInput(block)
	if f.trailerBuf != nil {
		f.visitor.ProcessTrailers()
	}
	f.finishMessage()
}

func (f *Framer) finishMessage() {
	f.state = MessageFullyRead
	f.visitor.MessageDone()
}
