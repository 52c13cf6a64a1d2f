// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// parsedHeader is one header (or trailer) line, as produced by
// splitHeaderBlock: spans are relative to the block passed in. An obs-fold
// continuation line is not joined here; it is emitted as its own record
// whose folded field holds the continuation bytes (a subslice of block,
// leading LWS removed), and the caller joins it onto the previous value.
type parsedHeader struct {
	name     Span // relative to block, empty on a HeaderMissingColon line
	value    Span // relative to block, empty when folded is non-nil
	folded   []byte
	warnCode ErrorCode
	fatal    ErrorCode
}

// headerBlockOpts controls the handful of differences between header and
// trailer parsing (§4.4 vs §4.7).
type headerBlockOpts struct {
	isTrailer    bool
	allowObsFold bool
	invalidChars InvalidCharPolicy
	// countInvalid, if non-nil, is called once per offending octet found
	// under the Warn/Fatal invalid-char policies (§4.4 point 4's
	// per-octet counter). Left nil when the caller has no use for it.
	countInvalid func(byte)
}

// splitHeaderBlock walks a fully-buffered header (or trailer) block --
// everything after the end of the start-line, terminator included (blank
// lines are skipped) -- and yields one parsedHeader per line, emitting
// obs-fold continuations as separate folded records and validating
// name/value octets per §4.4/§4.7. It calls emit for each logical line in order; emit returning
// false stops iteration early (used once a fatal error is produced).
func splitHeaderBlock(block []byte, opts headerBlockOpts, emit func(parsedHeader) bool) {
	i := 0
	first := true
	for i < len(block) {
		lineEnd, termLen, sig := findLineEnd(block, i)
		if sig != sigOK {
			// fully-buffered block always ends cleanly; treat a dangling
			// partial final line (no terminator) as running to block end.
			lineEnd, termLen = len(block), 0
		}
		lineStart := i
		i = lineEnd + termLen

		if lineEnd == lineStart {
			// blank line: the block's own terminator (the framer passes
			// it along) or an empty header region.
			continue
		}

		if isLWSByte(block[lineStart]) {
			if first || !opts.allowObsFold || opts.isTrailer {
				code := InvalidHeaderNameCharacter
				if opts.isTrailer {
					code = InvalidTrailerNameCharacter
				}
				if !emit(parsedHeader{fatal: code}) {
					return
				}
				continue
			}
			// obs-fold: joined by the caller (Framer.finishHeadersOpts),
			// since joining requires access to the previous record. Signal it
			// with a name-less record carrying the raw continuation as
			// "folded" value for the caller to append.
			contStart := lineStart
			for contStart < lineEnd && isLWSByte(block[contStart]) {
				contStart++
			}
			cont := block[contStart:lineEnd]
			contWarn := ErrorCode(BalsaNoError)
			contAlreadyEmitted := false
			if opts.invalidChars != InvalidCharsOff {
				for _, c := range cont {
					if isInvalidValueOctet(c) {
						if opts.countInvalid != nil {
							opts.countInvalid(c)
						}
						if opts.invalidChars == InvalidCharsFatal {
							if !emit(parsedHeader{fatal: InvalidHeaderCharacter}) {
								return
							}
							contAlreadyEmitted = true
							break
						}
						contWarn = InvalidHeaderCharacter
					}
				}
			}
			if contAlreadyEmitted {
				continue
			}
			if !emit(parsedHeader{folded: cont, warnCode: contWarn}) {
				return
			}
			continue
		}
		first = false

		colon := -1
		for j := lineStart; j < lineEnd; j++ {
			if block[j] == ':' {
				colon = j
				break
			}
		}
		if colon < 0 {
			code := HeaderMissingColon
			if opts.isTrailer {
				code = TrailerMissingColon
			}
			if !emit(parsedHeader{warnCode: code}) {
				return
			}
			continue
		}
		if colon == lineStart {
			code := InvalidHeaderFormat
			if opts.isTrailer {
				code = InvalidTrailerFormat
			}
			if !emit(parsedHeader{fatal: code}) {
				return
			}
			continue
		}

		var name Span
		name.Set(lineStart, colon)
		nameCode := ErrorCode(BalsaNoError)
		for _, c := range block[lineStart:colon] {
			if !isTChar(c) {
				nameCode = InvalidHeaderNameCharacter
				if opts.isTrailer {
					nameCode = InvalidTrailerNameCharacter
				}
				break
			}
		}
		if nameCode != BalsaNoError {
			if !emit(parsedHeader{fatal: nameCode}) {
				return
			}
			continue
		}

		vStart := colon + 1
		vStart = skipSpaceTab(block, min(vStart, lineEnd))
		vEnd := trimTrailingLWS(block, vStart, lineEnd)

		warnCode := ErrorCode(BalsaNoError)
		alreadyEmitted := false
		if opts.invalidChars != InvalidCharsOff {
			for _, c := range block[vStart:vEnd] {
				if isInvalidValueOctet(c) {
					if opts.countInvalid != nil {
						opts.countInvalid(c)
					}
					if opts.invalidChars == InvalidCharsFatal {
						if !emit(parsedHeader{fatal: InvalidHeaderCharacter}) {
							return
						}
						alreadyEmitted = true
						break
					}
					warnCode = InvalidHeaderCharacter
				}
			}
		}
		if alreadyEmitted {
			continue
		}

		var value Span
		value.Set(vStart, vEnd)
		if !emit(parsedHeader{name: name, value: value, warnCode: warnCode}) {
			return
		}
	}
}
