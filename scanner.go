// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// Byte classification and low-level scanning helpers shared by the
// first-line, header, and chunk parsers. Everything here is index-based
// (offsets into a caller-owned buffer) and allocation free, operating
// directly on buf[offs:] rather than slicing off copies.

// isTChar reports whether c is a valid RFC 7230 "tchar" octet (allowed in a
// header name or an unquoted token).
func isTChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isLWSByte reports whether c is linear whitespace (space or horizontal tab).
func isLWSByte(c byte) bool {
	return c == ' ' || c == '\t'
}

// isCRLF reports whether c is a CR or LF octet.
func isCRLF(c byte) bool {
	return c == '\r' || c == '\n'
}

// isHexDigit reports whether c is an ASCII hex digit.
func isHexDigit(c byte) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	}
	return false
}

// hexVal returns the numeric value of a hex digit; the caller must have
// already validated c with isHexDigit.
func hexVal(c byte) uint64 {
	switch {
	case c >= '0' && c <= '9':
		return uint64(c - '0')
	case c >= 'a' && c <= 'f':
		return uint64(c-'a') + 10
	default: // 'A'-'F'
		return uint64(c-'A') + 10
	}
}

// isDigit reports whether c is an ASCII decimal digit.
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isInvalidValueOctet reports whether c violates the header/trailer value
// octet policy (RFC 7230 §3.2 field-content, minus the explicitly allowed
// control bytes TAB/CR/LF).
func isInvalidValueOctet(c byte) bool {
	if c == '\t' || c == '\r' || c == '\n' {
		return false
	}
	return c <= 0x1f || c == 0x7f
}

// skipToken returns the index of the first byte at or after i that is not
// a tchar, or len(buf) if the token runs to the end of the buffer.
func skipToken(buf []byte, i int) int {
	for i < len(buf) && isTChar(buf[i]) {
		i++
	}
	return i
}

// skipSpaceTab returns the index of the first byte at or after i that is
// not a space or tab, or len(buf).
func skipSpaceTab(buf []byte, i int) int {
	for i < len(buf) && isLWSByte(buf[i]) {
		i++
	}
	return i
}

// findWSOrLineEnd returns the index of the first space, tab, CR, or LF at or
// after i, or len(buf) if none is found before the end of the buffer.
func findWSOrLineEnd(buf []byte, i int) int {
	for i < len(buf) {
		switch buf[i] {
		case ' ', '\t', '\r', '\n':
			return i
		}
		i++
	}
	return i
}

// trimTrailingLWS returns the largest end <= in-range such that
// buf[start:end] has no trailing space/tab.
func trimTrailingLWS(buf []byte, start, end int) int {
	for end > start && isLWSByte(buf[end-1]) {
		end--
	}
	return end
}

// findLineEnd scans for the next line terminator (LF, optionally preceded
// by CR) starting at i. On success it returns the offset of the first byte
// of the terminator (CR if present, else LF), the total terminator length
// (1 or 2), and sigOK. If no LF is found in buf[i:], it returns
// sigMoreBytes.
func findLineEnd(buf []byte, i int) (lineEnd, termLen int, sig scanSignal) {
	for j := i; j < len(buf); j++ {
		if buf[j] == '\n' {
			if j > i && buf[j-1] == '\r' {
				return j - 1, 2, sigOK
			}
			return j, 1, sigOK
		}
	}
	return i, 0, sigMoreBytes
}

// headerTerminatorScan tracks consecutive line terminators while bytes are
// fed to it one at a time, recognizing the end-of-header-block marker
// (two line terminators in a row: "\r\n\r\n", "\n\n", "\r\n\n", "\n\r\n").
// This implements the §4.2 "four-byte terminator window" as a simple
// newline counter: a CR never resets or completes the count, an LF always
// completes one newline, and any other byte resets the count to zero.
type headerTerminatorScan struct {
	newlines int
}

// step feeds one byte to the scanner and reports whether a two-terminator
// sequence has just been completed (i.e. c is the final byte of the header
// block).
func (h *headerTerminatorScan) step(c byte) bool {
	switch c {
	case '\r':
		// neither resets nor completes a newline
	case '\n':
		h.newlines++
		if h.newlines >= 2 {
			return true
		}
	default:
		h.newlines = 0
	}
	return false
}

// reset clears the scanner's state for a fresh header block.
func (h *headerTerminatorScan) reset() {
	h.newlines = 0
}
