// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "github.com/intuitivelabs/bytescase"

// HdrType is the recognized-header-name enumeration, widened to the
// header names this framer gives special body/framing meaning to.
type HdrType uint8

const (
	HdrOther HdrType = iota
	HdrContentLength
	HdrTransferEncoding
	HdrConnection
	HdrHost
	HdrUpgrade
	HdrTrailer
)

var hdrType2Name = [...][]byte{
	HdrOther:            []byte(""),
	HdrContentLength:     []byte("Content-Length"),
	HdrTransferEncoding:  []byte("Transfer-Encoding"),
	HdrConnection:        []byte("Connection"),
	HdrHost:              []byte("Host"),
	HdrUpgrade:           []byte("Upgrade"),
	HdrTrailer:           []byte("Trailer"),
}

func (t HdrType) String() string {
	if int(t) >= len(hdrType2Name) {
		return "Other"
	}
	if t == HdrOther {
		return "Other"
	}
	return string(hdrType2Name[t])
}

// magic values: after adding/removing header types re-check bucket fill.
const (
	hdrBitsLen   uint = 4
	hdrBitsFChar uint = 3
)

type hdr2Type struct {
	n []byte
	t HdrType
}

var hdrNameLookup [1 << (hdrBitsLen + hdrBitsFChar)][]hdr2Type

func hashHdrName(n []byte) int {
	const (
		mC = (1 << hdrBitsFChar) - 1
		mL = (1 << hdrBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << hdrBitsFChar)
}

func init() {
	for t := HdrContentLength; t <= HdrTrailer; t++ {
		h := hashHdrName(hdrType2Name[t])
		hdrNameLookup[h] = append(hdrNameLookup[h], hdr2Type{hdrType2Name[t], t})
	}
}

// GetHdrType returns the recognized HdrType for a header name span, or
// HdrOther if the name isn't one this framer assigns special meaning to.
func GetHdrType(name []byte) HdrType {
	if len(name) == 0 {
		return HdrOther
	}
	i := hashHdrName(name)
	for _, h := range hdrNameLookup[i] {
		if bytescase.CmpEq(name, h.n) {
			return h.t
		}
	}
	return HdrOther
}

// HeaderLineRecord records one stored header (or trailer) line: the type
// recognized from its name, and spans for the name and (possibly
// obs-folded, already-joined) value, both relative to the owning
// BalsaHeaders' Bytes() buffer.
type HeaderLineRecord struct {
	Type  HdrType
	Name  Span
	Value Span
}

// BalsaHeaders is the storage interface the framer appends parsed header
// (or trailer, or continue-response-header) bytes into, and records
// name/value spans against. SetHeaderBuffer/SetTrailerBuffer/
// SetContinueBuffer each take one; a single HeaderBuffer instance must not
// be shared between two of those roles on the same Framer since both
// track an independent byte buffer and record list.
type BalsaHeaders interface {
	// Append copies p into the buffer and returns the offset it starts at.
	Append(p []byte) int
	// Bytes returns the buffer's current contents; spans from AddHeader
	// are valid offsets into this slice until the next Reset.
	Bytes() []byte
	// AddHeader records a completed header line using spans already
	// relative to Bytes().
	AddHeader(typ HdrType, name, value Span)
	// Headers returns every header recorded since the last Reset, in
	// original order.
	Headers() []HeaderLineRecord
	// Lookup returns the first (and, per RFC 7230, normally only) recorded
	// header of the given type.
	Lookup(typ HdrType) (HeaderLineRecord, bool)
	// Reset clears the buffer and all recorded headers for reuse.
	Reset()
}

// HeaderBuffer is the framer's default BalsaHeaders implementation: an
// append-only byte slice plus a parallel slice of HeaderLineRecord,
// with names/values stored as spans into the shared buffer.
type HeaderBuffer struct {
	buf     []byte
	records []HeaderLineRecord
}

// NewHeaderBuffer returns a HeaderBuffer with storage preallocated to
// capacity bytes (0 is fine; it just grows as needed).
func NewHeaderBuffer(capacity int) *HeaderBuffer {
	return &HeaderBuffer{buf: make([]byte, 0, capacity)}
}

func (h *HeaderBuffer) Append(p []byte) int {
	start := len(h.buf)
	h.buf = append(h.buf, p...)
	return start
}

func (h *HeaderBuffer) Bytes() []byte { return h.buf }

func (h *HeaderBuffer) AddHeader(typ HdrType, name, value Span) {
	h.records = append(h.records, HeaderLineRecord{Type: typ, Name: name, Value: value})
}

func (h *HeaderBuffer) Headers() []HeaderLineRecord { return h.records }

func (h *HeaderBuffer) Lookup(typ HdrType) (HeaderLineRecord, bool) {
	for _, r := range h.records {
		if r.Type == typ {
			return r, true
		}
	}
	return HeaderLineRecord{}, false
}

func (h *HeaderBuffer) Reset() {
	h.buf = h.buf[:0]
	h.records = h.records[:0]
}

var _ BalsaHeaders = (*HeaderBuffer)(nil)
