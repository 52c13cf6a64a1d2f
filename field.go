// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package balsa implements an incremental, push-style HTTP/1.x message
// framer: it consumes an arbitrary byte stream belonging to a request or a
// response and delivers structured parse events through a Visitor.
package balsa

// OffsT is the type used for offsets and lengths inside a parsed buffer.
type OffsT uint32

// Span refers to a [Offs, Offs+Len) range inside some byte buffer (the
// header/trailer/continue storage the framer was configured with). Spans
// are only valid as long as the buffer they point into is not reset.
type Span struct {
	Offs OffsT
	Len  OffsT
}

// Set sets a Span to point to [start:end). end is the offset of the first
// byte after the end of the range.
func (s *Span) Set(start, end int) {
	s.Offs = OffsT(start)
	s.Len = OffsT(end - start)
	if end < start {
		panic("balsa: invalid span range")
	}
}

// Reset sets a Span to the empty value.
func (s *Span) Reset() {
	s.Offs = 0
	s.Len = 0
}

// Extend grows a Span's end to newEnd, keeping Offs unchanged.
func (s *Span) Extend(newEnd int) {
	if newEnd < int(s.Offs) {
		panic("balsa: invalid span end offset")
	}
	s.Len = OffsT(newEnd) - s.Offs
}

// Empty returns true if the Span has zero length.
func (s Span) Empty() bool {
	return s.Len == 0
}

// EndOffs returns the offset immediately after the end of the Span.
func (s Span) EndOffs() int {
	return int(s.Offs) + int(s.Len)
}

// OffsIn returns true if offs lies inside the Span.
func (s Span) OffsIn(offs int) bool {
	return offs >= int(s.Offs) && offs < s.EndOffs()
}

// Get returns the byte slice inside buf corresponding to the Span.
func (s Span) Get(buf []byte) []byte {
	return buf[s.Offs : s.Offs+s.Len]
}
