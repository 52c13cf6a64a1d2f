// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import (
	"strings"
	"testing"
)

func newTestFramer(isRequest bool) (*Framer, *recorder) {
	fr := New()
	fr.SetIsRequest(isRequest)
	fr.SetHeaderBuffer(NewHeaderBuffer(0))
	fr.SetTrailerBuffer(NewHeaderBuffer(0))
	fr.SetContinueBuffer(NewHeaderBuffer(0))
	rec := &recorder{}
	fr.SetVisitor(rec)
	return fr, rec
}

// Scenario 1: trivial request.
func TestScenarioTrivialRequest(t *testing.T) {
	fr, rec := newTestFramer(true)
	input := []byte("GET /foobar HTTP/1.0\r\n\n")
	n := fr.ProcessInput(input)
	if n != len(input) {
		t.Fatalf("consumed %d, want %d", n, len(input))
	}
	if fr.IsError() {
		t.Fatalf("unexpected error: %v", fr.ErrorCode())
	}
	if !fr.MessageFullyRead() {
		t.Fatalf("state = %v, want MessageFullyRead", fr.ParseState())
	}
	if rec.log[0] != "request-line GET" {
		t.Errorf("first event = %q, want request-line GET", rec.log[0])
	}
	if rec.log[len(rec.log)-1] != "message-done" {
		t.Errorf("last event = %q, want message-done", rec.log[len(rec.log)-1])
	}
	foundProcessHeaders := false
	for _, e := range rec.log {
		if e == "process-headers" {
			foundProcessHeaders = true
		}
		if strings.HasPrefix(e, "header ") {
			t.Errorf("unexpected on_header event for a headerless request: %q", e)
		}
	}
	if !foundProcessHeaders {
		t.Error("process-headers event missing")
	}
}

// Scenario 2: chunked body with a trailer.
func TestScenarioChunkedWithTrailer(t *testing.T) {
	fr, rec := newTestFramer(true)
	head := "GET / HTTP/1.1\r\nConnection: close\r\ntransfer-encoding: chunked\r\n\r\n"
	body := "3\r\n123\r\n0\r\n"
	trailer := "crass: monkeys\r\nfunky: monkeys\r\n\r\n"
	input := []byte(head + body + trailer)

	n := fr.ProcessInput(input)
	if fr.IsError() {
		t.Fatalf("unexpected error: %v", fr.ErrorCode())
	}
	if n != len(input) {
		t.Fatalf("consumed %d, want %d", n, len(input))
	}
	if !fr.MessageFullyRead() {
		t.Fatalf("state = %v, want MessageFullyRead", fr.ParseState())
	}

	wantSeq := []string{"chunk-length 3", `body-chunk "123"`, "chunk-length 0", "process-trailers", "message-done"}
	var gotSeq []string
	for _, e := range rec.log {
		for _, w := range wantSeq {
			if e == w {
				gotSeq = append(gotSeq, e)
			}
		}
	}
	if len(gotSeq) != len(wantSeq) {
		t.Fatalf("filtered event sequence = %v, want %v (full log: %v)", gotSeq, wantSeq, rec.log)
	}
	for i := range wantSeq {
		if gotSeq[i] != wantSeq[i] {
			t.Errorf("event %d = %q, want %q", i, gotSeq[i], wantSeq[i])
		}
	}

	recs := fr.trailerBuf.Headers()
	if len(recs) != 2 {
		t.Fatalf("got %d trailer records, want 2", len(recs))
	}
	buf := fr.trailerBuf.Bytes()
	if string(recs[0].Name.Get(buf)) != "crass" || string(recs[0].Value.Get(buf)) != "monkeys" {
		t.Errorf("trailer 0 = (%q, %q)", recs[0].Name.Get(buf), recs[0].Value.Get(buf))
	}
	if string(recs[1].Name.Get(buf)) != "funky" || string(recs[1].Value.Get(buf)) != "monkeys" {
		t.Errorf("trailer 1 = (%q, %q)", recs[1].Name.Get(buf), recs[1].Value.Get(buf))
	}
}

// Scenario 3: multiple Content-Length headers conflict, but an identical
// duplicate is tolerated.
func TestScenarioMultipleContentLengthConflict(t *testing.T) {
	fr, _ := newTestFramer(false)
	input := []byte("HTTP/1.1 200 OK\r\ncontent-length: 12\r\ncontent-length: 14\r\n\r\n")
	fr.ProcessInput(input)
	if !fr.IsError() || fr.ErrorCode() != MultipleContentLengthKeys {
		t.Fatalf("error=%v code=%v, want fatal MultipleContentLengthKeys", fr.IsError(), fr.ErrorCode())
	}

	fr2, _ := newTestFramer(false)
	input2 := []byte("HTTP/1.1 200 OK\r\ncontent-length: 12\r\ncontent-length: 12\r\n\r\n")
	fr2.ProcessInput(input2)
	if fr2.IsError() {
		t.Fatalf("identical duplicate Content-Length must be tolerated, got error %v", fr2.ErrorCode())
	}
	if fr2.ParseState() != ReadingContent {
		t.Fatalf("state = %v, want ReadingContent", fr2.ParseState())
	}
}

// Scenario 4: chunk-length overflow, exercised through the full Framer.
func TestScenarioChunkLengthOverflow(t *testing.T) {
	fr, _ := newTestFramer(true)
	head := "GET / HTTP/1.1\r\ntransfer-encoding: chunked\r\n\r\n"
	chunkHeader := strings.Repeat("F", 48) + "\r\n"
	input := []byte(head + chunkHeader)
	fr.ProcessInput(input)
	if !fr.IsError() || fr.ErrorCode() != ChunkLengthOverflow {
		t.Fatalf("error=%v code=%v, want fatal ChunkLengthOverflow", fr.IsError(), fr.ErrorCode())
	}
}

// Scenario 5: HTTP/0.9 style request (no version token).
func TestScenarioHTTP09Request(t *testing.T) {
	fr, rec := newTestFramer(true)
	input := []byte("GET /index.html\r\n")
	n := fr.ProcessInput(input)
	if fr.IsError() {
		t.Fatalf("HTTP/0.9 request must only warn, got fatal %v", fr.ErrorCode())
	}
	if n != len(input) {
		t.Fatalf("consumed %d, want %d", n, len(input))
	}
	if fr.ErrorCode() != FailedToFindWsAfterRequestRequestUri {
		t.Errorf("error_code = %v, want FailedToFindWsAfterRequestRequestUri", fr.ErrorCode())
	}
	found := false
	for _, e := range rec.log {
		if e == "warning FailedToFindWsAfterRequestRequestUri" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a FailedToFindWsAfterRequestRequestUri warning event, log=%v", rec.log)
	}
}

// Scenario 6: a 100-continue prelude followed by the final response.
func TestScenarioContinueThenFinalResponse(t *testing.T) {
	fr, rec := newTestFramer(false)
	input := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\ncontent-length: 0\r\n\r\n")
	n := fr.ProcessInput(input)
	if fr.IsError() {
		t.Fatalf("unexpected error: %v", fr.ErrorCode())
	}
	if n != len(input) {
		t.Fatalf("consumed %d, want %d", n, len(input))
	}
	if !fr.MessageFullyRead() {
		t.Fatalf("state = %v, want MessageFullyRead", fr.ParseState())
	}
	wantSeq := []string{"status-line 100", "continue-header-done", "status-line 200", "message-done"}
	var gotSeq []string
	for _, e := range rec.log {
		for _, w := range wantSeq {
			if e == w {
				gotSeq = append(gotSeq, e)
			}
		}
	}
	if len(gotSeq) != len(wantSeq) {
		t.Fatalf("filtered sequence = %v, want %v (full log %v)", gotSeq, wantSeq, rec.log)
	}
	for i := range wantSeq {
		if gotSeq[i] != wantSeq[i] {
			t.Errorf("event %d = %q, want %q", i, gotSeq[i], wantSeq[i])
		}
	}
}

// TestContinueWithoutBufferAttached checks that a 1xx prelude is still
// recognized as an interim prelude (not a complete message) even when the
// caller never attached a continue buffer: buffer attachment only
// suppresses what is retained, not the structural parse.
func TestContinueWithoutBufferAttached(t *testing.T) {
	fr := New()
	fr.SetIsRequest(false)
	fr.SetHeaderBuffer(NewHeaderBuffer(0))
	rec := &recorder{}
	fr.SetVisitor(rec)

	input := []byte("HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\ncontent-length: 0\r\n\r\n")
	n := fr.ProcessInput(input)
	if fr.IsError() {
		t.Fatalf("unexpected error: %v", fr.ErrorCode())
	}
	if n != len(input) {
		t.Fatalf("consumed %d, want %d", n, len(input))
	}
	if !fr.MessageFullyRead() {
		t.Fatalf("state = %v, want MessageFullyRead", fr.ParseState())
	}
	sawContinueDone := false
	for _, e := range rec.log {
		if e == "continue-header-done" {
			sawContinueDone = true
		}
	}
	if !sawContinueDone {
		t.Errorf("expected continue-header-done even with no continue buffer attached, log=%v", rec.log)
	}
}

// TestInvalidCharCountsTally checks that the per-octet invalid-char
// frequency map is nil when the policy is off, and tallies each offending
// byte value correctly under the Warn policy.
func TestInvalidCharCountsTally(t *testing.T) {
	fr, _ := newTestFramer(false)
	input := []byte("HTTP/1.1 200 OK\r\ncontent-length: 0\r\n\r\n")
	fr.ProcessInput(input)
	if counts := fr.InvalidCharCounts(); counts != nil {
		t.Fatalf("policy off: counts = %v, want nil", counts)
	}

	fr2, _ := newTestFramer(false)
	fr2.SetInvalidCharsLevel(InvalidCharsWarn)
	input2 := []byte("HTTP/1.1 200 OK\r\nx-bad: a\x01b\x01c\x02\r\n\r\n")
	n := fr2.ProcessInput(input2)
	if fr2.IsError() {
		t.Fatalf("unexpected error under Warn policy: %v", fr2.ErrorCode())
	}
	if n != len(input2) {
		t.Fatalf("consumed %d, want %d", n, len(input2))
	}
	counts := fr2.InvalidCharCounts()
	if counts[0x01] != 2 {
		t.Errorf("counts[0x01] = %d, want 2", counts[0x01])
	}
	if counts[0x02] != 1 {
		t.Errorf("counts[0x02] = %d, want 1", counts[0x02])
	}
}
