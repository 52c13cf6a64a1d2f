// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command balsacat feeds a file through a Framer in fixed-size slices and
// prints the resulting event trace, one line per event. It exists mainly
// to exercise the framer against captured traffic from the command line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/intuitivelabs/balsa"
)

func main() {
	isRequest := flag.Bool("request", false, "parse input as a request instead of a response")
	chunkSize := flag.Int("chunk", 4096, "number of bytes to feed process_input at a time")
	maxHeader := flag.Uint64("max-header", 0, "max_header_length override (0: framer default)")
	trailers := flag.Bool("trailers", true, "attach a trailer buffer")
	continueBuf := flag.Bool("continue-headers", true, "attach a continue-header buffer for 1xx preludes")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: balsacat [flags] <file>")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "balsacat:", err)
		os.Exit(1)
	}
	defer f.Close()

	fr := balsa.New()
	fr.SetIsRequest(*isRequest)
	fr.SetHeaderBuffer(balsa.NewHeaderBuffer(0))
	if *trailers {
		fr.SetTrailerBuffer(balsa.NewHeaderBuffer(0))
	}
	if *continueBuf {
		fr.SetContinueBuffer(balsa.NewHeaderBuffer(0))
	}
	if *maxHeader != 0 {
		fr.SetMaxHeaderLength(*maxHeader)
	}
	fr.SetVisitor(&traceVisitor{w: os.Stdout})

	r := bufio.NewReader(f)
	buf := make([]byte, *chunkSize)
	total := 0
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			data := buf[:n]
			for len(data) > 0 {
				consumed := fr.ProcessInput(data)
				total += consumed
				data = data[consumed:]
				if fr.IsError() {
					fmt.Printf("error: %s (consumed %d bytes total)\n", fr.ErrorCode(), total)
					os.Exit(1)
				}
				if consumed == 0 {
					break
				}
			}
		}
		if readErr != nil {
			break
		}
	}
	if fr.ParseState() == balsa.ReadingUntilClose {
		fr.SignalConnectionClosed()
	}
	fmt.Printf("final state: %s, %d bytes consumed\n", fr.ParseState(), total)
}

// traceVisitor embeds balsa.NopVisitor and overrides most events with a
// one-line printer, for a readable trace of what the framer saw.
// OnHeader, OnHeaderInput, OnRawBodyInput, OnChunkExtensionInput and
// OnTrailerInput keep NopVisitor's no-op.
type traceVisitor struct {
	balsa.NopVisitor
	w io.Writer
}

func (t *traceVisitor) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format, args...)
}

func (t *traceVisitor) OnRequestFirstLine(full balsa.Span, method balsa.HTTPMethod, methodTok, requestURI, version balsa.Span) {
	t.printf("request-line: method=%s\n", method)
}

func (t *traceVisitor) OnResponseFirstLine(full balsa.Span, version balsa.Span, statusCode int, reason balsa.Span) {
	t.printf("status-line: status=%d\n", statusCode)
}

func (t *traceVisitor) ContinueHeaderDone() {
	t.printf("continue-header-done\n")
}

func (t *traceVisitor) OnInterimHeaders(chunk []byte) {
	t.printf("interim-headers: %d bytes\n", len(chunk))
}

func (t *traceVisitor) ProcessHeaders() {
	t.printf("process-headers\n")
}

func (t *traceVisitor) HeaderDone(bodyLen int64, chunked bool) {
	t.printf("header-done: body_len=%d chunked=%t\n", bodyLen, chunked)
}

func (t *traceVisitor) OnChunkLength(size uint64, extension balsa.Span) {
	t.printf("chunk-length: %d\n", size)
}

func (t *traceVisitor) OnBodyChunkInput(chunk []byte) {
	t.printf("body-chunk: %d bytes\n", len(chunk))
}

func (t *traceVisitor) ProcessTrailers() {
	t.printf("process-trailers\n")
}

func (t *traceVisitor) MessageDone() {
	t.printf("message-done\n")
}

func (t *traceVisitor) HandleWarning(code balsa.ErrorCode, offset int) {
	t.printf("warning: %s\n", code)
}

func (t *traceVisitor) HandleError(code balsa.ErrorCode, offset int) {
	t.printf("error: %s\n", code)
}
