// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

import "testing"

func TestIsTChar(t *testing.T) {
	for _, c := range []byte("abcXYZ019!#$%&'*+-.^_`|~") {
		if !isTChar(c) {
			t.Errorf("isTChar(%q) = false, want true", c)
		}
	}
	for _, c := range []byte(" \t\r\n:;,\"(){}[]@/\\") {
		if isTChar(c) {
			t.Errorf("isTChar(%q) = true, want false", c)
		}
	}
}

func TestFindLineEnd(t *testing.T) {
	cases := []struct {
		buf      string
		i        int
		wantEnd  int
		wantTerm int
		wantSig  scanSignal
	}{
		{"abc\r\ndef", 0, 3, 2, sigOK},
		{"abc\ndef", 0, 3, 1, sigOK},
		{"abc", 0, 0, 0, sigMoreBytes},
		{"\r\n", 0, 0, 2, sigOK},
		{"\n", 0, 0, 1, sigOK},
	}
	for _, c := range cases {
		end, term, sig := findLineEnd([]byte(c.buf), c.i)
		if end != c.wantEnd || term != c.wantTerm || sig != c.wantSig {
			t.Errorf("findLineEnd(%q, %d) = (%d, %d, %v), want (%d, %d, %v)",
				c.buf, c.i, end, term, sig, c.wantEnd, c.wantTerm, c.wantSig)
		}
	}
}

func TestHeaderTerminatorScan(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"crlfcrlf", "X: 1\r\n\r\n"},
		{"lflf", "X: 1\n\n"},
		{"crlflf", "X: 1\r\n\n"},
		{"lfcrlf", "X: 1\n\r\n"},
	}
	for _, c := range cases {
		var h headerTerminatorScan
		done := -1
		for i, b := range []byte(c.input) {
			if h.step(b) {
				done = i
				break
			}
		}
		if done != len(c.input)-1 {
			t.Errorf("%s: terminator detected at %d, want %d", c.name, done, len(c.input)-1)
		}
	}
}

func TestIsInvalidValueOctet(t *testing.T) {
	if isInvalidValueOctet('\t') || isInvalidValueOctet('\r') || isInvalidValueOctet('\n') {
		t.Error("TAB/CR/LF must be tolerated in header values")
	}
	if !isInvalidValueOctet(0x00) || !isInvalidValueOctet(0x1f) || !isInvalidValueOctet(0x7f) {
		t.Error("control bytes other than TAB/CR/LF must be invalid")
	}
	if isInvalidValueOctet('a') || isInvalidValueOctet(' ') {
		t.Error("ordinary printable bytes must be valid")
	}
}
