// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package balsa

// InvalidCharPolicy controls how the header/trailer value parser reacts to
// octets outside the allowed range (see §4.4 point 4).
type InvalidCharPolicy uint8

const (
	// InvalidCharsOff disables octet scanning entirely.
	InvalidCharsOff InvalidCharPolicy = iota
	// InvalidCharsWarn counts offending octets and emits a single warning.
	InvalidCharsWarn
	// InvalidCharsFatal halts parsing on the first offending octet.
	InvalidCharsFatal
)

func (p InvalidCharPolicy) String() string {
	switch p {
	case InvalidCharsOff:
		return "Off"
	case InvalidCharsWarn:
		return "Warn"
	case InvalidCharsFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Policy groups the HTTP validation policy knobs a caller can tune via
// Framer.SetHTTPValidationPolicy.
type Policy struct {
	// AcceptUnknownTE, if true, treats an unrecognized Transfer-Encoding
	// token as identity instead of failing with UnknownTransferEncoding.
	AcceptUnknownTE bool
	// RequireContentLength, if true, fails a body-capable request with
	// neither Content-Length nor chunked Transfer-Encoding with
	// RequiredBodyButNoContentLength instead of framing a zero-length body.
	RequireContentLength bool
	// AllowObsFoldInHeader, if false, treats a continuation line (one
	// starting with SP/HTAB) as InvalidHeaderNameCharacter instead of
	// folding it onto the previous header's value.
	AllowObsFoldInHeader bool
}

// DefaultPolicy is lenient by default: obs-fold accepted, unknown TE
// rejected, no body required on requests lacking explicit framing.
func DefaultPolicy() Policy {
	return Policy{
		AcceptUnknownTE:      false,
		RequireContentLength: false,
		AllowObsFoldInHeader: true,
	}
}
