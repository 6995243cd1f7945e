package httpcore

import "errors"

// errHeadTooLarge indicates a prepared response head would not fit in
// ResponseHeadCap bytes. Callers must map this to a 500 with close, per
// §4.2 of SPEC_FULL.md.
var errHeadTooLarge = errors.New("httpcore: response head exceeds capacity")

// errBodyTooLarge indicates a prepared in-memory body would not fit in
// ResponseBodyCap bytes.
var errBodyTooLarge = errors.New("httpcore: response body exceeds capacity")
