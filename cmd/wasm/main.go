//go:build js && wasm
// +build js,wasm

package main

import (
	"errors"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/AcousticMatch/pkg/acoustid"
	"github.com/himanishpuri/AcousticMatch/pkg/acoustid/fingerprint"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidShape
	ErrorNullElement
)

// toValues mirrors a JS array as the generic values acoustid.FromValues
// validates. Typed arrays are accepted as well.
func toValues(arr js.Value) ([]any, error) {
	if arr.Type() != js.TypeObject || arr.Get("length").Type() != js.TypeNumber {
		return nil, fmt.Errorf("fingerprint must be an Array, Int32Array or Uint32Array: %w", acoustid.ErrInvalidShape)
	}

	values := make([]any, arr.Length())
	for i := range values {
		v := arr.Index(i)
		switch v.Type() {
		case js.TypeNull, js.TypeUndefined:
			values[i] = nil
		case js.TypeNumber:
			values[i] = v.Float()
		case js.TypeObject:
			values[i] = []any{}
		default:
			values[i] = v.String()
		}
	}
	return values, nil
}

func toFingerprint(v js.Value) (fingerprint.Fingerprint, error) {
	if v.IsNull() || v.IsUndefined() {
		return fingerprint.Fingerprint{}, nil
	}
	values, err := toValues(v)
	if err != nil {
		return nil, err
	}
	return acoustid.FromValues(values)
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, acoustid.ErrInvalidShape):
		return ErrorInvalidShape
	case errors.Is(err, acoustid.ErrNullElement):
		return ErrorNullElement
	default:
		return ErrorInvalidArgs
	}
}

// fingerprintArgs converts the first n arguments to fingerprints.
func fingerprintArgs(args []js.Value, n int) ([]fingerprint.Fingerprint, js.Value, bool) {
	if len(args) < n {
		return nil, makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Expected %d fingerprint arguments", n)), false
	}
	fps := make([]fingerprint.Fingerprint, n)
	for i := range fps {
		fp, err := toFingerprint(args[i])
		if err != nil {
			return nil, makeErrorResponse(errorCode(err), fmt.Sprintf("argument %d: %v", i+1, err)), false
		}
		fps[i] = fp
	}
	return fps, js.Undefined(), true
}

// Scores two fingerprints with the coarse comparison.
// Returns: {error: number, data: number | string}
func compare(this js.Value, args []js.Value) interface{} {
	fps, errResp, ok := fingerprintArgs(args, 2)
	if !ok {
		return errResp
	}
	return makeResponse(fingerprint.Compare(fps[0], fps[1]))
}

// Scores two fingerprints with the aligned comparison. An optional third
// argument bounds the offset; it defaults to 0 (unbounded).
// Returns: {error: number, data: number | string}
func compareAligned(this js.Value, args []js.Value) interface{} {
	fps, errResp, ok := fingerprintArgs(args, 2)
	if !ok {
		return errResp
	}

	maxOffset := 0
	if len(args) > 2 && !args[2].IsUndefined() {
		if args[2].Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, "maxOffset must be a number")
		}
		maxOffset = args[2].Int()
	}
	return makeResponse(fingerprint.CompareAligned(fps[0], fps[1], maxOffset))
}

// Extracts the query fingerprint.
// Returns: {error: number, data: array | string}
func extractQuery(this js.Value, args []js.Value) interface{} {
	fps, errResp, ok := fingerprintArgs(args, 1)
	if !ok {
		return errResp
	}

	q := fingerprint.ExtractQuery(fps[0])
	arr := js.Global().Get("Array").New(len(q))
	for i, x := range q {
		arr.SetIndex(i, x)
	}
	return makeResponse(arr)
}

func makeResponse(data any) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, format string, args ...any) {
		if !console.IsUndefined() {
			console.Call(method, fmt.Sprintf(format, args...))
		}
	}

	done := make(chan struct{})

	js.Global().Set("acoustidCompare", js.FuncOf(compare))
	js.Global().Set("acoustidCompare2", js.FuncOf(compareAligned))
	js.Global().Set("acoustidExtractQuery", js.FuncOf(extractQuery))
	logf("log", "acoustid functions registered")

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
	} else {
		logf("warn", "window is undefined, not dispatching wasmReady")
	}

	<-done
}
