//go:build js
// +build js

// Package web adapts the surface to the browser: the Web Audio device, the
// decodeAudioData decoder and DOM input wiring.
package web

import "github.com/gopherjs/gopherjs/js"

// await blocks the calling goroutine until a promise settles. Never call it
// from inside a JS callback; spawn a goroutine first.
func await(promise *js.Object) (*js.Object, error) {
	type result struct {
		v   *js.Object
		err error
	}
	ch := make(chan result, 1)
	promise.Call("then",
		func(v *js.Object) { ch <- result{v: v} },
		func(e *js.Object) { ch <- result{err: &js.Error{Object: e}} },
	)
	r := <-ch
	return r.v, r.err
}

func defined(o *js.Object) bool {
	return o != nil && o != js.Undefined
}

// bytesOf copies a Uint8Array into a Go slice.
func bytesOf(arr *js.Object) []byte {
	n := arr.Length()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(arr.Index(i).Int())
	}
	return out
}
