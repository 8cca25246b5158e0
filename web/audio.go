//go:build js
// +build js

package web

import (
	"context"
	"errors"
	"time"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/filter-surface/engine"
)

// ErrNoAudio is returned when the browser has no Web Audio support.
var ErrNoAudio = errors.New("Web Audio not available")

// NewAudioContext creates the page's AudioContext.
func NewAudioContext() (*js.Object, error) {
	ctor := js.Global.Get("AudioContext")
	if !defined(ctor) {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if !defined(ctor) {
		return nil, ErrNoAudio
	}
	return ctor.New(), nil
}

// Resume wakes a context suspended by the autoplay policy.
func Resume(ctx *js.Object) {
	if ctx != nil && ctx.Get("state").String() == "suspended" {
		ctx.Call("resume")
	}
}

// AudioBuffer wraps a Web Audio AudioBuffer.
type AudioBuffer struct {
	obj *js.Object
}

func (b *AudioBuffer) Duration() time.Duration {
	return time.Duration(b.obj.Get("duration").Float() * float64(time.Second))
}

func (b *AudioBuffer) Channels() int {
	return b.obj.Get("numberOfChannels").Int()
}

// Decoder implements loader.Decoder with decodeAudioData. The browser offers
// no way to cancel a decode.
type Decoder struct {
	ctx *js.Object
}

// NewDecoder decodes with the given AudioContext.
func NewDecoder(ctx *js.Object) *Decoder {
	return &Decoder{ctx: ctx}
}

func (d *Decoder) Decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	buf, err := await(d.ctx.Call("decodeAudioData", js.NewArrayBuffer(data)))
	if err != nil {
		return nil, err
	}
	return &AudioBuffer{obj: buf}, nil
}
