//go:build js
// +build js

package web

import (
	"context"
	"fmt"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/filter-surface/debug"
	"github.com/simukka/filter-surface/engine"
)

// Device adapts an exported RNBO device to engine.Engine.
type Device struct {
	obj *js.Object
}

// CreateDevice loads an exported patcher and connects the device to the
// context's destination. It blocks; call it from a goroutine.
func CreateDevice(ctx *js.Object, patchURL string) (*Device, error) {
	rnbo := js.Global.Get("RNBO")
	if !defined(rnbo) {
		return nil, fmt.Errorf("RNBO runtime not loaded")
	}
	resp, err := await(js.Global.Call("fetch", patchURL))
	if err != nil {
		return nil, fmt.Errorf("fetch patcher: %w", err)
	}
	if !resp.Get("ok").Bool() {
		return nil, fmt.Errorf("fetch patcher: HTTP %d", resp.Get("status").Int())
	}
	patcher, err := await(resp.Call("json"))
	if err != nil {
		return nil, fmt.Errorf("parse patcher: %w", err)
	}
	obj, err := await(rnbo.Call("createDevice", map[string]interface{}{
		"context": ctx,
		"patcher": patcher,
	}))
	if err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}
	obj.Get("node").Call("connect", ctx.Get("destination"))
	return &Device{obj: obj}, nil
}

func (d *Device) SetParameterValue(name string, value float64) {
	p := d.obj.Get("parametersById").Call("get", name)
	if !defined(p) {
		debug.Log("engine", "device has no parameter %s", name)
		return
	}
	p.Set("value", value)
}

func (d *Device) AssignBuffer(ctx context.Context, id string, buf engine.Buffer) error {
	ab, ok := buf.(*AudioBuffer)
	if !ok {
		return fmt.Errorf("buffer %s: want *AudioBuffer, got %T", id, buf)
	}
	if _, err := await(d.obj.Call("setDataBuffer", id, ab.obj)); err != nil {
		return err
	}
	return nil
}

func (d *Device) RequiredBuffers() []engine.BufferRef {
	descs := d.obj.Get("dataBufferDescriptions")
	if !defined(descs) {
		return nil
	}
	refs := make([]engine.BufferRef, 0, descs.Length())
	for i := 0; i < descs.Length(); i++ {
		refs = append(refs, engine.BufferRef{ID: descs.Index(i).Get("id").String()})
	}
	return refs
}

func (d *Device) Subscribe(fn func(engine.Event)) func() {
	sub := d.obj.Get("messageEvent").Call("subscribe", func(ev *js.Object) {
		e := engine.Event{Tag: ev.Get("tag").String()}
		payload := ev.Get("payload")
		switch {
		case !defined(payload):
		case payload.Get("length") != js.Undefined:
			for i := 0; i < payload.Length(); i++ {
				e.Payload = append(e.Payload, payload.Index(i).Float())
			}
		default:
			e.Payload = []float64{payload.Float()}
		}
		fn(e)
	})
	return func() { sub.Call("unsubscribe") }
}
