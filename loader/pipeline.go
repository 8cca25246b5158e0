// Package loader fetches and decodes the engine's audio buffers one at a
// time, tolerating per-asset failures.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/simukka/filter-surface/debug"
	"github.com/simukka/filter-surface/engine"
)

// DefaultDecodeTimeout bounds a single decode.
const DefaultDecodeTimeout = 60 * time.Second

// Fetcher retrieves raw bytes, reporting received and total byte counts.
// total is -1 when unknown.
type Fetcher interface {
	Fetch(ctx context.Context, url string, progress func(received, total int64)) ([]byte, error)
}

// Decoder turns raw bytes into engine-ready audio. It need not honour
// cancellation; the pipeline stops waiting after the timeout.
type Decoder interface {
	Decode(ctx context.Context, data []byte) (engine.Buffer, error)
}

// Assigner hands decoded audio to the engine. *engine.Conn implements it.
type Assigner interface {
	AssignBuffer(ctx context.Context, id string, buf engine.Buffer) error
}

// Pipeline loads buffers strictly sequentially to bound peak memory and keep
// progress monotonic.
type Pipeline struct {
	Fetcher       Fetcher
	Decoder       Decoder
	Assigner      Assigner
	DecodeTimeout time.Duration

	OnProgress func(Progress)
	OnOutcome  func(Outcome)
}

// LoadAll loads every id and returns once each has a terminal outcome.
// Individual failures are recorded, never returned.
func (p *Pipeline) LoadAll(ctx context.Context, ids []string, sources map[string]string) Report {
	report := Report{Outcomes: make([]Outcome, len(ids))}
	for i, id := range ids {
		report.Outcomes[i] = Outcome{ID: id, Status: Pending}
	}
	p.progress(Progress{Total: len(ids), Percent: 0})

	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		p.loadOne(ctx, o, i, len(ids), sources)
		if o.Status == Failed {
			debug.Log("loader", "%s failed: %v", o.ID, o.Err)
		} else {
			debug.Log("loader", "%s assigned", o.ID)
		}
		if p.OnOutcome != nil {
			p.OnOutcome(*o)
		}
		p.progress(Progress{Loaded: i + 1, Total: len(ids), Fraction: float64(i+1) / float64(len(ids))})
	}
	return report
}

func (p *Pipeline) loadOne(ctx context.Context, o *Outcome, loaded, total int, sources map[string]string) {
	fail := func(err error) {
		o.Status = Failed
		o.Err = err
	}

	if err := ctx.Err(); err != nil {
		fail(err)
		return
	}

	src, ok := sources[o.ID]
	if !ok || src == "" {
		fail(ErrNoSource)
		return
	}
	o.Source = src

	o.Status = Fetching
	data, err := p.Fetcher.Fetch(ctx, src, func(received, size int64) {
		pr := Progress{Loaded: loaded, Total: total, Current: o.ID, Percent: -1, Bytes: received}
		frac := 0.0
		if size > 0 {
			frac = float64(received) / float64(size)
			if frac > 1 {
				frac = 1
			}
			pr.Percent = frac * 100
		}
		pr.Fraction = (float64(loaded) + frac) / float64(total)
		p.progress(pr)
	})
	if err != nil {
		fail(fmt.Errorf("fetch %s: %w", src, err))
		return
	}

	o.Status = Decoding
	buf, err := p.decode(ctx, data)
	if err != nil {
		fail(fmt.Errorf("decode %s: %w", src, err))
		return
	}

	if err := p.Assigner.AssignBuffer(ctx, o.ID, buf); err != nil {
		fail(fmt.Errorf("assign %s: %w", o.ID, err))
		return
	}
	o.Status = Assigned
}

// decode races the decoder against the timeout. The result channel is
// buffered so an abandoned decoder can finish without blocking and its result
// is never read.
func (p *Pipeline) decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	type result struct {
		buf engine.Buffer
		err error
	}
	ch := make(chan result, 1)
	go func() {
		buf, err := p.Decoder.Decode(ctx, data)
		ch <- result{buf, err}
	}()

	timeout := p.DecodeTimeout
	if timeout <= 0 {
		timeout = DefaultDecodeTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		if r.err == nil && r.buf == nil {
			return nil, fmt.Errorf("decoder returned no audio")
		}
		return r.buf, r.err
	case <-timer.C:
		return nil, ErrDecodeTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pipeline) progress(pr Progress) {
	if p.OnProgress != nil {
		p.OnProgress(pr)
	}
}
