// Package session threads one explicit context through the controls, router,
// gestures and loader instead of sharing global state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/simukka/filter-surface/config"
	"github.com/simukka/filter-surface/control"
	"github.com/simukka/filter-surface/debug"
	"github.com/simukka/filter-surface/engine"
	"github.com/simukka/filter-surface/gesture"
	"github.com/simukka/filter-surface/loader"
	"github.com/simukka/filter-surface/midimap"
	"github.com/simukka/filter-surface/router"
)

// ErrNotReady is returned when powering on before buffers finished loading.
var ErrNotReady = errors.New("buffers not loaded")

// Status texts shown to the user.
const (
	StatusDisconnected = "Engine not connected"
	StatusConnected    = "Engine connected"
	StatusReady        = "Ready"
)

// Session is the explicit per-instrument context.
type Session struct {
	Config   *config.Config
	Engine   *engine.Conn
	Controls *control.Registry
	Router   *router.Router
	Drag     *gesture.Drag
	Slider   *gesture.Slider
	MIDI     *midimap.Map
	Pipeline *loader.Pipeline

	// Scheduler runs the delayed resonance write; defaults to time.AfterFunc.
	Scheduler router.Scheduler

	mu         sync.Mutex
	powered    bool
	ready      bool
	status     string
	onStatus   []func(string)
	onProgress []func(loader.Progress)
}

// New wires a session. fetch and dec are the platform's byte fetcher and
// audio decoder.
func New(cfg *config.Config, fetch loader.Fetcher, dec loader.Decoder) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	conn := engine.NewConn()
	controls := control.NewRegistry(cfg.Controls, cfg.Formats)
	r := router.New(conn, controls, cfg.Groups)

	s := &Session{
		Config:    cfg,
		Engine:    conn,
		Controls:  controls,
		Router:    r,
		Drag:      gesture.NewDrag(controls, r, cfg.DragSensitivity),
		Slider:    gesture.NewSlider(controls, r, cfg.TierControl, cfg.TierCount),
		MIDI:      midimap.New(cfg.MIDI),
		Scheduler: router.AfterFunc(time.AfterFunc),
		status:    StatusDisconnected,
	}
	s.Pipeline = &loader.Pipeline{
		Fetcher:       fetch,
		Decoder:       dec,
		Assigner:      conn,
		DecodeTimeout: cfg.DecodeTimeout,
		OnProgress:    s.progress,
	}
	conn.OnEvent(func(ev engine.Event) {
		debug.LogEvery(100, "engine", "event %s %v", ev.Tag, ev.Payload)
	})
	return s, nil
}

// Connect attaches the engine and synchronizes it to the control defaults.
func (s *Session) Connect(e engine.Engine) {
	s.Engine.Attach(e)
	s.mu.Lock()
	s.powered = false
	s.ready = false
	s.mu.Unlock()
	s.Sync()
	s.setStatus(StatusConnected)
}

// Sync writes every control's value, then power off and tier 1.
func (s *Session) Sync() {
	s.Slider.Reset()
	all := s.Controls.All()
	bound := make([]router.Init, 0, len(all))
	for _, c := range all {
		bound = append(bound, router.Init{Param: c.Param, Value: c.Raw})
	}
	s.Router.Sync(bound,
		router.Init{Param: s.Config.PowerParam, Value: s.Config.PowerOff},
		router.Init{Param: s.Config.TierParam, Value: 1},
	)
}

// Dispatch applies one input command.
func (s *Session) Dispatch(cmd Command) {
	switch c := cmd.(type) {
	case BeginDrag:
		if c.ControlID == s.Config.TierControl {
			// The tier slider only takes absolute positions.
			s.Drag.End()
			debug.Log("session", "drag on %q ignored", c.ControlID)
			return
		}
		s.Drag.Begin(c.ControlID, c.Y)
	case MoveDrag:
		s.Drag.Move(c.Y)
	case EndDrag:
		s.Drag.End()
	case SetTier:
		s.Slider.Set(c.X)
	case SetNormalized:
		s.setNormalized(c.ControlID, c.Value)
	case SetPower:
		if err := s.SetPower(c.On); err != nil {
			debug.Log("session", "power: %v", err)
		}
	case MIDIMessage:
		if id, n, ok := s.MIDI.Translate(c.Data); ok {
			s.setNormalized(id, n)
		}
	default:
		debug.Log("session", "unknown command %T", cmd)
	}
}

func (s *Session) setNormalized(id string, n float64) {
	if id == s.Config.TierControl {
		s.Slider.SetNormalized(n)
		return
	}
	c, ok := s.Controls.SetNormalized(id, n)
	if !ok {
		debug.Log("session", "no control %q", id)
		return
	}
	s.Router.Write(c.Param, c.Raw)
}

// SetPower switches the instrument. Powering on re-asserts both resonance
// values immediately and again after Config.ReassertDelay.
func (s *Session) SetPower(on bool) error {
	s.mu.Lock()
	if on && !s.ready {
		s.mu.Unlock()
		return ErrNotReady
	}
	was := s.powered
	s.powered = on
	s.mu.Unlock()

	if !on {
		s.Router.Write(s.Config.PowerParam, s.Config.PowerOff)
		return nil
	}
	s.Router.Write(s.Config.PowerParam, s.Config.PowerOn)
	if !was {
		s.Router.Reassert(s.Config.Resonances, s.Config.ReassertDelay, s.Scheduler)
	}
	return nil
}

// Powered reports the last power state set.
func (s *Session) Powered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powered
}

// Load runs one loading session over the engine's required buffers.
// Playback should wait for Ready.
func (s *Session) Load(ctx context.Context) loader.Report {
	if !s.Engine.Connected() {
		s.setStatus(StatusDisconnected)
		return loader.Report{}
	}
	s.mu.Lock()
	s.ready = false
	s.mu.Unlock()

	refs := s.Engine.RequiredBuffers()
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	report := s.Pipeline.LoadAll(ctx, ids, s.Config.Sources)

	s.mu.Lock()
	s.ready = report.Complete()
	s.mu.Unlock()

	s.setStatus(ReadyText(report))
	return report
}

// ReadyText summarizes a finished report.
func ReadyText(r loader.Report) string {
	failed := len(r.Failed())
	if failed == 0 {
		return StatusReady
	}
	return fmt.Sprintf("Ready (%d of %d samples failed)", failed, len(r.Outcomes))
}

// Ready reports whether the last loading session completed.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Status returns the current status text.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// OnStatus registers a status text observer.
func (s *Session) OnStatus(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStatus = append(s.onStatus, fn)
}

// OnProgress registers a loading progress observer.
func (s *Session) OnProgress(fn func(loader.Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onProgress = append(s.onProgress, fn)
}

func (s *Session) progress(p loader.Progress) {
	s.mu.Lock()
	fns := append(([]func(loader.Progress))(nil), s.onProgress...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
	if p.Loaded < p.Total {
		s.setStatus(fmt.Sprintf("Loading samples (%d/%d)…", p.Loaded+1, p.Total))
	}
}

func (s *Session) setStatus(text string) {
	s.mu.Lock()
	if s.status == text {
		s.mu.Unlock()
		return
	}
	s.status = text
	fns := append(([]func(string))(nil), s.onStatus...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(text)
	}
}
