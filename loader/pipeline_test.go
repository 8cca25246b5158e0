package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/simukka/filter-surface/engine"
)

type fakeBuffer struct{ tag string }

func (fakeBuffer) Duration() time.Duration { return time.Second }
func (fakeBuffer) Channels() int           { return 2 }

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	total int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, progress func(received, total int64)) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	progress(5, f.total)
	progress(10, f.total)
	return []byte(url), nil
}

// fakeDecoder blocks on the listed payloads until release is closed.
type fakeDecoder struct {
	slow    map[string]bool
	release chan struct{}
	fail    map[string]error
}

func (d *fakeDecoder) Decode(ctx context.Context, data []byte) (engine.Buffer, error) {
	key := string(data)
	if d.slow[key] {
		<-d.release
	}
	if err, ok := d.fail[key]; ok {
		return nil, err
	}
	return fakeBuffer{tag: key}, nil
}

func sources(ids ...string) map[string]string {
	m := make(map[string]string, len(ids))
	for _, id := range ids {
		m[id] = "/media/" + id + ".wav"
	}
	return m
}

func TestLoadAll_DecodeTimeoutIsIsolated(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	rec := engine.NewRecorder(ids...)
	dec := &fakeDecoder{slow: map[string]bool{"/media/c.wav": true}, release: make(chan struct{})}
	p := &Pipeline{
		Fetcher:       &fakeFetcher{total: 10},
		Decoder:       dec,
		Assigner:      rec,
		DecodeTimeout: 20 * time.Millisecond,
	}

	report := p.LoadAll(context.Background(), ids, sources(ids...))
	close(dec.release)

	expected := []Status{Assigned, Assigned, Failed, Assigned, Assigned}
	for i, o := range report.Outcomes {
		if o.ID != ids[i] {
			t.Errorf("Outcome %d: expected id %s, got %s", i, ids[i], o.ID)
		}
		if o.Status != expected[i] {
			t.Errorf("Outcome %s: expected %s, got %s", o.ID, expected[i], o.Status)
		}
	}
	if !errors.Is(report.Outcomes[2].Err, ErrDecodeTimeout) {
		t.Errorf("Expected decode timeout, got %v", report.Outcomes[2].Err)
	}
	if !report.Complete() {
		t.Error("Expected report to be complete")
	}

	// The abandoned decode finishes later and must never be assigned.
	time.Sleep(10 * time.Millisecond)
	if _, ok := rec.Assigned["c"]; ok {
		t.Error("Expected timed-out asset to stay unassigned")
	}
}

func TestLoadAll_MissingSourceSkipsNetwork(t *testing.T) {
	ids := []string{"kick", "ambient", "snare"}
	fetch := &fakeFetcher{total: 10}
	var loaded []int
	p := &Pipeline{
		Fetcher:  fetch,
		Decoder:  &fakeDecoder{},
		Assigner: engine.NewRecorder(ids...),
		OnOutcome: func(o Outcome) {
			if o.ID == "ambient" && o.Status != Failed {
				t.Errorf("Expected ambient to fail, got %s", o.Status)
			}
		},
		OnProgress: func(pr Progress) {
			if pr.Current == "" {
				loaded = append(loaded, pr.Loaded)
			}
		},
	}

	report := p.LoadAll(context.Background(), ids, sources("kick", "snare"))

	if got := report.Statuses()["ambient"]; got != Failed {
		t.Errorf("Expected ambient failed, got %s", got)
	}
	if !errors.Is(report.Outcomes[1].Err, ErrNoSource) || report.Outcomes[1].Err.Error() != "no source mapping" {
		t.Errorf("Expected no source mapping, got %v", report.Outcomes[1].Err)
	}
	for _, url := range fetch.calls {
		if strings.Contains(url, "ambient") {
			t.Errorf("Expected no fetch for ambient, got %s", url)
		}
	}
	if len(fetch.calls) != 2 {
		t.Errorf("Expected 2 fetches, got %d", len(fetch.calls))
	}
	if fmt.Sprint(loaded) != "[0 1 2 3]" {
		t.Errorf("Expected loaded count to advance once per asset, got %v", loaded)
	}
}

func TestLoadAll_FetchAndAssignFailuresContinue(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	rec := engine.NewRecorder(ids...)
	rec.Reject = map[string]error{"d": errors.New("wrong channel count")}
	decodeErr := errors.New("corrupt header")
	p := &Pipeline{
		Fetcher:  &fakeFetcher{total: 10, fail: map[string]error{"/media/a.wav": fmt.Errorf("%w: 404 Not Found", ErrHTTPStatus)}},
		Decoder:  &fakeDecoder{fail: map[string]error{"/media/b.wav": decodeErr}},
		Assigner: rec,
	}

	report := p.LoadAll(context.Background(), ids, sources(ids...))

	got := report.Statuses()
	if got["a"] != Failed || got["b"] != Failed || got["c"] != Assigned || got["d"] != Failed {
		t.Errorf("Unexpected statuses %v", got)
	}
	if !errors.Is(report.Outcomes[0].Err, ErrHTTPStatus) {
		t.Errorf("Expected HTTP status error, got %v", report.Outcomes[0].Err)
	}
	if !errors.Is(report.Outcomes[1].Err, decodeErr) {
		t.Errorf("Expected decode error, got %v", report.Outcomes[1].Err)
	}
	if _, ok := rec.Assigned["b"]; ok {
		t.Error("Expected failed decode to never reach the engine")
	}
	if n := len(report.Failed()); n != 3 {
		t.Errorf("Expected 3 failures, got %d", n)
	}
}

func TestLoadAll_ProgressFractions(t *testing.T) {
	ids := []string{"a", "b"}
	var fractions []float64
	var percents []float64
	p := &Pipeline{
		Fetcher:  &fakeFetcher{total: 10},
		Decoder:  &fakeDecoder{},
		Assigner: engine.NewRecorder(ids...),
		OnProgress: func(pr Progress) {
			fractions = append(fractions, pr.Fraction)
			if pr.Current != "" {
				percents = append(percents, pr.Percent)
			}
		},
	}

	p.LoadAll(context.Background(), ids, sources(ids...))

	expected := []float64{0, 0.25, 0.5, 0.5, 0.75, 1, 1}
	if fmt.Sprint(fractions) != fmt.Sprint(expected) {
		t.Errorf("Expected fractions %v, got %v", expected, fractions)
	}
	if fmt.Sprint(percents) != "[50 100 50 100]" {
		t.Errorf("Expected per-asset percents, got %v", percents)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("Expected monotonic progress, got %v", fractions)
		}
	}
}

func TestLoadAll_UnknownLengthIsIndeterminate(t *testing.T) {
	var last Progress
	p := &Pipeline{
		Fetcher:  &fakeFetcher{total: -1},
		Decoder:  &fakeDecoder{},
		Assigner: engine.NewRecorder("a"),
		OnProgress: func(pr Progress) {
			if pr.Current != "" {
				last = pr
			}
		},
	}

	p.LoadAll(context.Background(), []string{"a"}, sources("a"))

	if last.Percent != -1 || last.Bytes != 10 || last.Fraction != 0 {
		t.Errorf("Expected percent -1 with 10 bytes, got %+v", last)
	}
}

func TestLoadAll_CancelledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Fetcher: &fakeFetcher{}, Decoder: &fakeDecoder{}, Assigner: engine.NewRecorder()}

	report := p.LoadAll(ctx, []string{"a", "b"}, sources("a", "b"))

	if !report.Complete() || len(report.Failed()) != 2 {
		t.Errorf("Expected both assets failed and complete, got %+v", report)
	}
}

func TestLoadAll_Empty(t *testing.T) {
	p := &Pipeline{}
	report := p.LoadAll(context.Background(), nil, nil)
	if !report.Complete() || len(report.Outcomes) != 0 {
		t.Errorf("Expected empty complete report, got %+v", report)
	}
}

func TestStatus_String(t *testing.T) {
	if Decoding.String() != "decoding" || Status(42).String() != "Status(42)" {
		t.Errorf("Unexpected status names %s %s", Decoding, Status(42))
	}
}

func TestHTTPFetcher_ReportsProgress(t *testing.T) {
	payload := strings.Repeat("x", 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/kick.wav" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(payload)))
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL}
	var lastReceived, lastTotal int64
	data, err := f.Fetch(context.Background(), "/media/kick.wav", func(received, total int64) {
		lastReceived, lastTotal = received, total
	})

	if err != nil {
		t.Fatalf("Expected fetch to succeed, got %v", err)
	}
	if len(data) != len(payload) {
		t.Errorf("Expected %d bytes, got %d", len(payload), len(data))
	}
	if lastReceived != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Errorf("Expected final progress %d/%d, got %d/%d", len(payload), len(payload), lastReceived, lastTotal)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := &HTTPFetcher{BaseURL: srv.URL}
	_, err := f.Fetch(context.Background(), "/media/missing.wav", nil)

	if !errors.Is(err, ErrHTTPStatus) {
		t.Errorf("Expected ErrHTTPStatus, got %v", err)
	}
}

func TestHTTPFetcher_InflatedContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/media/liar.wav" {
			w.Write([]byte("RIFF"))
			return
		}
		conn, rw, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("Expected hijack to succeed, got %v", err)
			return
		}
		defer conn.Close()
		rw.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 70368744177664\r\n\r\nRIFF")
		rw.Flush()
	}))
	defer srv.Close()

	ids := []string{"liar", "kick"}
	rec := engine.NewRecorder(ids...)
	p := &Pipeline{
		Fetcher:  &HTTPFetcher{BaseURL: srv.URL},
		Decoder:  &fakeDecoder{},
		Assigner: rec,
	}

	report := p.LoadAll(context.Background(), ids, sources(ids...))

	got := report.Statuses()
	if got["liar"] != Failed {
		t.Errorf("Expected truncated body to fail, got %v", got["liar"])
	}
	if got["kick"] != Assigned {
		t.Errorf("Expected next asset to load, got %v", got["kick"])
	}
}
