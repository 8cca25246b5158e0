package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPFetcher fetches sources over HTTP. Under gopherjs net/http runs on the
// browser's fetch, so the same fetcher serves both builds.
type HTTPFetcher struct {
	Client  *http.Client
	BaseURL string // resolves relative sources when set
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src string, progress func(received, total int64)) ([]byte, error) {
	target, err := f.resolve(src)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	if total > 0 {
		grow := total
		if grow > maxPrealloc {
			grow = maxPrealloc
		}
		buf.Grow(int(grow))
	}
	chunk := make([]byte, 32*1024)
	var received int64
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			if progress != nil {
				progress(received, total)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("read body: %w", rerr)
		}
	}
	return buf.Bytes(), nil
}

// maxPrealloc bounds the buffer reserved from Content-Length; larger bodies
// grow as data arrives.
const maxPrealloc = 8 << 20

func (f *HTTPFetcher) resolve(src string) (string, error) {
	if f.BaseURL == "" {
		return src, nil
	}
	base, err := url.Parse(f.BaseURL)
	if err != nil {
		return "", fmt.Errorf("base URL: %w", err)
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("source %q: %w", src, err)
	}
	return base.ResolveReference(ref).String(), nil
}
