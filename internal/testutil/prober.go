package testutil

import (
	"context"
	"sync"

	"icut-go/internal/editor"
	"icut-go/internal/timeline"
)

// StubProber returns canned media info. Paths without an explicit result are
// classified by extension and reported as 1 KiB.
type StubProber struct {
	mu      sync.Mutex
	results map[string]*timeline.MediaInfo
	errs    map[string]error
	calls   []string
}

func NewStubProber() *StubProber {
	return &StubProber{
		results: make(map[string]*timeline.MediaInfo),
		errs:    make(map[string]error),
	}
}

// Set fixes the result for path.
func (p *StubProber) Set(path string, info *timeline.MediaInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results[path] = info
}

// Fail makes probing path return err.
func (p *StubProber) Fail(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[path] = err
}

// Calls returns every probed path in call order.
func (p *StubProber) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *StubProber) Probe(_ context.Context, path string) (*timeline.MediaInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, path)

	if err, ok := p.errs[path]; ok {
		return nil, err
	}
	if info, ok := p.results[path]; ok {
		cp := *info
		return &cp, nil
	}
	return &timeline.MediaInfo{Kind: timeline.AssetKindOf(path), SizeBytes: 1024}, nil
}

var _ editor.Prober = (*StubProber)(nil)
