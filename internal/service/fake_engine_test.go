package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/set-night/mediagrab/internal/domain"
)

var errNetwork = errors.New("network unreachable")

// fakeEngine records calls and writes an artifact of size bytes on the
// attempts listed in succeedOn (1-based). Other attempts return failWith.
type fakeEngine struct {
	mu sync.Mutex

	info       *domain.EngineInfo
	extractErr error

	ext       string
	size      int
	succeedOn map[int]bool
	writeNone bool
	failWith  error

	extractCalls  int
	downloadCalls int
	lastOpts      domain.DownloadOptions
	lastCookies   string
}

func (f *fakeEngine) Extract(ctx context.Context, url string, cookieFile string) (*domain.EngineInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extractCalls++
	f.lastCookies = cookieFile
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	info := *f.info
	return &info, nil
}

func (f *fakeEngine) Download(ctx context.Context, url string, opts domain.DownloadOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadCalls++
	f.lastOpts = opts

	if !f.succeedOn[f.downloadCalls] {
		// A partial file from the failed attempt must not survive cleanup.
		path := strings.Replace(opts.OutputTemplate, "%(ext)s", f.ext+".part", 1)
		_ = os.WriteFile(path, []byte("partial"), 0o644)
		if f.failWith != nil {
			return f.failWith
		}
		return errNetwork
	}
	if f.writeNone {
		return nil
	}
	path := strings.Replace(opts.OutputTemplate, "%(ext)s", f.ext, 1)
	return os.WriteFile(path, make([]byte, f.size), 0o644)
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloadCalls
}

func attempts(n ...int) map[int]bool {
	m := make(map[int]bool, len(n))
	for _, v := range n {
		m[v] = true
	}
	return m
}
