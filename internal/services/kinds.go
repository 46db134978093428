package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	srvErrors "github.com/kubev2v/taskd/pkg/errors"
)

const (
	KindSleep = "sleep"
	KindHTTP  = "http"
	KindFail  = "fail"

	defaultSleepDuration = 1 * time.Second
)

// JobFunc executes one job and returns its textual result.
type JobFunc func(ctx context.Context, params map[string]string) (string, error)

// Registry maps job kinds to their implementation.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]JobFunc
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]JobFunc)}
}

// NewDefaultRegistry returns a registry holding the built-in kinds.
func NewDefaultRegistry(httpTimeout time.Duration) *Registry {
	r := NewRegistry()
	r.Register(KindSleep, sleepJob)
	r.Register(KindHTTP, newHTTPJob(&http.Client{Timeout: httpTimeout}))
	r.Register(KindFail, failJob)
	return r
}

// Register adds or replaces kind. It panics on a nil fn.
func (r *Registry) Register(kind string, fn JobFunc) {
	if fn == nil {
		panic(srvErrors.NewNilArgumentError("fn"))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind] = fn
}

func (r *Registry) Lookup(kind string) (JobFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.kinds[kind]
	if !ok {
		return nil, srvErrors.NewUnknownJobKindError(kind)
	}
	return fn, nil
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func sleepJob(ctx context.Context, params map[string]string) (string, error) {
	d := defaultSleepDuration
	if v, ok := params["duration"]; ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return "", srvErrors.NewInvalidArgumentError("duration", err.Error())
		}
		if parsed < 0 {
			return "", srvErrors.NewInvalidArgumentError("duration", "must not be negative")
		}
		d = parsed
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return fmt.Sprintf("slept %s", d), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func newHTTPJob(client *http.Client) JobFunc {
	return func(ctx context.Context, params map[string]string) (string, error) {
		url := params["url"]
		if url == "" {
			return "", srvErrors.NewInvalidArgumentError("url", "must not be empty")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", srvErrors.NewInvalidArgumentError("url", err.Error())
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("GET %s: %s", url, resp.Status)
		}
		return resp.Status, nil
	}
}

func failJob(_ context.Context, params map[string]string) (string, error) {
	msg := params["message"]
	if msg == "" {
		msg = "job failed"
	}
	return "", errors.New(msg)
}
