/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gocanvas/internal/element"
)

type memCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	gets int
}

func (c *memCache) Get(_ context.Context, source string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.m[source]
	return b, ok, nil
}

func (c *memCache) Put(_ context.Context, source string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string][]byte{}
	}
	c.m[source] = data
	return nil
}

func TestLoaderDeliversImage(t *testing.T) {
	png := pngBytes(t, 12, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	l := NewLoader(Options{})
	results := make(chan Result, 1)
	l.Load(context.Background(), Request{Source: srv.URL + "/lion.png", Kind: element.KindImage, IDs: []string{"a", "b"}}, func(r Result) {
		results <- r
	})
	select {
	case r := <-results:
		if r.Err != nil {
			t.Fatalf("load error: %v", r.Err)
		}
		if len(r.IDs) != 2 || r.Kind != element.KindImage {
			t.Fatalf("result = %+v", r)
		}
		if w, h := r.Handle.Size(); w != 12 || h != 10 {
			t.Fatalf("Size = %dx%d", w, h)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for load")
	}
}

func TestLoaderReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not media</html>"))
	}))
	defer srv.Close()

	l := NewLoader(Options{})
	var got Result
	l.Load(context.Background(), Request{Source: srv.URL + "/x.png", Kind: element.KindImage, IDs: []string{"a"}}, func(r Result) { got = r })
	l.Wait()
	if got.Handle != nil || !errors.Is(got.Err, ErrUnsupportedFormat) {
		t.Fatalf("result = %+v", got)
	}
}

func TestLoaderSharesConcurrentFetches(t *testing.T) {
	png := pngBytes(t, 2, 2)
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	l := NewLoader(Options{MaxConcurrent: 4})
	var mu sync.Mutex
	var handles []element.Handle
	for i := 0; i < 3; i++ {
		l.Load(context.Background(), Request{Source: srv.URL + "/same.png", Kind: element.KindImage}, func(r Result) {
			mu.Lock()
			handles = append(handles, r.Handle)
			mu.Unlock()
		})
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	l.Wait()

	if hits.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", hits.Load())
	}
	if len(handles) != 3 || handles[0] == nil || handles[0] != handles[1] || handles[1] != handles[2] {
		t.Fatalf("expected one shared handle, got %v", handles)
	}
}

func TestLoaderUsesCacheForRemoteSources(t *testing.T) {
	png := pngBytes(t, 3, 3)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	cache := &memCache{}
	l := NewLoader(Options{Cache: cache})
	src := srv.URL + "/c.png"
	for i := 0; i < 2; i++ {
		if _, err := l.Resolve(context.Background(), src, element.KindImage); err != nil {
			t.Fatalf("Resolve %d: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected the second resolve to hit the cache, server saw %d requests", hits.Load())
	}
}

func TestResolveRejectsTextKind(t *testing.T) {
	l := NewLoader(Options{})
	if _, err := l.Resolve(context.Background(), "x", element.KindText); !errors.Is(err, ErrMediaLoad) {
		t.Fatalf("err = %v", err)
	}
}
