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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves raw media bytes. http and https sources are requested
// with an optional bearer token; file URLs and plain paths are read from disk.
type Fetcher struct {
	Client   *http.Client
	Token    string
	MaxBytes int64 // 0 means unlimited
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration, token string, maxBytes int64) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}, Token: token, MaxBytes: maxBytes}
}

// IsRemote reports whether source is fetched over the network.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the bytes behind source.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: errors.New("empty source")}
	}
	if IsRemote(source) {
		return f.fetchHTTP(ctx, source)
	}
	path := source
	if strings.HasPrefix(strings.ToLower(source), "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
		}
		path = u.Path
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
	}
	defer fh.Close()
	return f.readAll(source, fh)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
	}
	if f.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.Token)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	if f.MaxBytes > 0 && resp.ContentLength > f.MaxBytes {
		return nil, &MediaLoadError{Source: source, Reason: "too large", Err: fmt.Errorf("%d bytes", resp.ContentLength)}
	}
	return f.readAll(source, resp.Body)
}

func (f *Fetcher) readAll(source string, r io.Reader) ([]byte, error) {
	if f.MaxBytes > 0 {
		r = io.LimitReader(r, f.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
	}
	if f.MaxBytes > 0 && int64(len(b)) > f.MaxBytes {
		return nil, &MediaLoadError{Source: source, Reason: "too large", Err: fmt.Errorf("over %d bytes", f.MaxBytes)}
	}
	return b, nil
}
