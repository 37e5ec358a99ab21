/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MediaCache stores fetched media bytes keyed by source locator.
// When the total size exceeds CapBytes the least recently used rows are
// evicted. A CapBytes of 0 disables eviction.
type MediaCache struct {
	db       *sql.DB
	CapBytes int64
}

// NewMediaCache wraps an open database from OpenDB.
func NewMediaCache(db *sql.DB, capBytes int64) *MediaCache {
	return &MediaCache{db: db, CapBytes: capBytes}
}

// Get returns the cached bytes for source and marks the row as used.
func (c *MediaCache) Get(ctx context.Context, source string) ([]byte, bool, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM media_cache WHERE source=?`, source).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query media cache: %w", err)
	}
	// touch
	_, _ = c.db.ExecContext(ctx, `UPDATE media_cache SET last_access=? WHERE source=?`, stamp(), source)
	return blob, true, nil
}

// Put upserts the bytes for source and evicts to fit the cap.
func (c *MediaCache) Put(ctx context.Context, source string, data []byte) error {
	now := stamp()
	_, err := c.db.ExecContext(ctx, `INSERT INTO media_cache(source, data, size, updated_at, last_access)
		VALUES(?,?,?,?,?)
		ON CONFLICT(source) DO UPDATE SET data=excluded.data, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		source, data, len(data), now, now)
	if err != nil {
		return fmt.Errorf("upsert media cache: %w", err)
	}
	if c.CapBytes > 0 {
		return c.evictToFit(ctx)
	}
	return nil
}

// TotalBytes returns the summed size of all cached rows.
func (c *MediaCache) TotalBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := c.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM media_cache`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// evictToFit deletes least-recently-used rows until the total size fits CapBytes.
func (c *MediaCache) evictToFit(ctx context.Context) error {
	total, err := c.TotalBytes(ctx)
	if err != nil {
		return fmt.Errorf("sum media cache size: %w", err)
	}
	if total <= c.CapBytes {
		return nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT source, size FROM media_cache ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() {
		var src string
		var sz int64
		if err := rows.Scan(&src, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, src)
		cur -= sz
		if cur <= c.CapBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// close the cursor before writing; the pool holds a single connection
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM media_cache WHERE source IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := c.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict media cache: %w", err)
	}
	return nil
}

// stamp is sortable and fine-grained enough to order touches within one test.
func stamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000000Z")
}
