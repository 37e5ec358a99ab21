/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage implements scene persistence.
// It converts scenes to and from the saved Document format (media handles are
// replaced by their source locators and come back pending), validates loaded
// payloads against an embedded JSON schema, and stores documents in named
// slots, either as JSON files with transactional writes and timestamped
// backups, or in an embedded SQLite database that also caches fetched media.
package storage
