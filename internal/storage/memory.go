/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryMetadata is a Metadata kept in process memory. It is safe for
// concurrent use.
type MemoryMetadata struct {
	mu sync.RWMutex
	kv map[string]string
}

// NewMemoryMetadata returns an empty in-memory namespace.
func NewMemoryMetadata() *MemoryMetadata {
	return &MemoryMetadata{kv: make(map[string]string)}
}

func (m *MemoryMetadata) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return v, nil
}

func (m *MemoryMetadata) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.kv[key] = value
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys in lexical order.
func (m *MemoryMetadata) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.kv))
	for k := range m.kv {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
