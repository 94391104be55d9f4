/*
Copyright 2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"

	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/utils/ptr"
)

// Keys recognised by the EnvStore.
const (
	KeyBaseURL   = "base_url"
	KeyToken     = "token"
	KeyUserID    = "id"
	KeySecretKey = "secretKey"
)

// EnvKeys lists the keys an EnvStore seeds itself with.
//
//nolint:gochecknoglobals
var EnvKeys = []string{KeyBaseURL, KeyToken, KeyUserID, KeySecretKey}

// EnvStore holds the key/value state shared by the cases of a run. A value
// written by one case is visible to every case that runs after it.
type EnvStore struct {
	lock    sync.RWMutex
	values  map[string]string
	touched sets.Set[string]
	// path, when set, is rewritten after every Set.
	path string
}

// NewEnvStore creates an in-memory store seeded with the recognised keys
// found in seed.
func NewEnvStore(seed map[string]string) *EnvStore {
	s := &EnvStore{
		values:  map[string]string{},
		touched: sets.New[string](),
	}

	for _, key := range EnvKeys {
		if value, ok := seed[key]; ok {
			s.values[key] = value
		}
	}

	return s
}

// NewPersistentEnvStore creates a store that writes every update back to the
// .env file at path, so a later process starts from the latest token and id.
// Keys in the file that the store never touches are preserved.
func NewPersistentEnvStore(path string, seed map[string]string) *EnvStore {
	s := NewEnvStore(seed)
	s.path = path

	return s
}

// Get returns the current value of key, or nil if it is unset.
func (s *EnvStore) Get(key string) *string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil
	}

	return ptr.To(value)
}

// Value returns the current value of key, or an empty string if it is unset.
func (s *EnvStore) Value(key string) string {
	return ptr.Deref(s.Get(key), "")
}

// Set writes value under key. A nil value removes the key.
func (s *EnvStore) Set(key string, value *string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if value == nil {
		delete(s.values, key)
	} else {
		s.values[key] = *value
	}

	s.touched.Insert(key)

	if s.path == "" {
		return nil
	}

	return s.persist()
}

// Snapshot returns a copy of every value currently set.
func (s *EnvStore) Snapshot() map[string]string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make(map[string]string, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}

	return out
}

// persist must be called with the lock held.
func (s *EnvStore) persist() error {
	existing, err := godotenv.Read(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading env file %s: %w", s.path, err)
		}

		existing = map[string]string{}
	}

	for _, key := range sets.List(s.touched) {
		if value, ok := s.values[key]; ok {
			existing[key] = value
		} else {
			delete(existing, key)
		}
	}

	if err := godotenv.Write(existing, s.path); err != nil {
		return fmt.Errorf("writing env file %s: %w", s.path, err)
	}

	return nil
}
