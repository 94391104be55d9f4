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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FixtureStore records the users created by test runs in a JSON array file.
// Records are only ever appended, and the whole file is rewritten from memory
// after each append. There is a single writer per file.
type FixtureStore struct {
	path    string
	records []json.RawMessage
}

// OpenFixtureStore creates a store backed by path and loads its records.
func OpenFixtureStore(path string) (*FixtureStore, error) {
	f := &FixtureStore{
		path: path,
	}

	if _, err := f.Load(); err != nil {
		return nil, err
	}

	return f, nil
}

// Path returns the backing file.
func (f *FixtureStore) Path() string {
	return f.path
}

// Load reads the backing file and replaces the in-memory records with its
// contents. A missing or empty file, or a JSON null, loads as no records.
func (f *FixtureStore) Load() ([]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading fixture file %s: %w", f.path, err)
		}

		data = nil
	}

	var records []json.RawMessage

	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decoding fixture file %s: %w", f.path, err)
		}
	}

	f.records = records

	return f.Records(), nil
}

// Append adds record to the end of the sequence and rewrites the backing
// file. On failure the in-memory sequence is left as it was.
func (f *FixtureStore) Append(record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding fixture record: %w", err)
	}

	records := append(f.Records(), raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding fixture file: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("writing fixture file %s: %w", f.path, err)
	}

	f.records = records

	return nil
}

// Len returns the number of records.
func (f *FixtureStore) Len() int {
	return len(f.records)
}

// Records returns a copy of the records in append order.
func (f *FixtureStore) Records() []json.RawMessage {
	out := make([]json.RawMessage, len(f.records))
	copy(out, f.records)

	return out
}

// Users decodes every record as a User.
func (f *FixtureStore) Users() ([]User, error) {
	users := make([]User, 0, len(f.records))

	for i, record := range f.records {
		var user User
		if err := json.Unmarshal(record, &user); err != nil {
			return nil, fmt.Errorf("decoding fixture record %d: %w", i, err)
		}

		users = append(users, user)
	}

	return users, nil
}
