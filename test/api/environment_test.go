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

package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/dmoney/user-api-test/test/api"

	"k8s.io/utils/ptr"
)

func TestEnvStoreSeedsKnownKeysOnly(t *testing.T) {
	t.Parallel()

	store := api.NewEnvStore(map[string]string{
		api.KeyBaseURL:   "http://localhost:3000",
		api.KeySecretKey: "s3cret",
		"HOME":           "/root",
	})

	require.Equal(t, "http://localhost:3000", store.Value(api.KeyBaseURL))
	require.Equal(t, "s3cret", store.Value(api.KeySecretKey))
	require.Nil(t, store.Get(api.KeyToken))
	require.Nil(t, store.Get("HOME"))
}

func TestEnvStoreLatestValueWins(t *testing.T) {
	t.Parallel()

	store := api.NewEnvStore(nil)

	require.NoError(t, store.Set(api.KeyToken, ptr.To("agent-token")))
	require.Equal(t, "agent-token", store.Value(api.KeyToken))

	require.NoError(t, store.Set(api.KeyToken, ptr.To("admin-token")))
	require.Equal(t, "admin-token", *store.Get(api.KeyToken))
}

func TestEnvStoreNilRemoves(t *testing.T) {
	t.Parallel()

	store := api.NewEnvStore(map[string]string{api.KeyUserID: "1001"})

	require.NoError(t, store.Set(api.KeyUserID, nil))
	require.Nil(t, store.Get(api.KeyUserID))
	require.Empty(t, store.Value(api.KeyUserID))
	require.NotContains(t, store.Snapshot(), api.KeyUserID)
}

func TestEnvStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := api.NewEnvStore(map[string]string{api.KeyToken: "token"})

	value := store.Get(api.KeyToken)
	*value = "mutated"

	require.Equal(t, "token", store.Value(api.KeyToken))
}

func TestPersistentEnvStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("base_url=http://localhost:3000\nid=999\nOTHER=kept\n"), 0o600))

	seed, err := godotenv.Read(path)
	require.NoError(t, err)

	store := api.NewPersistentEnvStore(path, seed)

	require.NoError(t, store.Set(api.KeyToken, ptr.To("admin-token")))
	require.NoError(t, store.Set(api.KeyUserID, nil))

	persisted, err := godotenv.Read(path)
	require.NoError(t, err)

	require.Equal(t, "admin-token", persisted[api.KeyToken])
	require.Equal(t, "http://localhost:3000", persisted[api.KeyBaseURL])
	require.Equal(t, "kept", persisted["OTHER"])
	require.NotContains(t, persisted, api.KeyUserID)
}

func TestPersistentEnvStoreCreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	store := api.NewPersistentEnvStore(path, nil)

	require.NoError(t, store.Set(api.KeyUserID, ptr.To("1002")))

	persisted, err := godotenv.Read(path)
	require.NoError(t, err)
	require.Equal(t, "1002", persisted[api.KeyUserID])
}
