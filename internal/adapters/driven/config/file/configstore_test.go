package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphScope = "https://graph.microsoft.com/.default"

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))
}

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "store must not create the file until a value is set")
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DefaultDirName, "config.toml"), store.Path())

	info, err := os.Stat(filepath.Join(home, DefaultDirName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profiles", "contoso")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/graphmail")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[auth\ntenant_id = ")

	store, err := NewConfigStore(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.toml")
	assert.Nil(t, store)
}

func TestNewConfigStore_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "# graphmail settings\n\n")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Credentials(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("auth.tenant_id", "contoso.onmicrosoft.com"))
	require.NoError(t, store.Set("auth.client_secret", "s3cr3t"))

	val, ok := store.Get("auth.tenant_id")
	assert.True(t, ok)
	assert.Equal(t, "contoso.onmicrosoft.com", val)
	assert.Equal(t, "s3cr3t", store.GetString("auth.client_secret"))

	_, ok = store.Get("auth.client_id")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("auth.client_id"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("sender.address", "reports@contoso.com"))
	require.NoError(t, store.Set("client.max_retries", 3))
	require.NoError(t, store.Set("client.requests_per_second", 2.5))
	require.NoError(t, store.Set("log.payloads", true))
	require.NoError(t, store.Set("auth.scopes", []string{graphScope}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("sender.address"), "reports@contoso.com"},
		{"string of int", store.GetString("client.max_retries"), ""},
		{"int", store.GetInt("client.max_retries"), 3},
		{"int of string", store.GetInt("sender.address"), 0},
		{"int missing", store.GetInt("client.burst"), 0},
		{"float", store.GetFloat("client.requests_per_second"), 2.5},
		{"float of int", store.GetFloat("client.max_retries"), 3.0},
		{"float of string", store.GetFloat("sender.address"), 0.0},
		{"bool", store.GetBool("log.payloads"), true},
		{"bool of string", store.GetBool("sender.address"), false},
		{"bool missing", store.GetBool("graph.verbose"), false},
		{"slice", store.GetStringSlice("auth.scopes"), []string{graphScope}},
		{"slice of string", store.GetStringSlice("sender.address"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_GetInt_Int64FromTOML(t *testing.T) {
	store, _ := newTestStore(t)

	store.mu.Lock()
	store.data["client.timeout_seconds"] = int64(45)
	store.mu.Unlock()

	assert.Equal(t, 45, store.GetInt("client.timeout_seconds"))
	assert.InDelta(t, 45.0, store.GetFloat("client.timeout_seconds"), 0.0001)
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("sender.name", "Reports"))
	require.NoError(t, store.Set("sender.name", "Reports Bot"))

	assert.Equal(t, "Reports Bot", store.GetString("sender.name"))
}

func TestConfigStore_SurvivesReload(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("auth.tenant_id", "tenant-1"))
	require.NoError(t, store.Set("auth.scopes", []string{graphScope}))
	require.NoError(t, store.Set("client.max_retries", 3))
	require.NoError(t, store.Set("client.requests_per_second", 2.5))
	require.NoError(t, store.Set("log.payloads", false))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "tenant-1", reloaded.GetString("auth.tenant_id"))
	assert.Equal(t, []string{graphScope}, reloaded.GetStringSlice("auth.scopes"))
	assert.Equal(t, 3, reloaded.GetInt("client.max_retries"))
	assert.InDelta(t, 2.5, reloaded.GetFloat("client.requests_per_second"), 0.0001)
	v, ok := reloaded.Get("log.payloads")
	assert.True(t, ok)
	assert.Equal(t, false, v)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("auth.tenant_id", "tenant-1"))
	require.NoError(t, store.Set("client.max_retries", 3))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[auth]")
	assert.Contains(t, string(raw), "[client]")
	assert.NotContains(t, string(raw), "'auth.tenant_id'")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("auth.client_secret", "s3cr3t"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[auth]
tenant_id = "t"
client_id = "c"

[sender]
address = "bot@contoso.com"

[client]
requests_per_second = 2.5
burst = 4
`)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "t", store.GetString("auth.tenant_id"))
	assert.Equal(t, "bot@contoso.com", store.GetString("sender.address"))
	assert.InDelta(t, 2.5, store.GetFloat("client.requests_per_second"), 0.0001)
	assert.Equal(t, 4, store.GetInt("client.burst"))
	assert.Equal(t, []string{
		"auth.client_id",
		"auth.tenant_id",
		"client.burst",
		"client.requests_per_second",
		"sender.address",
	}, store.Keys())
}

func TestConfigStore_Load_PicksUpExternalEdits(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("sender.name", "Reports"))

	writeConfig(t, filepath.Dir(store.Path()), "[sender]\nname = \"Billing\"\n")

	require.NoError(t, store.Load())
	assert.Equal(t, "Billing", store.GetString("sender.name"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, dir := newTestStore(t)
	require.NoError(t, store.Set("auth.tenant_id", "tenant-1"))

	writeConfig(t, dir, "auth.tenant_id = ][")

	assert.Error(t, store.Load())
}

func TestConfigStore_Load_ReadError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("auth.tenant_id", "tenant-1"))

	require.NoError(t, os.Chmod(store.Path(), 0000))
	defer func() { _ = os.Chmod(store.Path(), 0600) }()

	err := store.Load()
	assert.Error(t, err)
	assert.False(t, os.IsNotExist(err))
}

func TestConfigStore_Set_WriteErrorRollsBack(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("sender.name", "Reports"))

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("sender.address", "reports@contoso.com"))
	_, ok := store.Get("sender.address")
	assert.False(t, ok)

	assert.Error(t, store.Set("sender.name", "Billing"))
	assert.Equal(t, "Reports", store.GetString("sender.name"))
}

func TestConfigStore_Set_UnmarshallableValue(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Set("client.burst", make(chan int))

	assert.Error(t, err)
	_, ok := store.Get("client.burst")
	assert.False(t, ok)
}

func TestConfigStore_Set_EmptyKey(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Error(t, store.Set(" ", "x"))
}

func TestConfigStore_Set_KeyConflict(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("auth", "scalar"))
	err := store.Set("auth.tenant_id", "t")

	assert.Error(t, err)
	_, ok := store.Get("auth.tenant_id")
	assert.False(t, ok)
}

func TestConfigStore_Unset(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("sender.name", "Bot"))
	require.NoError(t, store.Unset("sender.name"))
	require.NoError(t, store.Unset("graph.authority"))

	_, ok := store.Get("sender.name")
	assert.False(t, ok)

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newTestStore(t)
	keys := []string{
		"auth.tenant_id", "auth.client_id", "sender.name", "sender.address",
		"client.max_retries", "client.burst", "graph.base_url",
	}

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Len(t, store.Keys(), len(keys))
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"auth.tenant_id":     "t",
		"auth.client_id":     "c",
		"client.max_retries": 3,
	}

	got, err := nestMap(flat)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"auth":   map[string]any{"tenant_id": "t", "client_id": "c"},
		"client": map[string]any{"max_retries": 3},
	}, got)
	assert.Equal(t, flat, flattenMap(got, ""))
}

func TestNestMap_TableConflict(t *testing.T) {
	_, err := nestMap(map[string]any{
		"sender":         "bot@contoso.com",
		"sender.address": "bot@contoso.com",
	})

	assert.Error(t, err)
}
