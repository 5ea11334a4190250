package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSON("  {\"a\":1}\n"))
}

func TestLimitStr(t *testing.T) {
	assert.Equal(t, "abc", LimitStr("abc", 5))
	assert.Equal(t, "ab...", LimitStr("abc", 2))
	assert.Equal(t, "ké...", LimitStr("kéé", 2))
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, Save(path, map[string]int{"a": 1}))
	assert.True(t, Exists(path))

	got, err := Load[map[string]int](path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)

	_, err = Load[map[string]int](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[map[string]int]()
	m.Store("a", 1)
	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = m.LoadAndDelete("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = m.Load("a")
	assert.False(t, ok)
}

func TestSyncMapDeleteFunc(t *testing.T) {
	m := NewSyncMap[map[string]*int]()
	first, second := new(int), new(int)
	m.Store("a", first)
	m.Store("a", second)

	assert.False(t, m.DeleteFunc("a", func(v *int) bool { return v == first }))
	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Same(t, second, v)

	assert.True(t, m.DeleteFunc("a", func(v *int) bool { return v == second }))
	_, ok = m.Load("a")
	assert.False(t, ok)
	assert.False(t, m.DeleteFunc("missing", func(*int) bool { return true }))
}
