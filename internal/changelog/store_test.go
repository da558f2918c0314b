package changelog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/testutil"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "changelog.json"))

	cl, exists, err := store.Load()
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, cl)
}

func TestFileStore_LoadNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"month":"2026-01"}`), 0o600))

	cl, exists, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, cl)
}

func TestFileStore_SaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "changelog.json")
	store := NewFileStore(path)

	cl := model.Changelog{model.NewChangelogBatch(day("2026-04-01"), []model.ChangeEntry{
		{Code: "360750", Name: "TIGER 미국S&P500", Field: model.FieldTotalFee, Before: testutil.FloatPtr(0.07), After: nil},
	})}
	require.NoError(t, store.Save(cl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "month": "2026-04",
    "updatedAt": "2026-04-01",
    "changes": [
      {
        "code": "360750",
        "name": "TIGER 미국S&P500",
        "field": "총보수",
        "before": 0.07,
        "after": null
      }
    ]
  }
]
`
	assert.Equal(t, want, string(data))

	loaded, exists, err := store.Load()
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, cl, loaded)
}

func TestFileStore_SaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "changelog.json")
	require.NoError(t, NewFileStore(path).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	err := NewFileStore(filepath.Join(blocker, "changelog.json")).Save(model.Changelog{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPersistence)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "changelog.json"))

	v1 := Rows([]model.OutputRecord{testutil.Record("360750", "TIGER", 0.07, 0.01, 0.002, 0.082)})
	v2 := Rows([]model.OutputRecord{testutil.Record("360750", "TIGER", 0.05, 0.01, 0.002, 0.062)})

	result, err := Build(ctx, store, v1, v1, day("2026-05-01"))
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, result.Action)
	assert.FileExists(t, store.Path)

	result, err = Build(ctx, store, v1, v1, day("2026-05-02"))
	require.NoError(t, err)
	assert.Equal(t, ActionNone, result.Action)

	result, err = Build(ctx, store, v1, v2, day("2026-05-03"))
	require.NoError(t, err)
	assert.Equal(t, ActionAppended, result.Action)
	assert.Len(t, result.Changes, 2)

	result, err = Build(ctx, store, v1, v2, day("2026-05-03"))
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, result.Action)

	cl, _, err := store.Load()
	require.NoError(t, err)
	require.Len(t, cl, 1)
	assert.Equal(t, "2026-05-03", cl[0].UpdatedAt)
	assert.Equal(t, model.FieldTotalFee, cl[0].Changes[0].Field)
	assert.Equal(t, model.FieldRealCost, cl[0].Changes[1].Field)
}

func TestEncode_LeavesInputUntouched(t *testing.T) {
	cl := model.Changelog{
		{Month: "2026-04", UpdatedAt: "2026-04-01"},
		{Month: "2026-05", UpdatedAt: "2026-05-02", Changes: []model.ChangeEntry{}},
	}

	data, err := Encode(cl)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\"changes\": []")
	assert.Nil(t, cl[0].Changes)
	assert.NotNil(t, cl[1].Changes)
}
