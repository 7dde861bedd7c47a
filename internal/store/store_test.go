package store

import (
	"path/filepath"
	"testing"

	"github.com/rooststack/coopsync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- Open / Close ---

func TestOpen_CreatesDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "coopsync.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpen_ReopensExistingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coopsync.db")

	s1, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.Set(models.EntityIndividual, models.Collection{{"id": "1", "name": "Rocky"}}))
	require.NoError(t, s1.Close())

	s2, err := Open(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	got := s2.Get(models.EntityIndividual)
	require.Len(t, got, 1)
	assert.Equal(t, "Rocky", got[0]["name"])
}

// --- Get / Set ---

func TestGet_EmptyByDefault(t *testing.T) {
	s := testStore(t)

	got := s.Get(models.EntityFight)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSet_RoundTrip(t *testing.T) {
	s := testStore(t)

	records := models.Collection{
		{"id": "f1", "individualId": "1", "result": "win"},
		{"id": "f2", "individualId": "2", "result": "loss"},
	}
	require.NoError(t, s.Set(models.EntityFight, records))

	got := s.Get(models.EntityFight)
	require.Len(t, got, 2)
	assert.Equal(t, "win", got[0]["result"])
	assert.Equal(t, "f2", got[1]["id"])
}

func TestSet_FullReplace(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(models.EntityTraining, models.Collection{{"id": "a"}, {"id": "b"}}))
	require.NoError(t, s.Set(models.EntityTraining, models.Collection{{"id": "c"}}))

	got := s.Get(models.EntityTraining)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0]["id"])
}

func TestSet_NilBecomesEmpty(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(models.EntityHygiene, nil))

	got := s.Get(models.EntityHygiene)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// --- Initialize ---

func TestInitialize_SeedsEveryEntity(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Initialize())

	snapshot := s.ExportAll()
	require.Len(t, snapshot, len(models.Entities))

	for _, entity := range models.Entities {
		assert.NotNil(t, snapshot[entity], entity)
		assert.Empty(t, snapshot[entity], entity)
	}
}

func TestInitialize_DoesNotOverwriteExistingData(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(models.EntityIndividual, models.Collection{{"id": "1"}}))
	require.NoError(t, s.Initialize())
	require.NoError(t, s.Initialize())

	assert.Len(t, s.Get(models.EntityIndividual), 1)
}

// --- Settings ---

func TestGetSetting_AbsentReportsFalse(t *testing.T) {
	s := testStore(t)

	var mode string
	assert.False(t, s.GetSetting(SettingStorageMode, &mode))
}

func TestSetSetting_RoundTrip(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.SetSetting(SettingStorageMode, "remote"))

	var mode string
	require.True(t, s.GetSetting(SettingStorageMode, &mode))
	assert.Equal(t, "remote", mode)
}

func TestSetSetting_StructValue(t *testing.T) {
	s := testStore(t)

	in := models.RemoteConfig{Token: "tok", Owner: "owner", Repo: "repo"}
	require.NoError(t, s.SetSetting(SettingRemoteConfig, in))

	var out models.RemoteConfig
	require.True(t, s.GetSetting(SettingRemoteConfig, &out))
	assert.Equal(t, in, out)
}

func TestRemoveSetting(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.SetSetting(SettingStorageMode, "remote"))
	require.NoError(t, s.RemoveSetting(SettingStorageMode))

	var mode string
	assert.False(t, s.GetSetting(SettingStorageMode, &mode))
}

func TestRemoveSetting_AbsentKeyIsNoError(t *testing.T) {
	s := testStore(t)
	assert.NoError(t, s.RemoveSetting("never-written"))
}

// --- Bulk operations ---

func TestExportImportAll_RoundTrip(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Initialize())

	require.NoError(t, s.Set(models.EntityIndividual, models.Collection{{"id": "1", "name": "Rocky"}}))
	require.NoError(t, s.Set(models.EntityWeightRecord, models.Collection{{"id": "w1", "weight": "2.4"}}))

	exported := s.ExportAll()

	other := testStore(t)
	require.NoError(t, other.ImportAll(exported))

	assert.Equal(t, exported, other.ExportAll())
}

func TestImportAll_IgnoresUnknownKeys(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Initialize())

	snapshot := models.Snapshot{
		"Bogus":                 models.Collection{{"id": "x"}},
		models.EntityIndividual: models.Collection{{"id": "1"}},
	}
	require.NoError(t, s.ImportAll(snapshot))

	assert.Len(t, s.Get(models.EntityIndividual), 1)
	assert.NotContains(t, s.ExportAll(), "Bogus")
}

func TestClearAll_RemovesEntitiesKeepsSettings(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.Set(models.EntityFeeding, models.Collection{{"id": "1"}}))
	require.NoError(t, s.SetSetting(SettingStorageMode, "local"))

	require.NoError(t, s.ClearAll())

	assert.Empty(t, s.Get(models.EntityFeeding))

	var mode string
	assert.True(t, s.GetSetting(SettingStorageMode, &mode))
}
