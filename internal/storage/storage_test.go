package storage

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/model"
)

// Helper to create an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	db, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// DB Tests
// =============================================================================

func TestOpenClose(t *testing.T) {
	t.Run("in_memory", func(t *testing.T) {
		db, err := Open(Options{InMemory: true})
		require.NoError(t, err)
		assert.NotNil(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("empty_path_uses_in_memory", func(t *testing.T) {
		db, err := Open(Options{Path: ""})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		db.Close()
	})

	t.Run("memory_path", func(t *testing.T) {
		db, err := Open(Options{Path: MemoryPath})
		require.NoError(t, err)
		assert.Equal(t, "", db.Path())
		db.Close()
	})

	t.Run("on_disk", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db")
		db, err := Open(Options{Path: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, db.Path())
		assert.NotNil(t, db.Badger())
		db.Close()
	})
}

func TestOpenLockedDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	db, err := Open(Options{Path: dir})
	require.NoError(t, err)
	defer db.Close()

	_, err = Open(Options{Path: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDatabaseLocked))
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	assert.Contains(t, path, AppName)
	assert.Contains(t, path, "db")
}

// =============================================================================
// CRUD Tests
// =============================================================================

func TestCRUD(t *testing.T) {
	db := setupTestDB(t)

	med := &model.Medication{Key: "medication:abc", Name: "Sevelamer"}
	require.NoError(t, db.Set(med))

	exists, err := db.Exists("medication:abc")
	require.NoError(t, err)
	assert.True(t, exists)

	got := &model.Medication{}
	require.NoError(t, db.Get("medication:abc", got))
	assert.Equal(t, "Sevelamer", got.Name)
	assert.Equal(t, "medication:abc", got.Key)

	require.NoError(t, db.Delete("medication:abc"))
	exists, err = db.Exists("medication:abc")
	require.NoError(t, err)
	assert.False(t, exists)

	err = db.Get("medication:abc", got)
	assert.True(t, IsErrKeyNotFound(err))
}

func TestGetAllByPrefixSkipsCorruptEntries(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Set(&model.Medication{Key: "medication:good", Name: "Calcitriol"}))
	require.NoError(t, db.SetBytes("medication:bad", []byte("{not json")))

	res, err := GetAllByPrefix(db, "medication:", func() *model.Medication { return &model.Medication{} })
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Calcitriol", res.Items[0].Name)
	assert.Equal(t, []string{"medication:bad"}, res.Skipped)
}

// =============================================================================
// Record Repo Tests
// =============================================================================

func TestRecordRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepo(db)

	later := &model.HealthRecord{Date: "2024-03-02", Weight: 63, DryWeight: 60, Systolic: 130, Diastolic: 80}
	earlier := &model.HealthRecord{Date: "2024-03-01", Weight: 62.5, DryWeight: 60, FluidRemoval: floatPtr(2.5), Systolic: 128, Diastolic: 82}
	require.NoError(t, repo.Create(later))
	require.NoError(t, repo.Create(earlier))

	assert.NotEmpty(t, later.ID())
	assert.False(t, later.CreatedAt.IsZero())

	records, skipped, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-01", records[0].Date)
	assert.Equal(t, "2024-03-02", records[1].Date)
	require.NotNil(t, records[0].FluidRemoval)
	assert.Equal(t, 2.5, *records[0].FluidRemoval)
	assert.Nil(t, records[1].FluidRemoval)

	got, err := repo.Get(earlier.Key)
	require.NoError(t, err)
	assert.Equal(t, 62.5, got.Weight)
}

func TestSortRecordsSameDay(t *testing.T) {
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	records := []*model.HealthRecord{
		{Key: "record:b", Date: "2024-03-01", CreatedAt: base.Add(time.Hour)},
		{Key: "record:a", Date: "2024-03-01", CreatedAt: base},
		{Key: "record:c", Date: "2024-02-28", CreatedAt: base.Add(2 * time.Hour)},
	}
	model.SortRecords(records)
	assert.Equal(t, "record:c", records[0].Key)
	assert.Equal(t, "record:a", records[1].Key)
	assert.Equal(t, "record:b", records[2].Key)
}

// =============================================================================
// Medication Repo Tests
// =============================================================================

func TestMedicationRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMedicationRepo(db)

	evening := &model.Medication{Name: "Sevelamer", Dosage: "800mg", ReminderTime: "20:00"}
	morning := &model.Medication{Name: "Calcitriol", Dosage: "0.25mcg", ReminderTime: "08:00"}
	asNeeded := &model.Medication{Name: "Antacid", Dosage: "1 tab"}
	for _, m := range []*model.Medication{evening, morning, asNeeded} {
		require.NoError(t, repo.Create(m))
	}

	meds, skipped, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, meds, 3)
	assert.Equal(t, "Calcitriol", meds[0].Name)
	assert.Equal(t, "Sevelamer", meds[1].Name)
	assert.Equal(t, "Antacid", meds[2].Name)

	morning.ToggleTaken("2024-05-02")
	require.NoError(t, repo.Update(morning))
	got, err := repo.Get(morning.Key)
	require.NoError(t, err)
	assert.True(t, got.IsTakenOn("2024-05-02"))

	require.NoError(t, repo.Delete(asNeeded.Key))
	meds, err = repo.ListMedications()
	require.NoError(t, err)
	assert.Len(t, meds, 2)
}

func TestFindByIDPrefix(t *testing.T) {
	meds := []*model.Medication{
		{Key: "medication:abc123"},
		{Key: "medication:abd456"},
	}

	m, err := FindByIDPrefix(meds, "abc")
	require.NoError(t, err)
	assert.Equal(t, "medication:abc123", m.Key)

	m, err = FindByIDPrefix(meds, "medication:abd456")
	require.NoError(t, err)
	assert.Equal(t, "medication:abd456", m.Key)

	_, err = FindByIDPrefix(meds, "ab")
	assert.ErrorIs(t, err, errors.ErrAmbiguousID)

	_, err = FindByIDPrefix(meds, "zzz")
	assert.ErrorIs(t, err, errors.ErrMedicationNotFound)

	_, err = FindByIDPrefix(meds, "")
	assert.ErrorIs(t, err, errors.ErrMedicationNotFound)
}

// =============================================================================
// Profile and Permission Tests
// =============================================================================

func TestProfileRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepo(db)

	p, corrupt, err := repo.Get()
	require.NoError(t, err)
	assert.False(t, corrupt)
	assert.True(t, p.IsEmpty())

	require.NoError(t, repo.Save(&model.PatientProfile{Name: "Ana", Age: 70, Treatment: model.StartedOn("2023-01-15")}))
	p, _, err = repo.Get()
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, 70, p.Age)
	assert.Equal(t, model.TreatmentStartDate, p.Treatment.Kind)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestProfileRepoCorrupt(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.SetBytes(model.KeyProfile, []byte("garbage")))

	p, corrupt, err := NewProfileRepo(db).Get()
	require.NoError(t, err)
	assert.True(t, corrupt)
	assert.True(t, p.IsEmpty())
}

func TestPermissionRepo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPermissionRepo(db)

	p, err := repo.Permission()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionUnrequested, p)

	require.NoError(t, repo.SetPermission(model.PermissionGranted))
	p, err = repo.Permission()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionGranted, p)

	require.NoError(t, db.SetBytes(model.KeyNotifyPermission, []byte(`{"state":"maybe"}`)))
	p, err = repo.Permission()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionUnrequested, p)
}

// =============================================================================
// Reader Tests
// =============================================================================

func TestReader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	db, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, NewMedicationRepo(db).Create(&model.Medication{Name: "Calcitriol", ReminderTime: "08:00"}))
	require.NoError(t, NewPermissionRepo(db).SetPermission(model.PermissionGranted))
	require.NoError(t, db.Close())

	r := NewReader(dir)
	meds, err := r.ListMedications()
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Calcitriol", meds[0].Name)

	perm, err := r.Permission()
	require.NoError(t, err)
	assert.Equal(t, model.PermissionGranted, perm)
}

func TestReaderRetriesLockedDatabase(t *testing.T) {
	calls := 0
	r := &Reader{
		Retries: 2,
		Delay:   time.Millisecond,
		open: func(Options) (*DB, error) {
			calls++
			if calls < 3 {
				return nil, errors.NewSystemErrorWithOp("open_database", "database is in use", errors.ErrDatabaseLocked)
			}
			return Open(Options{InMemory: true})
		},
	}

	meds, err := r.ListMedications()
	require.NoError(t, err)
	assert.Empty(t, meds)
	assert.Equal(t, 3, calls)
}

func TestReaderGivesUp(t *testing.T) {
	calls := 0
	r := &Reader{
		Retries: 1,
		Delay:   time.Millisecond,
		open: func(Options) (*DB, error) {
			calls++
			return nil, errors.NewSystemErrorWithOp("open_database", "database is in use", errors.ErrDatabaseLocked)
		},
	}

	_, err := r.ListMedications()
	assert.ErrorIs(t, err, errors.ErrDatabaseLocked)
	assert.Equal(t, 2, calls)
}

// =============================================================================
// Export Tests
// =============================================================================

func TestExportAll(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, NewRecordRepo(db).Create(&model.HealthRecord{Date: "2024-03-01", Weight: 62, DryWeight: 60}))
	require.NoError(t, NewMedicationRepo(db).Create(&model.Medication{Name: "Calcitriol"}))
	require.NoError(t, db.SetBytes("record:broken", []byte("{")))

	exp, err := ExportAll(db)
	require.NoError(t, err)
	assert.Len(t, exp.Records, 1)
	assert.Len(t, exp.Medications, 1)
	assert.Nil(t, exp.Profile)
	assert.Equal(t, model.PermissionUnrequested, exp.Permission)
	assert.Equal(t, []string{"record:broken"}, exp.Skipped)

	var buf bytes.Buffer
	require.NoError(t, exp.WriteJSON(&buf))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "records")
}
