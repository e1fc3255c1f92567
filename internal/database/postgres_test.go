package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/fluid-helper/internal/database/migrations"
	"gorm.io/driver/sqlite"
)

func TestOpenMigratesSchema(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "fluid.db")))
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&FluidLog{}, "idx_fluid_logs_day_order"))
	assert.True(t, db.Migrator().HasIndex(&GagEvent{}, "idx_gag_events_batch"))

	var count int64
	require.NoError(t, db.Model(&migrations.MigrationRecord{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "fluid.db")))
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var count int64
	require.NoError(t, db.Model(&migrations.MigrationRecord{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestWeightDateIsUnique(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "fluid.db")))
	require.NoError(t, err)

	require.NoError(t, db.Create(&WeightEntry{Date: "2024-05-01", WeightKg: 12.3}).Error)
	assert.Error(t, db.Create(&WeightEntry{Date: "2024-05-01", WeightKg: 12.4}).Error)
}
