package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-complaint-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ComplaintCategory{},
		&models.ComplaintStatus{},
		&models.Complaint{},
		&models.ComplaintResponse{},
		&models.ActivityLog{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fixture struct {
	student  models.User
	other    models.User
	staff    models.User
	academic models.ComplaintCategory
	it       models.ComplaintCategory
	newStat  models.ComplaintStatus
	resolved models.ComplaintStatus
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		student:  models.User{Name: "Sita", Email: "sita@campus.test", Password: "x", Role: models.RoleStudent},
		other:    models.User{Name: "Omar", Email: "omar@campus.test", Password: "x", Role: models.RoleStudent},
		staff:    models.User{Name: "Stan", Email: "stan@campus.test", Password: "x", Role: models.RoleStaff},
		academic: models.ComplaintCategory{Name: "Academic Issues", IsActive: true},
		it:       models.ComplaintCategory{Name: "IT Services", IsActive: true},
		newStat:  models.ComplaintStatus{Name: "New", Color: "#3498db", IsActive: true},
		resolved: models.ComplaintStatus{Name: "Resolved", Color: "#2ecc71", IsActive: true},
	}
	require.NoError(t, db.Create(&f.student).Error)
	require.NoError(t, db.Create(&f.other).Error)
	require.NoError(t, db.Create(&f.staff).Error)
	require.NoError(t, db.Create(&f.academic).Error)
	require.NoError(t, db.Create(&f.it).Error)
	require.NoError(t, db.Create(&f.newStat).Error)
	require.NoError(t, db.Create(&f.resolved).Error)
	return f
}

func createComplaint(t *testing.T, db *gorm.DB, c models.Complaint) models.Complaint {
	t.Helper()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}
