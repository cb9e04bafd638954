// Package coretest provides an in-memory database and fixtures for tests.
package coretest

import (
	"fmt"
	"testing"

	"axiapac.com/personnel/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func CreateBranch(t testing.TB, db *gorm.DB, name string) model.Branch {
	t.Helper()
	b := model.Branch{Name: name, Active: true}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func CreateShift(t testing.TB, db *gorm.DB, start, end string) model.Shift {
	t.Helper()
	s := model.Shift{Name: start + "-" + end, StartTime: start, EndTime: end}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// CreatePersonnel inserts an active person; mutate tweaks the row before insert.
func CreatePersonnel(t testing.TB, db *gorm.DB, first, last string, mutate func(p *model.Personnel)) model.Personnel {
	t.Helper()
	p := model.Personnel{
		Code:      uuid.NewString()[:8],
		FirstName: first,
		LastName:  last,
		Active:    true,
	}
	if mutate != nil {
		mutate(&p)
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func CreateScreen(t testing.TB, db *gorm.DB, screenID string, branchID uint, accessCode string) model.QRScreen {
	t.Helper()
	s := model.QRScreen{
		ScreenID:   screenID,
		BranchID:   branchID,
		Name:       "Ekran " + screenID,
		AccessCode: accessCode,
		Active:     true,
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}
