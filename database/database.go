package database

import (
	golog "log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB
var log = logrus.NewEntry(logrus.StandardLogger())

func Init(d *gorm.DB, logger *logrus.Logger) error {
	db = d
	log = logger.WithFields(logrus.Fields{
		"component": "database",
	})
	return nil
}

func Fini() {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func Get() *gorm.DB {
	if db == nil {
		panic("didn't call database.Init(...)")
	}
	return db
}

// Open connects to the sqlite database at path and migrates models.
func Open(path string, models ...interface{}) (*gorm.DB, error) {
	gormLogger := logger.New(
		golog.New(os.Stdout, "\r\n", golog.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	d, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// set only a single connection so we don't actually have concurrent writes
	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	models = append(models, &TempURL{})
	if err := d.AutoMigrate(models...); err != nil {
		return nil, err
	}
	return d, nil
}

// Vacuum compacts the database file.
func Vacuum(d *gorm.DB) error {
	log.Debugln("vacuum")
	return d.Exec("VACUUM").Error
}
