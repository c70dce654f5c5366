package database

import (
	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"
)

// memoryDSN keeps every row in the process. The read model is rebuilt from
// the ledger at startup and never outlives it.
const memoryDSN = ":memory:"

// Open creates the session read model database and migrates its tables
func Open() (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", memoryDSN)
	if err != nil {
		return nil, errors.Wrap(err, "open read model")
	}
	// every connection to :memory: is a separate database
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)

	if err := db.AutoMigrate(&ItemRecord{}, &HistoryRecord{}, &RequestRecord{}).Error; err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate read model")
	}
	return db, nil
}
