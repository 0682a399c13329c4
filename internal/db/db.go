package db

import (
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/cobom/geoloc193/internal/models"
	"github.com/cobom/geoloc193/internal/request"
	"github.com/cobom/geoloc193/internal/shortlink"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gdb
}

func Migrate(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(
		&models.User{},
		&request.Request{},
		&request.Message{},
		&shortlink.ShortURL{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}
}
