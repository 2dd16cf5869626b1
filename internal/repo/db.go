package repo

import (
	"WardrobeAI/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает подключение к БД по DSN и накатывает миграции.
// Postgres выбирается по схеме/ключам DSN, иначе используется локальный
// SQLite (чистый Go драйвер modernc.org/sqlite).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		dial = postgres.Open(dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: strings.TrimPrefix(dsn, "sqlite://")}
	case dsn == "":
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "wardrobe.db"}
	default:
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.ClothingItem{},
		&model.Outfit{},
		&model.UserModel{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	return db, nil
}
