package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dracory/slidebase/shared/constants"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupported is returned for driver names outside Supported().
var ErrUnsupported = errors.New("unsupported driver")

// Supported lists the canonical driver names.
func Supported() []string {
	return []string{
		constants.DriverSQLite,
		constants.DriverPostgres,
		constants.DriverMySQL,
		constants.DriverSQLServer,
	}
}

// Normalize maps driver aliases to their canonical name.
func Normalize(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "pg", "postgresql":
		return constants.DriverPostgres, nil
	case "mysql", "mariadb":
		return constants.DriverMySQL, nil
	case "sqlite", "sqlite3":
		return constants.DriverSQLite, nil
	case "sqlserver", "mssql":
		return constants.DriverSQLServer, nil
	case "":
		return "", errors.New("driver is required")
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
}

// Open opens a gorm connection using the specified driver and DSN.
func Open(name, dsn string) (*gorm.DB, error) {
	canonical, err := Normalize(name)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch canonical {
	case constants.DriverPostgres:
		dialector = postgres.Open(dsn)
	case constants.DriverMySQL:
		dialector = mysql.Open(dsn)
	case constants.DriverSQLite:
		dialector = sqlite.Open(dsn)
	case constants.DriverSQLServer:
		dialector = sqlserver.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", canonical, err)
	}
	return db, nil
}
