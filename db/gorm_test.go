package db

import (
	"strings"
	"testing"

	"bmapp/config"

	mysqldriver "github.com/go-sql-driver/mysql"
)

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.internal",
		DBPort:     "3307",
		DBUser:     "bmapp",
		DBPassword: "secret",
		DBName:     "catalog",
	}

	dsn := MySQLDSN(cfg)
	parsed, err := mysqldriver.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("ParseDSN() error = %v", err)
	}
	if parsed.Addr != "db.internal:3307" || parsed.User != "bmapp" || parsed.Passwd != "secret" || parsed.DBName != "catalog" {
		t.Errorf("parsed DSN = %+v", parsed)
	}
	if !parsed.ParseTime || !strings.Contains(dsn, "charset=utf8mb4") {
		t.Errorf("DSN %q lacks parseTime or charset", dsn)
	}
}
