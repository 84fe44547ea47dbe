package database

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"vetlab/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection initializes a Postgres connection pool using GORM and
// migrates the document table.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := db.AutoMigrate(&model.StoredDocument{}); err != nil {
		slog.Warn("failed to auto-migrate stored_documents", "error", err)
	}

	return db, nil
}

// BuildDSN assembles a postgres URL from its parts, falling back to local defaults.
func BuildDSN(host, port, user, password, name, sslMode string) string {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "5432"
	}
	if user == "" {
		user = "postgres"
	}
	if password == "" {
		password = "postgres"
	}
	if name == "" {
		name = "postgres"
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return u.String()
}
