// Package storage holds the persistence port behind the domain documents and
// its adapters. A port is a flat key-value store of serialized documents, the
// server-side counterpart of the browser's localStorage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Load when nothing has been stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Port loads and saves whole documents by key.
type Port interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Driver names a Port implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Options selects and configures a driver.
type Options struct {
	Driver      Driver
	DataDir     string
	SQLitePath  string
	PostgresDSN string
	S3          S3Config
}

// Open builds the Port chosen by opts.Driver.
func Open(ctx context.Context, opts Options) (Port, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		return NewFile(opts.DataDir)
	case DriverSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, "vetlab.db")
		}
		return NewSQLite(path)
	case DriverPostgres:
		return NewPostgres(opts.PostgresDSN)
	case DriverS3:
		return NewS3(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
