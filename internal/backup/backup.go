// Package backup pushes catalog archives to an object store and pulls them
// back. Drivers: a local directory, S3 (or MinIO), Google Drive and OneDrive.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver identifies a backup backend.
type Driver string

const (
	DriverDir      Driver = "dir"
	DriverS3       Driver = "s3"
	DriverGDrive   Driver = "gdrive"
	DriverOneDrive Driver = "onedrive"
)

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("backup already exists")

// Info describes a stored backup.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the minimal object store surface a backup needs. Keys are
// slash-separated paths. Get returns core.ErrNotFound for unknown keys.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, size int64) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
}

// NewKey returns a fresh key for an archive of environment taken at t:
// <prefix>/<environment>/<UTC timestamp>-<short uuid>.<ext>
func NewKey(prefix, environment, ext string, t time.Time) string {
	env := strings.TrimSpace(environment)
	if env == "" {
		env = "memory"
	}
	name := fmt.Sprintf("%s-%s.%s", t.UTC().Format("20060102T150405Z"), uuid.NewString()[:8], ext)
	return path.Join(strings.Trim(prefix, "/"), env, name)
}

// ListPrefix is the key prefix of every backup of environment.
func ListPrefix(prefix, environment string) string {
	env := strings.TrimSpace(environment)
	if env == "" {
		env = "memory"
	}
	return path.Join(strings.Trim(prefix, "/"), env) + "/"
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid key %q contains '..'", key)
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid absolute key %q", key)
	}
	return nil
}
