package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/theakshaypant/concertdb/internal/archive"
	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/metrics"
)

// Config selects and configures a backup driver.
type Config struct {
	Driver Driver
	// Key prefix under which every backup is stored.
	Prefix string
	// Root directory for the dir driver.
	Dir string
	// Folder name for the gdrive and onedrive drivers.
	Folder string

	CredentialsFile string // gdrive
	ClientID        string // onedrive
	TenantID        string // onedrive
	TokenFile       string
}

// Open builds the store for cfg.Driver. S3 settings come from the
// CONCERTDB_S3_* environment.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverDir, "":
		return NewDirStore(cfg.Dir)
	case DriverS3:
		s3cfg, err := S3ConfigFromEnv(nil)
		if err != nil {
			return nil, err
		}
		return NewS3Store(ctx, s3cfg)
	case DriverGDrive:
		return NewGDriveStore(ctx, cfg.CredentialsFile, cfg.TokenFile, cfg.Folder)
	case DriverOneDrive:
		return NewOneDriveStore(ctx, cfg.ClientID, cfg.TenantID, cfg.TokenFile, cfg.Folder)
	default:
		return nil, fmt.Errorf("backup driver %q: %w (supported: dir, s3, gdrive, onedrive)", cfg.Driver, core.ErrUnsupported)
	}
}

// Service moves catalog archives between a core.Store and a backup Store.
type Service struct {
	store       Store
	prefix      string
	environment string
	now         func() time.Time
}

func NewService(store Store, prefix, environment string) *Service {
	if prefix == "" {
		prefix = "concertdb"
	}
	return &Service{store: store, prefix: prefix, environment: environment, now: time.Now}
}

// Push dumps src as YAML and uploads it under a fresh key.
func (s *Service) Push(ctx context.Context, src core.Store) (info Info, err error) {
	defer func() { metrics.ObserveBackup(string(s.store.Driver()), "push", err) }()

	ds, err := archive.Dump(ctx, src)
	if err != nil {
		return Info{}, fmt.Errorf("dump catalog: %w", err)
	}
	var buf bytes.Buffer
	if err := archive.Encode(&buf, ds, archive.FormatYAML); err != nil {
		return Info{}, err
	}
	key := NewKey(s.prefix, s.environment, "yaml", s.now())
	info, err = s.store.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return Info{}, fmt.Errorf("upload %s: %w", key, err)
	}
	slog.Info("backup pushed", "driver", s.store.Driver(), "key", info.Key, "size", info.Size)
	return info, nil
}

// List returns this environment's backups, oldest first.
func (s *Service) List(ctx context.Context) (infos []Info, err error) {
	defer func() { metrics.ObserveBackup(string(s.store.Driver()), "list", err) }()
	return s.store.List(ctx, ListPrefix(s.prefix, s.environment))
}

// Latest returns the newest backup of this environment.
func (s *Service) Latest(ctx context.Context) (Info, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return Info{}, err
	}
	if len(infos) == 0 {
		return Info{}, fmt.Errorf("no backups under %s: %w", ListPrefix(s.prefix, s.environment), core.ErrNotFound)
	}
	return infos[len(infos)-1], nil
}

// Pull downloads key and restores it into dst. It returns the number of
// records written.
func (s *Service) Pull(ctx context.Context, key string, dst core.Store, replace bool) (n int, err error) {
	defer func() { metrics.ObserveBackup(string(s.store.Driver()), "pull", err) }()

	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	ds, err := archive.Decode(rc, archive.FormatFromPath(key))
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	n, err = archive.Restore(ctx, dst, ds, replace)
	if err != nil {
		return 0, err
	}
	slog.Info("backup pulled", "driver", s.store.Driver(), "key", key, "records", n)
	return n, nil
}
