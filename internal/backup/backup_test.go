package backup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/theakshaypant/concertdb/internal/archive"
	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(context.Background(), storage.Config{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewKey(t *testing.T) {
	at := time.Date(2024, 11, 1, 20, 30, 0, 0, time.FixedZone("EST", -5*3600))
	tests := []struct {
		prefix, env string
		want        *regexp.Regexp
	}{
		{"concertdb", "development", regexp.MustCompile(`^concertdb/development/20241102T013000Z-[0-9a-f]{8}\.yaml$`)},
		{"/backups/", "", regexp.MustCompile(`^backups/memory/20241102T013000Z-[0-9a-f]{8}\.yaml$`)},
	}
	for _, tt := range tests {
		got := NewKey(tt.prefix, tt.env, "yaml", at)
		if !tt.want.MatchString(got) {
			t.Errorf("NewKey(%q, %q) = %q", tt.prefix, tt.env, got)
		}
	}
	if NewKey("p", "e", "yaml", at) == NewKey("p", "e", "yaml", at) {
		t.Error("keys taken at the same instant collide")
	}
	if got := ListPrefix("/concertdb", "prod"); got != "concertdb/prod/" {
		t.Errorf("ListPrefix = %q", got)
	}
}

func TestDirStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new dir store: %v", err)
	}

	info, err := s.Put(ctx, "a/b/one.yaml", strings.NewReader("hello"), 5)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "a/b/one.yaml" || info.Size != 5 {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "a/b/one.yaml", strings.NewReader("again"), 5); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := s.Put(ctx, "a/other.yaml", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Get(ctx, "a/b/one.yaml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Errorf("get = %q", data)
	}
	if _, err := s.Get(ctx, "a/missing.yaml"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	list, err := s.List(ctx, "a/b/")
	if err != nil || len(list) != 1 || list[0].Key != "a/b/one.yaml" {
		t.Errorf("list a/b/ = %+v, %v", list, err)
	}
	list, _ = s.List(ctx, "")
	if len(list) != 2 {
		t.Errorf("list all = %+v", list)
	}

	for _, key := range []string{"", "../escape.yaml", "/abs.yaml"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), 1); err == nil {
			t.Errorf("expected error for key %q", key)
		}
	}
}

func TestServicePushPull(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	if _, err := archive.Restore(ctx, src, archive.Sample(), false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dir, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new dir store: %v", err)
	}
	svc := NewService(dir, "", "development")

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	first, err := svc.Push(ctx, src)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if !strings.HasPrefix(first.Key, "concertdb/development/") || first.Size == 0 {
		t.Errorf("unexpected push info %+v", first)
	}
	clock = clock.Add(time.Hour)
	second, err := svc.Push(ctx, src)
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	infos, err := svc.List(ctx)
	if err != nil || len(infos) != 2 {
		t.Fatalf("list = %+v, %v", infos, err)
	}
	latest, err := svc.Latest(ctx)
	if err != nil || latest.Key != second.Key {
		t.Errorf("latest = %+v, %v; want %s", latest, err, second.Key)
	}

	dst := openStore(t)
	n, err := svc.Pull(ctx, first.Key, dst, false)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if n != 37 {
		t.Errorf("pulled %d records, want 37", n)
	}
	rows, _ := dst.ListEvents(ctx, core.EventQuery{})
	if len(rows) != 27 {
		t.Errorf("restored %d events, want 27", len(rows))
	}

	if _, err := svc.Pull(ctx, "concertdb/development/missing.yaml", dst, false); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestEmpty(t *testing.T) {
	dir, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("new dir store: %v", err)
	}
	if _, err := NewService(dir, "", "").Latest(context.Background()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestS3ConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		want    S3Config
		wantErr bool
	}{
		{
			name:    "bucket required",
			environ: map[string]string{},
			wantErr: true,
		},
		{
			name:    "defaults",
			environ: map[string]string{"CONCERTDB_S3_BUCKET": "shows"},
			want:    S3Config{Bucket: "shows", Region: "us-east-1"},
		},
		{
			name: "minio",
			environ: map[string]string{
				"CONCERTDB_S3_BUCKET":            "shows",
				"CONCERTDB_S3_REGION":            "eu-west-1",
				"CONCERTDB_S3_ENDPOINT":          "http://localhost:9000",
				"CONCERTDB_S3_PATH_STYLE":        "true",
				"CONCERTDB_S3_ACCESS_KEY_ID":     "minio",
				"CONCERTDB_S3_SECRET_ACCESS_KEY": "minio123",
			},
			want: S3Config{
				Bucket:          "shows",
				Region:          "eu-west-1",
				Endpoint:        "http://localhost:9000",
				PathStyle:       true,
				AccessKeyID:     "minio",
				SecretAccessKey: "minio123",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := S3ConfigFromEnv(tt.environ)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	s := newMockS3(t)
	if s.Driver() != DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}

	body := []byte("version: 1\n")
	info, err := s.Put(ctx, "concertdb/dev/one.yaml", bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "concertdb/dev/one.yaml" || info.Size != int64(len(body)) {
		t.Errorf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "concertdb/dev/one.yaml", bytes.NewReader(body), int64(len(body))); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := s.Put(ctx, "concertdb/dev/two.yaml", bytes.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := s.Put(ctx, "concertdb/prod/three.yaml", bytes.NewReader(body), int64(len(body))); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, err := s.Get(ctx, "concertdb/dev/one.yaml")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(data, body) {
		t.Errorf("get = %q", data)
	}
	if _, err := s.Get(ctx, "concertdb/dev/missing.yaml"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Two keys under dev span two pages of the mock listing.
	list, err := s.List(ctx, "concertdb/dev/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "concertdb/dev/one.yaml" || list[1].Key != "concertdb/dev/two.yaml" {
		t.Errorf("list = %+v", list)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "ftp"}); !errors.Is(err, core.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
