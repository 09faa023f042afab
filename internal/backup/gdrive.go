package backup

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/theakshaypant/concertdb/internal/core"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GDriveStore keeps backups as files inside one Drive folder. Keys are used
// as file names, slashes included.
type GDriveStore struct {
	service  *drive.Service
	folderID string
}

// NewGDriveStore logs in with the saved token and finds (or creates) the
// backup folder in the user's Drive root.
func NewGDriveStore(ctx context.Context, credentialsFile, tokenFile, folder string) (*GDriveStore, error) {
	cfg, err := GoogleOAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	src, err := newSavedTokenSource(ctx, cfg, tokenFile)
	if err != nil {
		return nil, err
	}
	srv, err := drive.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, src)))
	if err != nil {
		return nil, err
	}
	return newGDriveStore(ctx, srv, folder)
}

func newGDriveStore(ctx context.Context, srv *drive.Service, folder string) (*GDriveStore, error) {
	if folder == "" {
		folder = "concertdb"
	}
	q := fmt.Sprintf("mimeType = '%s' and name = '%s' and 'root' in parents and trashed = false",
		folderMimeType, escapeQuery(folder))
	list, err := srv.Files.List().Q(q).Fields("files(id)").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("find drive folder: %w", err)
	}
	if len(list.Files) > 0 {
		return &GDriveStore{service: srv, folderID: list.Files[0].Id}, nil
	}
	created, err := srv.Files.Create(&drive.File{
		Name:     folder,
		MimeType: folderMimeType,
		Parents:  []string{"root"},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create drive folder: %w", err)
	}
	return &GDriveStore{service: srv, folderID: created.Id}, nil
}

func (s *GDriveStore) Driver() Driver { return DriverGDrive }

func (s *GDriveStore) Put(ctx context.Context, key string, r io.Reader, _ int64) (Info, error) {
	if err := validKey(key); err != nil {
		return Info{}, err
	}
	if _, err := s.find(ctx, key); err == nil {
		return Info{}, fmt.Errorf("%s: %w", key, ErrExists)
	}
	f, err := s.service.Files.Create(&drive.File{
		Name:     key,
		MimeType: "application/yaml",
		Parents:  []string{s.folderID},
	}).Media(r).Fields("id, name, size, modifiedTime").Context(ctx).Do()
	if err != nil {
		return Info{}, err
	}
	return fileInfo(f), nil
}

func (s *GDriveStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	resp, err := s.service.Files.Get(f.Id).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *GDriveStore) List(ctx context.Context, prefix string) ([]Info, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", s.folderID)
	if prefix != "" {
		q += fmt.Sprintf(" and name contains '%s'", escapeQuery(prefix))
	}
	infos := []Info{}
	err := s.service.Files.List().Q(q).
		Fields("nextPageToken, files(id, name, size, modifiedTime)").
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if strings.HasPrefix(f.Name, prefix) {
					infos = append(infos, fileInfo(f))
				}
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *GDriveStore) find(ctx context.Context, key string) (*drive.File, error) {
	q := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", s.folderID, escapeQuery(key))
	list, err := s.service.Files.List().Q(q).Fields("files(id, name, size, modifiedTime)").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	if len(list.Files) == 0 {
		return nil, fmt.Errorf("%s: %w", key, core.ErrNotFound)
	}
	return list.Files[0], nil
}

func fileInfo(f *drive.File) Info {
	info := Info{Key: f.Name, Size: f.Size}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		info.LastModified = t.UTC()
	}
	return info
}

// escapeQuery quotes a value for a Drive search query string literal.
func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
}
