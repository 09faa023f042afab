package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	abstractions "github.com/microsoft/kiota-abstractions-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"
	"github.com/microsoftgraph/msgraph-sdk-go/drives"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/models/odataerrors"
	"golang.org/x/oauth2"

	"github.com/theakshaypant/concertdb/internal/core"
)

// tokenCredential bridges the saved OAuth2 token into the Azure SDK's
// TokenCredential interface so the Graph SDK can authenticate requests.
type tokenCredential struct {
	src oauth2.TokenSource
}

func (c *tokenCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.src.Token()
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}

// OneDriveStore keeps backups under a folder of the signed-in user's drive.
// Key segments become nested folders.
type OneDriveStore struct {
	client  *msgraphsdk.GraphServiceClient
	driveID string
	folder  string
}

// NewOneDriveStore logs in with the saved token and resolves the user's
// default drive.
func NewOneDriveStore(ctx context.Context, clientID, tenantID, tokenFile, folder string) (*OneDriveStore, error) {
	if clientID == "" {
		return nil, fmt.Errorf("client_id not configured for the onedrive backup driver")
	}
	src, err := newSavedTokenSource(ctx, MicrosoftOAuthConfig(clientID, tenantID), tokenFile)
	if err != nil {
		return nil, err
	}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(&tokenCredential{src: src}, []string{
		"https://graph.microsoft.com/.default",
	})
	if err != nil {
		return nil, fmt.Errorf("create graph client: %w", err)
	}
	d, err := client.Me().Drive().Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve drive: %w", err)
	}
	if d.GetId() == nil {
		return nil, fmt.Errorf("resolve drive: no drive id returned")
	}
	if folder == "" {
		folder = "concertdb"
	}
	return &OneDriveStore{client: client, driveID: *d.GetId(), folder: strings.Trim(folder, "/")}, nil
}

func (s *OneDriveStore) Driver() Driver { return DriverOneDrive }

// item addresses a drive item by path relative to the drive root.
func (s *OneDriveStore) item(rel string) *drives.ItemItemsDriveItemItemRequestBuilder {
	p := path.Join(s.folder, rel)
	return s.client.Drives().ByDriveId(s.driveID).Items().ByDriveItemId("root:/" + p + ":")
}

func (s *OneDriveStore) Put(ctx context.Context, key string, r io.Reader, _ int64) (Info, error) {
	if err := validKey(key); err != nil {
		return Info{}, err
	}
	if _, err := s.item(key).Get(ctx, nil); err == nil {
		return Info{}, fmt.Errorf("%s: %w", key, ErrExists)
	} else if !isGraphNotFound(err) {
		return Info{}, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return Info{}, err
	}
	it, err := s.item(key).Content().Put(ctx, body, nil)
	if err != nil {
		return Info{}, err
	}
	info := driveItemInfo(path.Dir(key), it)
	info.Key = key
	return info, nil
}

func (s *OneDriveStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	b, err := s.item(key).Content().Get(ctx, nil)
	if err != nil {
		if isGraphNotFound(err) {
			return nil, fmt.Errorf("%s: %w", key, core.ErrNotFound)
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// List walks the folder holding prefix. Keys produced by NewKey keep all
// backups of one environment in a single folder.
func (s *OneDriveStore) List(ctx context.Context, prefix string) ([]Info, error) {
	dir := strings.Trim(prefix, "/")
	if !strings.HasSuffix(prefix, "/") {
		dir = path.Dir(dir)
	}
	if dir == "." {
		dir = ""
	}

	headers := abstractions.NewRequestHeaders()
	headers.Add("Cache-Control", "no-cache")
	top := int32(200)
	config := &drives.ItemItemsItemChildrenRequestBuilderGetRequestConfiguration{
		QueryParameters: &drives.ItemItemsItemChildrenRequestBuilderGetQueryParameters{
			Select: []string{"name", "size", "lastModifiedDateTime", "file"},
			Top:    &top,
		},
		Headers: headers,
	}
	result, err := s.item(dir).Children().Get(ctx, config)
	if err != nil {
		if isGraphNotFound(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("list drive folder: %w", err)
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.DriveItemable](
		result,
		s.client.GetAdapter(),
		models.CreateDriveItemCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}

	infos := []Info{}
	err = pageIterator.Iterate(ctx, func(it models.DriveItemable) bool {
		if it.GetFile() == nil {
			return true // folders
		}
		info := driveItemInfo(dir, it)
		if strings.HasPrefix(info.Key, prefix) {
			infos = append(infos, info)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("iterate drive items: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func driveItemInfo(dir string, it models.DriveItemable) Info {
	var info Info
	if it == nil {
		return info
	}
	if name := it.GetName(); name != nil {
		info.Key = path.Join(dir, *name)
	}
	if size := it.GetSize(); size != nil {
		info.Size = *size
	}
	if t := it.GetLastModifiedDateTime(); t != nil {
		info.LastModified = t.UTC()
	}
	return info
}

func isGraphNotFound(err error) bool {
	var odErr *odataerrors.ODataError
	if errors.As(err, &odErr) {
		return odErr.ResponseStatusCode == http.StatusNotFound
	}
	var apiErr *abstractions.ApiError
	return errors.As(err, &apiErr) && apiErr.ResponseStatusCode == http.StatusNotFound
}
