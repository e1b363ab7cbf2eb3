package archive

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// blobAPI is the subset of the blob service used by AzureArchive
type blobAPI interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) error
	Delete(ctx context.Context, name string) error
}

// AzureArchive keeps archived payloads as block blobs in a single container
type AzureArchive struct {
	container string
	api       blobAPI
}

// NewAzureArchive connects to the storage account and verifies the container is reachable
func NewAzureArchive(ctx context.Context, connectionString, containerName string) (*AzureArchive, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, errors.NewConnectionError("failed to create blob client", err)
	}

	sdk := &sdkContainer{client: client, container: containerName}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sdk.ping(checkCtx); err != nil {
		return nil, errors.NewConnectionError("blob container is not reachable", err)
	}

	nuts.L.Infof("[AzureArchive] Connected to container %s", containerName)
	return newAzureArchive(containerName, sdk), nil
}

func newAzureArchive(containerName string, api blobAPI) *AzureArchive {
	return &AzureArchive{container: containerName, api: api}
}

var _ repository.ArchiveRepository = (*AzureArchive)(nil)

func (r *AzureArchive) Put(ctx context.Context, obj models.ArchiveObject, data []byte) error {
	if err := r.api.Upload(ctx, obj.Path, data, obj.ContentType); err != nil {
		return errors.NewStorageError("failed to upload blob", err).WithDetails(map[string]string{
			"container": r.container,
			"path":      obj.Path,
		})
	}
	nuts.L.Debugf("[AzureArchive] Uploaded %s/%s (%d bytes)", r.container, obj.Path, len(data))
	return nil
}

func (r *AzureArchive) Delete(ctx context.Context, path string) error {
	if err := r.api.Delete(ctx, path); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return errors.NewNotFoundError("archive object not found", repository.ErrNotFound)
		}
		return errors.NewStorageError("failed to delete blob", err)
	}
	nuts.L.Infof("[AzureArchive] Deleted %s/%s", r.container, path)
	return nil
}

// sdkContainer adapts *azblob.Client to blobAPI for one container
type sdkContainer struct {
	client    *azblob.Client
	container string
}

func (c *sdkContainer) ping(ctx context.Context) error {
	_, err := c.client.ServiceClient().NewContainerClient(c.container).GetProperties(ctx, nil)
	return err
}

func (c *sdkContainer) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := c.client.UploadBuffer(ctx, c.container, name, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	return err
}

func (c *sdkContainer) Delete(ctx context.Context, name string) error {
	_, err := c.client.DeleteBlob(ctx, c.container, name, nil)
	return err
}
