package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/config"
	apierrors "github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 5, 1, 8, 30, 0, 250000000, time.UTC)

func TestFileArchivePutOverwrites(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileArchive(base)
	require.NoError(t, err)

	obj := models.NewArchiveObject(models.SensorDataCategory, "s1", testTime, 2)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, obj, []byte(`{}`)))
	require.NoError(t, store.Put(ctx, obj, []byte(`{"value":1}`)))

	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(obj.Path)))
	require.NoError(t, err)
	assert.Equal(t, `{"value":1}`, string(data))

	entries, err := os.ReadDir(filepath.Join(base, "sensor_data", "s1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary upload files must not be left behind")
}

func TestFileArchiveDelete(t *testing.T) {
	store, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	obj := models.NewArchiveObject(models.ImageCategory, "cam1", testTime, 3)

	require.NoError(t, store.Put(ctx, obj, []byte{0xff, 0xd8, 0xff}))
	require.NoError(t, store.Delete(ctx, obj.Path))

	_, err = os.Stat(filepath.Join(store.basePath, filepath.FromSlash(obj.Path)))
	assert.True(t, os.IsNotExist(err))

	err = store.Delete(ctx, obj.Path)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestFileArchiveRejectsEscapingPaths(t *testing.T) {
	store, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)

	obj := models.NewArchiveObject(models.SensorDataCategory, "../../etc", testTime, 0)
	obj.Path = "../outside.json"
	err = store.Put(context.Background(), obj, []byte(`{}`))
	assert.True(t, apierrors.IsValidation(err))
}

func TestFileArchiveRejectsRelativeSegments(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileArchive(base)
	require.NoError(t, err)

	for _, path := range []string{"sensor_data/../x.json", "sensor_data/./s1/x.json", "images//x.jpg"} {
		obj := models.NewArchiveObject(models.SensorDataCategory, "s1", testTime, 0)
		obj.Path = path
		assert.True(t, apierrors.IsValidation(store.Put(context.Background(), obj, []byte(`{}`))), path)
		assert.True(t, apierrors.IsValidation(store.Delete(context.Background(), path)), path)
	}

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileArchiveCancelledContext(t *testing.T) {
	store, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = store.Put(ctx, models.NewArchiveObject(models.SensorDataCategory, "s1", testTime, 0), nil)
	assert.True(t, apierrors.IsStorage(err))
}

type MockBlobAPI struct {
	mock.Mock
}

func (m *MockBlobAPI) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	return m.Called(ctx, name, data, contentType).Error(0)
}

func (m *MockBlobAPI) Delete(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func TestAzureArchivePut(t *testing.T) {
	api := new(MockBlobAPI)
	store := newAzureArchive("raw", api)
	obj := models.NewArchiveObject(models.ImageCategory, "cam1", testTime, 3)

	api.On("Upload", mock.Anything, obj.Path, []byte{1, 2, 3}, "image/jpeg").Return(nil).Once()
	require.NoError(t, store.Put(context.Background(), obj, []byte{1, 2, 3}))

	api.On("Upload", mock.Anything, obj.Path, mock.Anything, mock.Anything).Return(errors.New("403 AuthorizationFailure")).Once()
	err := store.Put(context.Background(), obj, []byte{1, 2, 3})
	assert.True(t, apierrors.IsStorage(err))

	api.AssertExpectations(t)
}

func TestAzureArchiveDeleteNotFound(t *testing.T) {
	api := new(MockBlobAPI)
	store := newAzureArchive("raw", api)

	api.On("Delete", mock.Anything, "images/cam1/x.jpg").
		Return(&azcore.ResponseError{ErrorCode: string(bloberror.BlobNotFound), StatusCode: 404})
	err := store.Delete(context.Background(), "images/cam1/x.jpg")
	assert.True(t, apierrors.IsNotFound(err))
}

func TestNewSelectsBackend(t *testing.T) {
	base := t.TempDir()
	store, err := New(context.Background(), config.ObjectStoreConfig{Backend: config.ObjectStoreFilesystem, BasePath: base})
	require.NoError(t, err)
	assert.IsType(t, &FileArchive{}, store)

	_, err = New(context.Background(), config.ObjectStoreConfig{Backend: "s3"})
	assert.Error(t, err)
}
