package pkgstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st, err := NewLocal(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fleet-1.1.0.zip"), []byte("zip"), 0o644))

	ok, err := st.Exists(ctx, "fleet-1.1.0.zip")
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := DeleteAll(ctx, st, "fleet-1.1.0.zip", "", "missing.zip", "fleet-1.1.0.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"fleet-1.1.0.zip"}, removed)

	ok, err = st.Exists(ctx, "fleet-1.1.0.zip")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	st, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../etc/passwd", "a/b.zip", `..\x.zip`, "..", " "} {
		_, err := st.Delete(context.Background(), name)
		assert.Error(t, err, name)
	}
}

type fakeS3 struct {
	objects map[string]bool
	deleted []string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if !f.objects[*in.Key] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]bool{"packages/api.zip": true}}
	st := newS3WithClient(fake, "updates", "/packages/")

	removed, err := DeleteAll(ctx, st, "api.zip", "frontend.zip")
	require.NoError(t, err)
	assert.Equal(t, []string{"api.zip"}, removed)
	assert.Equal(t, []string{"packages/api.zip"}, fake.deleted)
}

type failingS3 struct{ fakeS3 }

func (f *failingS3) HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return nil, errors.New("access denied")
}

func TestS3StoreError(t *testing.T) {
	st := newS3WithClient(&failingS3{}, "updates", "")
	_, err := DeleteAll(context.Background(), st, "api.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestS3ConfigValidate(t *testing.T) {
	assert.Error(t, S3Config{}.Validate())
	assert.Error(t, S3Config{Bucket: "b", AccessKeyID: "id"}.Validate())
	assert.NoError(t, S3Config{Bucket: "b"}.Validate())
}
