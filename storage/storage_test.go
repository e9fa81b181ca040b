package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/melba-site-backend/errs"
)

// smallest valid png signature plus IHDR chunk header
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestPolicyInspect(t *testing.T) {
	policy := DefaultPolicy()

	t.Run("accepts png by content", func(t *testing.T) {
		upload, err := policy.Inspect(bytes.NewReader(pngBytes))
		require.NoError(t, err)
		assert.Equal(t, "image/png", upload.ContentType)
		assert.Equal(t, ".png", upload.Extension)
	})

	t.Run("rejects text", func(t *testing.T) {
		_, err := policy.Inspect(strings.NewReader("just some words"))
		assert.ErrorIs(t, err, errs.ErrUnsupportedMediaType)
	})

	t.Run("rejects oversized", func(t *testing.T) {
		small := Policy{MaxBytes: 16, Allowed: policy.Allowed}
		_, err := small.Inspect(bytes.NewReader(pngBytes))
		assert.ErrorIs(t, err, errs.ErrMaxBodySizeExceeded)
	})
}

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "")
	require.NoError(t, err)

	path, err := store.Save(ctx, Upload{Data: pngBytes, ContentType: "image/png", Extension: ".png"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, DefaultURLPrefix))
	assert.True(t, store.Owns(path))

	onDisk := filepath.Join(dir, filepath.Base(path))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	require.NoError(t, store.Delete(ctx, path))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	t.Run("missing file is not an error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, path))
	})

	t.Run("foreign paths are left alone", func(t *testing.T) {
		assert.False(t, store.Owns("/images/default-post.jpg"))
		assert.NoError(t, store.Delete(ctx, "/images/default-post.jpg"))
	})
}

type fakeObjects struct {
	puts    []*s3.PutObjectInput
	deletes []string
	putErr  error
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &fakeObjects{}
	store := NewS3Store(client, S3Config{Bucket: "melba", Prefix: "/uploads/", PublicBaseURL: "https://cdn.example.org/"})

	path, err := store.Save(ctx, Upload{Data: pngBytes, ContentType: "image/png", Extension: ".png"})
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	key := aws.ToString(client.puts[0].Key)
	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.Equal(t, "https://cdn.example.org/"+key, path)
	assert.Equal(t, "image/png", aws.ToString(client.puts[0].ContentType))

	require.NoError(t, store.Delete(ctx, path))
	assert.Equal(t, []string{key}, client.deletes)

	require.NoError(t, store.Delete(ctx, "/images/default-post.jpg"))
	assert.Len(t, client.deletes, 1)

	client.putErr = errors.New("access denied")
	_, err = store.Save(ctx, Upload{Data: pngBytes, Extension: ".png"})
	assert.ErrorIs(t, err, errs.ErrUploadFailed)
}

func TestS3CompatibleOptions(t *testing.T) {
	cfg := S3Config{
		Bucket:          "melba",
		Endpoint:        "https://project.supabase.co/storage/v1/s3",
		AccessKeyID:     "key-id",
		SecretAccessKey: "secret",
	}

	var lo awsconfig.LoadOptions
	for _, opt := range loadOptions("us-west-2", cfg) {
		require.NoError(t, opt(&lo))
	}
	assert.Equal(t, "us-west-2", lo.Region)
	require.NotNil(t, lo.Credentials)
	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-id", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)

	var o s3.Options
	clientOptions(cfg)(&o)
	assert.Equal(t, cfg.Endpoint, aws.ToString(o.BaseEndpoint))
	assert.True(t, o.UsePathStyle)

	var plain s3.Options
	clientOptions(S3Config{Bucket: "melba"})(&plain)
	assert.Nil(t, plain.BaseEndpoint)
	assert.False(t, plain.UsePathStyle)
	assert.Len(t, loadOptions("us-east-1", S3Config{}), 1)
}
