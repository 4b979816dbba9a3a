package filestore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confpaper/pkg/platform/sentinel"
)

// fakeS3 keeps objects in a map and mimics the calls S3Storage makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []*s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	old := time.Now().Add(-48 * time.Hour)
	for k := range f.objects {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), LastModified: &old})
	}
	return out, nil
}

func TestS3StorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := NewS3(fake, "papers")

	handle, err := store.Save(ctx, strings.NewReader("%PDF"), "paper.pdf")
	require.NoError(t, err)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "*", aws.ToString(fake.puts[0].IfNoneMatch))
	assert.Equal(t, "papers", aws.ToString(fake.puts[0].Bucket))
	assert.True(t, strings.HasSuffix(handle, ".pdf"))

	rc, err := store.OpenRead(ctx, handle)
	require.NoError(t, err)
	_, err = rc.Seek(1, io.SeekStart)
	require.NoError(t, err)
	rest, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "PDF", string(rest))
	require.NoError(t, rc.Close())

	require.NoError(t, store.Delete(ctx, handle))
	_, err = store.OpenRead(ctx, handle)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestS3StorageRejectsTraversal(t *testing.T) {
	store := NewS3(newFakeS3(), "papers")
	_, err := store.OpenRead(context.Background(), "../other-bucket/key")
	assert.ErrorIs(t, err, ErrPathEscapesRoot)
	assert.ErrorIs(t, store.Delete(context.Background(), "/abs/key"), ErrPathEscapesRoot)
}
