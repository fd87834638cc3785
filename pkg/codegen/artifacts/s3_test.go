package artifacts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/flare/pkg/codegen"
)

type storedObject struct {
	body     []byte
	metadata map[string]string
}

// fakeS3 is an in-memory bucket implementing S3API
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]storedObject
	puts    []*s3.PutObjectInput
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]storedObject{}}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = storedObject{body: body, metadata: params.Metadata}
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	obj, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(bytes.NewReader(obj.body)),
		Metadata: obj.metadata,
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Manager(client S3API) *S3Manager {
	cfg := DefaultConfig()
	cfg.S3Bucket = "test-bucket"
	cfg.S3Region = "us-west-2"
	return NewS3ManagerWithClient(client, cfg)
}

func TestNewS3Manager_RequiresBucket(t *testing.T) {
	_, err := NewS3Manager(context.Background(), DefaultConfig())
	assert.Error(t, err)
}

func TestS3Manager_StoreFetch(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	m := newTestS3Manager(client)

	result, err := m.Store(ctx, testKey, sampleArtifacts())
	require.NoError(t, err)
	assert.Equal(t, "s3://test-bucket/flare/generated/"+testKey+".tar.gz", result.Location)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "flare/generated/"+testKey+".tar.gz", aws.ToString(put.Key))
	assert.Equal(t, "application/gzip", aws.ToString(put.ContentType))
	assert.Equal(t, result.Hash, put.Metadata["sha256"])

	exists, err := m.Exists(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, exists)

	out, err := m.Fetch(ctx, testKey)
	require.NoError(t, err)
	want := sampleArtifacts()
	codegen.SortArtifacts(want)
	assert.Equal(t, want, out)

	require.NoError(t, m.Delete(ctx, testKey))
	exists, err = m.Exists(ctx, testKey)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, m.Close())
}

func TestS3Manager_FetchMissing(t *testing.T) {
	_, err := newTestS3Manager(newFakeS3()).Fetch(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestS3Manager_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	m := newTestS3Manager(client)

	_, err := m.Store(ctx, testKey, sampleArtifacts())
	require.NoError(t, err)

	objKey := "test-bucket/flare/generated/" + testKey + ".tar.gz"
	obj := client.objects[objKey]
	obj.metadata = map[string]string{"sha256": "deadbeef"}
	client.objects[objKey] = obj

	_, err = m.Fetch(ctx, testKey)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	// verification can be turned off
	m.config.EnableChecksum = false
	out, err := m.Fetch(ctx, testKey)
	require.NoError(t, err)
	assert.Len(t, out, len(sampleArtifacts()))
}

func TestS3Manager_ClientErrors(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	client.err = errors.New("connection reset")
	m := newTestS3Manager(client)

	_, err := m.Store(ctx, testKey, sampleArtifacts())
	assert.ErrorIs(t, err, ErrUploadFailed)

	_, err = m.Fetch(ctx, testKey)
	assert.ErrorIs(t, err, ErrDownloadFailed)

	_, err = m.Exists(ctx, testKey)
	assert.Error(t, err)

	assert.Error(t, m.Delete(ctx, testKey))
}

func TestS3Manager_InvalidKey(t *testing.T) {
	m := newTestS3Manager(newFakeS3())
	_, err := m.Store(context.Background(), "a/b", sampleArtifacts())
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestS3Manager_ObjectKey(t *testing.T) {
	m := newTestS3Manager(newFakeS3())
	assert.Equal(t, "flare/generated/abc.tar.gz", m.objectKey("abc"))

	m.config.S3Prefix = ""
	assert.Equal(t, "abc.tar.gz", m.objectKey("abc"))
}
