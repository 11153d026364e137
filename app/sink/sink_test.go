package sink

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Writer_Put(t *testing.T) {
	client := &mockS3{}
	w := NewS3Writer(client, "dyn.tedder.me")

	err := w.Put(context.Background(), Object{
		Key:          "rss/feed.json",
		Body:         []byte(`{"version":"https://jsonfeed.org/version/1"}`),
		ContentType:  "application/json",
		CacheControl: "max-age=6",
		ACL:          "public-read",
	})
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "dyn.tedder.me", aws.ToString(client.input.Bucket))
	assert.Equal(t, "rss/feed.json", aws.ToString(client.input.Key))
	assert.Equal(t, "application/json", aws.ToString(client.input.ContentType))
	assert.Equal(t, "max-age=6", aws.ToString(client.input.CacheControl))
	assert.Equal(t, types.ObjectCannedACLPublicRead, client.input.ACL)
	assert.Equal(t, `{"version":"https://jsonfeed.org/version/1"}`, string(client.body))
}

func TestS3Writer_PutError(t *testing.T) {
	w := NewS3Writer(&mockS3{err: errors.New("access denied")}, "bucket")

	err := w.Put(context.Background(), Object{Key: "k", Body: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://bucket/k")
	assert.Contains(t, err.Error(), "access denied")
}

func TestFileWriter_PutOverwrites(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir)
	ctx := context.Background()

	require.NoError(t, w.Put(ctx, Object{Key: "rss/feed.json", Body: []byte("first")}))
	require.NoError(t, w.Put(ctx, Object{Key: "rss/feed.json", Body: []byte("second")}))

	data, err := os.ReadFile(filepath.Join(dir, "rss", "feed.json"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "rss"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileWriter_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Put(ctx, Object{Key: "feed.json", Body: []byte("x")})
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(w.Path("feed.json"))
	assert.True(t, os.IsNotExist(statErr))
}
