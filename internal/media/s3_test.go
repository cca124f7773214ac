package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string][]byte
	types   map[string]string
	deletes []string
	putErr  error
	delErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestS3Store_Upload(t *testing.T) {
	client := newFakeS3()
	store := newS3Store(client, S3Config{Bucket: "media", PublicBaseURL: "https://cdn.example.com/"}, nil)
	store.now = func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) }

	path := writeTempFile(t, "avatar.PNG", "png-bytes")

	asset, err := store.Upload(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, asset)

	assert.True(t, strings.HasPrefix(asset.PublicID, "media/2024/03/09/"), asset.PublicID)
	assert.True(t, strings.HasSuffix(asset.PublicID, ".png"), asset.PublicID)
	assert.Equal(t, "https://cdn.example.com/"+asset.PublicID, asset.URL)
	assert.Equal(t, []byte("png-bytes"), client.puts[asset.PublicID])
	assert.Equal(t, "image/png", client.types[asset.PublicID])

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "local file should be removed")
}

func TestS3Store_UploadFailureRemovesLocalFile(t *testing.T) {
	client := newFakeS3()
	client.putErr = errors.New("bucket unavailable")
	store := newS3Store(client, S3Config{Bucket: "media"}, nil)

	path := writeTempFile(t, "cover.jpg", "jpg-bytes")

	asset, err := store.Upload(context.Background(), path)
	assert.Error(t, err)
	assert.Nil(t, asset)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestS3Store_UploadEmptyPath(t *testing.T) {
	store := newS3Store(newFakeS3(), S3Config{Bucket: "media"}, nil)

	asset, err := store.Upload(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, asset)
}

func TestS3Store_Delete(t *testing.T) {
	client := newFakeS3()
	store := newS3Store(client, S3Config{Bucket: "media"}, nil)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "media/2024/01/01/a.png"))
	require.NoError(t, store.Delete(ctx, ""))
	assert.Equal(t, []string{"media/2024/01/01/a.png"}, client.deletes)

	client.delErr = errors.New("gone")
	assert.Error(t, store.Delete(ctx, "media/x.png"))
}

func TestPublicBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{
			name: "explicit",
			cfg:  S3Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint",
			cfg:  S3Config{Bucket: "b", Endpoint: "http://localhost:9000/"},
			want: "http://localhost:9000/b",
		},
		{
			name: "aws",
			cfg:  S3Config{Bucket: "b", Region: "eu-west-1"},
			want: "https://b.s3.eu-west-1.amazonaws.com",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicBaseURL(tt.cfg))
		})
	}
}

func TestS3Store_AgainstHTTPEndpoint(t *testing.T) {
	type call struct {
		method string
		path   string
		body   []byte
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	store, err := NewS3Store(ctx, S3Config{
		Bucket:    "vidshare",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "minio",
		SecretKey: "minio-secret",
	}, nil)
	require.NoError(t, err)

	path := writeTempFile(t, "avatar.png", "hello-s3")
	asset, err := store.Upload(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, srv.URL+"/vidshare/"+asset.PublicID, asset.URL)

	require.NoError(t, store.Delete(ctx, asset.PublicID))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/vidshare/"+asset.PublicID, calls[0].path)
	assert.True(t, bytes.Contains(calls[0].body, []byte("hello-s3")))
	assert.Equal(t, http.MethodDelete, calls[1].method)
	assert.Equal(t, "/vidshare/"+asset.PublicID, calls[1].path)
}
