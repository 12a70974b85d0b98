package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "image-1700000000123.jpg", GenerateKey("", "image", "IMG_01", now))
	assert.Equal(t, "image-1700000000123.png", GenerateKey("", "image", "photo.PNG", now))

	key := GenerateKey("products", "image", "a.jpg", now)
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, "/image-1700000000123.jpg"))
}

func TestLocalStoreUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	res, err := store.Upload(context.Background(), "image-1.jpg", strings.NewReader("jpegdata"), "image/jpeg", 8)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-1.jpg", res.URL)
	assert.Equal(t, int64(8), res.Size)

	data, err := os.ReadFile(filepath.Join(dir, "image-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpegdata", string(data))
}

func TestS3ClientPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"cdn", S3Config{Bucket: "campus", CDNURL: "https://cdn.example.com/"}, "https://cdn.example.com/a.jpg"},
		{"minio path style", S3Config{Bucket: "campus", Endpoint: "http://localhost:9000", ForcePathStyle: true}, "http://localhost:9000/campus/a.jpg"},
		{"r2 endpoint", S3Config{Bucket: "campus", Endpoint: "https://img.example.com"}, "https://img.example.com/a.jpg"},
		{"aws", S3Config{Bucket: "campus"}, "https://campus.s3.us-east-1.amazonaws.com/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewS3Client(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.PublicURL("a.jpg"))
		})
	}

	_, err := NewS3Client(S3Config{})
	assert.Error(t, err)
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockObjectAPI) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, in)
	return &s3.HeadBucketOutput{}, args.Error(0)
}

func TestS3ClientUpload(t *testing.T) {
	api := new(mockObjectAPI)
	c := newS3Client(api, S3Config{Bucket: "campus", BasePath: "/media/", CDNURL: "https://cdn.example.com"})

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "campus" &&
			aws.ToString(in.Key) == "media/images/2026/03/image-1.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			aws.ToInt64(in.ContentLength) == 4
	})).Return(nil).Once()

	res, err := c.Upload(context.Background(), "images/2026/03/image-1.png", strings.NewReader("\x89PNG"), "image/png", 4)
	require.NoError(t, err)
	assert.Equal(t, "media/images/2026/03/image-1.png", res.Key)
	assert.Equal(t, "https://cdn.example.com/media/images/2026/03/image-1.png", res.URL)
	api.AssertExpectations(t)

	api.On("PutObject", mock.Anything, mock.Anything).Return(errors.New("denied")).Once()
	_, err = c.Upload(context.Background(), "x.png", strings.NewReader("x"), "image/png", 1)
	assert.ErrorContains(t, err, "denied")
}

func TestS3ClientPing(t *testing.T) {
	api := new(mockObjectAPI)
	c := newS3Client(api, S3Config{Bucket: "campus"})

	api.On("HeadBucket", mock.Anything, mock.Anything).Return(nil).Once()
	assert.NoError(t, c.Ping(context.Background()))

	api.On("HeadBucket", mock.Anything, mock.Anything).Return(errors.New("no such bucket")).Once()
	assert.ErrorContains(t, c.Ping(context.Background()), "campus")
}
