package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/invoiceflow/backend/internal/infrastructure/config"
	"github.com/invoiceflow/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockObjectAPI is a testify mock of the S3 client subset
type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadBucketOutput), args.Error(1)
}

func (m *MockObjectAPI) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.CreateBucketOutput), args.Error(1)
}

type stubPresigner struct {
	url   string
	err   error
	input *s3.GetObjectInput
}

func (p *stubPresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.input = in
	if p.err != nil {
		return nil, p.err
	}
	return &v4.PresignedHTTPRequest{URL: p.url, Method: "GET"}, nil
}

func newTestStorage(t *testing.T) (*S3ObjectStorage, *MockObjectAPI, *stubPresigner) {
	t.Helper()
	api := new(MockObjectAPI)
	presigner := &stubPresigner{url: "https://s3.test/invoices/signed"}
	s := newS3ObjectStorage(api, presigner, "invoices", WithLogger(zaptest.NewLogger(t)))
	s.now = func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }
	return s, api, presigner
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "configuration is required"},
		{name: "missing bucket", cfg: &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, wantErr: "bucket is required"},
		{name: "missing access key", cfg: &config.StorageConfig{Bucket: "b", SecretKey: "s"}, wantErr: "access key is required"},
		{name: "missing secret key", cfg: &config.StorageConfig{Bucket: "b", AccessKey: "k"}, wantErr: "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket:            "invoices",
			AccessKey:         "k",
			SecretKey:         "s",
			Endpoint:          "localhost:9000",
			UsePathStyle:      true,
			PresignExpiration: 5 * time.Minute,
		}, WithLogger(zap.NewNop()))
		require.NoError(t, err)
		assert.Equal(t, "invoices", s.Bucket())
		assert.Equal(t, 5*time.Minute, s.presignExpiration)
	})

	t.Run("option overrides configured expiration", func(t *testing.T) {
		s, err := NewS3ObjectStorage(&config.StorageConfig{
			Bucket: "invoices", AccessKey: "k", SecretKey: "s", PresignExpiration: 5 * time.Minute,
		}, WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
	}{
		{"", false, defaultEndpoint},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.eu-west-1.amazonaws.com", true, "https://s3.eu-west-1.amazonaws.com"},
		{"https://storage.example.com", false, "https://storage.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := resolveEndpoint(tt.endpoint, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := resolveEndpoint("http://", false)
	assert.Error(t, err)
}

func TestS3ObjectStorage_Store(t *testing.T) {
	s, api, presigner := newTestStorage(t)
	ctx := context.Background()

	var put *s3.PutObjectInput
	api.On("PutObject", ctx, mock.AnythingOfType("*s3.PutObjectInput")).
		Run(func(args mock.Arguments) { put = args.Get(1).(*s3.PutObjectInput) }).
		Return(&s3.PutObjectOutput{}, nil)

	result, err := s.Store(ctx, &printing.StoreRequest{
		UserID:   "user-1",
		FileName: "Invoice_INV-2024-001.pdf",
		Data:     []byte("%PDF-1.3"),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "user-1/2024/03/"))
	assert.True(t, strings.HasSuffix(result.Key, "-Invoice_INV-2024-001.pdf"))
	assert.Equal(t, "https://s3.test/invoices/signed", result.URL)
	assert.Equal(t, int64(8), result.Size)

	require.NotNil(t, put)
	assert.Equal(t, "invoices", *put.Bucket)
	assert.Equal(t, result.Key, *put.Key)
	assert.Equal(t, "application/pdf", *put.ContentType)
	assert.Equal(t, `attachment; filename=Invoice_INV-2024-001.pdf`, *put.ContentDisposition)
	assert.Equal(t, "user-1", put.Metadata["owner"])

	require.NotNil(t, presigner.input)
	assert.Equal(t, result.Key, *presigner.input.Key)
	assert.Equal(t, *put.ContentDisposition, *presigner.input.ResponseContentDisposition)
	api.AssertExpectations(t)
}

func TestAttachmentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename*=utf-8''Rechnung%20%C3%9C.pdf", attachmentDisposition("Rechnung Ü.pdf"))
	assert.Equal(t, `attachment; filename="Invoice 1.pdf"`, attachmentDisposition("Invoice 1.pdf"))
}

func TestS3ObjectStorage_Store_Failures(t *testing.T) {
	ctx := context.Background()
	req := &printing.StoreRequest{UserID: "user-1", FileName: "Invoice_1.pdf", Data: []byte("x")}

	t.Run("invalid request never reaches S3", func(t *testing.T) {
		s, api, _ := newTestStorage(t)
		_, err := s.Store(ctx, &printing.StoreRequest{UserID: "user-1", FileName: "../x.pdf", Data: []byte("x")})
		require.Error(t, err)
		api.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	})

	t.Run("upload error", func(t *testing.T) {
		s, api, _ := newTestStorage(t)
		api.On("PutObject", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := s.Store(ctx, req)
		var renderErr *printing.RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, printing.ErrCodeStorageFailed, renderErr.Code)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("presign error", func(t *testing.T) {
		s, api, presigner := newTestStorage(t)
		presigner.err = errors.New("bad credentials")
		api.On("PutObject", ctx, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

		_, err := s.Store(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "presign")
	})
}

func TestS3ObjectStorage_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("streams body", func(t *testing.T) {
		s, api, _ := newTestStorage(t)
		api.On("GetObject", ctx, mock.Anything).
			Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("%PDF")))}, nil)

		rc, err := s.Get(ctx, "user-1/2024/03/a-Invoice_1.pdf")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(data))
	})

	t.Run("missing key", func(t *testing.T) {
		s, api, _ := newTestStorage(t)
		api.On("GetObject", ctx, mock.Anything).Return(nil, &types.NoSuchKey{})

		_, err := s.Get(ctx, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document not found")
	})

	t.Run("empty key", func(t *testing.T) {
		s, api, _ := newTestStorage(t)
		_, err := s.Get(ctx, "")
		require.Error(t, err)
		api.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
	})
}

func TestS3ObjectStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s, api, _ := newTestStorage(t)

	require.Error(t, s.Delete(ctx, ""))

	api.On("DeleteObject", ctx, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return *in.Bucket == "invoices" && *in.Key == "user-1/k.pdf"
	})).Return(&s3.DeleteObjectOutput{}, nil)
	require.NoError(t, s.Delete(ctx, "user-1/k.pdf"))
	api.AssertExpectations(t)
}

func TestS3ObjectStorage_EnsureBucket(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		headErr   error
		createErr error
		create    bool
		wantErr   bool
	}{
		{name: "bucket exists"},
		{name: "missing bucket is created", headErr: &types.NotFound{}, create: true},
		{name: "no such bucket is created", headErr: &types.NoSuchBucket{}, create: true},
		{name: "concurrent create is fine", headErr: &types.NotFound{}, create: true, createErr: &types.BucketAlreadyOwnedByYou{}},
		{name: "create fails", headErr: &types.NotFound{}, create: true, createErr: errors.New("denied"), wantErr: true},
		{name: "head fails for another reason", headErr: errors.New("forbidden"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, api, _ := newTestStorage(t)
			if tt.headErr != nil {
				api.On("HeadBucket", ctx, mock.Anything).Return(nil, tt.headErr)
			} else {
				api.On("HeadBucket", ctx, mock.Anything).Return(&s3.HeadBucketOutput{}, nil)
			}
			if tt.create {
				if tt.createErr != nil {
					api.On("CreateBucket", ctx, mock.Anything).Return(nil, tt.createErr)
				} else {
					api.On("CreateBucket", ctx, mock.Anything).Return(&s3.CreateBucketOutput{}, nil)
				}
			}

			err := s.EnsureBucket(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if !tt.create {
				api.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
			}
		})
	}
}

// skipIntegration skips unless INTEGRATION_TEST=1 and MinIO listens on localhost:9000
func skipIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("set INTEGRATION_TEST=1 and run MinIO on localhost:9000")
	}
}

func TestIntegration_StoreGetDelete(t *testing.T) {
	skipIntegration(t)
	ctx := context.Background()

	s, err := NewS3ObjectStorage(&config.StorageConfig{
		Bucket:       "invoiceflow-integration",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	})
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))
	require.NoError(t, s.EnsureBucket(ctx))

	data := []byte("%PDF-1.3 integration")
	result, err := s.Store(ctx, &printing.StoreRequest{
		UserID:   "user-1",
		FileName: "Invoice_INV-2024-001.pdf",
		Data:     data,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.URL)

	rc, err := s.Get(ctx, result.Key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	require.NoError(t, s.Delete(ctx, result.Key))
	_, err = s.Get(ctx, result.Key)
	assert.Error(t, err)
}
