package avatars

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/genzes/internal/kv"
)

func minioOpts() kv.S3Options {
	return kv.S3Options{
		Bucket:    "genzes",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000/",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		user, name, want string
		wantErr          bool
	}{
		{user: "user_1", name: "me.png", want: "avatars/user_1/me.png"},
		{user: "user_1", name: "user_1/me.png", want: "avatars/user_1/me.png"},
		{user: "user_1", name: `C:\pics\me.png`, want: "avatars/user_1/me.png"},
		{user: "user_1", name: "../../etc/passwd", want: "avatars/user_1/passwd"},
		{user: "user_1", name: "", wantErr: true},
		{user: "user_1", name: "..", wantErr: true},
		{user: "", name: "me.png", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ObjectKey(tt.user, tt.name)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFileName, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got)
	}
}

func TestPresignPut_SignsRealURL(t *testing.T) {
	p, err := NewPresigner(context.Background(), minioOpts(), "")
	require.NoError(t, err)

	up, err := p.PresignPut(context.Background(), "user_1", "me.png", "image/png")
	require.NoError(t, err)

	u, err := url.Parse(up.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/genzes/avatars/user_1/me.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	assert.Equal(t, "http://127.0.0.1:9000/genzes/avatars/user_1/me.png", up.PublicURL)
}

func TestPresignPut_PublicURLOverride(t *testing.T) {
	p, err := NewPresigner(context.Background(), minioOpts(), "https://cdn.example.com/")
	require.NoError(t, err)

	up, err := p.PresignPut(context.Background(), "u", "a.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/u/a.jpg", up.PublicURL)
}

func TestDefaultPublicURL_AWS(t *testing.T) {
	opts := kv.S3Options{Bucket: "b", Region: "eu-west-1"}
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", defaultPublicURL(opts))
}

func TestNewPresigner_Errors(t *testing.T) {
	_, err := NewPresigner(context.Background(), kv.S3Options{}, "")
	assert.EqualError(t, err, "avatars: empty bucket")

	orig := loadAWSConfig
	t.Cleanup(func() { loadAWSConfig = orig })
	loadAWSConfig = func(context.Context, kv.S3Options) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewPresigner(context.Background(), minioOpts(), "")
	assert.EqualError(t, err, "s3 config: load-fail")
}

func TestPresignPut_Error(t *testing.T) {
	p, err := NewPresigner(context.Background(), minioOpts(), "")
	require.NoError(t, err)

	orig := presignPutObject
	t.Cleanup(func() { presignPutObject = orig })
	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign-fail")
	}

	_, err = p.PresignPut(context.Background(), "u", "a.png", "image/png")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "presign avatars/u/a.png"))
}

func TestNewPresigner_UsesEndpointOptions(t *testing.T) {
	orig := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = orig })

	var captured s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&captured)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	_, err := NewPresigner(context.Background(), minioOpts(), "")
	require.NoError(t, err)
	require.NotNil(t, captured.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *captured.BaseEndpoint)
	assert.True(t, captured.UsePathStyle)
}
