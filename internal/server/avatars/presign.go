// Package avatars hands out presigned S3 upload URLs for profile pictures.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/genzes/internal/kv"
	"github.com/dmitrijs2005/genzes/internal/rpc"
)

// UploadExpiry is how long a presigned upload stays valid.
const UploadExpiry = 15 * time.Minute

var (
	loadAWSConfig = kv.LoadS3Config

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var ErrInvalidFileName = errors.New("invalid avatar file name")

// Presigner signs PUT requests for objects under "avatars/<user-id>/".
type Presigner struct {
	opts      kv.S3Options
	publicURL string
	client    *s3.PresignClient
}

// NewPresigner builds the S3 client from opts. publicURL is the base the
// uploaded objects are served from; when empty it is derived from the
// endpoint or the AWS virtual-hosted URL.
func NewPresigner(ctx context.Context, opts kv.S3Options, publicURL string) (*Presigner, error) {
	if opts.Bucket == "" {
		return nil, errors.New("avatars: empty bucket")
	}
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}
	client := newS3ClientFromConfig(cfg, kv.S3ClientOptions(opts))

	if publicURL == "" {
		publicURL = defaultPublicURL(opts)
	}
	return &Presigner{
		opts:      opts,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		client:    s3.NewPresignClient(client),
	}, nil
}

func defaultPublicURL(opts kv.S3Options) string {
	if opts.Endpoint != "" {
		return strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
}

// ObjectKey returns the key an avatar of userID named fileName is stored
// under. Only the base name of fileName is used.
func ObjectKey(userID, fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." || userID == "" {
		return "", ErrInvalidFileName
	}
	return path.Join("avatars", userID, name), nil
}

// PresignPut returns where to upload the avatar and the URL it will be
// served from.
func (p *Presigner) PresignPut(ctx context.Context, userID, fileName, contentType string) (rpc.AvatarUpload, error) {
	key, err := ObjectKey(userID, fileName)
	if err != nil {
		return rpc.AvatarUpload{}, err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(p.opts.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(p.client, ctx, in, s3.WithPresignExpires(UploadExpiry))
	if err != nil {
		return rpc.AvatarUpload{}, fmt.Errorf("presign %s: %w", key, err)
	}

	return rpc.AvatarUpload{UploadURL: req.URL, PublicURL: p.publicURL + "/" + key}, nil
}
