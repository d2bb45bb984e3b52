package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/HarshArya1405/typescriptDemo/pkg/config"
	"github.com/HarshArya1405/typescriptDemo/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const defaultExpiry = time.Hour

// Signer issues presigned object URLs.
type Signer interface {
	SignedUploadURL(ctx context.Context, fileType string) (UploadURL, error)
	SignedReadURL(ctx context.Context, objectPath string) (string, error)
}

// UploadURL is a presigned PUT URL and the object key it writes.
type UploadURL struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Client presigns uploads and reads against a single bucket.
type Client struct {
	presign   *awss3.PresignClient
	bucket    string
	keyPrefix string
	urlPrefix string
	expiry    time.Duration
	newID     func() string
}

// NewClient builds a presigning client. Presigning is local, so no network
// call is made here.
func NewClient(ctx context.Context, cfg config.S3Config, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, errors.New("s3 region is required")
	}

	opts := awss3.Options{
		Region:        cfg.Region,
		UseAccelerate: true,
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultExpiry
	}

	client := &Client{
		presign:   awss3.NewPresignClient(awss3.New(opts)),
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		urlPrefix: cfg.PublicURLPrefix,
		expiry:    expiry,
		newID:     uuid.NewString,
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"bucket": cfg.Bucket, "region": cfg.Region}), "s3 presign client ready")
	}
	return client, nil
}

// SignedUploadURL presigns a PUT for a fresh object key <prefix>/<uuid>.<ext>.
func (c *Client) SignedUploadURL(ctx context.Context, fileType string) (UploadURL, error) {
	key := c.uploadKey(fileType)
	req, err := c.presign.PresignPutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(c.expiry))
	if err != nil {
		return UploadURL{}, fmt.Errorf("presign put %q: %w", key, err)
	}
	return UploadURL{URL: req.URL, Path: key}, nil
}

// SignedReadURL presigns a GET for objectPath. A full public bucket URL is
// accepted and reduced to its key.
func (c *Client) SignedReadURL(ctx context.Context, objectPath string) (string, error) {
	key := c.ObjectKey(objectPath)
	if key == "" {
		return "", errors.New("object path is required")
	}
	req, err := c.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(c.expiry))
	if err != nil {
		return "", fmt.Errorf("presign get %q: %w", key, err)
	}
	return req.URL, nil
}

// ObjectKey strips the public URL prefix from objectPath.
func (c *Client) ObjectKey(objectPath string) string {
	key := strings.TrimSpace(objectPath)
	if c.urlPrefix != "" {
		key = strings.TrimPrefix(key, c.urlPrefix)
	}
	return strings.TrimPrefix(key, "/")
}

func (c *Client) uploadKey(fileType string) string {
	name := c.newID()
	if ext := strings.TrimPrefix(strings.TrimSpace(fileType), "."); ext != "" {
		name += "." + strings.ToLower(ext)
	}
	if c.keyPrefix == "" {
		return name
	}
	return path.Join(c.keyPrefix, name)
}
