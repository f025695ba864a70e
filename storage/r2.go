package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Config struct {
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint is https://<account-id>.r2.cloudflarestorage.com
	Endpoint string
	// PublicDomain is the custom domain or r2.dev URL serving the bucket.
	PublicDomain string
}

// R2 stores objects in Cloudflare R2 through its S3 API.
type R2 struct {
	client *s3.Client
	cfg    R2Config
}

func NewR2(ctx context.Context, cfg R2Config) (*R2, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("r2: missing bucket, credentials or endpoint")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for R2
	})
	return &R2{client: client, cfg: cfg}, nil
}

func (r *R2) Upload(ctx context.Context, folder string, data []byte, contentType string) (string, error) {
	objectName := ObjectName(folder, contentType)
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.cfg.Bucket),
		Key:           aws.String(objectName),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}
	return r.publicURL(objectName), nil
}

func (r *R2) Remove(ctx context.Context, publicURL string) error {
	obj, err := r.objectName(publicURL)
	if err != nil {
		return err
	}
	_, err = r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.cfg.Bucket),
		Key:    aws.String(obj),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", obj, err)
	}
	return nil
}

func (r *R2) publicURL(objectName string) string {
	domain := strings.TrimRight(r.cfg.PublicDomain, "/")
	return fmt.Sprintf("%s/%s/%s", domain, r.cfg.Bucket, objectName)
}

func (r *R2) objectName(raw string) (string, error) {
	prefix := strings.TrimRight(r.cfg.PublicDomain, "/") + "/" + r.cfg.Bucket + "/"
	if r.cfg.PublicDomain != "" && strings.HasPrefix(raw, prefix) {
		return strings.TrimPrefix(raw, prefix), nil
	}
	return "", fmt.Errorf("not a recognised R2 public url")
}
