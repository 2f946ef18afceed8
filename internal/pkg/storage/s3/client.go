package s3aws

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"order-ledger/internal/pkg/logger"
	"order-ledger/internal/pkg/redis"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type S3Config struct {
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	// Endpoint points at an S3-compatible server; path-style addressing is
	// used whenever it is set.
	Endpoint   string
	BucketName string
	PresignTTL time.Duration
	// WaitAttempts and WaitDelay bound the polling done by WaitUntilExists.
	WaitAttempts int
	WaitDelay    time.Duration
}

type S3Client struct {
	Client       *s3.S3
	BucketName   string
	presignTTL   time.Duration
	waitAttempts int
	waitDelay    time.Duration
	redis        redis.IRedis
}

type Is3 interface {
	GetBucketName() string
	UploadFile(ctx context.Context, key string, fileBytes []byte, contentType string) error
	WaitUntilExists(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string) (string, error)
}

func newSession(cfg S3Config) (*session.Session, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	return session.NewSession(awsCfg)
}

// NewS3Client creates the bucket when missing. rds may be nil, which
// disables presigned URL caching.
func NewS3Client(ctx context.Context, cfg S3Config, rds redis.IRedis) (*S3Client, error) {
	sess, err := newSession(cfg)
	if err != nil {
		return nil, err
	}

	s3Client := &S3Client{
		Client:       s3.New(sess),
		BucketName:   cfg.BucketName,
		presignTTL:   cfg.PresignTTL,
		waitAttempts: cfg.WaitAttempts,
		waitDelay:    cfg.WaitDelay,
		redis:        rds,
	}
	if s3Client.presignTTL <= 0 {
		s3Client.presignTTL = 3 * 24 * time.Hour
	}
	if s3Client.waitAttempts <= 0 {
		s3Client.waitAttempts = 10
	}
	if s3Client.waitDelay <= 0 {
		s3Client.waitDelay = 500 * time.Millisecond
	}

	exists, err := CheckBucketExists(ctx, s3Client)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := CreateBucket(ctx, s3Client); err != nil {
			return nil, err
		}
	}

	return s3Client, nil
}

func CheckBucketExists(ctx context.Context, client *S3Client) (bool, error) {
	_, err := client.Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(client.BucketName),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			switch aerr.Code() {
			case s3.ErrCodeNoSuchBucket, "NotFound":
				return false, nil
			}
		}
		return false, err
	}
	return true, nil
}

func CreateBucket(ctx context.Context, client *S3Client) error {
	logger.Info.Println("Creating bucket:", client.BucketName)
	_, err := client.Client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(client.BucketName),
	})
	return err
}

func (s *S3Client) GetBucketName() string {
	return s.BucketName
}

func (s *S3Client) UploadFile(ctx context.Context, key string, fileBytes []byte, contentType string) error {
	_, err := s.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

// WaitUntilExists polls HeadObject until the key is visible or the
// configured attempts run out.
func (s *S3Client) WaitUntilExists(ctx context.Context, key string) error {
	err := s.Client.WaitUntilObjectExistsWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.BucketName),
		Key:    aws.String(key),
	},
		request.WithWaiterMaxAttempts(s.waitAttempts),
		request.WithWaiterDelay(request.ConstantWaiterDelay(s.waitDelay)),
	)
	if err != nil {
		return fmt.Errorf("object %s not visible after %d attempts: %w", key, s.waitAttempts, err)
	}
	return nil
}

func (s *S3Client) GetPresignedURL(ctx context.Context, key string) (string, error) {
	cacheKey := fmt.Sprintf("s3:%s:%s", s.BucketName, key)
	if s.redis != nil {
		cached, ok, err := s.redis.Get(ctx, cacheKey)
		if err == nil && ok && strings.HasPrefix(cached, "http") {
			return cached, nil
		}
	}

	req, _ := s.Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(s.BucketName),
		Key:                        aws.String(key),
		ResponseContentType:        aws.String(getContentTypeFromKey(key)),
		ResponseContentDisposition: aws.String("inline"),
	})

	urlStr, err := req.Presign(s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	if s.redis != nil {
		// expire the cache well before the link itself does
		if err := s.redis.Set(ctx, cacheKey, urlStr, s.presignTTL/2); err != nil {
			logger.Warning.Printf("failed to cache presigned URL for %s: %v", key, err)
		}
	}

	return urlStr, nil
}

func getContentTypeFromKey(key string) string {
	contentTypes := map[string]string{
		".pdf":  "application/pdf",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".txt":  "text/plain",
		".csv":  "text/csv",
		".json": "application/json",
	}

	if contentType, exists := contentTypes[strings.ToLower(filepath.Ext(key))]; exists {
		return contentType
	}
	return "application/octet-stream"
}
