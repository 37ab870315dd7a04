package storage

import (
	"alcyxob/plan-coach/internal/config"
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3Storage implements FileStorage using an S3-compatible backend.
type s3Storage struct {
	client        *s3.Client        // Uploads and deletes
	presignClient *s3.PresignClient // Playback URLs for stored clips
	bucketName    string
	logger        *zap.Logger
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (FileStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Load AWS configuration with the static keys from config
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		logger.Error("Failed to load AWS SDK config for S3", zap.Error(err))
		return nil, err
	}

	// Create the S3 client.
	// An empty endpoint keeps the regular AWS resolution.
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Custom endpoints (MinIO, Spaces) need path-style addressing
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info("S3 storage initialized", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.BucketName))

	return &s3Storage{
		client:        s3Client,
		presignClient: s3.NewPresignClient(s3Client), // Shares the client's credentials and endpoint
		bucketName:    cfg.BucketName,
		logger:        logger,
	}, nil
}

// PutObject uploads a clip.
func (s *s3Storage) PutObject(ctx context.Context, objectKey, contentType string, data []byte) error {
	// Whole clip in one request
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType), // Served back on playback
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.Error("Failed to put object", zap.String("key", objectKey), zap.Error(err))
		return err
	}
	return nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	// Sign a GET for the clip; the URL stops working after expires
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		s.logger.Error("Failed to generate presigned GET URL", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}
	return req.URL, nil
}

// DeleteObject removes an object from the bucket.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		// NoSuchKey is not special-cased; the caller decides what a failed delete means
		s.logger.Error("Failed to delete object", zap.String("key", objectKey), zap.String("bucket", s.bucketName), zap.Error(err))
		return err
	}
	s.logger.Info("Deleted object", zap.String("key", objectKey), zap.String("bucket", s.bucketName))
	return nil
}
