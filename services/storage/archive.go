package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ArchiveClient stores raw import files in an S3-compatible bucket so a
// batch can be replayed or audited later. Archiving is best-effort and
// entirely optional.
type ArchiveClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// ArchiveConfig holds configuration for the archive client
type ArchiveConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// NewArchiveClient creates a new archive client
func NewArchiveClient(config ArchiveConfig) (*ArchiveClient, error) {
	if config.Bucket == "" || config.Region == "" {
		return nil, fmt.Errorf("ARCHIVE_BUCKET and ARCHIVE_REGION must be configured")
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s.digitaloceanspaces.com", config.Region)
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive session: %w", err)
	}

	return &ArchiveClient{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: endpoint,
	}, nil
}

// UploadBytes uploads a file to the archive bucket and returns its URL
func (a *ArchiveClient) UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := a.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(bytes.NewReader(data)),
		ACL:         aws.String("private"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive file: %w", err)
	}

	return fmt.Sprintf("https://%s.%s/%s", a.bucket, a.endpoint, key), nil
}
