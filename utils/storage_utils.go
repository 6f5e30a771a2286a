package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// S3Storage uploads course media and avatars to an S3-compatible bucket.
type S3Storage struct {
	client   *s3.S3
	bucket   string
	endpoint string
}

type S3Config struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}

	return &S3Storage{
		client:   s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: strings.TrimPrefix(cfg.Endpoint, "https://"),
	}, nil
}

// Upload stores the file under folder/<uuid>-<name> with public-read access
// and returns the object key and public URL.
func (s *S3Storage) Upload(file []byte, fileName, folder, contentType string) (string, string, error) {
	key := fmt.Sprintf("%s/%s-%s", folder, uuid.New().String(), fileName)

	_, err := s.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", "", fmt.Errorf("unable to upload file to S3: %w", err)
	}

	return key, fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key), nil
}

// Delete removes an object by key. Missing objects are not an error.
func (s *S3Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %w", err)
	}
	return nil
}
