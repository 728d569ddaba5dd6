package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/verimetr/verimetr-api/internal/config"
)

// DocumentStore keeps generated verification protocols and registry reports
// in S3, keyed per company.
type DocumentStore struct {
	client *s3.Client
	bucket string
}

func NewDocumentStore(client *s3.Client, cfg *config.S3Config) *DocumentStore {
	return &DocumentStore{
		client: client,
		bucket: cfg.BucketName,
	}
}

// ProtocolKey builds the canonical object key for a verification protocol.
func ProtocolKey(companyID, verificationID string) string {
	return fmt.Sprintf("protocols/%s/%s.txt", companyID, verificationID)
}

// ReportKey builds the object key for a registry report covering a period.
func ReportKey(companyID string, from, to time.Time) string {
	return fmt.Sprintf("reports/%s/registry_%s_%s.csv",
		companyID,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"))
}

// ProtocolPrefix is the listing prefix for a company's protocols.
func ProtocolPrefix(companyID string) string {
	return fmt.Sprintf("protocols/%s/", companyID)
}

// ReportPrefix is the listing prefix for a company's registry reports.
func ReportPrefix(companyID string) string {
	return fmt.Sprintf("reports/%s/", companyID)
}

func (s *DocumentStore) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"uploaded-at": time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *DocumentStore) Download(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	defer output.Body.Close()

	return io.ReadAll(output.Body)
}

func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// ListCompanyDocuments returns the object keys stored under the company's
// prefix ("protocols/{id}/" or "reports/{id}/").
func (s *DocumentStore) ListCompanyDocuments(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, object := range page.Contents {
			keys = append(keys, aws.ToString(object.Key))
		}
	}

	return keys, nil
}
