package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
)

// metadataChecksum is the object metadata key holding the archive sha256
const metadataChecksum = "sha256"

// S3API is the subset of the S3 client used by S3Manager
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Manager implements archive storage using S3
type S3Manager struct {
	client S3API
	config *Config
}

// NewS3Manager creates a new S3 archive manager from the default AWS
// configuration chain, overridden by cfg
func NewS3Manager(ctx context.Context, cfg *Config) (*S3Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.S3Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ManagerWithClient(client, cfg), nil
}

// NewS3ManagerWithClient creates a manager around an existing client
func NewS3ManagerWithClient(client S3API, cfg *Config) *S3Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &S3Manager{
		client: client,
		config: cfg,
	}
}

// Store packs artifacts and uploads the archive with its checksum as object metadata
func (m *S3Manager) Store(ctx context.Context, key string, artifacts []codegen.Artifact) (*StoreResult, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	data, hash, err := Pack(artifacts)
	if err != nil {
		return nil, err
	}

	objectKey := m.objectKey(key)
	_, err = m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.config.S3Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/gzip"),
		Metadata:    map[string]string{metadataChecksum: hash},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &StoreResult{
		Location:       "s3://" + m.config.S3Bucket + "/" + objectKey,
		Hash:           hash,
		Size:           totalSize(artifacts),
		CompressedSize: int64(len(data)),
	}, nil
}

// Fetch downloads and unpacks the archive stored under key
func (m *S3Manager) Fetch(ctx context.Context, key string) ([]codegen.Artifact, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	output, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(m.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, key)
		}
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read S3 object: %v", ErrDownloadFailed, err)
	}

	if m.config.EnableChecksum {
		want, ok := output.Metadata[metadataChecksum]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no checksum metadata", ErrChecksumMismatch, key)
		}
		if Checksum(data) != want {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, key)
		}
	}

	return Unpack(data)
}

// Exists checks if an archive is stored under key
func (m *S3Manager) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	_, err := m.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(m.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check S3 object: %w", err)
	}
	return true, nil
}

// Delete removes the archive stored under key
func (m *S3Manager) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.config.S3Bucket),
		Key:    aws.String(m.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// Close releases resources
func (m *S3Manager) Close() error {
	// S3 client doesn't need explicit closing
	return nil
}

// objectKey builds {prefix}{key}.tar.gz. Object keys always use forward slashes.
func (m *S3Manager) objectKey(key string) string {
	return path.Join(m.config.S3Prefix, key+config.ArchiveExtension)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
