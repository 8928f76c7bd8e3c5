package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"icut-go/internal/config"
)

// versionMetaKey is the object metadata entry holding the snapshot version.
const versionMetaKey = "icut-version"

// s3API is the subset of *s3.Client the store reads with.
type s3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// s3Uploader is satisfied by *manager.Uploader.
type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store keeps one object per library at <prefix>/<libraryID>.snapshot,
// with the version in the object metadata.
type S3Store struct {
	name     string
	bucket   string
	prefix   string
	client   s3API
	uploader s3Uploader
}

// NewS3Store builds a store from config. Credentials come from the config
// when set, otherwise from the default AWS chain (env, shared config, IMDS).
func NewS3Store(ctx context.Context, cfg config.SnapshotConfig) (*S3Store, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 snapshot store %q requires s3_bucket", cfg.Name)
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, client, manager.NewUploader(client)), nil
}

func newS3Store(name, bucket, prefix string, client s3API, uploader s3Uploader) *S3Store {
	return &S3Store{name: name, bucket: bucket, prefix: prefix, client: client, uploader: uploader}
}

func (s *S3Store) Name() string { return s.name }

func (s *S3Store) key(libraryID string) string {
	return path.Join(s.prefix, libraryID+".snapshot")
}

func (s *S3Store) Put(ctx context.Context, libraryID string, r io.Reader, size int64, version int64) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(libraryID)),
		Body:          r,
		ContentLength: aws.Int64(size),
		Metadata:      map[string]string{versionMetaKey: strconv.FormatInt(version, 10)},
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, s.key(libraryID), err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, libraryID string, w io.Writer) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(libraryID)),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: library %s", ErrNotFound, libraryID)
		}
		return fmt.Errorf("downloading s3://%s/%s: %w", s.bucket, s.key(libraryID), err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot body: %w", err)
	}
	return nil
}

// Version returns 0 when the object does not exist.
func (s *S3Store) Version(ctx context.Context, libraryID string) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(libraryID)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading s3://%s/%s: %w", s.bucket, s.key(libraryID), err)
	}

	raw, ok := out.Metadata[versionMetaKey]
	if !ok {
		return 0, fmt.Errorf("s3://%s/%s has no %s metadata", s.bucket, s.key(libraryID), versionMetaKey)
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup checks that the bucket exists and is accessible.
func (s *S3Store) ValidateSetup(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}

var _ Store = (*S3Store)(nil)
