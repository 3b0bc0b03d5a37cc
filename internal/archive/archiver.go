package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	appconfig "github.com/HaiFongPan/tfbv-cli/internal/config"
)

// S3ClientInterface is the subset of the S3 API the archiver uses, for testing
type S3ClientInterface interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// archiveError wraps archive related errors
type archiveError struct {
	operation string
	key       string
	err       error
}

func (e *archiveError) Error() string {
	return fmt.Sprintf("archive %s failed for %s: %v", e.operation, e.key, e.err)
}

func (e *archiveError) Unwrap() error {
	return e.err
}

// ErrAlreadyArchived is returned when the target key is already taken
var ErrAlreadyArchived = errors.New("report already archived under this key")

// Archiver copies result reports into an S3 compatible bucket
type Archiver struct {
	s3Client   S3ClientInterface
	presigner  *s3.PresignClient
	bucketName string
	prefix     string
	now        func() time.Time
}

// New creates an archiver from configuration
func New(cfg *appconfig.ArchiveConfig) (*Archiver, error) {
	client, err := NewS3Client(cfg)
	if err != nil {
		return nil, err
	}
	a := NewWithClient(client, cfg.BucketName, cfg.Prefix)
	a.presigner = s3.NewPresignClient(client)
	return a, nil
}

// NewWithClient creates an archiver around an existing S3 client
func NewWithClient(client S3ClientInterface, bucketName, prefix string) *Archiver {
	return &Archiver{
		s3Client:   client,
		bucketName: bucketName,
		prefix:     strings.Trim(prefix, "/"),
		now:        time.Now,
	}
}

// Key builds the object key for a report: <prefix>/<tool>/<timestamp>-<filename>
func (a *Archiver) Key(tool, filename string, at time.Time) string {
	name := fmt.Sprintf("%s-%s", at.UTC().Format("20060102T150405Z"), path.Base(filename))
	return path.Join(a.prefix, tool, name)
}

// Archive uploads a report and returns the key it was stored under
func (a *Archiver) Archive(ctx context.Context, tool, filename string, data []byte) (string, error) {
	key := a.Key(tool, filename, a.now())

	exists, err := a.Exists(ctx, key)
	if err != nil {
		return "", &archiveError{operation: "check remote file", key: key, err: err}
	}
	if exists {
		return "", &archiveError{operation: "check file conflict", key: key, err: ErrAlreadyArchived}
	}

	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"tool":     tool,
			"filename": filename,
		},
	})
	if err != nil {
		return "", &archiveError{operation: "upload to S3", key: key, err: err}
	}

	logrus.Infof("Archived report %s to %s/%s", filename, a.bucketName, key)
	return key, nil
}

// Exists reports whether key is present in the bucket
func (a *Archiver) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(key),
	})

	if err != nil {
		var nsk *types.NoSuchKey
		var nf *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nf) {
			return false, nil
		}

		if strings.Contains(err.Error(), "StatusCode: 404") ||
			strings.Contains(err.Error(), "NotFound") {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// PresignURL returns a time limited download link for an archived report
func (a *Archiver) PresignURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if a.presigner == nil {
		return "", fmt.Errorf("presigning is not available for this archiver")
	}

	request, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}

	return request.URL, nil
}
