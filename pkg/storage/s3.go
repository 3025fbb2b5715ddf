package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client abstracts the S3 API operations used by [S3Store].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store implements FileStore backed by Amazon S3 or any S3-compatible
// object store (MinIO, R2, etc.).
//
// The bucket is the first segment of each storage path, matching the
// "s3://bucket/key" filepath convention: the path "bucket/data/x.svm"
// addresses key "data/x.svm" in "bucket".
type S3Store struct {
	client S3Client
}

// NewS3 creates an S3-backed FileStore from a pre-configured client.
// Any type satisfying [S3Client] is accepted; typically an [s3.Client].
func NewS3(client S3Client) *S3Store {
	return &S3Store{client: client}
}

func init() {
	Register("s3", func(credentials, args map[string]any) (FileStore, error) {
		client, err := newS3Client(credentials, args)
		if err != nil {
			return nil, err
		}
		return NewS3(client), nil
	})
}

// newS3Client builds an s3.Client from loosely typed constructor args:
// "region", "endpoint" (for S3-compatible stores), "use_path_style".
// Credentials keys "access_key_id", "secret_access_key" and optional
// "session_token" configure static credentials; an empty credentials
// map yields anonymous access.
func newS3Client(credentials, args map[string]any) (*s3.Client, error) {
	region, err := popString(args, "region", "us-east-1")
	if err != nil {
		return nil, err
	}
	endpoint, err := popString(args, "endpoint", "")
	if err != nil {
		return nil, err
	}
	pathStyle, err := popBool(args, "use_path_style", endpoint != "")
	if err != nil {
		return nil, err
	}

	opts := s3.Options{
		Region:       region,
		UsePathStyle: pathStyle,
		Credentials:  aws.AnonymousCredentials{},
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	if len(credentials) > 0 {
		creds := make(map[string]any, len(credentials))
		for k, v := range credentials {
			creds[k] = v
		}
		key, err := popString(creds, "access_key_id", "")
		if err != nil {
			return nil, err
		}
		secret, err := popString(creds, "secret_access_key", "")
		if err != nil {
			return nil, err
		}
		token, err := popString(creds, "session_token", "")
		if err != nil {
			return nil, err
		}
		if key == "" || secret == "" {
			return nil, errors.New("storage: s3 credentials need access_key_id and secret_access_key")
		}
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     key,
				SecretAccessKey: secret,
				SessionToken:    token,
				Source:          "dset static credentials",
			}, nil
		})
	}
	return s3.New(opts), nil
}

// splitBucket separates the leading bucket segment from the object key.
func splitBucket(path string) (bucket, key string, err error) {
	path = strings.TrimPrefix(path, "/")
	bucket, key, ok := strings.Cut(path, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("storage: s3 path %q must be bucket/key", path)
	}
	return bucket, key, nil
}

// Read opens the named object for reading via GetObject.
// Returns an error wrapping os.ErrNotExist if the key does not exist.
func (s *S3Store) Read(ctx context.Context, path string, opts OpenOptions) (io.ReadCloser, error) {
	if err := readMode(opts); err != nil {
		return nil, err
	}
	bucket, key, err := splitBucket(path)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("storage: read %s: %w", path, os.ErrNotExist)
		}
		return nil, err
	}
	return out.Body, nil
}

// Write returns a writer that streams data to S3 via PutObject.
//
// A background goroutine performs the upload, reading from an [io.Pipe].
// The caller must close the writer to complete the upload; Close blocks
// until the upload finishes and returns any S3 error. Appends are not
// supported on object stores.
func (s *S3Store) Write(ctx context.Context, path string, opts OpenOptions) (io.WriteCloser, error) {
	appendTo, err := writeMode(opts)
	if err != nil {
		return nil, err
	}
	if appendTo {
		return nil, fmt.Errorf("storage: append mode not supported on s3")
	}
	bucket, key, err := splitBucket(path)
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &s3Writer{pw: pw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		_, w.uploadErr = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
			Body:   pr,
		})
		// If the upload failed early, unblock any pending writes so the
		// caller's Write calls don't hang forever.
		pr.CloseWithError(w.uploadErr)
	}()
	return w, nil
}

// Delete removes the named object via DeleteObject.
// S3 DeleteObject is already idempotent (returns success for missing keys).
func (s *S3Store) Delete(ctx context.Context, path string) error {
	bucket, key, err := splitBucket(path)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists checks whether the named object exists via HeadObject.
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := splitBucket(path)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListDir lists the immediate children under the named prefix using a
// delimited ListObjectsV2, paginating as needed. Object stores have no
// real directories, so a missing prefix yields an empty list.
func (s *S3Store) ListDir(ctx context.Context, path string) ([]string, error) {
	bucket, key, err := splitBucket(path)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(key, "/") + "/"
	seen := make(map[string]bool)
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, cp := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
			if name != "" {
				seen[name] = true
			}
		}
		for _, obj := range out.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" && !strings.Contains(name, "/") {
				seen[name] = true
			}
		}
		if out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// InvalidateCache is a no-op: S3Store queries the service directly.
// Cache behavior comes from the [Cached] wrapper applied by [Open].
func (s *S3Store) InvalidateCache(string) {}

// s3Writer streams data to a background PutObject call through an io.Pipe.
type s3Writer struct {
	pw        *io.PipeWriter
	done      chan struct{}
	uploadErr error
}

func (w *s3Writer) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

// Close signals EOF to the PutObject reader, waits for the upload to
// complete, and returns the upload error (if any).
func (w *s3Writer) Close() error {
	w.pw.Close() // signal EOF so PutObject finishes reading
	<-w.done     // wait for upload goroutine
	return w.uploadErr
}

// isS3NotFound reports whether err indicates the S3 object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ FileStore = (*S3Store)(nil)
