package ssg

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
)

const defaultCacheControl = "public, max-age=300"

// DirWriter writes files beneath a local directory.
type DirWriter struct {
	root string
}

// NewDirWriter returns a writer rooted at dir.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{root: dir}
}

func (w *DirWriter) Write(_ context.Context, name, _ string, body []byte) error {
	clean := path.Clean("/" + name)
	target := filepath.Join(w.root, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return eris.Wrapf(err, "creating directory for %s", name)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return eris.Wrapf(err, "writing %s", name)
	}
	return nil
}

// S3Options configures the S3 writer. Endpoint targets S3-compatible stores with path-style addressing.
type S3Options struct {
	Bucket       string
	Prefix       string
	Endpoint     string
	CacheControl string
}

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Writer uploads generated files to a bucket.
type S3Writer struct {
	client       PutObjectAPI
	bucket       string
	prefix       string
	cacheControl string
}

// NewS3Writer loads the default AWS configuration chain and builds an S3 writer.
func NewS3Writer(ctx context.Context, opts S3Options) (*S3Writer, error) {
	if opts.Bucket == "" {
		return nil, eris.New("S3 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "loading AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3WriterFromClient(client, opts), nil
}

// NewS3WriterFromClient wraps an existing client.
func NewS3WriterFromClient(client PutObjectAPI, opts S3Options) *S3Writer {
	cacheControl := opts.CacheControl
	if cacheControl == "" {
		cacheControl = defaultCacheControl
	}
	return &S3Writer{
		client:       client,
		bucket:       opts.Bucket,
		prefix:       strings.Trim(opts.Prefix, "/"),
		cacheControl: cacheControl,
	}
}

// Key returns the object key for a relative file name.
func (w *S3Writer) Key(name string) string {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if w.prefix == "" {
		return name
	}
	return w.prefix + "/" + name
}

func (w *S3Writer) Write(ctx context.Context, name, contentType string, body []byte) error {
	key := w.Key(name)
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(w.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(w.cacheControl),
	})
	if err != nil {
		return eris.Wrapf(err, "uploading s3://%s/%s", w.bucket, key)
	}
	return nil
}
