package sink

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"lease.pdf":           "lease.pdf",
		"lease":               "lease.pdf",
		"  report.docx ":      "report.docx",
		"../../etc/passwd":    "passwd.pdf",
		`C:\Users\me\doc.pdf`: "doc.pdf",
		"":                    "document.pdf",
		"/":                   "document.pdf",
		"..":                  "document.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileName(in), "input %q", in)
	}
}

func TestFileSink_Save(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileSink(FileConfig{Fs: fs, Dir: "/out"})
	require.NoError(t, err)

	data := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}
	loc, err := s.Save(context.Background(), "lease", data, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "lease.pdf"), loc)

	got, err := afero.ReadFile(fs, loc)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileSink_RefusesOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileSink(FileConfig{Fs: fs, Dir: "/out"})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Save(ctx, "a.pdf", []byte("first"), "")
	require.NoError(t, err)

	_, err = s.Save(ctx, "a.pdf", []byte("second"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	got, err := afero.ReadFile(fs, filepath.Join("/out", "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got))
}

func TestFileSink_Overwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := NewFileSink(FileConfig{Fs: fs, Dir: "/out", Overwrite: true})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = s.Save(ctx, "a.pdf", []byte("first"), "")
	require.NoError(t, err)
	loc, err := s.Save(ctx, "a.pdf", []byte("second"), "")
	require.NoError(t, err)

	got, err := afero.ReadFile(fs, loc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFileSink_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	_, err := NewFileSink(FileConfig{Fs: fs, Dir: "/out"})
	assert.Error(t, err)
}

func TestFileSink_CanceledContext(t *testing.T) {
	s, err := NewFileSink(FileConfig{Fs: afero.NewMemMapFs(), Dir: "/out"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Save(ctx, "a.pdf", []byte("x"), "")
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Save(t *testing.T) {
	client := &fakeS3{}
	s := newS3Sink(client, &S3Config{Bucket: "docs", Prefix: "/archive/"}, nil)

	loc, err := s.Save(context.Background(), "lease", []byte("pdf"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s3://docs/archive/lease.pdf", loc)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "docs", aws.ToString(in.Bucket))
	assert.Equal(t, "archive/lease.pdf", aws.ToString(in.Key))
	assert.Equal(t, "application/pdf", aws.ToString(in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "*", aws.ToString(in.IfNoneMatch))
	assert.Equal(t, []byte("pdf"), client.bodies[0])
}

func TestS3Sink_OverwriteAndNoPrefix(t *testing.T) {
	client := &fakeS3{}
	s := newS3Sink(client, &S3Config{Bucket: "docs", Overwrite: true}, nil)

	loc, err := s.Save(context.Background(), "a.pdf", []byte("x"), "")
	require.NoError(t, err)
	assert.Equal(t, "s3://docs/a.pdf", loc)
	assert.Nil(t, client.inputs[0].IfNoneMatch)
	assert.Nil(t, client.inputs[0].ContentType)
}

func TestS3Sink_Errors(t *testing.T) {
	s := newS3Sink(&fakeS3{err: &smithy.GenericAPIError{Code: "PreconditionFailed"}}, &S3Config{Bucket: "docs"}, nil)
	_, err := s.Save(context.Background(), "a.pdf", []byte("x"), "")
	assert.ErrorIs(t, err, ErrExists)

	boom := errors.New("boom")
	s = newS3Sink(&fakeS3{err: boom}, &S3Config{Bucket: "docs"}, nil)
	_, err = s.Save(context.Background(), "a.pdf", []byte("x"), "")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrExists)
}

func TestS3Config_Validate(t *testing.T) {
	assert.Error(t, (&S3Config{}).Validate())
	assert.Error(t, (&S3Config{Bucket: "b", AccessKey: "ak"}).Validate())
	assert.NoError(t, (&S3Config{Bucket: "b"}).Validate())
	assert.NoError(t, (&S3Config{Bucket: "b", AccessKey: "ak", SecretKey: "sk"}).Validate())

	cfg := &S3Config{Bucket: "b"}
	cfg.SetDefaults()
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, 30, cfg.RequestTimeoutSeconds)
}

func TestNewS3Sink_Client(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	t.Run("custom endpoint", func(t *testing.T) {
		s, err := NewS3Sink(context.Background(), &S3Config{
			Bucket:    "docs",
			Endpoint:  "http://localhost:9000",
			AccessKey: "ak",
			SecretKey: "sk",
		}, nil)
		require.NoError(t, err)

		client, ok := s.client.(*s3.Client)
		require.True(t, ok)
		opts := client.Options()
		assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
		assert.True(t, opts.UsePathStyle)
		assert.Equal(t, "us-east-1", opts.Region)
	})

	t.Run("aws", func(t *testing.T) {
		s, err := NewS3Sink(context.Background(), &S3Config{Bucket: "docs", Region: "eu-west-2"}, nil)
		require.NoError(t, err)

		opts := s.client.(*s3.Client).Options()
		assert.Nil(t, opts.BaseEndpoint)
		assert.False(t, opts.UsePathStyle)
		assert.Equal(t, "eu-west-2", opts.Region)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := NewS3Sink(context.Background(), &S3Config{}, nil)
		assert.ErrorContains(t, err, "bucket is required")
	})
}
