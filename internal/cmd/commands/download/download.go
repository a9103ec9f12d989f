package download

import (
	"context"
	"flag"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/docstore/internal/cmd/base"
	"github.com/hashicorp-forge/docstore/internal/config"
	"github.com/hashicorp-forge/docstore/pkg/documents"
	"github.com/hashicorp-forge/docstore/pkg/sink"
)

type Command struct {
	*base.Command

	client base.ClientFlags

	flagVersion   string
	flagOut       string
	flagOverwrite bool
	flagS3        bool
}

func (c *Command) Synopsis() string {
	return "Download document content"
}

func (c *Command) Help() string {
	return `Usage: docstore download [options] <document-id>...

  Download one version of each document. By default the most recent
  version is downloaded into the current directory, named after the
  version's document name. With -s3 the content is uploaded to the bucket
  configured in the s3 block instead.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("download", flag.ContinueOnError))
	base.AddClientFlags(f, &c.client)

	f.StringVar(
		&c.flagVersion, "version", documents.MostRecentVersion,
		"Version ID to download, or \"Most Recent\"",
	)
	f.StringVar(&c.flagOut, "out", "", "[DOCSTORE_OUTPUT_DIR] Output directory")
	f.BoolVar(&c.flagOverwrite, "overwrite", false, "Replace existing files")
	f.BoolVar(&c.flagS3, "s3", false, "Upload to the configured S3 bucket")

	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	ids := f.Args()
	if len(ids) == 0 {
		c.UI.Error("at least one document ID is required")
		return 1
	}

	ctx := context.Background()
	sess, err := c.NewSession(ctx, &c.client)
	if err != nil {
		c.Error(err)
		return 1
	}
	defer sess.Close(ctx)

	dst, err := c.sink(ctx, sess.Config)
	if err != nil {
		c.Error(err)
		return 1
	}

	var result *multierror.Error
	for _, id := range ids {
		loc, err := c.download(ctx, sess.Client, dst, id)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("document %q: %w", id, err))
			continue
		}
		c.UI.Info(fmt.Sprintf("Saved %s to %s", id, loc))
	}

	if result.ErrorOrNil() != nil {
		for _, err := range result.WrappedErrors() {
			c.Error(err)
		}
		c.UI.Error(fmt.Sprintf("%d of %d downloads failed", result.Len(), len(ids)))
		return 1
	}
	return 0
}

func (c *Command) download(ctx context.Context, client *documents.Client, dst sink.Sink, id string) (string, error) {
	content, err := client.DownloadDocumentContent(ctx, id, c.flagVersion)
	if err != nil {
		return "", err
	}
	return dst.Save(ctx, FileName(content), content.Blob, content.MimeType)
}

func (c *Command) sink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if c.flagS3 {
		if cfg.S3 == nil {
			return nil, fmt.Errorf("-s3 requires an s3 block in the config file or DOCSTORE_S3_BUCKET")
		}
		s3cfg := *cfg.S3
		s3cfg.Overwrite = s3cfg.Overwrite || c.flagOverwrite
		return sink.NewS3Sink(ctx, &s3cfg, c.Log)
	}

	dir := cfg.Output.Dir
	if c.flagOut != "" {
		dir = c.flagOut
	}
	return sink.NewFileSink(sink.FileConfig{
		Dir:       dir,
		Overwrite: cfg.Output.Overwrite || c.flagOverwrite,
		Logger:    c.Log,
	})
}

// FileName suggests a name for downloaded content.
func FileName(content *documents.DocumentContent) string {
	if content.DocumentName != "" {
		return content.DocumentName
	}
	return content.DocumentID + "-" + content.VersionID
}
