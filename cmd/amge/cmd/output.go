package cmd

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"k3l.io/go-amge/pkg/server"
	"k3l.io/go-amge/pkg/sparse"
	"k3l.io/go-amge/pkg/util"
)

func viperKey(flag string) string { return strings.ReplaceAll(flag, "-", "_") }

// writeOutput writes the matrix CSV into a local file, stdout ("-"),
// or an s3://bucket/key object.
func writeOutput(ctx context.Context, m *sparse.CSRMatrix, name string) error {
	if u, ok := util.IsS3URI(name); ok {
		return uploadOutput(ctx, m, u)
	}
	file, err := util.OpenOutputFile(name)
	if err != nil {
		return errors.Wrap(err, "cannot open output file")
	}
	if err = server.WriteCSV(ctx, file, m); err != nil {
		util.Close(file)
		return err
	}
	return file.Close()
}

func uploadOutput(ctx context.Context, m *sparse.CSRMatrix, u *url.URL) error {
	var buf bytes.Buffer
	if err := server.WriteCSV(ctx, &buf, m); err != nil {
		return err
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot load AWS config")
	}
	uploader := manager.NewUploader(s3.NewFromConfig(cfg))
	key := strings.TrimPrefix(u.Path, "/")
	result, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Host),
		Key:         aws.String(key),
		Body:        &buf,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return errors.Wrapf(err, "cannot upload to %s", u)
	}
	logger.Info().Str("location", result.Location).Msg("uploaded restriction")
	return nil
}
