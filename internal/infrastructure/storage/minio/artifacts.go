package minio

import (
	"context"
	"os"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/smilescombine/internal/domain/library"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/pkg/errors"
)

const contentType = "chemical/x-daylight-smiles"

var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")

// ArtifactStore keeps output files under <prefix>/<run id>/<file>.
type ArtifactStore struct {
	client *Client
	logger logging.Logger
}

var _ library.ArtifactStore = (*ArtifactStore)(nil)

func NewArtifactStore(client *Client, log logging.Logger) *ArtifactStore {
	return &ArtifactStore{client: client, logger: log}
}

// ObjectKey returns the key an artifact is stored under.
func (s *ArtifactStore) ObjectKey(runID, fileName string) string {
	return path.Join(strings.Trim(s.client.config.ObjectPrefix, "/"), runID, fileName)
}

// Upload streams the local file to the bucket and returns its s3:// URI.
func (s *ArtifactStore) Upload(ctx context.Context, runID, fileName, localPath string) (string, error) {
	if runID == "" || fileName == "" {
		return "", errors.InvalidParam("run id and file name are required")
	}
	api, err := s.client.api()
	if err != nil {
		return "", err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to open artifact").WithDetail(localPath)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat artifact").WithDetail(localPath)
	}

	key := s.ObjectKey(runID, fileName)
	info, err := api.PutObject(ctx, s.client.config.Bucket, key, f, st.Size(), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"run-id": runID},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "upload failed").WithDetail(key)
	}

	s.logger.Info("Uploaded library artifact",
		logging.String("bucket", info.Bucket),
		logging.String("key", info.Key),
		logging.Int64("size", info.Size))
	return "s3://" + s.client.config.Bucket + "/" + key, nil
}

// Exists reports whether the artifact of a run is stored.
func (s *ArtifactStore) Exists(ctx context.Context, runID, fileName string) (bool, error) {
	api, err := s.client.api()
	if err != nil {
		return false, err
	}
	_, err = api.StatObject(ctx, s.client.config.Bucket, s.ObjectKey(runID, fileName), minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeStorageError, "stat failed")
	}
	return true, nil
}

// Delete removes the artifact of a run.
func (s *ArtifactStore) Delete(ctx context.Context, runID, fileName string) error {
	api, err := s.client.api()
	if err != nil {
		return err
	}
	if err := api.RemoveObject(ctx, s.client.config.Bucket, s.ObjectKey(runID, fileName), minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "delete failed")
	}
	return nil
}

// PresignedURL returns a time-limited download link; zero expiry selects
// the configured default.
func (s *ArtifactStore) PresignedURL(ctx context.Context, runID, fileName string, expiry time.Duration) (string, error) {
	api, err := s.client.api()
	if err != nil {
		return "", err
	}
	if expiry == 0 {
		expiry = s.client.config.PresignExpiry
	}
	key := s.ObjectKey(runID, fileName)
	if _, err := api.StatObject(ctx, s.client.config.Bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrObjectNotFound
		}
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "stat failed")
	}
	u, err := api.PresignedGetObject(ctx, s.client.config.Bucket, key, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "presign failed")
	}
	return u.String(), nil
}

//Personal.AI order the ending
