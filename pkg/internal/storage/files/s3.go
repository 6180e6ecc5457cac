package files

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/bacasendiri/pkg/configs"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
)

func init() {
	RegisterStoreFactory(configs.FileBackendS3, newS3Store)
}

// s3Store MinIO 对象存储后端，对象键为 <目录名>/<文件名>.
type s3Store struct {
	cli *minio.Client
	cfg *configs.StorageConfig
}

func newS3Store(ctx context.Context, cfg *configs.StorageConfig) (FileStore, error) {
	s3cfg := cfg.S3

	endpoint := s3cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			s3cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		Secure: s3cfg.UseSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("bacasendiri", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, s3cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", s3cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, s3cfg.BucketName, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", s3cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", s3cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", s3cfg.Endpoint).Msg("s3 connected")

	return &s3Store{cli: cli, cfg: cfg}, nil
}

func (s *s3Store) objectKey(kind Kind, name string) string {
	switch kind {
	case KindThumbnail:
		return s.cfg.ThumbnailDir + "/" + name
	case KindContent:
		return s.cfg.ContentDir + "/" + name
	case KindProfile:
		return s.cfg.ProfileDir + "/" + name
	default:
		return name
	}
}

// Promote 上传成功后删除暂存文件；上传失败时暂存文件保留，由清扫任务回收.
func (s *s3Store) Promote(ctx context.Context, stagedPath string, kind Kind, name string) error {
	key := s.objectKey(kind, name)

	if _, err := s.cli.FPutObject(ctx, s.cfg.S3.BucketName, key, stagedPath, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("promote %s: %w", key, err)
	}

	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		nlog.Logger().Warn().Err(err).Str("path", stagedPath).Msg("remove staged file after upload failed")
	}

	return nil
}

func (s *s3Store) Remove(ctx context.Context, kind Kind, name string) error {
	key := s.objectKey(kind, name)

	if err := s.cli.RemoveObject(ctx, s.cfg.S3.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil
		}

		return fmt.Errorf("remove %s: %w", key, err)
	}

	return nil
}

func (s *s3Store) Exists(ctx context.Context, kind Kind, name string) (bool, error) {
	key := s.objectKey(kind, name)

	if _, err := s.cli.StatObject(ctx, s.cfg.S3.BucketName, key, minio.StatObjectOptions{}); err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *s3Store) HealthCheck(ctx context.Context) error {
	_, err := s.cli.BucketExists(ctx, s.cfg.S3.BucketName)
	return err
}

func (s *s3Store) Close() error {
	return nil
}
