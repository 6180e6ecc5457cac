package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yeisme/bacasendiri/pkg/configs"
)

func init() {
	RegisterStoreFactory(configs.FileBackendLocal, func(_ context.Context, cfg *configs.StorageConfig) (FileStore, error) {
		return newLocalStore(cfg)
	})
}

// localStore 本地磁盘后端，文件落在 public 目录下由服务器静态托管.
type localStore struct {
	cfg *configs.StorageConfig
}

func newLocalStore(cfg *configs.StorageConfig) (*localStore, error) {
	for _, dir := range []string{cfg.ThumbnailPath(), cfg.ContentPath(), cfg.ProfilePath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	return &localStore{cfg: cfg}, nil
}

func (s *localStore) dirFor(kind Kind) string {
	switch kind {
	case KindThumbnail:
		return s.cfg.ThumbnailPath()
	case KindContent:
		return s.cfg.ContentPath()
	case KindProfile:
		return s.cfg.ProfilePath()
	default:
		return ""
	}
}

// Promote 同一文件系统内 rename 是原子操作，这是提交点.
func (s *localStore) Promote(_ context.Context, stagedPath string, kind Kind, name string) error {
	dir := s.dirFor(kind)
	if dir == "" {
		return fmt.Errorf("unknown file kind: %s", kind)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	if err := os.Rename(stagedPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("promote %s: %w", name, err)
	}

	return nil
}

func (s *localStore) Remove(_ context.Context, kind Kind, name string) error {
	dir := s.dirFor(kind)
	if dir == "" {
		return fmt.Errorf("unknown file kind: %s", kind)
	}

	if err := os.Remove(filepath.Join(dir, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("remove %s: %w", name, err)
	}

	return nil
}

func (s *localStore) Exists(_ context.Context, kind Kind, name string) (bool, error) {
	dir := s.dirFor(kind)
	if dir == "" {
		return false, fmt.Errorf("unknown file kind: %s", kind)
	}

	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (s *localStore) HealthCheck(_ context.Context) error {
	for _, dir := range []string{s.cfg.ThumbnailPath(), s.cfg.ContentPath(), s.cfg.ProfilePath()} {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("storage dir %s: %w", dir, err)
		}
	}

	return nil
}

func (s *localStore) Close() error {
	return nil
}
