// Package files 处理故事文件的存储操作：上传先落入暂存目录，入库成功后再原子地
// 提升到永久目录（story_thumbnails、story_content、profile_picture）.
//
// Example:
//
//	cli, err := files.New(ctx, &cfg.Storage)
//	staged, err := cli.Stage(ctx, "novel.txt", reader)
//	err = cli.Promote(ctx, staged, files.KindContent)
package files

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid"

	"github.com/yeisme/bacasendiri/pkg/configs"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
)

// Kind 永久目录的类别.
type Kind string

const (
	KindThumbnail Kind = "thumbnail"
	KindContent   Kind = "content"
	KindProfile   Kind = "profile"
)

// FileStore 永久文件存储后端接口，暂存始终在本地磁盘完成.
type FileStore interface {
	// Promote 将暂存文件提升为 kind 目录下的永久文件，成功后暂存文件不再存在.
	Promote(ctx context.Context, stagedPath string, kind Kind, name string) error
	// Remove 删除 kind 目录下的永久文件.
	Remove(ctx context.Context, kind Kind, name string) error
	// Exists 检查 kind 目录下的永久文件是否存在.
	Exists(ctx context.Context, kind Kind, name string) (bool, error)
	// HealthCheck 验证后端可用.
	HealthCheck(ctx context.Context) error
	// Close 关闭后端连接.
	Close() error
}

// StoreFactory 定义创建 FileStore 的工厂函数类型.
type StoreFactory func(ctx context.Context, cfg *configs.StorageConfig) (FileStore, error)

// storeFactories 存储后端类型到工厂的映射.
var storeFactories = make(map[configs.FileBackendType]StoreFactory)

// RegisterStoreFactory 注册文件存储工厂函数.
func RegisterStoreFactory(t configs.FileBackendType, factory StoreFactory) {
	storeFactories[t] = factory
}

// GetRegisteredBackends 返回已注册的后端类型列表.
func GetRegisteredBackends() []configs.FileBackendType {
	types := make([]configs.FileBackendType, 0, len(storeFactories))
	for t := range storeFactories {
		types = append(types, t)
	}

	return types
}

// Client 聚合暂存与永久存储.
type Client struct {
	FileStore

	cfg *configs.StorageConfig
}

// StagedFile 暂存文件信息.
type StagedFile struct {
	Name string // 唯一文件名，提升后保持不变
	Path string // 暂存目录下的磁盘路径
	Size int64
}

// ulidEntropy 单调熵源，保证同进程内生成的文件名有序且不重复.
var ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// New 根据配置创建文件存储客户端，并确保暂存目录存在.
func New(ctx context.Context, cfg *configs.StorageConfig) (*Client, error) {
	factory, exists := storeFactories[cfg.Backend]
	if !exists {
		return nil, fmt.Errorf("unsupported file backend: %s", cfg.Backend)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StagingPath(), 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	nlog.Logger().Info().Str("backend", string(cfg.Backend)).Msg("file storage initialized")

	return &Client{FileStore: store, cfg: cfg}, nil
}

// UniqueName 为上传文件生成唯一文件名，保留原始扩展名.
func UniqueName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	if base == "" {
		base = "file"
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy)

	return fmt.Sprintf("%s-%s%s", base, id.String(), ext)
}

// Stage 将上传内容写入暂存目录，返回暂存文件信息.
func (c *Client) Stage(_ context.Context, originalName string, r io.Reader) (*StagedFile, error) {
	name := UniqueName(originalName)
	path := filepath.Join(c.cfg.StagingPath(), name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	size, err := io.Copy(f, r)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(path)

		return nil, fmt.Errorf("write staged file: %w", err)
	}

	return &StagedFile{Name: name, Path: path, Size: size}, nil
}

// PromoteStaged 将暂存文件提升为永久文件.
func (c *Client) PromoteStaged(ctx context.Context, staged *StagedFile, kind Kind) error {
	return c.Promote(ctx, staged.Path, kind, staged.Name)
}

// Discard 丢弃暂存文件，文件不存在时不报错.
func (c *Client) Discard(staged *StagedFile) {
	if staged == nil {
		return
	}

	if err := os.Remove(staged.Path); err != nil && !os.IsNotExist(err) {
		nlog.Logger().Warn().Err(err).Str("path", staged.Path).Msg("discard staged file failed")
	}
}

// StagedEntry 暂存目录中的条目，供后台清扫任务使用.
type StagedEntry struct {
	Name    string
	Path    string
	ModTime time.Time
}

// ListStaged 列出暂存目录中的所有文件.
func (c *Client) ListStaged() ([]StagedEntry, error) {
	dir := c.cfg.StagingPath()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	out := make([]StagedEntry, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		out = append(out, StagedEntry{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}

	return out, nil
}

// Config 返回存储配置.
func (c *Client) Config() *configs.StorageConfig {
	return c.cfg
}

// DirFor 返回 kind 对应的公开目录名（URL 的第一段）.
func (c *Client) DirFor(kind Kind) string {
	switch kind {
	case KindThumbnail:
		return c.cfg.ThumbnailDir
	case KindContent:
		return c.cfg.ContentDir
	case KindProfile:
		return c.cfg.ProfileDir
	default:
		return ""
	}
}

// PublicURL 返回永久文件的公开访问路径，如 /story_thumbnails/xxx.png.
func (c *Client) PublicURL(kind Kind, name string) string {
	if name == "" {
		return ""
	}

	return "/" + c.DirFor(kind) + "/" + name
}
