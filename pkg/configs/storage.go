package configs

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// FileBackendType 文件存储后端类型.
type FileBackendType string

const (
	FileBackendLocal FileBackendType = "local"
	FileBackendS3    FileBackendType = "s3"
)

const (
	DefaultPublicDir         = "public"           // 静态文件根目录
	DefaultThumbnailDir      = "story_thumbnails" // 故事封面目录
	DefaultContentDir        = "story_content"    // 故事正文文件目录
	DefaultProfileDir        = "profile_picture"  // 用户头像目录
	DefaultStagingDir        = "staging"          // 上传暂存目录
	DefaultMaxUploadBytes    = 10 * 1024 * 1024   // 单文件上限 10MB
	DefaultStagingMaxAgeMins = 60                 // 暂存文件最长保留时间（分钟）
)

// StorageConfig 故事文件存储配置。local 后端将文件落在 PublicDir 下由服务器静态托管，
// s3 后端走对象存储.
type StorageConfig struct {
	Backend           FileBackendType `mapstructure:"backend"              rule:"oneof=local s3"`
	PublicDir         string          `mapstructure:"public_dir"`
	ThumbnailDir      string          `mapstructure:"thumbnail_dir"`
	ContentDir        string          `mapstructure:"content_dir"`
	ProfileDir        string          `mapstructure:"profile_dir"`
	StagingDir        string          `mapstructure:"staging_dir"`
	MaxUploadBytes    int64           `mapstructure:"max_upload_bytes"     rule:"min=1"`
	StagingMaxAgeMins int             `mapstructure:"staging_max_age_mins" rule:"min=1"`
	S3                S3Config        `mapstructure:"s3"`
}

// S3Config MinIO S3存储配置.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3BucketName      = "bacasendiri"    // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
)

// ThumbnailPath 封面目录的磁盘路径.
func (c *StorageConfig) ThumbnailPath() string {
	return filepath.Join(c.PublicDir, c.ThumbnailDir)
}

// ContentPath 正文文件目录的磁盘路径.
func (c *StorageConfig) ContentPath() string {
	return filepath.Join(c.PublicDir, c.ContentDir)
}

// ProfilePath 头像目录的磁盘路径.
func (c *StorageConfig) ProfilePath() string {
	return filepath.Join(c.PublicDir, c.ProfileDir)
}

// StagingPath 上传暂存目录的磁盘路径.
func (c *StorageConfig) StagingPath() string {
	return filepath.Join(c.PublicDir, c.StagingDir)
}

// StagingMaxAge 暂存文件最长保留时间.
func (c *StorageConfig) StagingMaxAge() time.Duration {
	return time.Duration(c.StagingMaxAgeMins) * time.Minute
}

// GetEndpointURL 获取完整的S3端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置文件存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", FileBackendLocal)
	v.SetDefault("storage.public_dir", DefaultPublicDir)
	v.SetDefault("storage.thumbnail_dir", DefaultThumbnailDir)
	v.SetDefault("storage.content_dir", DefaultContentDir)
	v.SetDefault("storage.profile_dir", DefaultProfileDir)
	v.SetDefault("storage.staging_dir", DefaultStagingDir)
	v.SetDefault("storage.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("storage.staging_max_age_mins", DefaultStagingMaxAgeMins)

	v.SetDefault("storage.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("storage.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("storage.s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("storage.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("storage.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("storage.s3.region", DefaultS3Region)
}
