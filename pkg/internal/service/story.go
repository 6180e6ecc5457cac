package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	ctxPkg "github.com/yeisme/bacasendiri/pkg/context"
	"github.com/yeisme/bacasendiri/pkg/internal/extract"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/db"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/kv"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/mq"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
)

// Upload 一个待入库的上传文件，由 handler 从 multipart 表单转换而来.
type Upload struct {
	Name        string // 原始文件名
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// StoryService 负责故事相关业务逻辑（入库流水线、查询、权限），不处理 HTTP 细节.
type StoryService struct {
	dbClient    *db.Client
	filesClient *files.Client
	mqClient    *mq.Client // 可为 nil，事件发布被跳过
	kvClient    *kv.Client // 可为 nil，读缓存被跳过
}

// NewStoryService 从 context 获取依赖实例.
func NewStoryService(c context.Context) *StoryService {
	dbc := ctxPkg.GetDBClient(c)
	fc := ctxPkg.GetFilesClient(c)

	// 为了安全起见，应该直接 panic 而不是返回 nil，依赖此服务就不需要再检查
	if dbc == nil || dbc.DB == nil || fc == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &StoryService{
		dbClient:    dbc,
		filesClient: fc,
		mqClient:    ctxPkg.GetMQClient(c),
		kvClient:    ctxPkg.GetKVClient(c),
	}
}

// currentUser 按令牌中的 UUID 重新查库，令牌有效但用户已被删除时返回 USER_NOT_FOUND.
func (s *StoryService) currentUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
	if id == nil || id.ID == "" {
		return nil, types.ErrUnauthenticated(types.CodeUnauthenticated, "authentication required")
	}

	var user model.User
	if err := s.dbClient.WithContext(ctx).Where("uuid = ?", id.ID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewAPIError(404, types.CodeUserNotFound, "user not found", nil)
		}

		return nil, types.ErrServer("failed to load user", err)
	}

	return &user, nil
}

// findStory 按数字主键查找故事，非法或不存在都按 404 处理.
func (s *StoryService) findStory(ctx context.Context, idParam string) (*model.Story, error) {
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, types.ErrNotFound("story not found")
	}

	var story model.Story
	if err := s.dbClient.WithContext(ctx).First(&story, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("story not found")
		}

		return nil, types.ErrServer("failed to load story", err)
	}

	return &story, nil
}

// validateUpload 上传大小与类型校验，multer 时代的规则：
// 封面必须是 image/*，正文扩展名必须在白名单内，单文件 10MB 上限.
func (s *StoryService) validateUpload(up *Upload, kind files.Kind) error {
	maxBytes := configs.GetConfig().Storage.MaxUploadBytes
	if up.Size > maxBytes {
		return types.ErrValidation(types.CodeValidation,
			fmt.Sprintf("file %s exceeds the %d byte limit", up.Name, maxBytes))
	}

	switch kind {
	case files.KindThumbnail, files.KindProfile:
		if !strings.HasPrefix(up.ContentType, "image/") {
			return types.ErrValidation(types.CodeValidation, "thumbnail must be an image")
		}
	case files.KindContent:
		if !extract.IsSupported(up.Name) {
			return types.ErrValidation(types.CodeUnsupportedFormat,
				"content file must be .txt, .docx or .pdf")
		}
	}

	return nil
}

// stage 校验并写入暂存目录.
func (s *StoryService) stage(ctx context.Context, up *Upload, kind files.Kind) (*files.StagedFile, error) {
	if err := s.validateUpload(up, kind); err != nil {
		return nil, err
	}

	r, err := up.Open()
	if err != nil {
		return nil, types.ErrStorage("failed to read upload", err)
	}
	defer r.Close()

	staged, err := s.filesClient.Stage(ctx, up.Name, r)
	if err != nil {
		return nil, types.ErrStorage("failed to stage upload", err)
	}

	return staged, nil
}

// extractContent 从暂存的正文文件提取文本并应用入库上限.
func (s *StoryService) extractContent(staged *files.StagedFile, originalName string) (ContentPolicyResult, error) {
	text, err := extract.Extract(staged.Path, originalName)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return ContentPolicyResult{}, types.ErrValidation(types.CodeUnsupportedFormat,
				"content file must be .txt, .docx or .pdf")
		}

		return ContentPolicyResult{}, types.ErrExtraction("failed to extract text from content file", err)
	}

	return EnforceContentLimit(text), nil
}

const storyCacheKeyPrefix = "story:read:"

// invalidateStoryCache 故事变更后清除公开读缓存.
func (s *StoryService) invalidateStoryCache(ctx context.Context, storyID uint) {
	if s.kvClient == nil {
		return
	}

	key := storyCacheKeyPrefix + strconv.FormatUint(uint64(storyID), 10)
	if err := s.kvClient.Delete(ctx, key); err != nil {
		nlog.Logger().Warn().Err(err).Str("key", key).Msg("invalidate story cache failed")
	}
}

// storyResponse 将模型转为响应视图，URL 由文件客户端拼装.
func (s *StoryService) storyResponse(story *model.Story, includeContent bool) types.StoryResponse {
	resp := types.StoryResponse{
		ID:          story.ID,
		UUID:        story.UUID,
		Title:       story.Title,
		Author:      story.Author,
		Description: story.Description,
		Thumbnail:   story.Thumbnail,
		ContentFile: story.ContentFile,
		UserID:      story.UserID,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,

		ThumbnailURL: s.filesClient.PublicURL(files.KindThumbnail, story.Thumbnail),
		ContentURL:   s.filesClient.PublicURL(files.KindContent, story.ContentFile),
	}

	if includeContent {
		resp.ContentText = story.ContentText
	}

	return resp
}

// storySummary 列表视图，不携带正文.
func (s *StoryService) storySummary(story *model.Story) types.StorySummary {
	return types.StorySummary{
		ID:          story.ID,
		UUID:        story.UUID,
		Title:       story.Title,
		Author:      story.Author,
		Description: story.Description,
		Thumbnail:   story.Thumbnail,
		UserID:      story.UserID,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,

		ThumbnailURL: s.filesClient.PublicURL(files.KindThumbnail, story.Thumbnail),
	}
}
