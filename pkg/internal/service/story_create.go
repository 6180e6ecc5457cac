package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/queue"
)

// Create 故事入库流水线：
// 认证用户回查 → 必填字段校验 → 两个文件暂存 → 正文提取与截断 →
// 同一事务内插入记录并将文件原子提升到永久目录，任一步失败则整体回退.
func (s *StoryService) Create(ctx context.Context, id *auth.Identity, req types.CreateStoryRequest,
	thumbUp, contentUp *Upload) (*types.CreateStoryResult, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	author := strings.TrimSpace(req.Author)
	description := strings.TrimSpace(req.Description)

	if title == "" || author == "" || description == "" {
		return nil, types.ErrValidation(types.CodeMissingData, "title, author and description are required")
	}

	if thumbUp == nil || contentUp == nil {
		return nil, types.ErrValidation(types.CodeMissingData, "thumbnail and content file are required")
	}

	stagedThumb, err := s.stage(ctx, thumbUp, files.KindThumbnail)
	if err != nil {
		return nil, err
	}

	stagedContent, err := s.stage(ctx, contentUp, files.KindContent)
	if err != nil {
		s.filesClient.Discard(stagedThumb)

		return nil, err
	}

	policy, err := s.extractContent(stagedContent, contentUp.Name)
	if err != nil {
		// 提取失败时清理暂存文件，不留孤儿
		s.filesClient.Discard(stagedThumb)
		s.filesClient.Discard(stagedContent)

		return nil, err
	}

	story := model.Story{
		UUID:        uuid.NewString(),
		Title:       title,
		Author:      author,
		Description: description,
		Thumbnail:   stagedThumb.Name,
		ContentFile: stagedContent.Name,
		ContentText: policy.Text,
		UserID:      user.ID,
	}

	// 行插入与文件提升在同一事务内：提升失败会回滚行，
	// 已提升的封面被拉回删除，暂存残留交给清扫任务兜底.
	txErr := s.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&story).Error; err != nil {
			return types.ErrServer("failed to persist story", err)
		}

		if err := s.filesClient.PromoteStaged(ctx, stagedThumb, files.KindThumbnail); err != nil {
			return types.ErrStorage("failed to place thumbnail", err)
		}

		if err := s.filesClient.PromoteStaged(ctx, stagedContent, files.KindContent); err != nil {
			if rerr := s.filesClient.Remove(ctx, files.KindThumbnail, stagedThumb.Name); rerr != nil {
				nlog.Logger().Warn().Err(rerr).Str("file", stagedThumb.Name).Msg("rollback thumbnail failed")
			}

			return types.ErrStorage("failed to place content file", err)
		}

		return nil
	})
	if txErr != nil {
		s.filesClient.Discard(stagedThumb)
		s.filesClient.Discard(stagedContent)

		return nil, types.AsAPIError(txErr)
	}

	s.publishStoryCreated(&story, policy)

	return &types.CreateStoryResult{
		Story:          s.storyResponse(&story, true),
		ContentLength:  len([]rune(policy.Text)),
		OriginalLength: policy.OriginalLength,
		WasTruncated:   policy.WasTruncated,
	}, nil
}

func (s *StoryService) publishStoryCreated(story *model.Story, policy ContentPolicyResult) {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled || !cfg.Story.Created {
		return
	}

	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	payload := queue.StoryCreatedPayload{
		Story: queue.StoryRef{
			ID:     story.ID,
			UUID:   story.UUID,
			Title:  story.Title,
			Author: story.Author,
			UserID: story.UserID,
		},
		ContentLength:  len([]rune(policy.Text)),
		OriginalLength: policy.OriginalLength,
		WasTruncated:   policy.WasTruncated,
	}

	if err := queue.PublishStoryCreated(pub, payload, queue.WithProducer("bacasendiri")); err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish story created event failed")
	}
}
