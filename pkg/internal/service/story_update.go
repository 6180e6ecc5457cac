package service

import (
	"context"
	"strings"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/queue"
)

// Update 部分更新：仅作者本人可编辑；替换文件时先暂存新文件，
// 正文替换要先通过提取，失败则丢弃暂存、故事保持原样.
func (s *StoryService) Update(ctx context.Context, id *auth.Identity, idParam string,
	req types.UpdateStoryRequest, thumbUp, contentUp *Upload) (*types.StoryResponse, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	story, err := s.findStory(ctx, idParam)
	if err != nil {
		return nil, err
	}

	if !CanEdit(user, story) {
		return nil, types.ErrForbidden("only the story owner can update it")
	}

	changed := make([]string, 0, 5)

	// 文件替换先全部暂存，任何一步失败时故事不动
	var stagedThumb, stagedContent *files.StagedFile

	if thumbUp != nil {
		if stagedThumb, err = s.stage(ctx, thumbUp, files.KindThumbnail); err != nil {
			return nil, err
		}
	}

	var policy ContentPolicyResult

	if contentUp != nil {
		if stagedContent, err = s.stage(ctx, contentUp, files.KindContent); err != nil {
			s.filesClient.Discard(stagedThumb)

			return nil, err
		}

		if policy, err = s.extractContent(stagedContent, contentUp.Name); err != nil {
			s.filesClient.Discard(stagedThumb)
			s.filesClient.Discard(stagedContent)

			return nil, err
		}
	}

	// 提取通过后才动旧文件：先删旧，再提升新
	if stagedThumb != nil {
		if story.Thumbnail != "" {
			if rerr := s.filesClient.Remove(ctx, files.KindThumbnail, story.Thumbnail); rerr != nil {
				nlog.Logger().Warn().Err(rerr).Str("file", story.Thumbnail).Msg("remove old thumbnail failed")
			}
		}

		if err := s.filesClient.PromoteStaged(ctx, stagedThumb, files.KindThumbnail); err != nil {
			s.filesClient.Discard(stagedThumb)
			s.filesClient.Discard(stagedContent)

			return nil, types.ErrStorage("failed to place thumbnail", err)
		}

		story.Thumbnail = stagedThumb.Name
		changed = append(changed, "thumbnail")
	}

	if stagedContent != nil {
		if story.ContentFile != "" {
			if rerr := s.filesClient.Remove(ctx, files.KindContent, story.ContentFile); rerr != nil {
				nlog.Logger().Warn().Err(rerr).Str("file", story.ContentFile).Msg("remove old content file failed")
			}
		}

		if err := s.filesClient.PromoteStaged(ctx, stagedContent, files.KindContent); err != nil {
			s.filesClient.Discard(stagedContent)

			return nil, types.ErrStorage("failed to place content file", err)
		}

		story.ContentFile = stagedContent.Name
		story.ContentText = policy.Text
		changed = append(changed, "content")
	}

	if title := strings.TrimSpace(req.Title); title != "" && title != story.Title {
		story.Title = title
		changed = append(changed, "title")
	}

	if author := strings.TrimSpace(req.Author); author != "" && author != story.Author {
		story.Author = author
		changed = append(changed, "author")
	}

	if description := strings.TrimSpace(req.Description); description != "" && description != story.Description {
		story.Description = description
		changed = append(changed, "description")
	}

	// Save 会顺带刷新 UpdatedAt
	if err := s.dbClient.WithContext(ctx).Save(story).Error; err != nil {
		return nil, types.ErrServer("failed to update story", err)
	}

	s.invalidateStoryCache(ctx, story.ID)
	s.publishStoryUpdated(story, changed)

	resp := s.storyResponse(story, true)

	return &resp, nil
}

func (s *StoryService) publishStoryUpdated(story *model.Story, changed []string) {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled || !cfg.Story.Updated {
		return
	}

	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	payload := queue.StoryUpdatedPayload{
		Story: queue.StoryRef{
			ID:     story.ID,
			UUID:   story.UUID,
			Title:  story.Title,
			Author: story.Author,
			UserID: story.UserID,
		},
		ChangedFields: changed,
	}

	if err := queue.PublishStoryUpdated(pub, payload, queue.WithProducer("bacasendiri")); err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish story updated event failed")
	}
}
