package service

import (
	"context"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/queue"
)

// Delete 删除故事：作者本人或管理员.文件缺失不阻塞删除，行删除是最终裁决.
func (s *StoryService) Delete(ctx context.Context, id *auth.Identity, idParam string) error {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return err
	}

	story, err := s.findStory(ctx, idParam)
	if err != nil {
		return err
	}

	if !CanMutate(user, story) {
		return types.ErrForbidden("only the story owner or an admin can delete it")
	}

	// 容忍文件缺失：磁盘上已经没有的文件不该挡住删除
	if story.Thumbnail != "" {
		if rerr := s.filesClient.Remove(ctx, files.KindThumbnail, story.Thumbnail); rerr != nil {
			nlog.Logger().Warn().Err(rerr).Str("file", story.Thumbnail).Msg("remove thumbnail failed")
		}
	}

	if story.ContentFile != "" {
		if rerr := s.filesClient.Remove(ctx, files.KindContent, story.ContentFile); rerr != nil {
			nlog.Logger().Warn().Err(rerr).Str("file", story.ContentFile).Msg("remove content file failed")
		}
	}

	// 稍后阅读条目跟随故事一起消失
	if err := s.dbClient.WithContext(ctx).
		Where("story_id = ?", story.ID).
		Delete(&model.ReadLaterItem{}).Error; err != nil {
		return types.ErrServer("failed to delete read later items", err)
	}

	if err := s.dbClient.WithContext(ctx).Delete(&model.Story{}, story.ID).Error; err != nil {
		return types.ErrServer("failed to delete story", err)
	}

	s.invalidateStoryCache(ctx, story.ID)
	s.publishStoryDeleted(story, user)

	return nil
}

func (s *StoryService) publishStoryDeleted(story *model.Story, deletedBy *model.User) {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled || !cfg.Story.Deleted {
		return
	}

	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	payload := queue.StoryDeletedPayload{
		Story: queue.StoryRef{
			ID:     story.ID,
			UUID:   story.UUID,
			Title:  story.Title,
			Author: story.Author,
			UserID: story.UserID,
		},
		DeletedBy: deletedBy.UUID,
	}

	if err := queue.PublishStoryDeleted(pub, payload, queue.WithProducer("bacasendiri")); err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish story deleted event failed")
	}
}
