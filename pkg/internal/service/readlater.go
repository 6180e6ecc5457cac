package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	ctxPkg "github.com/yeisme/bacasendiri/pkg/context"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/db"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/mq"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/queue"
)

// ReadLaterService 稍后阅读列表.重复加入由 (user_id, story_id)
// 唯一索引裁决，服务层不做先查后插.
type ReadLaterService struct {
	dbClient    *db.Client
	filesClient *files.Client
	mqClient    *mq.Client // 可为 nil
}

// NewReadLaterService 从 context 获取依赖实例.
func NewReadLaterService(c context.Context) *ReadLaterService {
	dbc := ctxPkg.GetDBClient(c)
	fc := ctxPkg.GetFilesClient(c)

	if dbc == nil || dbc.DB == nil || fc == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &ReadLaterService{dbClient: dbc, filesClient: fc, mqClient: ctxPkg.GetMQClient(c)}
}

func (s *ReadLaterService) currentUser(ctx context.Context, id *auth.Identity) (*model.User, error) {
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

// Add 将故事加入稍后阅读.故事不存在返回 NOT_FOUND，重复加入返回 ALREADY_EXISTS.
func (s *ReadLaterService) Add(ctx context.Context, id *auth.Identity, storyID uint) (*types.ReadLaterItemResponse, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if storyID == 0 {
		return nil, types.ErrValidation(types.CodeMissingData, "storyId is required")
	}

	var story model.Story
	if err := s.dbClient.WithContext(ctx).First(&story, storyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrNotFound("story not found")
		}

		return nil, types.ErrServer("failed to load story", err)
	}

	item := model.ReadLaterItem{UserID: user.ID, StoryID: story.ID}

	// 直接插入，唯一索引冲突即为重复加入
	if err := s.dbClient.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrConflict(types.CodeAlreadyExists, "story already in read later list")
		}

		return nil, types.ErrServer("failed to add read later item", err)
	}

	s.publishReadLater(queue.TopicReadLaterAdded, user.ID, story.ID)

	resp := s.itemResponse(&item, &story)

	return &resp, nil
}

// List 当前用户的稍后阅读列表，按加入时间倒序，附带故事摘要.
func (s *ReadLaterService) List(ctx context.Context, id *auth.Identity) ([]types.ReadLaterItemResponse, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var items []model.ReadLaterItem
	if err := s.dbClient.WithContext(ctx).
		Preload("Story").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, types.ErrServer("failed to list read later items", err)
	}

	out := make([]types.ReadLaterItemResponse, 0, len(items))
	for i := range items {
		out = append(out, s.itemResponse(&items[i], &items[i].Story))
	}

	return out, nil
}

// Remove 按条目 id 将其移出列表，范围限定为当前用户自己的条目.
func (s *ReadLaterService) Remove(ctx context.Context, id *auth.Identity, itemID uint) error {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return err
	}

	var item model.ReadLaterItem
	if err := s.dbClient.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, user.ID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.ErrNotFound("read later item not found")
		}

		return types.ErrServer("failed to load read later item", err)
	}

	if err := s.dbClient.WithContext(ctx).Delete(&item).Error; err != nil {
		return types.ErrServer("failed to remove read later item", err)
	}

	s.publishReadLater(queue.TopicReadLaterRemoved, user.ID, item.StoryID)

	return nil
}

func (s *ReadLaterService) publishReadLater(topic string, userID, storyID uint) {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled {
		return
	}

	switch topic {
	case queue.TopicReadLaterAdded:
		if !cfg.ReadLater.Added {
			return
		}
	case queue.TopicReadLaterRemoved:
		if !cfg.ReadLater.Removed {
			return
		}
	}

	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	payload := queue.ReadLaterPayload{UserID: userID, StoryID: storyID}

	var err error
	if topic == queue.TopicReadLaterAdded {
		err = queue.PublishReadLaterAdded(pub, payload, queue.WithProducer("bacasendiri"))
	} else {
		err = queue.PublishReadLaterRemoved(pub, payload, queue.WithProducer("bacasendiri"))
	}

	if err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish read later event failed")
	}
}

func (s *ReadLaterService) itemResponse(item *model.ReadLaterItem, story *model.Story) types.ReadLaterItemResponse {
	return types.ReadLaterItemResponse{
		ID:        item.ID,
		StoryID:   item.StoryID,
		CreatedAt: item.CreatedAt,
		Story: types.StorySummary{
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
		},
	}
}
