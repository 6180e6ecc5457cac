package service

import (
	"context"
	"strconv"
	"time"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/cache"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
)

const storyCacheTTL = 5 * time.Minute

// List 浏览/搜索故事：标题或作者子串匹配，空关键字返回全部，按创建时间倒序.
func (s *StoryService) List(ctx context.Context, search string) ([]types.StorySummary, error) {
	q := s.dbClient.WithContext(ctx).Model(&model.Story{})

	if search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR author LIKE ?", like, like)
	}

	var stories []model.Story
	if err := q.Order("created_at DESC").Find(&stories).Error; err != nil {
		return nil, types.ErrServer("failed to list stories", err)
	}

	out := make([]types.StorySummary, 0, len(stories))
	for i := range stories {
		out = append(out, s.storySummary(&stories[i]))
	}

	return out, nil
}

// Read 公开阅读接口，带 KV 缓存；未命中时查库并回填.
func (s *StoryService) Read(ctx context.Context, idParam string) (*types.StoryResponse, error) {
	if s.kvClient != nil {
		key := storyCacheKeyPrefix + idParam

		c := cache.NewCache(s.kvClient.KVStore)
		if cached, err := cache.Get[types.StoryResponse](ctx, c, key); err == nil && cached.ID != 0 {
			return &cached, nil
		}
	}

	story, err := s.findStory(ctx, idParam)
	if err != nil {
		return nil, err
	}

	resp := s.storyResponse(story, true)

	if s.kvClient != nil {
		key := storyCacheKeyPrefix + strconv.FormatUint(uint64(story.ID), 10)

		c := cache.NewCache(s.kvClient.KVStore)
		if err := cache.Set(ctx, c, key, resp, storyCacheTTL); err != nil {
			nlog.Logger().Warn().Err(err).Msg("cache story read failed")
		}
	}

	return &resp, nil
}

// Mine 当前用户的作品列表，不携带正文，按创建时间倒序.
func (s *StoryService) Mine(ctx context.Context, id *auth.Identity) ([]types.StorySummary, error) {
	user, err := s.currentUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var stories []model.Story
	if err := s.dbClient.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, types.ErrServer("failed to list own stories", err)
	}

	out := make([]types.StorySummary, 0, len(stories))
	for i := range stories {
		out = append(out, s.storySummary(&stories[i]))
	}

	return out, nil
}
