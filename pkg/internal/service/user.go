package service

import (
	"context"
	"crypto/md5" //nolint:gosec // 历史数据兼容：口令摘要沿用 md5
	"encoding/hex"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
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

// UserService 负责用户注册、登录与资料维护.
type UserService struct {
	dbClient    *db.Client
	filesClient *files.Client
	mqClient    *mq.Client // 可为 nil
}

// NewUserService 从 context 获取依赖实例.
func NewUserService(c context.Context) *UserService {
	dbc := ctxPkg.GetDBClient(c)
	fc := ctxPkg.GetFilesClient(c)

	if dbc == nil || dbc.DB == nil || fc == nil {
		nlog.Logger().Fatal().Msg("storage clients not initialized")
	}

	return &UserService{
		dbClient:    dbc,
		filesClient: fc,
		mqClient:    ctxPkg.GetMQClient(c),
	}
}

// hashPassword 口令摘要.历史实现即无盐 md5，为兼容既有凭证而保留.
func hashPassword(password string) string {
	sum := md5.Sum([]byte(password)) //nolint:gosec

	return hex.EncodeToString(sum[:])
}

// Register 注册用户，头像可选.邮箱唯一，冲突返回 ALREADY_EXISTS.
func (s *UserService) Register(ctx context.Context, req types.RegisterRequest, pictureUp *Upload) (*types.UserResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)

	if name == "" || email == "" || req.Password == "" {
		return nil, types.ErrValidation(types.CodeMissingData, "name, email and password are required")
	}

	var count int64
	if err := s.dbClient.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, types.ErrServer("failed to check email", err)
	}

	if count > 0 {
		return nil, types.ErrConflict(types.CodeAlreadyExists, "email already registered")
	}

	// 公开注册一律普通用户，表单里的 role 不采信
	user := model.User{
		UUID:     uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hashPassword(req.Password),
		Role:     auth.RoleUser,
	}

	var staged *files.StagedFile

	if pictureUp != nil {
		var err error

		if staged, err = s.stagePicture(ctx, pictureUp); err != nil {
			return nil, err
		}

		user.ProfilePicture = staged.Name
	}

	if err := s.dbClient.WithContext(ctx).Create(&user).Error; err != nil {
		s.filesClient.Discard(staged)

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, types.ErrConflict(types.CodeAlreadyExists, "email already registered")
		}

		return nil, types.ErrServer("failed to create user", err)
	}

	if staged != nil {
		if err := s.filesClient.PromoteStaged(ctx, staged, files.KindProfile); err != nil {
			// 头像落位失败不回滚注册，用户可以稍后重传
			nlog.Logger().Warn().Err(err).Str("file", staged.Name).Msg("place profile picture failed")

			user.ProfilePicture = ""
			_ = s.dbClient.WithContext(ctx).Save(&user).Error
			s.filesClient.Discard(staged)
		}
	}

	s.publishUserRegistered(&user)

	resp := s.userResponse(&user)

	return &resp, nil
}

// Login 校验凭证并签发令牌.凭证错误统一返回 401，不提示哪一项错了.
func (s *UserService) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, types.ErrValidation(types.CodeMissingData, "email and password are required")
	}

	var user model.User
	if err := s.dbClient.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrUnauthenticated(types.CodeUnauthenticated, "invalid credentials")
		}

		return nil, types.ErrServer("failed to load user", err)
	}

	if user.Password != hashPassword(req.Password) {
		return nil, types.ErrUnauthenticated(types.CodeUnauthenticated, "invalid credentials")
	}

	token, err := auth.Sign(auth.Identity{
		ID:    user.UUID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}, &configs.GetConfig().Auth)
	if err != nil {
		return nil, types.ErrServer("failed to sign token", err)
	}

	return &types.LoginResult{Token: token, User: s.userResponse(&user)}, nil
}

// Profile 按令牌回查用户资料.
func (s *UserService) Profile(ctx context.Context, id *auth.Identity) (*types.UserResponse, error) {
	user, err := s.lookupByIdentity(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := s.userResponse(user)

	return &resp, nil
}

// Search 按名字子串搜索用户，空关键字返回全部.
func (s *UserService) Search(ctx context.Context, search string) ([]types.UserResponse, error) {
	q := s.dbClient.WithContext(ctx).Model(&model.User{})

	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var users []model.User
	if err := q.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, types.ErrServer("failed to search users", err)
	}

	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, s.userResponse(&users[i]))
	}

	return out, nil
}

// Update 更新用户资料：本人或管理员.
func (s *UserService) Update(ctx context.Context, id *auth.Identity, idParam string,
	req types.UpdateUserRequest) (*types.UserResponse, error) {
	_, target, err := s.authorizeSelfOrAdmin(ctx, id, idParam)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		target.Name = name
	}

	if email := strings.TrimSpace(req.Email); email != "" && email != target.Email {
		var count int64
		if err := s.dbClient.WithContext(ctx).Model(&model.User{}).
			Where("email = ? AND id <> ?", email, target.ID).Count(&count).Error; err != nil {
			return nil, types.ErrServer("failed to check email", err)
		}

		if count > 0 {
			return nil, types.ErrConflict(types.CodeAlreadyExists, "email already registered")
		}

		target.Email = email
	}

	if err := s.dbClient.WithContext(ctx).Save(target).Error; err != nil {
		return nil, types.ErrServer("failed to update user", err)
	}

	resp := s.userResponse(target)

	return &resp, nil
}

// UpdatePicture 替换头像：新头像落位后旧文件被删除.
func (s *UserService) UpdatePicture(ctx context.Context, id *auth.Identity, idParam string,
	pictureUp *Upload) (*types.UserResponse, error) {
	_, target, err := s.authorizeSelfOrAdmin(ctx, id, idParam)
	if err != nil {
		return nil, err
	}

	if pictureUp == nil {
		return nil, types.ErrValidation(types.CodeMissingData, "profile picture file is required")
	}

	staged, err := s.stagePicture(ctx, pictureUp)
	if err != nil {
		return nil, err
	}

	if target.ProfilePicture != "" {
		if rerr := s.filesClient.Remove(ctx, files.KindProfile, target.ProfilePicture); rerr != nil {
			nlog.Logger().Warn().Err(rerr).Str("file", target.ProfilePicture).Msg("remove old profile picture failed")
		}
	}

	if err := s.filesClient.PromoteStaged(ctx, staged, files.KindProfile); err != nil {
		s.filesClient.Discard(staged)

		return nil, types.ErrStorage("failed to place profile picture", err)
	}

	target.ProfilePicture = staged.Name
	if err := s.dbClient.WithContext(ctx).Save(target).Error; err != nil {
		return nil, types.ErrServer("failed to update user", err)
	}

	resp := s.userResponse(target)

	return &resp, nil
}

// Delete 删除用户：本人或管理员.头像与稍后阅读列表一并清掉.
func (s *UserService) Delete(ctx context.Context, id *auth.Identity, idParam string) error {
	_, target, err := s.authorizeSelfOrAdmin(ctx, id, idParam)
	if err != nil {
		return err
	}

	if target.ProfilePicture != "" {
		if rerr := s.filesClient.Remove(ctx, files.KindProfile, target.ProfilePicture); rerr != nil {
			nlog.Logger().Warn().Err(rerr).Str("file", target.ProfilePicture).Msg("remove profile picture failed")
		}
	}

	if err := s.dbClient.WithContext(ctx).
		Where("user_id = ?", target.ID).
		Delete(&model.ReadLaterItem{}).Error; err != nil {
		return types.ErrServer("failed to delete read later items", err)
	}

	if err := s.dbClient.WithContext(ctx).Delete(&model.User{}, target.ID).Error; err != nil {
		return types.ErrServer("failed to delete user", err)
	}

	return nil
}

func (s *UserService) stagePicture(ctx context.Context, up *Upload) (*files.StagedFile, error) {
	maxBytes := configs.GetConfig().Storage.MaxUploadBytes
	if up.Size > maxBytes {
		return nil, types.ErrValidation(types.CodeValidation, "profile picture exceeds the size limit")
	}

	if !strings.HasPrefix(up.ContentType, "image/") {
		return nil, types.ErrValidation(types.CodeValidation, "profile picture must be an image")
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

// lookupByIdentity 令牌 UUID 回查.
func (s *UserService) lookupByIdentity(ctx context.Context, id *auth.Identity) (*model.User, error) {
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

// authorizeSelfOrAdmin 目标用户按数字 id 查找，只有本人或管理员可操作.
func (s *UserService) authorizeSelfOrAdmin(ctx context.Context, id *auth.Identity, idParam string) (*model.User, *model.User, error) {
	current, err := s.lookupByIdentity(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	targetID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, nil, types.ErrNotFound("user not found")
	}

	var target model.User
	if err := s.dbClient.WithContext(ctx).First(&target, uint(targetID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, types.ErrNotFound("user not found")
		}

		return nil, nil, types.ErrServer("failed to load user", err)
	}

	if current.ID != target.ID && current.Role != auth.RoleAdmin {
		return nil, nil, types.ErrForbidden("not allowed to manage this user")
	}

	return current, &target, nil
}

func (s *UserService) userResponse(user *model.User) types.UserResponse {
	return types.UserResponse{
		ID:             user.ID,
		UUID:           user.UUID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,

		ProfilePictureURL: s.filesClient.PublicURL(files.KindProfile, user.ProfilePicture),
	}
}

func (s *UserService) publishUserRegistered(user *model.User) {
	cfg := configs.GetConfig().Events
	if !cfg.Enabled || !cfg.User.Registered {
		return
	}

	pub := s.mqClient.Publisher()
	if pub == nil {
		return
	}

	payload := queue.UserRegisteredPayload{
		UserID: user.ID,
		UUID:   user.UUID,
		Email:  user.Email,
		Role:   user.Role,
	}

	if err := queue.PublishUserRegistered(pub, payload, queue.WithProducer("bacasendiri")); err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish user registered event failed")
	}
}
