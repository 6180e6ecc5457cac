package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	req := types.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "rahasia"}

	resp, err := svc.Register(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if resp.Role != auth.RoleUser {
		t.Errorf("role = %q, want user", resp.Role)
	}

	// 口令摘要绝不回显
	var stored model.User
	if err := env.db.Where("email = ?", req.Email).First(&stored).Error; err != nil {
		t.Fatalf("user row missing: %v", err)
	}

	if stored.Password == req.Password || len(stored.Password) != 32 {
		t.Errorf("password must be stored as md5 digest, got %q", stored.Password)
	}

	login, err := svc.Login(context.Background(), types.LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if login.Token == "" {
		t.Fatal("login must issue a token")
	}

	identity, err := auth.Verify(login.Token, &configs.GetConfig().Auth)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if identity.ID != stored.UUID || identity.Email != req.Email {
		t.Errorf("token identity = %+v", identity)
	}
}

func TestRegisterIgnoresSuppliedRole(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	req := types.RegisterRequest{Name: "mallory", Email: "mallory@example.com", Password: "rahasia", Role: auth.RoleAdmin}

	resp, err := svc.Register(context.Background(), req, nil)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// 注册不能自封管理员
	if resp.Role != auth.RoleUser {
		t.Errorf("role = %q, want user", resp.Role)
	}

	var stored model.User
	if err := env.db.Where("email = ?", req.Email).First(&stored).Error; err != nil {
		t.Fatalf("user row missing: %v", err)
	}

	if stored.Role != auth.RoleUser {
		t.Errorf("stored role = %q, want user", stored.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	req := types.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "rahasia"}
	if _, err := svc.Register(context.Background(), req, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Login(context.Background(), types.LoginRequest{Email: req.Email, Password: "salah"})
	if types.AsAPIError(err).HTTPStatus != 401 {
		t.Errorf("wrong password must 401, got %v", err)
	}

	// 未知邮箱和错误口令必须同样的回答
	_, err = svc.Login(context.Background(), types.LoginRequest{Email: "nobody@example.com", Password: "x"})
	if types.AsAPIError(err).HTTPStatus != 401 {
		t.Errorf("unknown email must 401, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	req := types.RegisterRequest{Name: "alice", Email: "alice@example.com", Password: "rahasia"}
	if _, err := svc.Register(context.Background(), req, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	req.Name = "alice2"

	_, err := svc.Register(context.Background(), req, nil)
	if types.AsAPIError(err).Code != types.CodeAlreadyExists {
		t.Errorf("duplicate email must conflict, got %v", err)
	}

	var count int64
	env.db.Model(&model.User{}).Count(&count)

	if count != 1 {
		t.Errorf("user rows = %d, want 1", count)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()

	_, err := svc.Register(context.Background(), types.RegisterRequest{Name: "alice"}, nil)
	if types.AsAPIError(err).Code != types.CodeMissingData {
		t.Errorf("missing fields must be rejected, got %v", err)
	}
}

func TestUpdateUserSelfOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	alice, aliceID := env.seedUser(t, "alice", "user")
	_, bobID := env.seedUser(t, "bob", "user")
	_, adminID := env.seedUser(t, "root", "admin")

	idParam := strconv.FormatUint(uint64(alice.ID), 10)

	// 本人可以改
	resp, err := svc.Update(context.Background(), aliceID, idParam, types.UpdateUserRequest{Name: "alicia"})
	if err != nil || resp.Name != "alicia" {
		t.Errorf("self update failed: %v %v", resp, err)
	}

	// 其他人不行
	_, err = svc.Update(context.Background(), bobID, idParam, types.UpdateUserRequest{Name: "hacked"})
	if types.AsAPIError(err).HTTPStatus != 403 {
		t.Errorf("expected 403, got %v", err)
	}

	// 管理员可以
	if _, err := svc.Update(context.Background(), adminID, idParam, types.UpdateUserRequest{Name: "alice"}); err != nil {
		t.Errorf("admin update failed: %v", err)
	}
}

func TestDeleteUserCleansReadLater(t *testing.T) {
	env := newTestEnv(t)
	userSvc := env.userService()
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	alice, aliceID := env.seedUser(t, "alice", "user")
	_, bobID := env.seedUser(t, "bob", "user")

	res, err := storySvc.Create(context.Background(), bobID, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := rlSvc.Add(context.Background(), aliceID, res.Story.ID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(alice.ID), 10)
	if err := userSvc.Delete(context.Background(), aliceID, idParam); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	env.db.Model(&model.ReadLaterItem{}).Where("user_id = ?", alice.ID).Count(&count)

	if count != 0 {
		t.Errorf("read later rows for deleted user = %d, want 0", count)
	}
}

func TestSearchUsers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.userService()
	env.seedUser(t, "alice", "user")
	env.seedUser(t, "alicia", "user")
	env.seedUser(t, "bob", "user")

	hits, err := svc.Search(context.Background(), "alic")
	if err != nil || len(hits) != 2 {
		t.Errorf("search = %d hits, err %v", len(hits), err)
	}
}
