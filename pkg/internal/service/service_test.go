package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/db"
	"github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
)

// testEnv 一套隔离的测试环境：内存 sqlite + 临时目录文件存储.
type testEnv struct {
	db    *db.Client
	files *files.Client
	cfg   *configs.StorageConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if err := configs.InitConfig(t.TempDir()); err != nil {
		t.Fatalf("init config: %v", err)
	}

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(&model.User{}, &model.Story{}, &model.ReadLaterItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &configs.GetConfig().Storage
	cfg.Backend = configs.FileBackendLocal
	cfg.PublicDir = t.TempDir()

	fc, err := files.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("files client: %v", err)
	}

	return &testEnv{db: &db.Client{DB: gdb}, files: fc, cfg: cfg}
}

func (e *testEnv) storyService() *StoryService {
	return &StoryService{dbClient: e.db, filesClient: e.files}
}

func (e *testEnv) userService() *UserService {
	return &UserService{dbClient: e.db, filesClient: e.files}
}

func (e *testEnv) readLaterService() *ReadLaterService {
	return &ReadLaterService{dbClient: e.db, filesClient: e.files}
}

// seedUser 直接插入一个用户并返回其身份.
func (e *testEnv) seedUser(t *testing.T, name, role string) (*model.User, *auth.Identity) {
	t.Helper()

	user := &model.User{
		UUID:     uuid.NewString(),
		Name:     name,
		Email:    name + "@example.com",
		Password: hashPassword("secret"),
		Role:     role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	return user, &auth.Identity{ID: user.UUID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func upload(name, contentType string, data []byte) *Upload {
	return &Upload{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func pngUpload() *Upload {
	return upload("cover.png", "image/png", []byte("\x89PNG fake image bytes"))
}

func txtUpload(text string) *Upload {
	return upload("story.txt", "text/plain", []byte(text))
}

func storyRequest() types.CreateStoryRequest {
	return types.CreateStoryRequest{Title: "Laskar Pelangi", Author: "Andrea", Description: "a story"}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}

		t.Fatalf("read dir %s: %v", dir, err)
	}

	return len(entries)
}

func TestCreateStoryPipeline(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	res, err := svc.Create(context.Background(), id, storyRequest(), pngUpload(), txtUpload("once upon a time"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if res.WasTruncated || res.OriginalLength != len("once upon a time") {
		t.Errorf("unexpected policy result: %+v", res)
	}

	if res.Story.UUID == "" {
		t.Error("story must get a uuid")
	}

	if !strings.HasPrefix(res.Story.ThumbnailURL, "/"+env.cfg.ThumbnailDir+"/") {
		t.Errorf("thumbnail url = %q", res.Story.ThumbnailURL)
	}

	if !strings.HasPrefix(res.Story.ContentURL, "/"+env.cfg.ContentDir+"/") {
		t.Errorf("content url = %q", res.Story.ContentURL)
	}

	// 文件已提升，暂存目录应当是空的
	if n := countFiles(t, env.cfg.StagingPath()); n != 0 {
		t.Errorf("staging dir has %d leftover files", n)
	}

	if n := countFiles(t, env.cfg.ThumbnailPath()); n != 1 {
		t.Errorf("thumbnail dir has %d files, want 1", n)
	}

	if n := countFiles(t, env.cfg.ContentPath()); n != 1 {
		t.Errorf("content dir has %d files, want 1", n)
	}

	var stored model.Story
	if err := env.db.First(&stored, res.Story.ID).Error; err != nil {
		t.Fatalf("story row missing: %v", err)
	}

	if stored.ContentText != "once upon a time" {
		t.Errorf("content text = %q", stored.ContentText)
	}
}

func TestCreateStoryTruncatesLongContent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	long := strings.Repeat("a", 70000)

	res, err := svc.Create(context.Background(), id, storyRequest(), pngUpload(), txtUpload(long))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !res.WasTruncated {
		t.Fatal("expected truncation")
	}

	if res.OriginalLength != 70000 {
		t.Errorf("original length = %d", res.OriginalLength)
	}

	if res.ContentLength > model.MaxContentLength {
		t.Errorf("stored length %d exceeds limit", res.ContentLength)
	}

	if !strings.HasSuffix(res.Story.ContentText, "...[CONTENT TRUNCATED]") {
		t.Error("missing truncation marker")
	}
}

func TestCreateStoryMissingFiles(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	_, err := svc.Create(context.Background(), id, storyRequest(), pngUpload(), nil)
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := types.AsAPIError(err)
	if apiErr.Code != types.CodeMissingData {
		t.Errorf("code = %s, want MISSING_DATA", apiErr.Code)
	}

	var count int64
	env.db.Model(&model.Story{}).Count(&count)

	if count != 0 {
		t.Errorf("story rows = %d, want 0", count)
	}

	if n := countFiles(t, env.cfg.StagingPath()); n != 0 {
		t.Errorf("staging dir has %d leftover files", n)
	}
}

func TestCreateStoryBlankFieldsRejected(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	req := types.CreateStoryRequest{Title: "   ", Author: "a", Description: "d"}

	_, err := svc.Create(context.Background(), id, req, pngUpload(), txtUpload("x"))
	if types.AsAPIError(err).Code != types.CodeMissingData {
		t.Errorf("whitespace-only title must be rejected, got %v", err)
	}
}

func TestCreateStoryStaleToken(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()

	ghost := &auth.Identity{ID: uuid.NewString(), Role: "user"}

	_, err := svc.Create(context.Background(), ghost, storyRequest(), pngUpload(), txtUpload("x"))

	apiErr := types.AsAPIError(err)
	if apiErr.Code != types.CodeUserNotFound || apiErr.HTTPStatus != 404 {
		t.Errorf("got %+v, want USER_NOT_FOUND 404", apiErr)
	}
}

func TestCreateStoryUnsupportedContent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	bad := upload("story.epub", "application/epub+zip", []byte("data"))

	_, err := svc.Create(context.Background(), id, storyRequest(), pngUpload(), bad)

	apiErr := types.AsAPIError(err)
	if apiErr.Code != types.CodeUnsupportedFormat {
		t.Errorf("code = %s, want UNSUPPORTED_FORMAT", apiErr.Code)
	}

	if n := countFiles(t, env.cfg.StagingPath()); n != 0 {
		t.Errorf("staging dir has %d leftover files", n)
	}
}

func TestCreateStoryNonImageThumbnail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, id := env.seedUser(t, "alice", "user")

	bad := upload("cover.txt", "text/plain", []byte("not an image"))

	_, err := svc.Create(context.Background(), id, storyRequest(), bad, txtUpload("x"))
	if types.AsAPIError(err).Code != types.CodeValidation {
		t.Errorf("non-image thumbnail must be rejected, got %v", err)
	}
}

func TestUpdateStoryNonOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")
	_, intruder := env.seedUser(t, "bob", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("original"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	_, err = svc.Update(context.Background(), intruder, idParam,
		types.UpdateStoryRequest{Title: "hijacked"}, nil, nil)

	apiErr := types.AsAPIError(err)
	if apiErr.HTTPStatus != 403 {
		t.Errorf("status = %d, want 403", apiErr.HTTPStatus)
	}

	var stored model.Story
	env.db.First(&stored, res.Story.ID)

	if stored.Title != "Laskar Pelangi" {
		t.Errorf("title changed to %q", stored.Title)
	}
}

func TestUpdateStoryAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")
	_, admin := env.seedUser(t, "root", "admin")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	// 更新是作者独占的，管理员也不行
	_, err = svc.Update(context.Background(), admin, idParam,
		types.UpdateStoryRequest{Title: "edited"}, nil, nil)
	if types.AsAPIError(err).HTTPStatus != 403 {
		t.Errorf("expected 403 for admin update, got %v", err)
	}
}

func TestUpdateStoryReplaceContent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("old text"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	oldFile := res.Story.ContentFile
	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	updated, err := svc.Update(context.Background(), owner, idParam,
		types.UpdateStoryRequest{}, nil, txtUpload("new text"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ContentText != "new text" {
		t.Errorf("content text = %q", updated.ContentText)
	}

	if updated.ContentFile == oldFile {
		t.Error("content file name must change on replacement")
	}

	if _, err := os.Stat(filepath.Join(env.cfg.ContentPath(), oldFile)); !os.IsNotExist(err) {
		t.Error("old content file must be deleted")
	}

	if n := countFiles(t, env.cfg.ContentPath()); n != 1 {
		t.Errorf("content dir has %d files, want 1", n)
	}
}

func TestUpdateStoryExtractionFailureLeavesStoryIntact(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("keep me"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)
	badPdf := upload("broken.pdf", "application/pdf", []byte("not a pdf"))

	_, err = svc.Update(context.Background(), owner, idParam, types.UpdateStoryRequest{}, nil, badPdf)
	if err == nil {
		t.Fatal("expected extraction error")
	}

	var stored model.Story
	env.db.First(&stored, res.Story.ID)

	if stored.ContentText != "keep me" || stored.ContentFile != res.Story.ContentFile {
		t.Error("story must be untouched after failed extraction")
	}

	if n := countFiles(t, env.cfg.StagingPath()); n != 0 {
		t.Errorf("staging dir has %d leftover files", n)
	}
}

func TestDeleteStory(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("bye"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	if err := svc.Delete(context.Background(), owner, idParam); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	env.db.Model(&model.Story{}).Count(&count)

	if count != 0 {
		t.Errorf("story rows = %d, want 0", count)
	}

	if n := countFiles(t, env.cfg.ThumbnailPath()); n != 0 {
		t.Errorf("thumbnail dir has %d files", n)
	}

	if n := countFiles(t, env.cfg.ContentPath()); n != 0 {
		t.Errorf("content dir has %d files", n)
	}

	// 再读必须 404
	if _, err := svc.Read(context.Background(), idParam); types.AsAPIError(err).HTTPStatus != 404 {
		t.Errorf("read after delete must 404, got %v", err)
	}
}

func TestDeleteStoryByAdmin(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")
	_, admin := env.seedUser(t, "root", "admin")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	if err := svc.Delete(context.Background(), admin, idParam); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}
}

func TestDeleteStoryNonOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")
	_, intruder := env.seedUser(t, "bob", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)

	if err := svc.Delete(context.Background(), intruder, idParam); types.AsAPIError(err).HTTPStatus != 403 {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestDeleteStoryToleratesMissingFiles(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")

	res, err := svc.Create(context.Background(), owner, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 磁盘上的文件先行消失
	_ = os.Remove(filepath.Join(env.cfg.ContentPath(), res.Story.ContentFile))

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)
	if err := svc.Delete(context.Background(), owner, idParam); err != nil {
		t.Errorf("delete must tolerate missing files, got %v", err)
	}
}

func TestListAndSearchStories(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, owner := env.seedUser(t, "alice", "user")

	reqs := []types.CreateStoryRequest{
		{Title: "Laskar Pelangi", Author: "Andrea Hirata", Description: "d"},
		{Title: "Bumi Manusia", Author: "Pramoedya", Description: "d"},
	}
	for _, r := range reqs {
		if _, err := svc.Create(context.Background(), owner, r, pngUpload(), txtUpload("x")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := svc.List(context.Background(), "")
	if err != nil || len(all) != 2 {
		t.Fatalf("List all = %d items, err %v", len(all), err)
	}

	for _, s := range all {
		if s.ThumbnailURL == "" {
			t.Error("summary must carry a thumbnail url")
		}
	}

	byTitle, err := svc.List(context.Background(), "Pelangi")
	if err != nil || len(byTitle) != 1 || byTitle[0].Title != "Laskar Pelangi" {
		t.Errorf("search by title failed: %v %v", byTitle, err)
	}

	byAuthor, err := svc.List(context.Background(), "Pramoedya")
	if err != nil || len(byAuthor) != 1 {
		t.Errorf("search by author failed: %v %v", byAuthor, err)
	}

	none, err := svc.List(context.Background(), "tidak ada")
	if err != nil || len(none) != 0 {
		t.Errorf("no-match search must be empty, got %v", none)
	}
}

func TestMineOmitsOthers(t *testing.T) {
	env := newTestEnv(t)
	svc := env.storyService()
	_, alice := env.seedUser(t, "alice", "user")
	_, bob := env.seedUser(t, "bob", "user")

	if _, err := svc.Create(context.Background(), alice, storyRequest(), pngUpload(), txtUpload("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mine, err := svc.Mine(context.Background(), bob)
	if err != nil || len(mine) != 0 {
		t.Errorf("bob has %d stories, want 0 (err %v)", len(mine), err)
	}
}
