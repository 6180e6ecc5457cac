// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yeisme/bacasendiri/pkg/configs"
	ctxPkg "github.com/yeisme/bacasendiri/pkg/context"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/storage"
	"github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/scheduler"
)

const (
	sweepConcurrency = 4
	// orphanMinAge 孤儿文件至少要存在这么久才会被清掉，避免误删正在入库的文件
	orphanMinAge = time.Hour
)

// RegisterCronJobs 配置业务定时任务：
//   - 每 15 分钟清扫暂存目录中超龄的上传残留
//   - 每天 03:30 扫描永久目录，清掉数据库不再引用的孤儿文件（仅 local 后端）
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于任务使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	_ = sched.AddCron(JobStagingSweep, CronStagingSweep, func(ctx context.Context) {
		runStagingSweep(ctx, mgr)
	}, baseCtx)

	_ = sched.AddCron(JobOrphanScan, CronOrphanScan, func(ctx context.Context) {
		runOrphanScan(ctx, mgr)
	}, baseCtx)

	return nil
}

// runStagingSweep 删除超过保留时间的暂存文件.
// 正常流程里暂存文件要么被提升要么被丢弃，残留说明进程曾在事务中途退出.
func runStagingSweep(_ context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobStagingSweep).Logger()

	fc := mgr.GetFilesClient()
	if fc == nil {
		l.Warn().Msg("files client not initialized")
		return
	}

	entries, err := fc.ListStaged()
	if err != nil {
		l.Error().Err(err).Msg("list staging dir failed")
		return
	}

	cutoff := time.Now().Add(-fc.Config().StagingMaxAge())

	var g errgroup.Group
	g.SetLimit(sweepConcurrency)

	swept := 0

	for _, e := range entries {
		if e.ModTime.After(cutoff) {
			continue
		}

		swept++

		g.Go(func() error {
			if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
				l.Warn().Err(err).Str("file", e.Name).Msg("remove staged file failed")
			}

			return nil
		})
	}

	_ = g.Wait()

	if swept > 0 {
		l.Info().Int("swept", swept).Msg("staging dir swept")
	}
}

// runOrphanScan 对比数据库引用与磁盘文件，删除不再被引用的永久文件.
// 只有 local 后端能直接遍历目录，s3 后端跳过.
func runOrphanScan(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobOrphanScan).Logger()

	fc := mgr.GetFilesClient()
	dbc := mgr.GetDBClient()

	if fc == nil || dbc == nil || dbc.DB == nil {
		l.Warn().Msg("storage clients not initialized")
		return
	}

	cfg := fc.Config()
	if cfg.Backend != configs.FileBackendLocal {
		l.Debug().Str("backend", string(cfg.Backend)).Msg("orphan scan skipped for non-local backend")
		return
	}

	referenced, err := collectReferencedFiles(ctx, mgr)
	if err != nil {
		l.Error().Err(err).Msg("collect referenced files failed")
		return
	}

	dirs := map[string]string{
		"thumbnail": cfg.ThumbnailPath(),
		"content":   cfg.ContentPath(),
		"profile":   cfg.ProfilePath(),
	}

	removed := 0

	for kind, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if !os.IsNotExist(err) {
				l.Warn().Err(err).Str("dir", dir).Msg("read dir failed")
			}

			continue
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}

			if _, ok := referenced[e.Name()]; ok {
				continue
			}

			info, err := e.Info()
			if err != nil || time.Since(info.ModTime()) < orphanMinAge {
				continue
			}

			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				l.Warn().Err(err).Str("kind", kind).Str("file", e.Name()).Msg("remove orphan failed")
				continue
			}

			removed++
		}
	}

	if removed > 0 {
		l.Info().Int("removed", removed).Msg("orphan files removed")
	}
}

// collectReferencedFiles 汇总数据库仍然引用的全部文件名.
func collectReferencedFiles(ctx context.Context, mgr *storage.Manager) (map[string]struct{}, error) {
	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)
	referenced := make(map[string]struct{})

	var names []string
	if err := dbx.Model(&model.Story{}).Pluck("thumbnail", &names).Error; err != nil {
		return nil, err
	}

	for _, n := range names {
		referenced[n] = struct{}{}
	}

	names = names[:0]
	if err := dbx.Model(&model.Story{}).Pluck("content_file", &names).Error; err != nil {
		return nil, err
	}

	for _, n := range names {
		referenced[n] = struct{}{}
	}

	names = names[:0]
	if err := dbx.Model(&model.User{}).Pluck("profile_picture", &names).Error; err != nil {
		return nil, err
	}

	for _, n := range names {
		referenced[n] = struct{}{}
	}

	delete(referenced, "")

	return referenced, nil
}
