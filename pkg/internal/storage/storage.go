// Package storage 处理存储操作：数据库、故事文件、键值缓存与消息队列.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	filesClient := mgr.GetFilesClient()
//	dbClient := mgr.GetDBClient()
package storage

import (
	"context"
	"sync"

	"github.com/yeisme/bacasendiri/pkg/configs"
	dbc "github.com/yeisme/bacasendiri/pkg/internal/storage/db"
	filec "github.com/yeisme/bacasendiri/pkg/internal/storage/files"
	kvc "github.com/yeisme/bacasendiri/pkg/internal/storage/kv"
	mqc "github.com/yeisme/bacasendiri/pkg/internal/storage/mq"
	nlog "github.com/yeisme/bacasendiri/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB    *dbc.Client
	Files *filec.Client
	KV    *kvc.Client
	MQ    *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		cfg := configs.GetConfig()
		m := &Manager{}

		// DB
		if dbi, e := dbc.New(ctx); e != nil {
			err = e

			return
		} else {
			m.DB = dbi
		}

		// Files
		if fi, e := filec.New(ctx, &cfg.Storage); e != nil {
			err = e

			return
		} else {
			m.Files = fi
		}

		// KV
		if kvi, e := kvc.NewKVClient(ctx); e != nil {
			err = e

			return
		} else {
			m.KV = kvi
		}

		// MQ
		if mqi, e := mqc.New(ctx); e != nil {
			err = e

			return
		} else {
			m.MQ = mqi
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetFilesClient 获取文件存储客户端.
func (m *Manager) GetFilesClient() *filec.Client {
	return m.Files
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
