/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-10 00:00:00
 * @FilePath: \go-perf\store\factory.go
 * @Description: 存储工厂 - 按配置选择后端
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamalyes/go-perf/config"
	"github.com/kamalyes/go-perf/types"
)

// NewStore 按存储模式创建对应后端
// sqlite 和 badger 的数据文件统一放在报告目录下
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.StoreMode {
	case types.StoreModeFile:
		return NewFileStore(cfg.HistoryDir)

	case types.StoreModeSQLite:
		if err := os.MkdirAll(cfg.HistoryDir, 0755); err != nil {
			return nil, fmt.Errorf("创建报告目录失败: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.HistoryDir, "performance.db"))

	case types.StoreModeBadger:
		return NewBadgerStore(filepath.Join(cfg.HistoryDir, "badger"))

	default:
		return nil, fmt.Errorf("不支持的存储模式: %s", cfg.StoreMode)
	}
}
