/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\engine\monitor.go
 * @Description: 引擎内存看护 - 超阈值自动停止压测
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package engine

import (
	"context"
	"time"

	"github.com/kamalyes/go-toolbox/pkg/osx"
	"github.com/kamalyes/go-toolbox/pkg/units"
)

// memoryCheckInterval 内存采样周期
const memoryCheckInterval = 5 * time.Second

// startMemoryGuard 启动内存看护
// 配置了 MaxMemory 时, 引擎堆内存越过阈值会自动触发停止,
// 防止高并发压测把引擎自身拖垮; 未配置则不启用
func (e *Engine) startMemoryGuard(ctx context.Context) {
	if e.cfg.MaxMemory == "" {
		return
	}

	limit, err := units.ParseBytes(e.cfg.MaxMemory)
	if err != nil {
		e.log.Warnf("⚠️ 内存阈值格式无效, 看护未启用 [%s]: %v", e.cfg.MaxMemory, err)
		return
	}

	warnLine := limit * 8 / 10

	monitor := osx.NewAdvancedMonitor().
		AddThreshold(osx.LevelWarning, warnLine).
		AddThreshold(osx.LevelCritical, limit).
		SetMetricType(osx.MetricAlloc).
		SetCheckOnce(false).
		SetMaxHistory(200)

	monitor.OnWarning(func(snap osx.Snapshot) {
		e.log.Warnf("⚠️ 引擎内存接近阈值: 当前 %s / 上限 %s",
			units.FormatBytes(snap.Alloc), units.FormatBytes(limit))
	})
	monitor.OnCritical(func(snap osx.Snapshot) {
		e.log.Errorf("🔥 引擎内存越过阈值 (%s), 自动停止压测", units.FormatBytes(limit))
		if err := e.Stop(); err != nil && err != ErrNotRunning {
			e.log.Errorf("❌ 自动停止失败: %v", err)
		}
	})

	go monitor.Start(ctx, memoryCheckInterval)
	e.log.Infof("🧠 内存看护已启用, 阈值 %s", units.FormatBytes(limit))
}
