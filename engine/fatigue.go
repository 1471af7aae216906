/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\engine\fatigue.go
 * @Description: 疲劳模型 - 固定并发持续压测
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package engine

import (
	"time"

	"github.com/kamalyes/go-perf/types"
)

// runFatigue 疲劳模型执行器
// 一次性拉起全部并发, 维持到时长耗尽或收到停止信号
func (e *Engine) runFatigue(s *session, cfg *types.FatigueConfig) error {
	e.log.Infof("💪 疲劳模型: 并发=%d 时长=%ds", cfg.Concurrency, cfg.Duration)

	e.spawnWorkers(s, cfg.Concurrency)
	e.setCurrentUsers(cfg.Concurrency)

	deadline := s.startTime.Add(time.Duration(cfg.Duration) * time.Second)
	if stopped := waitUntil(deadline, s.stop); stopped {
		e.log.Infof("🛑 疲劳模型提前停止")
	}

	s.stop.Store(true)
	e.graceJoin(s)
	return nil
}
