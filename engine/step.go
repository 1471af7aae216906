/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\engine\step.go
 * @Description: 阶梯模型 - 并发逐级爬升
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package engine

import (
	"time"

	"github.com/kamalyes/go-perf/types"
)

// RampUpRatio 每级时长中用于爬升的比例，剩余时间维持平台期
const RampUpRatio = 0.2

// runStep 阶梯模型执行器
// 每级: 前 20% 时长内均匀补齐新增 worker, 其余时间维持平台期;
// 平台期按阶段绝对起点计算, 爬升耗时计入本级时长
func (e *Engine) runStep(s *session, cfg *types.StepConfig) error {
	stages := cfg.Stages()
	e.log.Infof("📈 阶梯模型: 初始=%d 步长=%d 每级=%ds 上限=%d 共%d级",
		cfg.InitialUsers, cfg.StepSize, cfg.StepDuration, cfg.MaxUsers, len(stages))

	stepDuration := time.Duration(cfg.StepDuration) * time.Second
	rampup := time.Duration(float64(stepDuration) * RampUpRatio)
	current := 0

	for idx, targetUsers := range stages {
		if s.stop.Load() {
			break
		}

		stageStart := time.Now()
		toAdd := targetUsers - current
		e.log.Infof("📶 第%d级: %d -> %d 并发", idx+1, current, targetUsers)

		// 爬升: 均匀间隔逐个拉起新 worker
		interval := rampup / time.Duration(toAdd)
		for i := 0; i < toAdd; i++ {
			if s.stop.Load() {
				break
			}
			e.spawnWorkers(s, 1)
			current++
			e.setCurrentUsers(current)
			time.Sleep(interval)
		}

		// 平台期: 维持到本级绝对截止时刻
		if stopped := waitUntil(stageStart.Add(stepDuration), s.stop); stopped {
			e.log.Infof("🛑 阶梯模型在第%d级提前停止", idx+1)
			break
		}
	}

	s.stop.Store(true)
	e.graceJoin(s)
	return nil
}
