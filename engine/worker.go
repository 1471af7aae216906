/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\engine\worker.go
 * @Description: 压测 worker - 请求循环与宽限退出
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package engine

import (
	"context"
	"time"

	"github.com/kamalyes/go-perf/target"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// WorkerPause 每次迭代之间的短暂停顿，避免单 worker 打满 CPU
const WorkerPause = 10 * time.Millisecond

// worker 单个虚拟用户的请求循环
// 每轮迭代: 构造请求体 -> 发送 -> 记录结果 -> 停顿
// 停止信号只在迭代边界检查, 进行中的请求不被打断
func (e *Engine) worker(s *session) {
	defer s.wg.Done()

	for !s.stop.Load() {
		payload := target.BuildPayload(s.request.TargetConfig)

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Timeout)
		latencyMs, err := e.client.Do(ctx, payload)
		cancel()

		s.agg.RecordOutcome(err == nil, time.Duration(latencyMs*float64(time.Millisecond)))

		time.Sleep(WorkerPause)
	}
}

// spawnWorkers 批量启动 worker
func (e *Engine) spawnWorkers(s *session, n int) {
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		go e.worker(s)
	}
}

// graceJoin 等待全部 worker 退出，最多等待 GraceTimeout
// 超时后放弃等待（不强杀）, 滞留 worker 在下一个迭代边界自行退出,
// 其后续请求仍计入累计计数, 但不会进入已落盘的报告
func (e *Engine) graceJoin(s *session) {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.log.Infof("✅ 全部 worker 已退出 [%s]", s.id)
	case <-time.After(GraceTimeout):
		e.log.Warnf("⚠️ 等待 worker 退出超时 (%v), 放弃等待 [%s]", GraceTimeout, s.id)
	}
}

// waitUntil 以约 1 秒的粒度等待到目标时刻，期间检查停止信号
// 返回 true 表示因停止信号提前返回
func waitUntil(deadline time.Time, stop *syncx.Bool) bool {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if stop.Load() {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		<-ticker.C
	}
}
