/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\metrics\aggregator.go
 * @Description: 压测指标聚合器 - 累计计数 + 滚动窗口结算
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/kamalyes/go-perf/types"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// FlushInterval 窗口结算的最小间隔，低于该间隔的结算请求被防抖丢弃
const FlushInterval = time.Second

// Aggregator 指标聚合器
// 累计计数器用原子变量，窗口数据用读写锁保护
// 每轮压测创建新实例，计数不跨轮复用
type Aggregator struct {
	total   *syncx.Uint64 // 累计请求总数
	success *syncx.Uint64 // 累计成功数
	errors  *syncx.Uint64 // 累计失败数

	mu          *syncx.RWLock
	latencySum  float64   // 累计成功请求延迟和（毫秒）
	windowStart time.Time // 当前窗口起点
	windowLat   []float64 // 窗口内成功请求延迟（毫秒）
	windowErr   int       // 窗口内失败数
	maxRPS      float64   // 历次窗口的 RPS 峰值

	// 最近一次结算的窗口指标，供两次结算之间的状态查询复用
	lastRPS    float64
	lastErrRPS float64
	lastP95    float64
	lastP99    float64
}

// NewAggregator 创建聚合器，now 作为首个窗口的起点
func NewAggregator(now time.Time) *Aggregator {
	return &Aggregator{
		total:       syncx.NewUint64(0),
		success:     syncx.NewUint64(0),
		errors:      syncx.NewUint64(0),
		mu:          syncx.NewRWLock(),
		windowStart: now,
	}
}

// RecordOutcome 记录一次请求结果，worker 并发调用
func (a *Aggregator) RecordOutcome(success bool, latency time.Duration) {
	a.total.Add(1)
	if success {
		a.success.Add(1)
		ms := float64(latency.Microseconds()) / 1000.0
		syncx.WithLock(a.mu, func() {
			a.latencySum += ms
			a.windowLat = append(a.windowLat, ms)
		})
	} else {
		a.errors.Add(1)
		syncx.WithLock(a.mu, func() {
			a.windowErr++
		})
	}
}

// FlushWindow 结算当前窗口并生成一个采样点
// 距上次结算不足 FlushInterval 时防抖，返回 ok=false 且不清空窗口
// 采样点的 Users 字段由调用方补充
func (a *Aggregator) FlushWindow(now time.Time) (types.HistoryPoint, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	elapsed := now.Sub(a.windowStart)
	if elapsed < FlushInterval {
		return types.HistoryPoint{}, false
	}

	secs := elapsed.Seconds()
	count := len(a.windowLat) + a.windowErr

	rps := Round2(float64(count) / secs)
	errRPS := Round2(float64(a.windowErr) / secs)
	p95 := Round2(percentile(a.windowLat, 0.95))
	p99 := Round2(percentile(a.windowLat, 0.99))
	a.maxRPS = mathx.Max(a.maxRPS, rps)

	a.lastRPS = rps
	a.lastErrRPS = errRPS
	a.lastP95 = p95
	a.lastP99 = p99

	// 重置窗口
	a.windowStart = now
	a.windowLat = a.windowLat[:0]
	a.windowErr = 0

	return types.HistoryPoint{
		Timestamp:  now.Unix(),
		RPS:        rps,
		ErrorRPS:   errRPS,
		AvgLatency: a.avgLatencyLocked(),
		P95Latency: p95,
		P99Latency: p99,
	}, true
}

// SnapshotCumulative 累计计数只读快照，不触发窗口结算
func (a *Aggregator) SnapshotCumulative() types.CumulativeSnapshot {
	return syncx.WithRLockReturnValue(a.mu, func() types.CumulativeSnapshot {
		return types.CumulativeSnapshot{
			Total:      a.total.Load(),
			Success:    a.success.Load(),
			Error:      a.errors.Load(),
			AvgLatency: a.avgLatencyLocked(),
		}
	})
}

// LastRates 返回最近一次窗口结算的 (rps, errorRPS, p95, p99)
func (a *Aggregator) LastRates() (float64, float64, float64, float64) {
	type rates struct{ rps, errRPS, p95, p99 float64 }
	r := syncx.WithRLockReturnValue(a.mu, func() rates {
		return rates{a.lastRPS, a.lastErrRPS, a.lastP95, a.lastP99}
	})
	return r.rps, r.errRPS, r.p95, r.p99
}

// MaxRPS 历次窗口的 RPS 峰值
func (a *Aggregator) MaxRPS() float64 {
	return syncx.WithRLockReturnValue(a.mu, func() float64 {
		return a.maxRPS
	})
}

// Summary 生成汇总统计
func (a *Aggregator) Summary() *types.SummaryStats {
	snap := a.SnapshotCumulative()
	return &types.SummaryStats{
		TotalRequests:   snap.Total,
		SuccessRequests: snap.Success,
		ErrorRequests:   snap.Error,
		AvgLatency:      snap.AvgLatency,
		MaxRPS:          a.MaxRPS(),
	}
}

// avgLatencyLocked 累计平均延迟（毫秒），调用方需持有锁
func (a *Aggregator) avgLatencyLocked() float64 {
	success := a.success.Load()
	if success == 0 {
		return 0.0
	}
	return Round2(a.latencySum / float64(success))
}

// percentile 最近邻秩百分位: 排序后取下标 floor(p*n)，截断到 n-1
// 空切片返回 0.0
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0.0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := mathx.Min(int(p*float64(n)), n-1)
	return sorted[idx]
}

// Round2 保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
