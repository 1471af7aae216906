/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-10 00:00:00
 * @FilePath: \go-perf\metrics\history.go
 * @Description: 时序采样点缓冲
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"github.com/kamalyes/go-perf/types"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

// StatusTailSize 状态查询返回的采样点条数上限
const StatusTailSize = 60

// HistoryBuffer 采样点缓冲，保存整轮压测的全量时序数据
type HistoryBuffer struct {
	mu     *syncx.RWLock
	points []types.HistoryPoint
}

// NewHistoryBuffer 创建采样点缓冲
func NewHistoryBuffer() *HistoryBuffer {
	return &HistoryBuffer{mu: syncx.NewRWLock()}
}

// Append 追加一个采样点
func (h *HistoryBuffer) Append(p types.HistoryPoint) {
	syncx.WithLock(h.mu, func() {
		h.points = append(h.points, p)
	})
}

// All 返回全量采样点的副本
func (h *HistoryBuffer) All() []types.HistoryPoint {
	return syncx.WithRLockReturnValue(h.mu, func() []types.HistoryPoint {
		out := make([]types.HistoryPoint, len(h.points))
		copy(out, h.points)
		return out
	})
}

// Tail 返回最近 n 个采样点的副本
func (h *HistoryBuffer) Tail(n int) []types.HistoryPoint {
	return syncx.WithRLockReturnValue(h.mu, func() []types.HistoryPoint {
		start := 0
		if len(h.points) > n {
			start = len(h.points) - n
		}
		out := make([]types.HistoryPoint, len(h.points)-start)
		copy(out, h.points[start:])
		return out
	})
}

// Len 当前采样点数量
func (h *HistoryBuffer) Len() int {
	return syncx.WithRLockReturnValue(h.mu, func() int {
		return len(h.points)
	})
}
