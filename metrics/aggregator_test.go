/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\metrics\aggregator_test.go
 * @Description: 指标聚合器测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAggregatorConcurrentRecord(t *testing.T) {
	agg := NewAggregator(time.Now())

	const goroutines = 50
	const perGoroutine = 200

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				// 每个 goroutine 最后 10 次记为失败
				agg.RecordOutcome(i < perGoroutine-10, 100*time.Millisecond)
			}
		}(g)
	}
	wg.Wait()

	snap := agg.SnapshotCumulative()
	assert.Equal(t, uint64(goroutines*perGoroutine), snap.Total)
	assert.Equal(t, uint64(goroutines*(perGoroutine-10)), snap.Success)
	assert.Equal(t, uint64(goroutines*10), snap.Error)
	assert.Equal(t, 100.0, snap.AvgLatency)
}

func TestAggregatorFlushWindow(t *testing.T) {
	t0 := time.Now()

	t.Run("不足1秒时防抖", func(t *testing.T) {
		agg := NewAggregator(t0)
		agg.RecordOutcome(true, 50*time.Millisecond)

		_, ok := agg.FlushWindow(t0.Add(500 * time.Millisecond))
		assert.False(t, ok)

		// 防抖不清空窗口, 后续结算仍包含之前的记录
		point, ok := agg.FlushWindow(t0.Add(2 * time.Second))
		assert.True(t, ok)
		assert.Equal(t, 0.5, point.RPS)
	})

	t.Run("窗口速率计算", func(t *testing.T) {
		agg := NewAggregator(t0)
		for i := 0; i < 20; i++ {
			agg.RecordOutcome(true, 100*time.Millisecond)
		}
		for i := 0; i < 4; i++ {
			agg.RecordOutcome(false, 0)
		}

		point, ok := agg.FlushWindow(t0.Add(2 * time.Second))
		assert.True(t, ok)
		assert.Equal(t, 12.0, point.RPS)     // (20+4)/2
		assert.Equal(t, 2.0, point.ErrorRPS) // 4/2
		assert.Equal(t, 100.0, point.AvgLatency)
		assert.Equal(t, 100.0, point.P95Latency)
		assert.Equal(t, 100.0, point.P99Latency)
		assert.Equal(t, t0.Add(2*time.Second).Unix(), point.Timestamp)
	})

	t.Run("结算后窗口重置而累计保留", func(t *testing.T) {
		agg := NewAggregator(t0)
		agg.RecordOutcome(true, 100*time.Millisecond)

		_, ok := agg.FlushWindow(t0.Add(time.Second))
		assert.True(t, ok)

		// 新窗口无数据
		point, ok := agg.FlushWindow(t0.Add(3 * time.Second))
		assert.True(t, ok)
		assert.Equal(t, 0.0, point.RPS)
		assert.Equal(t, 0.0, point.P99Latency)
		// 累计平均延迟仍保留
		assert.Equal(t, 100.0, point.AvgLatency)

		snap := agg.SnapshotCumulative()
		assert.Equal(t, uint64(1), snap.Total)
	})

	t.Run("RPS峰值跨窗口保留", func(t *testing.T) {
		agg := NewAggregator(t0)
		for i := 0; i < 10; i++ {
			agg.RecordOutcome(true, time.Millisecond)
		}
		agg.FlushWindow(t0.Add(time.Second)) // rps=10

		agg.RecordOutcome(true, time.Millisecond)
		agg.FlushWindow(t0.Add(2 * time.Second)) // rps=1

		assert.Equal(t, 10.0, agg.MaxRPS())
	})
}

func TestAggregatorLastRates(t *testing.T) {
	t0 := time.Now()
	agg := NewAggregator(t0)

	rps, errRPS, p95, p99 := agg.LastRates()
	assert.Equal(t, 0.0, rps)
	assert.Equal(t, 0.0, errRPS)
	assert.Equal(t, 0.0, p95)
	assert.Equal(t, 0.0, p99)

	for i := 0; i < 10; i++ {
		agg.RecordOutcome(true, 200*time.Millisecond)
	}
	agg.FlushWindow(t0.Add(2 * time.Second))

	rps, _, p95, p99 = agg.LastRates()
	assert.Equal(t, 5.0, rps)
	assert.Equal(t, 200.0, p95)
	assert.Equal(t, 200.0, p99)
}

func TestPercentile(t *testing.T) {
	t.Run("空切片返回0", func(t *testing.T) {
		assert.Equal(t, 0.0, percentile(nil, 0.99))
	})

	t.Run("单元素", func(t *testing.T) {
		assert.Equal(t, 42.0, percentile([]float64{42}, 0.95))
		assert.Equal(t, 42.0, percentile([]float64{42}, 0.99))
	})

	t.Run("乱序输入与排序无关", func(t *testing.T) {
		values := make([]float64, 100)
		for i := range values {
			values[i] = float64(i + 1) // 1..100
		}
		rand.Shuffle(len(values), func(i, j int) {
			values[i], values[j] = values[j], values[i]
		})

		// floor(0.95*100)=95 -> 排序后下标95即值96
		assert.Equal(t, 96.0, percentile(values, 0.95))
		// floor(0.99*100)=99 截断到99 -> 值100
		assert.Equal(t, 100.0, percentile(values, 0.99))
	})

	t.Run("下标截断到末位", func(t *testing.T) {
		assert.Equal(t, 3.0, percentile([]float64{1, 2, 3}, 0.99))
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.14, Round2(3.14159))
	assert.Equal(t, 3.15, Round2(3.145))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 100.0, Round2(100))
}

func TestHistoryBuffer(t *testing.T) {
	buf := NewHistoryBuffer()
	assert.Equal(t, 0, buf.Len())
	assert.Empty(t, buf.Tail(StatusTailSize))

	for i := 0; i < 100; i++ {
		buf.Append(newPoint(int64(i)))
	}

	assert.Equal(t, 100, buf.Len())

	all := buf.All()
	assert.Len(t, all, 100)
	assert.Equal(t, int64(0), all[0].Timestamp)
	assert.Equal(t, int64(99), all[99].Timestamp)

	tail := buf.Tail(StatusTailSize)
	assert.Len(t, tail, StatusTailSize)
	assert.Equal(t, int64(40), tail[0].Timestamp)
	assert.Equal(t, int64(99), tail[StatusTailSize-1].Timestamp)

	// 副本不影响内部数据
	tail[0].Timestamp = -1
	assert.Equal(t, int64(40), buf.Tail(StatusTailSize)[0].Timestamp)
}
