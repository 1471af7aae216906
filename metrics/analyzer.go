/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\metrics\analyzer.go
 * @Description: 压测结果分析 - 扣分制评分 + 结论生成
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package metrics

import (
	"fmt"

	"github.com/kamalyes/go-perf/types"
	"github.com/kamalyes/go-toolbox/pkg/mathx"
)

// 评分扣分项
const (
	deductErrorHigh  = 40 // 错误率 > 1%
	deductErrorAny   = 10 // 错误率 > 0%
	deductP99Severe  = 30 // P99 峰值 > 2000ms
	deductP99High    = 10 // P99 峰值 > 1000ms
	deductPerSpike   = 5  // 每个延迟毛刺点
	maxCountedSpikes = 4  // 毛刺扣分上限对应的点数
)

// Analyze 根据汇总统计与时序数据生成分析报告
// 满分 100，按错误率、P99 峰值、延迟毛刺三类问题扣分
func Analyze(stats *types.SummaryStats, history []types.HistoryPoint) *types.Analysis {
	if len(history) == 0 || stats == nil || stats.TotalRequests == 0 {
		return &types.Analysis{
			Score:       0,
			Conclusion:  "无有效数据, 压测未产生任何请求",
			Suggestions: []string{"建议先通过连通性测试确认目标服务可达"},
		}
	}

	score := 100
	var suggestions []string

	// 错误率
	errorRate := mathx.Percentage(stats.ErrorRequests, stats.TotalRequests)
	if errorRate > 1.0 {
		score -= deductErrorHigh
		suggestions = append(suggestions,
			fmt.Sprintf("错误率 %.2f%% 超过 1%%, 建议排查目标服务错误日志与资源瓶颈", errorRate))
	} else if errorRate > 0 {
		score -= deductErrorAny
		suggestions = append(suggestions,
			fmt.Sprintf("存在少量错误 (%.2f%%), 建议确认是否为偶发超时", errorRate))
	}

	// P99 峰值
	maxP99 := 0.0
	p99s := make([]float64, 0, len(history))
	peakUsers := 0
	for _, p := range history {
		maxP99 = mathx.Max(maxP99, p.P99Latency)
		p99s = append(p99s, p.P99Latency)
		peakUsers = mathx.Max(peakUsers, p.Users)
	}
	if maxP99 > 2000 {
		score -= deductP99Severe
		suggestions = append(suggestions,
			fmt.Sprintf("P99 延迟峰值 %.2fms 超过 2 秒, 存在严重的长尾延迟", maxP99))
	} else if maxP99 > 1000 {
		score -= deductP99High
		suggestions = append(suggestions,
			fmt.Sprintf("P99 延迟峰值 %.2fms 超过 1 秒, 建议关注长尾请求", maxP99))
	}

	// 延迟毛刺: P99 超过均值 2 倍（且超过 50ms 底线）的采样点
	meanP99 := mathx.Mean(p99s)
	threshold := mathx.Max(2*meanP99, 50.0)
	spikes := 0
	for _, v := range p99s {
		if v > threshold {
			spikes++
		}
	}
	if spikes > 0 {
		score -= deductPerSpike * mathx.Min(spikes, maxCountedSpikes)
		suggestions = append(suggestions,
			fmt.Sprintf("检测到 %d 个延迟毛刺点 (P99 > %.2fms), 延迟稳定性欠佳", spikes, threshold))
	}

	score = mathx.Max(score, 0)

	conclusion := fmt.Sprintf(
		"峰值并发 %d, 峰值 RPS %.2f, P99 峰值 %.2fms / 均值 %.2fms, 总请求 %d (成功 %d, 失败 %d), 错误率 %.2f%%",
		peakUsers, stats.MaxRPS, maxP99, Round2(meanP99),
		stats.TotalRequests, stats.SuccessRequests, stats.ErrorRequests, errorRate)
	switch {
	case score == 100:
		conclusion += "; 各项指标均无扣分, 表现完美"
	case score >= 90:
		conclusion += "; 整体表现优秀"
	}

	return &types.Analysis{
		Score:       score,
		Conclusion:  conclusion,
		Suggestions: suggestions,
	}
}
