/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\types\statistics.go
 * @Description: 统计与报告相关类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package types

// HistoryPoint 时序采样点（一次窗口结算，或压测结束时的终态快照）
type HistoryPoint struct {
	Timestamp  int64   `json:"timestamp"`   // Unix 秒
	RPS        float64 `json:"rps"`         // 窗口内每秒请求数
	ErrorRPS   float64 `json:"error_rps"`   // 窗口内每秒失败数
	AvgLatency float64 `json:"latency"`     // 累计平均延迟（毫秒）
	P95Latency float64 `json:"p95_latency"` // 窗口 P95 延迟（毫秒）
	P99Latency float64 `json:"p99_latency"` // 窗口 P99 延迟（毫秒）
	Users      int     `json:"users"`       // 采样时的并发用户数
}

// SummaryStats 压测汇总统计
type SummaryStats struct {
	TotalRequests   uint64  `json:"total_requests"`
	SuccessRequests uint64  `json:"success_requests"`
	ErrorRequests   uint64  `json:"error_requests"`
	AvgLatency      float64 `json:"avg_latency"` // 毫秒
	MaxRPS          float64 `json:"max_rps"`
}

// CumulativeSnapshot 累计计数快照（只读视图，不重置任何计数）
type CumulativeSnapshot struct {
	Total      uint64
	Success    uint64
	Error      uint64
	AvgLatency float64 // 毫秒
}

// RunStatus 历史记录状态
type RunStatus string

const (
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusStopped   RunStatus = "STOPPED"
	RunStatusFailed    RunStatus = "FAILED"
)

// ReportMeta 压测历史元信息
type ReportMeta struct {
	TestID    string      `json:"test_id"`
	StartTime string      `json:"start_time"` // ISO-8601 本地时间
	EndTime   string      `json:"end_time"`
	Duration  int         `json:"duration"` // 秒
	TestType  ProfileType `json:"test_type"`
	AppID     string      `json:"app_id"`
	Status    RunStatus   `json:"status"`
}

// Analysis 压测结果分析
type Analysis struct {
	Score       int      `json:"score"` // 0-100
	Conclusion  string   `json:"conclusion"`
	Suggestions []string `json:"suggestions"`
}

// ReportBundle 持久化的完整压测报告
// 五个制品（meta/config/stats/history/analysis）各自独立序列化，
// 单个制品缺失不影响其余制品的读取
type ReportBundle struct {
	Meta     *ReportMeta    `json:"meta"`
	Config   *StartRequest  `json:"config"`
	Stats    *SummaryStats  `json:"stats"`
	History  []HistoryPoint `json:"history"`
	Analysis *Analysis      `json:"analysis,omitempty"`
}

// StatusResponse 实时状态查询响应
type StatusResponse struct {
	IsRunning       bool           `json:"is_running"`
	Duration        int            `json:"duration"` // 秒
	CurrentUsers    int            `json:"current_users"`
	TotalRequests   uint64         `json:"total_requests"`
	SuccessRequests uint64         `json:"success_requests"`
	ErrorRequests   uint64         `json:"error_requests"`
	CurrentRPS      float64        `json:"current_rps"`
	AvgLatency      float64        `json:"avg_latency"` // 毫秒
	P95Latency      float64        `json:"p95_latency"`
	P99Latency      float64        `json:"p99_latency"`
	History         []HistoryPoint `json:"history"` // 最近 60 个采样点
}

// DryRunResponse 连通性测试响应
type DryRunResponse struct {
	Success bool        `json:"success"`
	Latency int64       `json:"latency"` // 毫秒
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
