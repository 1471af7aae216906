/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\engine\engine.go
 * @Description: 压测引擎 - 生命周期控制与状态查询
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kamalyes/go-perf/config"
	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/metrics"
	"github.com/kamalyes/go-perf/store"
	"github.com/kamalyes/go-perf/target"
	"github.com/kamalyes/go-perf/types"
	"github.com/kamalyes/go-toolbox/pkg/random"
	"github.com/kamalyes/go-toolbox/pkg/syncx"
)

var (
	// ErrTestRunning 单飞约束: 同一引擎同时只允许一轮压测
	ErrTestRunning = errors.New("已有压测在运行中")

	// ErrNotRunning 当前没有可停止的压测
	ErrNotRunning = errors.New("当前没有正在运行的压测")
)

// GraceTimeout worker 退出的宽限时长，超时后放弃等待（不强杀）
const GraceTimeout = 30 * time.Second

const timeLayout = "2006-01-02T15:04:05"

// session 一轮压测的全部运行时状态
// 每轮压测创建新实例, 计数器不跨轮复用
type session struct {
	id        string
	request   *types.StartRequest
	startTime time.Time
	endTime   time.Time
	agg       *metrics.Aggregator
	history   *metrics.HistoryBuffer
	stop      *syncx.Bool // 协作式停止信号, worker 在迭代边界检查
	wg        sync.WaitGroup
	cancel    context.CancelFunc // 结束内存监控
}

// Engine 压测引擎
type Engine struct {
	cfg    *config.Config
	client *target.Client
	store  store.Store
	log    logger.ILogger

	mu           *syncx.RWLock
	sm           *syncx.StateMachine[types.RunPhase]
	phase        types.RunPhase // 状态机当前阶段的镜像
	running      *syncx.Bool
	sess         *session // 当前（或最近一轮）压测
	currentUsers int
}

// NewEngine 创建压测引擎
func NewEngine(cfg *config.Config, client *target.Client, st store.Store) *Engine {
	sm := syncx.NewStateMachine(types.RunPhaseIdle, syncx.WithTrackHistory[types.RunPhase](100))
	sm.AllowTransition(types.RunPhaseIdle, types.RunPhaseRunning)
	sm.AllowTransition(types.RunPhaseRunning, types.RunPhaseStopping)
	sm.AllowTransition(types.RunPhaseRunning, types.RunPhaseCompleted)
	sm.AllowTransition(types.RunPhaseStopping, types.RunPhaseCompleted)
	sm.AllowTransition(types.RunPhaseCompleted, types.RunPhaseRunning)

	return &Engine{
		cfg:     cfg,
		client:  client,
		store:   st,
		log:     logger.Default,
		mu:      syncx.NewRWLock(),
		sm:      sm,
		phase:   types.RunPhaseIdle,
		running: syncx.NewBool(false),
	}
}

// Start 启动一轮压测，返回 testID
// 单飞约束在锁内原子判定, 并发调用只有一个成功
func (e *Engine) Start(req *types.StartRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running.Load() {
		return "", ErrTestRunning
	}
	if err := e.sm.TransitionTo(types.RunPhaseRunning); err != nil {
		return "", fmt.Errorf("状态切换失败: %w", err)
	}
	e.phase = types.RunPhaseRunning

	now := time.Now()
	s := &session{
		id:        now.Format("20060102_150405") + "_" + random.RandString(6, random.LOWERCASE|random.NUMBER),
		request:   req,
		startTime: now,
		agg:       metrics.NewAggregator(now),
		history:   metrics.NewHistoryBuffer(),
		stop:      syncx.NewBool(false),
	}
	e.sess = s
	e.currentUsers = 0
	e.running.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	e.startMemoryGuard(ctx)

	e.log.Infof("🚀 压测启动 [%s] 模型=%s app_id=%s", s.id, req.TestType, req.TargetConfig.AppID)
	go e.run(s)

	return s.id, nil
}

// Stop 请求停止当前压测，立即返回，不等待 worker 退出
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running.Load() {
		return ErrNotRunning
	}
	if e.phase == types.RunPhaseRunning {
		if err := e.sm.TransitionTo(types.RunPhaseStopping); err != nil {
			return fmt.Errorf("状态切换失败: %w", err)
		}
		e.phase = types.RunPhaseStopping
	}

	// 结束时刻以停止请求为准, worker 的排水不计入时长
	e.sess.endTime = time.Now()
	e.sess.stop.Store(true)
	e.log.Infof("🛑 收到停止请求 [%s]", e.sess.id)
	return nil
}

// DryRun 连通性测试，不依赖引擎状态，压测进行中也可调用
func (e *Engine) DryRun(ctx context.Context, targetCfg *types.TargetConfig) (*types.DryRunResponse, error) {
	if err := targetCfg.Validate(); err != nil {
		return nil, err
	}
	return e.client.Probe(ctx, targetCfg), nil
}

// Status 实时状态查询
// 压测运行中且距上次结算 >= 1 秒时, 顺带结算一个采样点（轮询驱动窗口）
func (e *Engine) Status() *types.StatusResponse {
	e.mu.RLock()
	s := e.sess
	users := e.currentUsers
	var endTime time.Time
	if s != nil {
		endTime = s.endTime
	}
	e.mu.RUnlock()

	if s == nil {
		return &types.StatusResponse{History: []types.HistoryPoint{}}
	}

	isRunning := e.running.Load()
	if isRunning {
		if point, ok := s.agg.FlushWindow(time.Now()); ok {
			point.Users = users
			s.history.Append(point)
		}
	}

	snap := s.agg.SnapshotCumulative()
	rps, _, p95, p99 := s.agg.LastRates()

	duration := 0
	if isRunning {
		duration = int(time.Since(s.startTime).Seconds())
	} else if !endTime.IsZero() {
		duration = int(endTime.Sub(s.startTime).Seconds())
	}

	return &types.StatusResponse{
		IsRunning:       isRunning,
		Duration:        duration,
		CurrentUsers:    users,
		TotalRequests:   snap.Total,
		SuccessRequests: snap.Success,
		ErrorRequests:   snap.Error,
		CurrentRPS:      rps,
		AvgLatency:      snap.AvgLatency,
		P95Latency:      p95,
		P99Latency:      p99,
		History:         s.history.Tail(metrics.StatusTailSize),
	}
}

// Phase 引擎当前生命周期阶段
func (e *Engine) Phase() types.RunPhase {
	return syncx.WithRLockReturnValue(e.mu, func() types.RunPhase {
		return e.phase
	})
}

// Store 暴露底层存储（历史记录查询接口复用）
func (e *Engine) Store() store.Store {
	return e.store
}

// IsRunning 是否有压测在运行
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// run 压测主流程: 按模型执行 -> 收尾落盘
func (e *Engine) run(s *session) {
	var runErr error
	switch s.request.TestType {
	case types.ProfileFatigue:
		runErr = e.runFatigue(s, s.request.FatigueConfig)
	case types.ProfileStep:
		runErr = e.runStep(s, s.request.StepConfig)
	default:
		runErr = fmt.Errorf("不支持的压测模型: %s", s.request.TestType)
	}
	e.finalize(s, runErr)
}

// finalize 压测收尾: 终态结算 -> 分析 -> 落盘 -> 释放运行标记
// running 标记最后置 false, 保证落盘完成前新压测无法启动
func (e *Engine) finalize(s *session, runErr error) {
	if s.cancel != nil {
		s.cancel()
	}

	e.mu.Lock()
	if s.endTime.IsZero() {
		s.endTime = time.Now()
	}
	endTime := s.endTime
	if err := e.sm.TransitionTo(types.RunPhaseCompleted); err != nil {
		e.log.Warnf("⚠️ 状态切换异常: %v", err)
	}
	e.phase = types.RunPhaseCompleted
	users := e.currentUsers
	e.mu.Unlock()

	// 终态结算, 把最后一个窗口收进时序数据
	if point, ok := s.agg.FlushWindow(endTime); ok {
		point.Users = users
		s.history.Append(point)
	}

	stats := s.agg.Summary()
	history := s.history.All()
	analysis := metrics.Analyze(stats, history)

	status := types.RunStatusCompleted
	if runErr != nil {
		status = types.RunStatusFailed
		e.log.Errorf("❌ 压测异常结束 [%s]: %v", s.id, runErr)
	}

	bundle := &types.ReportBundle{
		Meta: &types.ReportMeta{
			TestID:    s.id,
			StartTime: s.startTime.Format(timeLayout),
			EndTime:   endTime.Format(timeLayout),
			Duration:  int(endTime.Sub(s.startTime).Seconds()),
			TestType:  s.request.TestType,
			AppID:     s.request.TargetConfig.AppID,
			Status:    status,
		},
		Config:   s.request,
		Stats:    stats,
		History:  history,
		Analysis: analysis,
	}
	if err := e.store.Save(bundle); err != nil {
		e.log.Errorf("❌ 报告落盘失败 [%s]: %v", s.id, err)
	} else {
		e.log.Infof("📊 压测结束 [%s] 总请求=%d 成功=%d 失败=%d 评分=%d",
			s.id, stats.TotalRequests, stats.SuccessRequests, stats.ErrorRequests, analysis.Score)
	}

	e.mu.Lock()
	e.currentUsers = 0
	e.mu.Unlock()
	e.running.Store(false)
}

// setCurrentUsers 更新当前并发用户数
func (e *Engine) setCurrentUsers(n int) {
	syncx.WithLock(e.mu, func() {
		e.currentUsers = n
	})
}
