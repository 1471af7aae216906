/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\main.go
 * @Description: go-perf 入口 - 控制面服务模式与单次压测模式
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kamalyes/go-perf/config"
	"github.com/kamalyes/go-perf/engine"
	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/server"
	"github.com/kamalyes/go-perf/store"
	"github.com/kamalyes/go-perf/target"
	"github.com/kamalyes/go-perf/types"
)

var log = logger.Default

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径 (.yaml/.json)")
		serveMode  = flag.Bool("serve", false, "以控制面服务模式运行")
		targetURL  = flag.String("target", "", "压测目标地址 (覆盖配置文件)")
		listenPort = flag.Int("port", 0, "控制面监听端口 (覆盖配置文件)")
		historyDir = flag.String("dir", "", "报告存储目录 (覆盖配置文件)")
		maxMemory  = flag.String("max-memory", "", "引擎内存阈值, 如 512MB (覆盖配置文件)")

		testType     = types.ProfileFatigue
		storeMode    types.StoreMode
		logLevel     = logger.LogLevelFlag{Level: logger.INFO}
		concurrency  = flag.Int("c", 5, "疲劳模型并发数")
		duration     = flag.Int("duration", 60, "疲劳模型时长(秒)")
		initialUsers = flag.Int("initial", 1, "阶梯模型初始并发")
		stepSize     = flag.Int("step", 1, "阶梯模型每级增量")
		stepDuration = flag.Int("step-duration", 10, "阶梯模型每级时长(秒)")
		maxUsers     = flag.Int("max-users", 10, "阶梯模型最大并发")
		appID        = flag.String("app-id", "", "目标应用ID")
		prompt       = flag.String("prompt", "", "压测输入文本")
		dryRun       = flag.Bool("dry-run", false, "仅做连通性测试")
	)
	flag.Var(&testType, "type", "压测模型 (FATIGUE/STEP)")
	flag.Var(&storeMode, "store", "存储模式 (file/sqlite/badger)")
	flag.Var(&logLevel, "log-level", "日志级别 (debug/info/warn/error)")
	flag.Parse()

	log = logger.NewLogger(logger.DefaultConfig().WithLevel(logLevel.Level))
	logger.SetDefault(log)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Errorf("❌ 加载配置失败: %v", err)
		os.Exit(1)
	}
	if *targetURL != "" {
		cfg.TargetURL = *targetURL
	}
	if *listenPort > 0 {
		cfg.ListenPort = *listenPort
	}
	if *historyDir != "" {
		cfg.HistoryDir = *historyDir
	}
	if *maxMemory != "" {
		cfg.MaxMemory = *maxMemory
	}
	if storeMode != "" {
		cfg.StoreMode = storeMode
	}
	if err := cfg.Validate(); err != nil {
		log.Errorf("❌ 配置无效: %v", err)
		os.Exit(1)
	}

	st, err := store.NewStore(cfg)
	if err != nil {
		log.Errorf("❌ 初始化存储失败: %v", err)
		os.Exit(1)
	}
	defer st.Close()

	e := engine.NewEngine(cfg, target.NewClient(cfg), st)

	if *serveMode {
		runServe(cfg, e)
		return
	}

	if *dryRun {
		runDryRun(e, *appID, *prompt)
		return
	}

	req, err := buildRequest(testType, *appID, *prompt,
		*concurrency, *duration, *initialUsers, *stepSize, *stepDuration, *maxUsers)
	if err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
	runOnce(e, req)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(path)
}

// runServe 控制面服务模式, Ctrl+C 优雅退出
func runServe(cfg *config.Config, e *engine.Engine) {
	srv := server.NewServer(e, cfg.ListenPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Infof("👋 收到退出信号, 正在关闭...")
		if e.IsRunning() {
			e.Stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	if err := srv.Run(); err != nil {
		log.Errorf("❌ 服务异常退出: %v", err)
		os.Exit(1)
	}
}

// runDryRun 连通性测试模式
func runDryRun(e *engine.Engine, appID, prompt string) {
	resp, err := e.DryRun(context.Background(),
		&types.TargetConfig{AppID: appID, InputPrompt: prompt})
	if err != nil {
		log.Errorf("❌ %v", err)
		os.Exit(1)
	}
	if !resp.Success {
		log.Errorf("❌ 连通性测试失败 (耗时 %dms): %s", resp.Latency, resp.Error)
		os.Exit(1)
	}
	log.Infof("✅ 连通性测试通过, 耗时 %dms", resp.Latency)
}

// runOnce 单次压测模式: 启动 -> 每秒轮询进度 -> 输出分析结论
func runOnce(e *engine.Engine, req *types.StartRequest) {
	testID, err := e.Start(req)
	if err != nil {
		log.Errorf("❌ 启动压测失败: %v", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for e.IsRunning() {
		select {
		case <-quit:
			log.Infof("👋 收到退出信号, 停止压测...")
			e.Stop()
		case <-ticker.C:
			s := e.Status()
			log.Infof("⏱️ %3ds | 并发=%d RPS=%.2f 总数=%d 失败=%d 平均=%.2fms P99=%.2fms",
				s.Duration, s.CurrentUsers, s.CurrentRPS,
				s.TotalRequests, s.ErrorRequests, s.AvgLatency, s.P99Latency)
		}
	}

	bundle, err := e.Store().Get(testID)
	if err != nil || bundle == nil || bundle.Analysis == nil {
		log.Warnf("⚠️ 未能读取压测报告 [%s]", testID)
		return
	}
	log.Infof("🏁 压测完成 [%s] 评分=%d", testID, bundle.Analysis.Score)
	log.Infof("📋 %s", bundle.Analysis.Conclusion)
	for _, s := range bundle.Analysis.Suggestions {
		log.Infof("💡 %s", s)
	}
}

// buildRequest 由命令行参数组装启动请求
func buildRequest(testType types.ProfileType, appID, prompt string,
	concurrency, duration, initialUsers, stepSize, stepDuration, maxUsers int) (*types.StartRequest, error) {

	if appID == "" || prompt == "" {
		return nil, fmt.Errorf("单次压测模式需要 -app-id 和 -prompt")
	}

	req := &types.StartRequest{
		TestType:     testType,
		TargetConfig: &types.TargetConfig{AppID: appID, InputPrompt: prompt},
	}
	switch testType {
	case types.ProfileFatigue:
		req.FatigueConfig = &types.FatigueConfig{Concurrency: concurrency, Duration: duration}
	case types.ProfileStep:
		req.StepConfig = &types.StepConfig{
			InitialUsers: initialUsers,
			StepSize:     stepSize,
			StepDuration: stepDuration,
			MaxUsers:     maxUsers,
		}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
