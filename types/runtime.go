/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-10 00:00:00
 * @FilePath: \go-perf\types\runtime.go
 * @Description: 运行时相关类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package types

// RunPhase 引擎生命周期阶段
type RunPhase string

const (
	RunPhaseIdle      RunPhase = "idle"      // 空闲，可接受新压测
	RunPhaseRunning   RunPhase = "running"   // 压测执行中
	RunPhaseStopping  RunPhase = "stopping"  // 收到停止信号，等待 worker 退出
	RunPhaseCompleted RunPhase = "completed" // 压测结束，报告已落盘
)

// StoreMode 报告存储模式
type StoreMode string

const (
	// StoreModeFile 文件模式 - 每个制品一个 JSON 文件（默认）
	StoreModeFile StoreMode = "file"

	// StoreModeSQLite SQLite 模式 - 制品按行存储，支持 SQL 查询
	StoreModeSQLite StoreMode = "sqlite"

	// StoreModeBadger BadgerDB 模式 - 高性能 LSM-Tree 存储，纯 Go 实现
	StoreModeBadger StoreMode = "badger"
)

// StoreMode 实现 flag.Value 接口
func (s *StoreMode) String() string {
	if s == nil {
		return string(StoreModeFile)
	}
	return string(*s)
}

func (s *StoreMode) Set(value string) error {
	*s = StoreMode(value)
	return nil
}
