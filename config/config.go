/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\config\config.go
 * @Description: 引擎配置定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package config

import (
	"fmt"
	"time"

	"github.com/kamalyes/go-perf/types"
)

// 默认值
const (
	DefaultTargetURL  = "http://127.0.0.1:8000/api/input/instance/rule/run"
	DefaultHistoryDir = "performance_history"
	DefaultListenPort = 8099
	DefaultTimeout    = 10 * time.Second
)

// Config 引擎配置
type Config struct {
	// TargetURL 压测目标地址（护栏服务的规则执行入口）
	TargetURL string `json:"target_url" yaml:"target_url"`

	// Timeout 单次请求超时时间
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// HistoryDir 报告存储根目录（file 模式为目录，sqlite/badger 模式为数据库父目录）
	HistoryDir string `json:"history_dir" yaml:"history_dir"`

	// StoreMode 报告存储模式 (file/sqlite/badger)
	StoreMode types.StoreMode `json:"store_mode" yaml:"store_mode"`

	// ListenPort 控制面 HTTP 端口
	ListenPort int `json:"listen_port" yaml:"listen_port"`

	// MaxMemory 引擎内存阈值（如 "512MB"），超出后自动停止压测；为空则不监控
	MaxMemory string `json:"max_memory" yaml:"max_memory"`

	// Check 可选的试运行响应断言（JSONPath 表达式与期望值）
	Check *CheckConfig `json:"check,omitempty" yaml:"check,omitempty"`
}

// CheckConfig 试运行响应断言配置
type CheckConfig struct {
	JSONPath string `json:"jsonpath" yaml:"jsonpath"` // 如 $.suggestion
	Expect   string `json:"expect" yaml:"expect"`     // 期望值（字符串比较）
}

// DefaultConfig 创建默认配置
func DefaultConfig() *Config {
	return &Config{
		TargetURL:  DefaultTargetURL,
		Timeout:    DefaultTimeout,
		HistoryDir: DefaultHistoryDir,
		StoreMode:  types.StoreModeFile,
		ListenPort: DefaultListenPort,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.TargetURL == "" {
		return fmt.Errorf("目标地址不能为空")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("请求超时时间必须大于0, 当前: %v", c.Timeout)
	}
	if c.HistoryDir == "" {
		return fmt.Errorf("报告存储目录不能为空")
	}
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("无效的监听端口: %d", c.ListenPort)
	}

	switch c.StoreMode {
	case types.StoreModeFile, types.StoreModeSQLite, types.StoreModeBadger:
	default:
		return fmt.Errorf("不支持的存储模式: %s (支持: %s, %s, %s)",
			c.StoreMode, types.StoreModeFile, types.StoreModeSQLite, types.StoreModeBadger)
	}

	if c.Check != nil && c.Check.JSONPath == "" {
		return fmt.Errorf("响应断言缺少 jsonpath 表达式")
	}

	return nil
}
