/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\config\loader_test.go
 * @Description: 配置加载器测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kamalyes/go-perf/types"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultTargetURL, cfg.TargetURL)
	assert.Equal(t, DefaultHistoryDir, cfg.HistoryDir)
	assert.Equal(t, types.StoreModeFile, cfg.StoreMode)
	assert.Equal(t, DefaultListenPort, cfg.ListenPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromBytes(t *testing.T) {
	t.Run("YAML覆盖默认值", func(t *testing.T) {
		data := []byte(`
target_url: http://10.0.0.1:9000/api/run
history_dir: /tmp/perf-history
store_mode: sqlite
listen_port: 9099
`)
		cfg, err := LoadFromBytes(data, ".yaml")
		assert.NoError(t, err)
		assert.Equal(t, "http://10.0.0.1:9000/api/run", cfg.TargetURL)
		assert.Equal(t, "/tmp/perf-history", cfg.HistoryDir)
		assert.Equal(t, types.StoreModeSQLite, cfg.StoreMode)
		assert.Equal(t, 9099, cfg.ListenPort)
		// 未指定的字段保留默认值
		assert.Equal(t, DefaultTimeout, cfg.Timeout)
	})

	t.Run("JSON格式", func(t *testing.T) {
		data := []byte(`{"target_url": "http://localhost:8000/x", "listen_port": 8100}`)
		cfg, err := LoadFromBytes(data, ".json")
		assert.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/x", cfg.TargetURL)
		assert.Equal(t, 8100, cfg.ListenPort)
	})

	t.Run("不支持的格式", func(t *testing.T) {
		_, err := LoadFromBytes([]byte("x"), ".toml")
		assert.Error(t, err)
	})

	t.Run("验证失败", func(t *testing.T) {
		_, err := LoadFromBytes([]byte(`{"store_mode": "redis"}`), ".json")
		assert.Error(t, err)
	})
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perf.yaml")
	content := []byte("listen_port: 8200\nmax_memory: 256MB\n")
	assert.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 8200, cfg.ListenPort)
	assert.Equal(t, "256MB", cfg.MaxMemory)

	_, err = LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"默认配置合法", func(c *Config) {}, true},
		{"空目标地址", func(c *Config) { c.TargetURL = "" }, false},
		{"非法超时", func(c *Config) { c.Timeout = -time.Second }, false},
		{"非法端口", func(c *Config) { c.ListenPort = 70000 }, false},
		{"断言缺少表达式", func(c *Config) { c.Check = &CheckConfig{Expect: "pass"} }, false},
		{"完整断言", func(c *Config) { c.Check = &CheckConfig{JSONPath: "$.suggestion", Expect: "pass"} }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
