/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\store\store_test.go
 * @Description: 报告存储测试 - 三种后端统一契约
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kamalyes/go-perf/config"
	"github.com/kamalyes/go-perf/types"
	"github.com/stretchr/testify/assert"
)

func sampleBundle(testID, startTime string) *types.ReportBundle {
	return &types.ReportBundle{
		Meta: &types.ReportMeta{
			TestID:    testID,
			StartTime: startTime,
			EndTime:   "2026-02-10T10:01:00",
			Duration:  60,
			TestType:  types.ProfileFatigue,
			AppID:     "app-001",
			Status:    types.RunStatusCompleted,
		},
		Config: &types.StartRequest{
			TestType:      types.ProfileFatigue,
			TargetConfig:  &types.TargetConfig{AppID: "app-001", InputPrompt: "测试文本"},
			FatigueConfig: &types.FatigueConfig{Concurrency: 5, Duration: 60},
		},
		Stats: &types.SummaryStats{
			TotalRequests:   1000,
			SuccessRequests: 990,
			ErrorRequests:   10,
			AvgLatency:      85.5,
			MaxRPS:          120.25,
		},
		History: []types.HistoryPoint{
			{Timestamp: 1770000000, RPS: 100, AvgLatency: 85.5, P95Latency: 150, P99Latency: 200, Users: 5},
			{Timestamp: 1770000001, RPS: 110, AvgLatency: 86, P95Latency: 155, P99Latency: 210, Users: 5},
		},
		Analysis: &types.Analysis{Score: 90, Conclusion: "整体表现优秀"},
	}
}

// 三种后端共享同一组契约测试
func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	assert.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "perf.db"))
	assert.NoError(t, err)

	badgerStore, err := NewBadgerStore(t.TempDir())
	assert.NoError(t, err)

	return map[string]Store{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"badger": badgerStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			bundle := sampleBundle("test-001", "2026-02-10T10:00:00")
			assert.NoError(t, s.Save(bundle))

			got, err := s.Get("test-001")
			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, bundle.Meta, got.Meta)
			assert.Equal(t, bundle.Config, got.Config)
			assert.Equal(t, bundle.Stats, got.Stats)
			assert.Equal(t, bundle.History, got.History)
			assert.Equal(t, bundle.Analysis, got.Analysis)
		})
	}
}

func TestStoreListOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			assert.NoError(t, s.Save(sampleBundle("test-old", "2026-02-09T08:00:00")))
			assert.NoError(t, s.Save(sampleBundle("test-new", "2026-02-11T08:00:00")))
			assert.NoError(t, s.Save(sampleBundle("test-mid", "2026-02-10T08:00:00")))

			metas, err := s.List()
			assert.NoError(t, err)
			assert.Len(t, metas, 3)
			assert.Equal(t, "test-new", metas[0].TestID)
			assert.Equal(t, "test-mid", metas[1].TestID)
			assert.Equal(t, "test-old", metas[2].TestID)
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			got, err := s.Get("no-such-test")
			assert.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			assert.NoError(t, s.Save(sampleBundle("test-del", "2026-02-10T10:00:00")))
			assert.NoError(t, s.Delete("test-del"))

			got, err := s.Get("test-del")
			assert.NoError(t, err)
			assert.Nil(t, got)

			// 删除不存在的记录静默成功
			assert.NoError(t, s.Delete("no-such-test"))
		})
	}
}

func TestStoreSaveWithoutAnalysis(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			bundle := sampleBundle("test-noa", "2026-02-10T10:00:00")
			bundle.Analysis = nil
			assert.NoError(t, s.Save(bundle))

			got, err := s.Get("test-noa")
			assert.NoError(t, err)
			assert.NotNil(t, got)
			assert.Nil(t, got.Analysis)
			assert.Equal(t, bundle.Stats, got.Stats)
		})
	}
}

func TestStoreSaveRejectsMissingMeta(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()
			assert.Error(t, s.Save(&types.ReportBundle{}))
		})
	}
}

func TestFileStorePartialArtifacts(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	assert.NoError(t, err)

	bundle := sampleBundle("test-part", "2026-02-10T10:00:00")
	assert.NoError(t, s.Save(bundle))

	// 人为删除 stats 制品, 读取仍应成功且其余制品完整
	assert.NoError(t, os.Remove(filepath.Join(dir, "test-part", "stats.json")))

	got, err := s.Get("test-part")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Nil(t, got.Stats)
	assert.Equal(t, bundle.Meta, got.Meta)
	assert.Equal(t, bundle.History, got.History)
}

func TestNewStoreFactory(t *testing.T) {
	cases := []struct {
		mode types.StoreMode
		want interface{}
	}{
		{types.StoreModeFile, (*FileStore)(nil)},
		{types.StoreModeSQLite, (*SQLiteStore)(nil)},
		{types.StoreModeBadger, (*BadgerStore)(nil)},
	}

	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.HistoryDir = t.TempDir()
			cfg.StoreMode = tc.mode

			s, err := NewStore(cfg)
			assert.NoError(t, err)
			assert.IsType(t, tc.want, s)
			assert.NoError(t, s.Close())
		})
	}

	t.Run("未知模式", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.HistoryDir = t.TempDir()
		cfg.StoreMode = types.StoreMode("redis")

		_, err := NewStore(cfg)
		assert.Error(t, err)
	})
}
