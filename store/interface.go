/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\store\interface.go
 * @Description: 压测报告存储接口与制品定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/kamalyes/go-perf/types"
)

// 报告制品名称 - 五个制品各自独立序列化与读取
const (
	ArtifactMeta     = "meta"
	ArtifactConfig   = "config"
	ArtifactStats    = "stats"
	ArtifactHistory  = "history"
	ArtifactAnalysis = "analysis"
)

// Artifacts 全部制品名称（固定顺序）
var Artifacts = []string{ArtifactMeta, ArtifactConfig, ArtifactStats, ArtifactHistory, ArtifactAnalysis}

// Store 压测报告存储接口
// Get 在记录不存在时返回 (nil, nil)；Delete 对不存在的记录静默成功
type Store interface {
	Save(bundle *types.ReportBundle) error
	List() ([]types.ReportMeta, error)
	Get(testID string) (*types.ReportBundle, error)
	Delete(testID string) error
	Close() error
}

// marshalArtifacts 将报告拆为制品字节流，单个制品序列化失败不影响其余制品
// analysis 为空时不产出对应制品
func marshalArtifacts(bundle *types.ReportBundle) (map[string][]byte, error) {
	if bundle == nil || bundle.Meta == nil || bundle.Meta.TestID == "" {
		return nil, fmt.Errorf("报告缺少元信息, 无法存储")
	}

	values := map[string]interface{}{
		ArtifactMeta:    bundle.Meta,
		ArtifactConfig:  bundle.Config,
		ArtifactStats:   bundle.Stats,
		ArtifactHistory: bundle.History,
	}
	if bundle.Analysis != nil {
		values[ArtifactAnalysis] = bundle.Analysis
	}

	out := make(map[string][]byte, len(values))
	var firstErr error
	for name, v := range values {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("序列化制品 %s 失败: %w", name, err)
			}
			continue
		}
		out[name] = data
	}
	return out, firstErr
}

// applyArtifact 将一个制品字节流填回报告，未知制品名被忽略
func applyArtifact(bundle *types.ReportBundle, name string, data []byte) error {
	switch name {
	case ArtifactMeta:
		bundle.Meta = &types.ReportMeta{}
		return json.Unmarshal(data, bundle.Meta)
	case ArtifactConfig:
		bundle.Config = &types.StartRequest{}
		return json.Unmarshal(data, bundle.Config)
	case ArtifactStats:
		bundle.Stats = &types.SummaryStats{}
		return json.Unmarshal(data, bundle.Stats)
	case ArtifactHistory:
		return json.Unmarshal(data, &bundle.History)
	case ArtifactAnalysis:
		bundle.Analysis = &types.Analysis{}
		return json.Unmarshal(data, bundle.Analysis)
	}
	return nil
}

// sortMetasDesc 按开始时间倒序排列（最新的在前）
func sortMetasDesc(metas []types.ReportMeta) {
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].StartTime > metas[j].StartTime
	})
}
