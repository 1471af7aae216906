/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\store\file.go
 * @Description: 文件存储 - 每个制品一个 JSON 文件
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/types"
)

// FileStore 文件存储（默认模式）
// 目录结构: <dir>/<testID>/{meta,config,stats,history,analysis}.json
type FileStore struct {
	dir string
	log logger.ILogger
}

// NewFileStore 创建文件存储，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建报告目录失败: %w", err)
	}
	return &FileStore{dir: dir, log: logger.Default}, nil
}

// Save 落盘报告，单个制品写入失败只记日志，不阻止其余制品
func (s *FileStore) Save(bundle *types.ReportBundle) error {
	artifacts, err := marshalArtifacts(bundle)
	if err != nil && len(artifacts) == 0 {
		return err
	}

	testDir := filepath.Join(s.dir, bundle.Meta.TestID)
	if mkErr := os.MkdirAll(testDir, 0755); mkErr != nil {
		return fmt.Errorf("创建报告目录失败: %w", mkErr)
	}

	for _, name := range Artifacts {
		data, ok := artifacts[name]
		if !ok {
			continue
		}
		path := filepath.Join(testDir, name+".json")
		if wErr := os.WriteFile(path, data, 0644); wErr != nil {
			s.log.Errorf("❌ 写入制品失败 [%s/%s]: %v", bundle.Meta.TestID, name, wErr)
			if err == nil {
				err = fmt.Errorf("写入制品 %s 失败: %w", name, wErr)
			}
		}
	}
	return err
}

// List 列出全部历史记录元信息，按开始时间倒序
func (s *FileStore) List() ([]types.ReportMeta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.ReportMeta{}, nil
		}
		return nil, fmt.Errorf("读取报告目录失败: %w", err)
	}

	metas := make([]types.ReportMeta, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, rErr := os.ReadFile(filepath.Join(s.dir, entry.Name(), ArtifactMeta+".json"))
		if rErr != nil {
			s.log.Warnf("⚠️ 跳过无法读取元信息的记录: %s", entry.Name())
			continue
		}
		var meta types.ReportMeta
		if uErr := json.Unmarshal(data, &meta); uErr != nil {
			s.log.Warnf("⚠️ 跳过元信息损坏的记录: %s", entry.Name())
			continue
		}
		metas = append(metas, meta)
	}

	sortMetasDesc(metas)
	return metas, nil
}

// Get 读取单条记录，不存在返回 (nil, nil)；容忍部分制品缺失或损坏
func (s *FileStore) Get(testID string) (*types.ReportBundle, error) {
	testDir := filepath.Join(s.dir, testID)
	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		return nil, nil
	}

	bundle := &types.ReportBundle{}
	found := false
	for _, name := range Artifacts {
		data, err := os.ReadFile(filepath.Join(testDir, name+".json"))
		if err != nil {
			continue
		}
		if err := applyArtifact(bundle, name, data); err != nil {
			s.log.Warnf("⚠️ 制品损坏, 已跳过 [%s/%s]: %v", testID, name, err)
			continue
		}
		found = true
	}

	if !found {
		return nil, nil
	}
	return bundle, nil
}

// Delete 删除记录，不存在时静默成功
func (s *FileStore) Delete(testID string) error {
	return os.RemoveAll(filepath.Join(s.dir, testID))
}

// Close 文件存储无需释放资源
func (s *FileStore) Close() error {
	return nil
}
