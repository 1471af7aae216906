/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\store\badger.go
 * @Description: BadgerDB 存储 - 制品按键存储
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"encoding/json"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/types"
)

// 键格式: report/<testID>/<artifact>
const badgerKeyPrefix = "report/"

// BadgerStore BadgerDB 存储，纯 Go 的 LSM-Tree 引擎
type BadgerStore struct {
	db  *badger.DB
	log logger.ILogger
}

// NewBadgerStore 打开（或创建）BadgerDB
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}
	return &BadgerStore{db: db, log: logger.Default}, nil
}

func badgerKey(testID, artifact string) []byte {
	return []byte(badgerKeyPrefix + testID + "/" + artifact)
}

// Save 写入报告，制品逐键独立提交，单键失败不影响其余键
func (s *BadgerStore) Save(bundle *types.ReportBundle) error {
	artifacts, err := marshalArtifacts(bundle)
	if err != nil && len(artifacts) == 0 {
		return err
	}

	for _, name := range Artifacts {
		data, ok := artifacts[name]
		if !ok {
			continue
		}
		wErr := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(badgerKey(bundle.Meta.TestID, name), data)
		})
		if wErr != nil {
			s.log.Errorf("❌ 写入制品失败 [%s/%s]: %v", bundle.Meta.TestID, name, wErr)
			if err == nil {
				err = fmt.Errorf("写入制品 %s 失败: %w", name, wErr)
			}
		}
	}
	return err
}

// List 列出全部历史记录元信息，按开始时间倒序
func (s *BadgerStore) List() ([]types.ReportMeta, error) {
	metas := []types.ReportMeta{}
	suffix := "/" + ArtifactMeta

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			if err := item.Value(func(val []byte) error {
				var meta types.ReportMeta
				if uErr := json.Unmarshal(val, &meta); uErr != nil {
					s.log.Warnf("⚠️ 跳过元信息损坏的记录: %s", key)
					return nil
				}
				metas = append(metas, meta)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历历史记录失败: %w", err)
	}

	sortMetasDesc(metas)
	return metas, nil
}

// Get 读取单条记录，不存在返回 (nil, nil)
func (s *BadgerStore) Get(testID string) (*types.ReportBundle, error) {
	bundle := &types.ReportBundle{}
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		for _, name := range Artifacts {
			item, gErr := txn.Get(badgerKey(testID, name))
			if gErr == badger.ErrKeyNotFound {
				continue
			}
			if gErr != nil {
				return gErr
			}
			if vErr := item.Value(func(val []byte) error {
				if aErr := applyArtifact(bundle, name, val); aErr != nil {
					s.log.Warnf("⚠️ 制品损坏, 已跳过 [%s/%s]: %v", testID, name, aErr)
					return nil
				}
				found = true
				return nil
			}); vErr != nil {
				return vErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("读取记录失败: %w", err)
	}

	if !found {
		return nil, nil
	}
	return bundle, nil
}

// Delete 删除记录的全部制品键，不存在时静默成功
func (s *BadgerStore) Delete(testID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, name := range Artifacts {
			if err := txn.Delete(badgerKey(testID, name)); err != nil && err != badger.ErrKeyNotFound {
				return err
			}
		}
		return nil
	})
}

// Close 关闭数据库
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
