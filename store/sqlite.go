/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\store\sqlite.go
 * @Description: SQLite 存储 - 制品按行存储
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/types"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS report_artifacts (
	test_id    TEXT NOT NULL,
	artifact   TEXT NOT NULL,
	payload    BLOB NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (test_id, artifact)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_name ON report_artifacts(artifact);
`

// SQLiteStore SQLite 存储，一行一个制品
type SQLiteStore struct {
	db  *sql.DB
	log logger.ILogger
}

// NewSQLiteStore 打开（或创建）SQLite 数据库
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("打开SQLite数据库失败: %w", err)
	}

	// go-sqlite3 写并发受限, 单连接避免 SQLITE_BUSY
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("设置PRAGMA失败 [%s]: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	return &SQLiteStore{db: db, log: logger.Default}, nil
}

// Save 落库报告，制品逐行独立写入，单行失败不影响其余行
func (s *SQLiteStore) Save(bundle *types.ReportBundle) error {
	artifacts, err := marshalArtifacts(bundle)
	if err != nil && len(artifacts) == 0 {
		return err
	}

	for _, name := range Artifacts {
		data, ok := artifacts[name]
		if !ok {
			continue
		}
		_, wErr := s.db.Exec(
			`INSERT OR REPLACE INTO report_artifacts (test_id, artifact, payload) VALUES (?, ?, ?)`,
			bundle.Meta.TestID, name, data)
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
func (s *SQLiteStore) List() ([]types.ReportMeta, error) {
	rows, err := s.db.Query(
		`SELECT test_id, payload FROM report_artifacts WHERE artifact = ?`, ArtifactMeta)
	if err != nil {
		return nil, fmt.Errorf("查询历史记录失败: %w", err)
	}
	defer rows.Close()

	var metas []types.ReportMeta
	for rows.Next() {
		var testID string
		var payload []byte
		if err := rows.Scan(&testID, &payload); err != nil {
			return nil, fmt.Errorf("读取历史记录行失败: %w", err)
		}
		var meta types.ReportMeta
		if err := json.Unmarshal(payload, &meta); err != nil {
			s.log.Warnf("⚠️ 跳过元信息损坏的记录: %s", testID)
			continue
		}
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortMetasDesc(metas)
	if metas == nil {
		metas = []types.ReportMeta{}
	}
	return metas, nil
}

// Get 读取单条记录，不存在返回 (nil, nil)
func (s *SQLiteStore) Get(testID string) (*types.ReportBundle, error) {
	rows, err := s.db.Query(
		`SELECT artifact, payload FROM report_artifacts WHERE test_id = ?`, testID)
	if err != nil {
		return nil, fmt.Errorf("查询记录失败: %w", err)
	}
	defer rows.Close()

	bundle := &types.ReportBundle{}
	found := false
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("读取制品行失败: %w", err)
		}
		if err := applyArtifact(bundle, name, payload); err != nil {
			s.log.Warnf("⚠️ 制品损坏, 已跳过 [%s/%s]: %v", testID, name, err)
			continue
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}
	return bundle, nil
}

// Delete 删除记录，不存在时静默成功
func (s *SQLiteStore) Delete(testID string) error {
	_, err := s.db.Exec(`DELETE FROM report_artifacts WHERE test_id = ?`, testID)
	return err
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
