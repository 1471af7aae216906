/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\server\server.go
 * @Description: 压测控制面 HTTP 服务
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kamalyes/go-perf/engine"
	"github.com/kamalyes/go-perf/logger"
	"github.com/kamalyes/go-perf/types"
)

// Server 压测控制面服务
type Server struct {
	engine     *engine.Engine
	log        logger.ILogger
	mux        *http.ServeMux
	httpServer *http.Server
}

// NewServer 创建控制面服务
func NewServer(e *engine.Engine, port int) *Server {
	s := &Server{
		engine: e,
		log:    logger.Default,
		mux:    http.NewServeMux(),
	}
	s.routes()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/performance/dry-run", s.handleDryRun)
	s.mux.HandleFunc("POST /api/performance/start", s.handleStart)
	s.mux.HandleFunc("POST /api/performance/stop", s.handleStop)
	s.mux.HandleFunc("GET /api/performance/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/performance/history", s.handleHistoryList)
	s.mux.HandleFunc("GET /api/performance/history/{id}", s.handleHistoryGet)
	s.mux.HandleFunc("DELETE /api/performance/history/{id}", s.handleHistoryDelete)
	s.mux.HandleFunc("GET /api/performance/stream", s.handleStream)
}

// Handler 暴露路由（测试用）
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run 阻塞运行服务
func (s *Server) Run() error {
	s.log.Infof("🌐 控制面服务启动, 监听 %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleDryRun(w http.ResponseWriter, r *http.Request) {
	var targetCfg types.TargetConfig
	if err := json.NewDecoder(r.Body).Decode(&targetCfg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("请求体解析失败: %w", err))
		return
	}

	resp, err := s.engine.DryRun(r.Context(), &targetCfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req types.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("请求体解析失败: %w", err))
		return
	}

	testID, err := s.engine.Start(&req)
	if err != nil {
		if errors.Is(err, engine.ErrTestRunning) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"test_id": testID,
		"message": "压测已启动",
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "停止信号已下发"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	metas, err := s.engine.Store().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")
	bundle, err := s.engine.Store().Get(testID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if bundle == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("历史记录不存在: %s", testID))
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	testID := r.PathValue("id")
	if err := s.engine.Store().Delete(testID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "已删除", "test_id": testID})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]interface{}{"error": err.Error()})
}
