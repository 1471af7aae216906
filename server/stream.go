/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\server\stream.go
 * @Description: WebSocket 实时状态推送
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// PushInterval 状态推送周期
const PushInterval = time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 控制面与前端跨端口部署, 放开同源限制
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream WebSocket 状态流
// 每秒推送一次状态文档（与 GET /status 相同结构）, 客户端断开即结束
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("⚠️ WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	s.log.Infof("🔌 状态流客户端接入: %s", conn.RemoteAddr())

	// 读协程只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(PushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			s.log.Infof("🔌 状态流客户端断开: %s", conn.RemoteAddr())
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(s.engine.Status()); err != nil {
				s.log.Warnf("⚠️ 状态推送失败, 关闭连接: %v", err)
				return
			}
		}
	}
}
