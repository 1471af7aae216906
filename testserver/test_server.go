/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\testserver\test_server.go
 * @Description: 模拟护栏服务 - 本地联调用的压测目标
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/kamalyes/go-perf/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	port      = flag.Int("port", 8000, "监听端口")
	baseDelay = flag.Duration("latency", 50*time.Millisecond, "基础响应延迟")
	jitter    = flag.Duration("jitter", 30*time.Millisecond, "延迟抖动上限")
	errorRate = flag.Float64("error-rate", 0.0, "错误注入比例 (0.0-1.0)")
)

var log = logger.Default

// ruleRunHandler 模拟规则执行接口
// 延迟 = 基础延迟 + [0, jitter) 随机抖动; 按 error-rate 概率返回 500
func ruleRunHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"请求体解析失败"}`, http.StatusBadRequest)
		return
	}

	delay := *baseDelay
	if *jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(*jitter)))
	}
	time.Sleep(delay)

	if *errorRate > 0 && rand.Float64() < *errorRate {
		http.Error(w, `{"error":"注入的模拟故障"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"request_id": body["request_id"],
		"app_id":     body["app_id"],
		"suggestion": "pass",
		"score":      rand.Float64() * 0.3,
		"latency_ms": delay.Milliseconds(),
	})
}

// metricsHandler 返回宿主机负载, 便于观察压测对目标机器的影响
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		result["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		result["mem_percent"] = vm.UsedPercent
		result["mem_used"] = vm.Used
		result["mem_total"] = vm.Total
	}
	if avg, err := load.Avg(); err == nil {
		result["load1"] = avg.Load1
		result["load5"] = avg.Load5
		result["load15"] = avg.Load15
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(result)
}

func main() {
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/input/instance/rule/run", ruleRunHandler)
	mux.HandleFunc("GET /metrics", metricsHandler)

	addr := fmt.Sprintf(":%d", *port)
	log.Infof("🎯 模拟护栏服务启动 %s 延迟=%v±%v 错误率=%.2f%%",
		addr, *baseDelay, *jitter, *errorRate*100)

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("❌ 服务退出: %v", err)
	}
}
