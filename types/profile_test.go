/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-11 00:00:00
 * @FilePath: \go-perf\types\profile_test.go
 * @Description: 压测模型类型测试
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileTypeFlag(t *testing.T) {
	var p ProfileType
	assert.NoError(t, p.Set("FATIGUE"))
	assert.Equal(t, ProfileFatigue, p)
	assert.NoError(t, p.Set("STEP"))
	assert.Equal(t, ProfileStep, p)
	assert.Error(t, p.Set("SPIKE"))
}

func TestStepConfigStages(t *testing.T) {
	t.Run("整除", func(t *testing.T) {
		cfg := &StepConfig{InitialUsers: 1, StepSize: 1, StepDuration: 5, MaxUsers: 3}
		assert.Equal(t, []int{1, 2, 3}, cfg.Stages())
	})

	t.Run("末级不超过上限", func(t *testing.T) {
		cfg := &StepConfig{InitialUsers: 2, StepSize: 3, StepDuration: 5, MaxUsers: 9}
		assert.Equal(t, []int{2, 5, 8}, cfg.Stages())
	})

	t.Run("初始即上限", func(t *testing.T) {
		cfg := &StepConfig{InitialUsers: 5, StepSize: 2, StepDuration: 5, MaxUsers: 5}
		assert.Equal(t, []int{5}, cfg.Stages())
	})
}

func TestStartRequestValidate(t *testing.T) {
	targetCfg := func() *TargetConfig {
		return &TargetConfig{AppID: "app-001", InputPrompt: "测试"}
	}

	t.Run("疲劳模型合法", func(t *testing.T) {
		req := &StartRequest{
			TestType:      ProfileFatigue,
			TargetConfig:  targetCfg(),
			FatigueConfig: &FatigueConfig{Concurrency: 5, Duration: 60},
		}
		assert.NoError(t, req.Validate())
	})

	t.Run("模型参数缺失", func(t *testing.T) {
		req := &StartRequest{TestType: ProfileFatigue, TargetConfig: targetCfg()}
		assert.Error(t, req.Validate())

		req = &StartRequest{TestType: ProfileStep, TargetConfig: targetCfg()}
		assert.Error(t, req.Validate())
	})

	t.Run("目标配置缺失", func(t *testing.T) {
		req := &StartRequest{
			TestType:      ProfileFatigue,
			FatigueConfig: &FatigueConfig{Concurrency: 5, Duration: 60},
		}
		assert.Error(t, req.Validate())
	})

	t.Run("疲劳参数越界", func(t *testing.T) {
		cases := []FatigueConfig{
			{Concurrency: 0, Duration: 60},
			{Concurrency: 5, Duration: 9},
		}
		for _, c := range cases {
			req := &StartRequest{TestType: ProfileFatigue, TargetConfig: targetCfg(), FatigueConfig: &c}
			assert.Error(t, req.Validate())
		}
	})

	t.Run("阶梯参数越界", func(t *testing.T) {
		cases := []StepConfig{
			{InitialUsers: 0, StepSize: 1, StepDuration: 5, MaxUsers: 3},
			{InitialUsers: 1, StepSize: 0, StepDuration: 5, MaxUsers: 3},
			{InitialUsers: 1, StepSize: 1, StepDuration: 4, MaxUsers: 3},
			{InitialUsers: 5, StepSize: 1, StepDuration: 5, MaxUsers: 3},
		}
		for _, c := range cases {
			req := &StartRequest{TestType: ProfileStep, TargetConfig: targetCfg(), StepConfig: &c}
			assert.Error(t, req.Validate())
		}
	})

	t.Run("未知模型", func(t *testing.T) {
		req := &StartRequest{TestType: ProfileType("SPIKE"), TargetConfig: targetCfg()}
		assert.Error(t, req.Validate())
	})
}
