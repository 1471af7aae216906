/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-02-10 00:00:00
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-02-10 00:00:00
 * @FilePath: \go-perf\types\profile.go
 * @Description: 压测模型与目标配置类型定义
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package types

import "fmt"

// ProfileType 压测模型类型
type ProfileType string

const (
	// ProfileFatigue 疲劳模型 - 固定并发持续压测
	ProfileFatigue ProfileType = "FATIGUE"

	// ProfileStep 阶梯模型 - 并发逐级递增直到最大值
	ProfileStep ProfileType = "STEP"
)

// ProfileType 实现 flag.Value 接口
func (p *ProfileType) String() string {
	if p == nil {
		return string(ProfileFatigue)
	}
	return string(*p)
}

func (p *ProfileType) Set(value string) error {
	switch ProfileType(value) {
	case ProfileFatigue, ProfileStep:
		*p = ProfileType(value)
		return nil
	default:
		return fmt.Errorf("不支持的压测模型: %s (支持: %s, %s)", value, ProfileFatigue, ProfileStep)
	}
}

// TargetConfig 目标服务配置（整个压测周期内不可变）
type TargetConfig struct {
	AppID             string `json:"app_id" yaml:"app_id"`
	InputPrompt       string `json:"input_prompt" yaml:"input_prompt"`
	UseCustomizeWhite bool   `json:"use_customize_white" yaml:"use_customize_white"`
	UseCustomizeWords bool   `json:"use_customize_words" yaml:"use_customize_words"`
	UseCustomizeRule  bool   `json:"use_customize_rule" yaml:"use_customize_rule"`
	UseVipBlack       bool   `json:"use_vip_black" yaml:"use_vip_black"`
	UseVipWhite       bool   `json:"use_vip_white" yaml:"use_vip_white"`

	// Extra 透传字段 - 引擎不解释，原样并入请求体（向前兼容）
	Extra map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Validate 验证目标配置
func (c *TargetConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("目标配置不能为空")
	}
	if c.AppID == "" {
		return fmt.Errorf("app_id 不能为空")
	}
	if c.InputPrompt == "" {
		return fmt.Errorf("input_prompt 不能为空")
	}
	return nil
}

// FatigueConfig 疲劳模型参数
type FatigueConfig struct {
	Concurrency int `json:"concurrency" yaml:"concurrency"` // 并发数
	Duration    int `json:"duration" yaml:"duration"`       // 总时长（秒）
}

// Validate 验证疲劳模型参数
func (c *FatigueConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("疲劳模型参数不能为空")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("并发数必须 >= 1, 当前: %d", c.Concurrency)
	}
	if c.Duration < 10 {
		return fmt.Errorf("压测时长必须 >= 10秒, 当前: %d", c.Duration)
	}
	return nil
}

// StepConfig 阶梯模型参数
type StepConfig struct {
	InitialUsers int `json:"initial_users" yaml:"initial_users"` // 初始并发
	StepSize     int `json:"step_size" yaml:"step_size"`         // 每级增量
	StepDuration int `json:"step_duration" yaml:"step_duration"` // 每级时长（秒）
	MaxUsers     int `json:"max_users" yaml:"max_users"`         // 最大并发
}

// Validate 验证阶梯模型参数
func (c *StepConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("阶梯模型参数不能为空")
	}
	if c.InitialUsers < 1 {
		return fmt.Errorf("初始并发必须 >= 1, 当前: %d", c.InitialUsers)
	}
	if c.StepSize < 1 {
		return fmt.Errorf("每级增量必须 >= 1, 当前: %d", c.StepSize)
	}
	if c.StepDuration < 5 {
		return fmt.Errorf("每级时长必须 >= 5秒, 当前: %d", c.StepDuration)
	}
	if c.MaxUsers < c.InitialUsers {
		return fmt.Errorf("最大并发(%d)不能小于初始并发(%d)", c.MaxUsers, c.InitialUsers)
	}
	return nil
}

// Stages 计算阶梯序列: initial, initial+step, ... <= max
func (c *StepConfig) Stages() []int {
	var stages []int
	for target := c.InitialUsers; target <= c.MaxUsers; target += c.StepSize {
		stages = append(stages, target)
	}
	return stages
}

// StartRequest 压测启动请求
type StartRequest struct {
	TestType      ProfileType    `json:"test_type" yaml:"test_type"`
	TargetConfig  *TargetConfig  `json:"target_config" yaml:"target_config"`
	FatigueConfig *FatigueConfig `json:"fatigue_config,omitempty" yaml:"fatigue_config,omitempty"`
	StepConfig    *StepConfig    `json:"step_config,omitempty" yaml:"step_config,omitempty"`
}

// Validate 验证启动请求（模型类型与对应参数必须匹配）
func (r *StartRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("启动请求不能为空")
	}
	if err := r.TargetConfig.Validate(); err != nil {
		return err
	}

	switch r.TestType {
	case ProfileFatigue:
		return r.FatigueConfig.Validate()
	case ProfileStep:
		return r.StepConfig.Validate()
	default:
		return fmt.Errorf("不支持的压测模型: %s", r.TestType)
	}
}
