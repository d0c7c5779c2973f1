package model

import "errors"

var (
	// ErrInvalidEventPayload 通知缺少设备 ID，丢弃该事件
	ErrInvalidEventPayload = errors.New("invalid event payload")
	// ErrSubscriptionFailed 无法向通知源注册，启动失败
	ErrSubscriptionFailed = errors.New("subscription failed")
	// ErrLaunchFailed 命令无法启动，继续监听
	ErrLaunchFailed = errors.New("launch failed")
)
