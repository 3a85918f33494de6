//go:build windows

package main

import (
	"context"

	api "tabpulse/pkg/api"
)

// watchLockSignals Windows 没有 SIGUSR1/SIGUSR2，锁屏状态只能通过 api.Service.SetLocked 设置
func watchLockSignals(context.Context, api.Service) {}
