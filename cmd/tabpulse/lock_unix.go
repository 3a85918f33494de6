//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	api "tabpulse/pkg/api"
)

// watchLockSignals SIGUSR1 表示锁屏，SIGUSR2 表示解锁，供 xss-lock 等锁屏钩子调用
func watchLockSignals(ctx context.Context, svc api.Service) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-ch:
				svc.SetLocked(sig == syscall.SIGUSR1)
			}
		}
	}()
}
