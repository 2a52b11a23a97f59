// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package main is the entry point for the mailbox monitor CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/similigh/mailbox-monitor/cmd/mailbox-monitor/commands"
	"github.com/similigh/mailbox-monitor/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, tui.Status(false, err.Error()))
		os.Exit(1)
	}
}
