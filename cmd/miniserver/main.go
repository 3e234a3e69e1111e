package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Brownie44l1/miniserver/internal/config"
	"github.com/Brownie44l1/miniserver/internal/run"
	"github.com/Brownie44l1/miniserver/internal/server"
	"github.com/Brownie44l1/miniserver/internal/tlog"
)

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	run.Server(cfg.Log(), func(ctx context.Context) error {
		srv := server.New(cfg.Server(), newApp())
		if err := srv.Listen(ctx); err != nil {
			return err
		}
		srv.Banner(os.Stderr)

		err := srv.Run(ctx)
		tlog.Get(ctx).Info("Server stopped", zap.Object("stats", srv.Stats()))
		return err
	})
}
