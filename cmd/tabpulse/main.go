package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"tabpulse/internal/config"
	"tabpulse/internal/logger"
	"tabpulse/internal/notify"
	"tabpulse/internal/storage"
	api "tabpulse/pkg/api"
	"tabpulse/pkg/model"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "tabpulse",
		Short:         "Browser activity tracker that reports domain heartbeats",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "tabpulse.yaml", "config file path")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(settingsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	v       *viper.Viper
	log     logger.Logger
	console *notify.Console
	svc     api.Service
}

func setup() (*app, error) {
	cfg, v, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	l, err := logger.New(logger.Options{Level: cfg.Log.Level, Writer: cfg.Log.Writer, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}
	console := notify.NewConsole(os.Stdout, l)
	svc, err := api.NewService(cfg, l, console)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, v: v, log: l, console: console, svc: svc}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the heartbeat timer and browser watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()

			ctx, cancel := signalContext()
			defer cancel()

			config.Watch(a.v, func(cfg *config.Config, err error) {
				if err != nil {
					a.log.Warn("重新加载配置失败", "error", err)
					return
				}
				if err := a.svc.ApplySeed(ctx, cfg.Settings); err != nil {
					a.log.Warn("应用新配置失败", "error", err)
				}
			})

			watchLockSignals(ctx, a.svc)

			a.log.Info("tabpulse 已启动", "browser", a.cfg.Browser.DevToolsURL, "interval", a.cfg.Tracker.Interval.String())
			if err := a.svc.Run(ctx); err != nil {
				return err
			}
			st := a.svc.Stats()
			a.log.Info("tabpulse 已退出", "cycles", st.Total)
			return nil
		},
	}
}

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single heartbeat cycle and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()

			ctx, cancel := signalContext()
			defer cancel()

			if err := a.svc.PollBrowser(ctx); err != nil {
				a.log.Warn("同步浏览器状态失败", "error", err)
			}
			res := a.svc.RecordHeartbeat(ctx)
			fmt.Printf("result: %s\n", res)
			if ids := a.svc.TabsWithDevtoolsOpen(); len(ids) > 0 {
				fmt.Printf("devtools open: %v\n", ids)
			}
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sign-in state and time logged today",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()

			ctx, cancel := signalContext()
			defer cancel()

			user, ok := a.svc.CheckAuth(ctx)
			if !ok {
				fmt.Println(notify.Badge(model.StateNotSignedIn))
				return nil
			}
			name := user.DisplayName
			if name == "" {
				name = user.Username
			}
			fmt.Printf("%s %s\n", notify.Badge(model.StateAllGood), name)

			if total, ok := a.svc.TotalTimeLoggedToday(ctx); ok {
				fmt.Printf("today: %s\n", total.Text)
			}

			st, err := a.svc.Settings(ctx)
			if err != nil {
				return err
			}
			if !st.LoggingEnabled {
				fmt.Println(notify.Badge(model.StateNotLogging))
			}
			return nil
		},
	}
}

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change runtime settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()

			st, err := a.svc.Settings(cmd.Context())
			if err != nil {
				return err
			}
			kv := map[string]string{
				storage.KeyLoggingEnabled: fmt.Sprint(st.LoggingEnabled),
				storage.KeyLoggingStyle:   string(st.LoggingStyle),
				storage.KeyBlacklist:      st.Blacklist,
				storage.KeyWhitelist:      st.Whitelist,
			}
			keys := make([]string, 0, len(kv))
			for k := range kv {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("%s = %q\n", k, kv[k])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()
			if err := a.svc.UpdateSetting(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s updated\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset [key]",
		Short: "Restore a setting to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.svc.Close()
			if err := a.svc.ResetSetting(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("%s reset\n", args[0])
			return nil
		},
	})

	return cmd
}
