package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/initmaster/USBPlugEvent/internal/config"
	"github.com/initmaster/USBPlugEvent/internal/launcher"
	"github.com/initmaster/USBPlugEvent/internal/listener"
	"github.com/initmaster/USBPlugEvent/internal/metrics"
	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/pipeline"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"github.com/initmaster/USBPlugEvent/internal/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var errUsage = errors.New(`expected exactly two parameters: "device_id" "cmd_to_launch"`)

type options struct {
	list        bool
	feed        bool
	onInsert    bool
	onRemove    bool
	configFile  string
	logLevel    string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   `usbplugevent [-l] [-d] [-i] [-r] "device_id" "cmd_to_launch"`,
		Short: "Launch a command when a specific USB device is inserted or removed",
		Long: `Listens for USB device insert/remove notifications and launches a command
through the system shell when the device with the given id changes state.

The command line is passed to the shell unmodified and runs with the
privileges of this process.`,
		Example: `  usbplugevent -r "USB\VID_056D&PID_C07E\4687336F3936" "notify-send 'the specified device was removed'"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.list, "list", "l", false, "List all currently connected USB devices.")
	flags.BoolVarP(&opts.feed, "diagnostic", "d", false, "Listen to Inserted/Removed USB devices.")
	flags.BoolVarP(&opts.onInsert, "insert", "i", false, "Launch the command on insert only.")
	flags.BoolVarP(&opts.onRemove, "remove", "r", false, "Launch the command on remove only.")
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file.")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error).")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address.")
	return cmd
}

func run(cmd *cobra.Command, opts options, args []string) error {
	if !opts.list && !opts.feed && len(args) == 0 {
		return cmd.Help()
	}
	if !opts.list && !opts.feed && len(args) != 2 {
		return errUsage
	}

	cfg, err := loadConfig(opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	devWatcher := watcher.New(sysutil.Log)
	out := cmd.OutOrStdout()

	if opts.list {
		devices, err := devWatcher.List()
		if err != nil {
			return err
		}
		return pipeline.WriteList(out, devices, sysutil.Log)
	}

	// 捕获操作系统信号，代替托盘的 Exit
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.feed {
		return runFeed(ctx, out, devWatcher)
	}
	return runWatch(ctx, cfg, config.NewListenerConfig(args[0], args[1], opts.onInsert, opts.onRemove), devWatcher)
}

// loadConfig 先用默认日志配置，读取配置文件时的警告才不会丢失
func loadConfig(opts options, logOut io.Writer) (*config.Config, error) {
	defaults := config.DefaultConfig()
	if err := sysutil.InitLogger(defaults.Logging.Level, defaults.Logging.Format, logOut); err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(opts.configFile, opts.logLevel, opts.metricsAddr)
	if err != nil {
		return nil, err
	}
	if err := sysutil.InitLogger(cfg.Logging.Level, cfg.Logging.Format, logOut); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runFeed 两个方向都打印，不启动命令
func runFeed(ctx context.Context, out io.Writer, devWatcher watcher.DeviceWatcher) error {
	fmt.Fprintf(out, "\n%s\n", pipeline.FeedHeader)
	feed := pipeline.New(pipeline.NewPrintMode(out), sysutil.Log, nil)
	lc := model.ListenerConfig{WatchInsert: true, WatchRemove: true}
	return listener.New(devWatcher, lc, feed, sysutil.Log, nil).Run(ctx)
}

func runWatch(ctx context.Context, cfg *config.Config, lc model.ListenerConfig, devWatcher watcher.DeviceWatcher) error {
	var stats *metrics.Metrics
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector())
		stats = metrics.New(reg)
	}

	launch := launcher.New(cfg.Launcher.Shell, sysutil.Log)
	dispatch := pipeline.New(pipeline.LaunchMode{Config: lc, Launcher: launch}, sysutil.Log, stats)
	manager := listener.New(devWatcher, lc, dispatch, sysutil.Log, stats)

	sysutil.Log.Info("🛡️ USB listener starting",
		zap.String("device", lc.TargetDeviceID),
		zap.Bool("insert", lc.WatchInsert),
		zap.Bool("remove", lc.WatchRemove),
		zap.String("shell", launch.Shell()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(gctx)
	})
	if cfg.Metrics.Enabled {
		handler := metrics.NewRouter(cfg.Metrics.Path, reg, func() (string, bool) {
			s := manager.State()
			return s.String(), s == listener.Running
		})
		g.Go(func() error {
			sysutil.Log.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
			return metrics.Serve(gctx, cfg.Metrics.Addr, handler)
		})
	}

	if err := g.Wait(); err != nil {
		sysutil.Log.Error("Listener failed", zap.Error(err))
		return err
	}
	sysutil.Log.Info("Shutting down...")
	return nil
}
