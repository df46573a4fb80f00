package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prefsync/prefsync/internal/client"
	"github.com/prefsync/prefsync/internal/client/config"
	"github.com/prefsync/prefsync/internal/utils"
	"github.com/prefsync/prefsync/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "prefsyncd",
	Short:   "PrefSync settings sync daemon",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		// The daemon logs to stdout and the log file, CLI subcommands only
		// to stdout.
		closeLog, err := setupFileLogging()
		if err != nil {
			return err
		}
		defer closeLog()

		slog.Info("prefsyncd", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

		cfg := &config.Config{
			Path:         viper.ConfigFileUsed(),
			StateDir:     viper.GetString("state_dir"),
			EngineURL:    viper.GetString("engine_url"),
			AccessToken:  viper.GetString("access_token"),
			RefreshToken: viper.GetString("refresh_token"),
			DaemonAddr:   viper.GetString("daemon_addr"),
			DaemonURL:    viper.GetString("daemon_url"),
			DaemonToken:  viper.GetString("daemon_token"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		daemon, err := client.NewDaemon(cfg, &client.ControlPlaneConfig{
			Addr:      cfg.DaemonAddr,
			AuthToken: cfg.DaemonToken,
		})
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		if err := daemon.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("daemon start", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("statedir", "d", config.DefaultStateDir, "PrefSync state directory")
	rootCmd.Flags().StringP("engine", "e", config.DefaultEngineURL, "Sync engine URL")
	rootCmd.Flags().StringP("http-addr", "a", config.DefaultDaemonAddr, "Address to bind the control plane server")
	rootCmd.Flags().StringP("http-token", "t", "", "Access token for the control plane server")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "PrefSync config file")
}

func main() {
	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	slog.SetDefault(slog.New(stdoutHandler))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setupFileLogging fans slog out to stdout and the daemon log file.
func setupFileLogging() (func(), error) {
	// TODO log rotation
	logFile := config.DefaultLogFilePath

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})

	logInterceptor := utils.NewLogInterceptor(file)
	fileHandler := slog.NewTextHandler(logInterceptor, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		// Drop the time attribute, the interceptor stamps each line itself.
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))

	return func() { file.Close() }, nil
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flags().Lookup("config") != nil && cmd.Flags().Changed("config") {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".prefsync"))
		viper.AddConfigPath(filepath.Join(home, ".config/prefsync"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Root flags feed the daemon config; subcommands read daemon_url/token.
	if f := cmd.Flags().Lookup("statedir"); f != nil {
		viper.BindPFlag("state_dir", f)
	}
	if f := cmd.Flags().Lookup("engine"); f != nil {
		viper.BindPFlag("engine_url", f)
	}
	if f := cmd.Flags().Lookup("http-addr"); f != nil {
		viper.BindPFlag("daemon_addr", f)
	}
	if f := cmd.Flags().Lookup("http-token"); f != nil {
		viper.BindPFlag("daemon_token", f)
	}

	viper.SetEnvPrefix("PREFSYNC")
	viper.AutomaticEnv()

	return nil
}
