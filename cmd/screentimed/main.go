// Package main is the CLI entry point for screentimed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/konchunas/screen-time-daemon/internal/daemon"
	"github.com/konchunas/screen-time-daemon/internal/infra"
	"github.com/konchunas/screen-time-daemon/internal/policy"
	"github.com/konchunas/screen-time-daemon/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

const (
	daemonLogName      = "screentimed.log"
	daemonErrorLogName = "screentimed.error.log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "screentimed",
	Short: "Desktop activity logger - records which application you use",
	Long: `screentimed samples the focused application every few seconds and
appends time frames to a per-day CSV log under ~/.screen-time.
Each record is "name;start;end" with unix timestamps; staying in the
same application extends the last record instead of adding a new one.`,
	Version: Version,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the logger in the background",
	Long: `Spawns the sampling daemon detached from this terminal.
The daemon keeps running after logout of the shell and is stopped
with 'screentimed stop'.`,
	RunE: runStart,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the logger in the foreground",
	Long: `Runs the sampling loop in the current process. This is what
'screentimed start' spawns; running it directly is useful under a
process supervisor or for debugging.`,
	RunE: runRun,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running logger",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the logger is running and where it writes",
	RunE:  runStatus,
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Observe the focused application once and print it",
	Long:  `Takes a single focus sample without writing anything. Useful to check what identifier an application reports.`,
	RunE:  runSample,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var jsonOutput bool

func init() {
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(versionCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	dir, err := infra.EnsureStorageDir()
	if err != nil {
		return err
	}

	pidFile := infra.NewPIDFile(dir)
	if alive, pid := pidFile.Alive(); alive {
		fmt.Printf("screentimed is already running (PID %d)\n", pid)
		return nil
	}

	pid, err := daemon.SpawnDetached()
	if err != nil {
		return fmt.Errorf("failed to spawn daemon: %w", err)
	}

	// Give the child a moment to come up and write its pid file
	time.Sleep(500 * time.Millisecond)

	fmt.Println("\n=== screentimed started ===")
	fmt.Printf("PID: %d\n", pid)
	fmt.Printf("Storage: %s\n", dir)
	fmt.Printf("Log: %s\n", filepath.Join(dir, daemonLogName))
	if alive, _ := pidFile.Alive(); !alive {
		fmt.Println("Warning: the daemon has not confirmed startup yet, check the log")
	}
	fmt.Println("===========================")

	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	dir, err := infra.EnsureStorageDir()
	if err != nil {
		return err
	}

	logger := createLogger(dir)
	defer func() { _ = logger.Sync() }()

	pidFile := infra.NewPIDFile(dir)
	if alive, pid := pidFile.Alive(); alive {
		return fmt.Errorf("screentimed is already running (PID %d)", pid)
	}
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() { _ = pidFile.Remove() }()

	logger.Info("screentimed starting",
		zap.String("version", Version),
		zap.Int("pid", os.Getpid()),
		zap.String("storage", dir))

	retention := infra.NewRetention(dir, logger)
	if removed, err := retention.Sweep(time.Now()); err != nil {
		logger.Warn("startup retention sweep failed", zap.Error(err))
	} else if len(removed) > 0 {
		logger.Info("startup retention sweep completed", zap.Int("removed", len(removed)))
	}

	writer, err := infra.OpenFrameLog(dir, time.Now(), logger)
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	appInfo, err := infra.OpenAppInfo(dir, logger)
	if err != nil {
		return err
	}

	sampler, resolver := infra.NewSampler(logger)
	if closer, ok := sampler.(io.Closer); ok {
		defer closer.Close()
	}

	config := daemon.DefaultTrackerConfig()
	recorder := usecase.NewRecorder(
		sampler,
		resolver,
		writer,
		appInfo,
		policy.DefaultIgnoreList(),
		config.GapTolerance,
		logger,
	)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	tracker := daemon.NewTracker(config, recorder, writer, retention, logger)
	if err := tracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("screentimed stopped")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	dir, err := infra.StorageDir()
	if err != nil {
		return err
	}

	pidFile := infra.NewPIDFile(dir)
	alive, pid := pidFile.Alive()
	if !alive {
		fmt.Println("screentimed is not running")
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop PID %d: %w", pid, err)
	}

	fmt.Printf("Sent SIGTERM to screentimed (PID %d)\n", pid)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir, err := infra.StorageDir()
	if err != nil {
		return err
	}

	fmt.Println("\n=== screentimed status ===")

	pidFile := infra.NewPIDFile(dir)
	if alive, pid := pidFile.Alive(); alive {
		fmt.Printf("Status: RUNNING (PID %d)\n", pid)
	} else {
		fmt.Println("Status: NOT RUNNING")
	}

	fmt.Printf("Storage: %s\n", dir)

	cursor, err := infra.ReadCursor(dir)
	switch {
	case err != nil:
		fmt.Printf("Current log: unreadable cursor (%v)\n", err)
	case cursor == nil:
		fmt.Println("Current log: none (nothing recorded yet)")
	default:
		fmt.Printf("Current log: %s\n", cursor.File)
		if cursor.EndLength > 0 {
			fmt.Printf("Open record: end field at offset %d\n", cursor.EndOffset)
		} else {
			fmt.Println("Open record: none")
		}
	}

	fmt.Println("==========================")
	return nil
}

func runSample(cmd *cobra.Command, args []string) error {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	sampler, resolver := infra.NewSampler(logger)
	if closer, ok := sampler.(io.Closer); ok {
		defer closer.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	obs, err := sampler.FocusedApp(ctx)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	fmt.Printf("Focused application: %s\n", obs.App)
	if obs.WindowID != "" {
		fmt.Printf("Window: %s\n", obs.WindowID)
	}
	if policy.DefaultIgnoreList().Ignored(obs.App) {
		fmt.Println("Note: this identifier is ignored and would not be logged")
	}

	if obs.WindowID != "" {
		if path, err := resolver.DesktopPath(ctx, obs.WindowID); err == nil {
			fmt.Printf("Desktop entry: %s\n", path)
		}
	}

	return nil
}

func createLogger(dir string) *zap.Logger {
	config := zap.NewProductionConfig()
	// The spawned daemon's stderr is the null device, so this only shows
	// up when running in the foreground.
	config.OutputPaths = []string{filepath.Join(dir, daemonLogName), "stderr"}
	config.ErrorOutputPaths = []string{filepath.Join(dir, daemonErrorLogName), "stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("screentimed %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
