package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/synheart/synheart-monitor/internal/alert"
	"github.com/synheart/synheart-monitor/internal/config"
	"github.com/synheart/synheart-monitor/internal/encoding"
	"github.com/synheart/synheart-monitor/internal/monitor"
	"github.com/synheart/synheart-monitor/internal/rhythm"
	"github.com/synheart/synheart-monitor/internal/transport"
)

var (
	startHost     string
	startPort     int
	startSSEPort  int
	startRhythm   string
	startDuration string
	startTick     time.Duration
	startSeed     int64
	startEncoding string
	startNoAlarm  bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the monitor and its display feeds",
	Long: `Starts the simulation and serves display frames over WebSocket and SSE.
WebSocket clients may also send commands to select a rhythm or enter
manual values.`,
	RunE: runStart,
}

func init() {
	defaults := config.Default()
	startCmd.Flags().StringVar(&startHost, "host", defaults.Server.Host, "Host to bind to")
	startCmd.Flags().IntVar(&startPort, "port", defaults.Server.Port, "WebSocket port")
	startCmd.Flags().IntVar(&startSSEPort, "sse-port", defaults.Server.SSEPort, "SSE port")
	startCmd.Flags().StringVar(&startRhythm, "rhythm", defaults.Monitor.Rhythm, "Initial rhythm")
	startCmd.Flags().StringVar(&startDuration, "duration", "", "Duration to run (e.g., 5m, 1h)")
	startCmd.Flags().DurationVar(&startTick, "tick", defaults.Monitor.TickInterval, "Simulation tick interval")
	startCmd.Flags().Int64Var(&startSeed, "seed", 0, "Random seed for deterministic output (0 picks one)")
	startCmd.Flags().StringVar(&startEncoding, "encoding", defaults.Server.Encoding, "Frame encoding: json|protobuf")
	startCmd.Flags().BoolVar(&startNoAlarm, "no-alarm", false, "Silence the terminal bell")
}

func applyStartFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = startHost
	}
	if flags.Changed("port") {
		cfg.Server.Port = startPort
	}
	if flags.Changed("sse-port") {
		cfg.Server.SSEPort = startSSEPort
	}
	if flags.Changed("rhythm") {
		cfg.Monitor.Rhythm = startRhythm
	}
	if flags.Changed("tick") {
		cfg.Monitor.TickInterval = startTick
	}
	if flags.Changed("seed") {
		cfg.Monitor.Seed = startSeed
	}
	if flags.Changed("encoding") {
		cfg.Server.Encoding = startEncoding
	}
	if startNoAlarm {
		cfg.Alarm.Enabled = false
	}
	return cfg.Validate()
}

// monitorOptions translates the config into monitor options
func monitorOptions(cfg *config.Config, table *rhythm.Table, log *zap.Logger) (monitor.Options, error) {
	id, err := rhythm.Parse(cfg.Monitor.Rhythm)
	if err != nil {
		return monitor.Options{}, err
	}
	return monitor.Options{
		Table:           table,
		Rhythm:          id,
		Seed:            cfg.Monitor.Seed,
		VariationFactor: cfg.Monitor.VariationFactor,
		TickInterval:    cfg.Monitor.TickInterval,
		FrameInterval:   cfg.Monitor.FrameInterval,
		ReviewInterval:  cfg.Monitor.ReviewInterval,
		ReviewSize:      cfg.Monitor.ReviewSize,
		SampleRate:      cfg.Monitor.SampleRate,
		Log:             log,
	}, nil
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyStartFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	opts, err := monitorOptions(cfg, table, logger)
	if err != nil {
		return err
	}
	if cfg.Alarm.Enabled {
		opts.Alarm = alert.NewBell(os.Stdout, cfg.Alarm.Period, cfg.Alarm.Throttle, logger.Named("alarm"))
	}

	m, err := monitor.New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if startDuration != "" {
		d, err := time.ParseDuration(startDuration)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received interrupt signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	format, err := encoding.ParseFormat(cfg.Server.Encoding)
	if err != nil {
		return err
	}
	encoder := encoding.NewEncoder(format)
	// a lagging display keeps up to two seconds of trace
	fanout := transport.NewFanout(m.Frames(), int(2*cfg.Monitor.SampleRate), logger.Named("fanout"))
	wsFeed, detachWS := fanout.Attach()
	defer detachWS()
	sseFeed, detachSSE := fanout.Attach()
	defer detachSSE()
	wsServer := transport.NewWebSocketServer(cfg.Server.Host, cfg.Server.Port, encoder, m, logger.Named("websocket"))
	sse := transport.NewSSEServer(cfg.Server.Host, cfg.Server.SSEPort, encoder, logger.Named("sse"))

	serverErr := make(chan error, 2)
	go func() { serverErr <- wsServer.Start(ctx) }()
	go func() { serverErr <- sse.Start(ctx) }()

	go func() { wsServer.BroadcastFromChannel(ctx, wsFeed) }()
	go func() { sse.BroadcastFromChannel(ctx, sseFeed) }()
	go fanout.Run(ctx)

	session := m.Session()
	fmt.Printf("Synheart Monitor Started\n\n")
	fmt.Printf("Rhythm:       %s\n", m.Store().Snapshot().Rhythm)
	fmt.Printf("Run ID:       %s\n", session.RunID)
	fmt.Printf("Seed:         %d\n", session.Seed)
	fmt.Printf("WebSocket:    %s\n", wsServer.GetAddress())
	fmt.Printf("SSE:          %s\n", sse.GetAddress())
	fmt.Printf("Encoding:     %s\n\n", cfg.Server.Encoding)

	monitorDone := make(chan error, 1)
	go func() { monitorDone <- m.Run(ctx) }()

	var runErr error
	select {
	case err := <-serverErr:
		// a server that stops before ctx is done failed to listen
		if err != nil && ctx.Err() == nil {
			runErr = err
		}
		cancel()
	case <-ctx.Done():
	}
	if err := <-monitorDone; err != nil && !errors.Is(err, context.Canceled) {
		runErr = err
	}

	fmt.Println("\nShutdown complete")
	return runErr
}
