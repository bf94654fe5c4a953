package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"selfheal/internal/advisor"
	"selfheal/internal/api"
	"selfheal/internal/config"
	"selfheal/internal/logs"
	"selfheal/internal/metrics"
	"selfheal/internal/state"
	"selfheal/internal/supervisor"
	"selfheal/internal/worker"
)

var (
	configPath string
	duration   time.Duration
	listenAddr string
	noPin      bool
	logLevel   string
	seed       uint64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the control loop for the configured duration",
	Args:  cobra.NoArgs,
	RunE:  runControlLoop,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(c *cobra.Command) {
	c.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults apply when omitted)")
	c.Flags().DurationVarP(&duration, "duration", "d", 0, "Run duration, overrides the config file")
	c.Flags().StringVar(&listenAddr, "listen", "", "Serve the status API on this address, e.g. :8080")
	c.Flags().BoolVar(&noPin, "no-pin", false, "Do not pin workers to CPUs")
	c.Flags().StringVar(&logLevel, "log-level", "", "Minimum log level: DEBUG, INFO, WARN, ERROR")
	c.Flags().Uint64Var(&seed, "seed", 0, "Random seed; 0 picks one from the clock")
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.RunDuration = duration
	}
	if flags.Changed("listen") {
		cfg.ListenAddr = listenAddr
	}
	if flags.Changed("no-pin") {
		cfg.PinCPUs = !noPin
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func runControlLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level, err := logs.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := logs.NewLogger(cfg.LogBuffer, level, logs.WithOutput(out))
	reg := metrics.NewRegistry()
	shared := state.New()

	var opts []supervisor.Option
	if !cfg.PinCPUs {
		opts = append(opts, supervisor.WithoutPinning())
	}
	sup := supervisor.New(shared, cfg.RunDuration, logger, reg, opts...)

	adv := advisor.New(advisor.Thresholds{
		LowHealth:   cfg.Reporter.LowHealthThreshold,
		Corrections: cfg.Reporter.CorrectionThreshold,
		HighHealth:  cfg.Reporter.HighHealthThreshold,
	}, logger, sup.RunID(), advisor.WithPrimaryStatus(func() bool {
		return sup.Registry().Terminated(worker.NamePrimary)
	}))

	runSeed := cfg.Seed
	if runSeed == 0 {
		runSeed = uint64(time.Now().UnixNano())
	}

	// Order fixes the CPU index each worker is pinned to.
	sup.Add(worker.NewPrimary(shared, cfg.Primary, worker.NewRand(runSeed, 0), logger, reg))
	sup.Add(worker.NewDetector(shared, cfg.Detector, worker.NewRand(runSeed, 1), logger, reg))
	sup.Add(worker.NewCorrector(shared, cfg.Corrector, worker.StrategiesFor(cfg.Corrector), logger, reg))
	sup.Add(worker.NewReporter(shared, adv, cfg.Reporter, out, logger, reg))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ListenAddr != "" {
		shutdown, err := serveStatus(cfg.ListenAddr, api.NewHandler(shared, reg, adv, sup.Registry(), logger, sup.RunID()), logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	logger.Info(fmt.Sprintf("run %s seed=%d duration=%s", sup.RunID(), runSeed, cfg.RunDuration))
	return sup.Run(ctx)
}

// serveStatus binds addr synchronously so a bad address fails startup, then
// serves in the background. The returned func shuts the server down.
func serveStatus(addr string, h *api.Handler, logger *logs.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("status listener: %w", err)
	}

	server := &http.Server{
		Handler:           api.RegisterRoutes(http.NewServeMux(), h, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server: " + err.Error())
		}
	}()
	logger.Info("status server listening on " + ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
