// Package main provides the entry point for tracklink, the device daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yndnr/tracklink-go/internal/core/service"
	"github.com/yndnr/tracklink-go/internal/device/config"
	"github.com/yndnr/tracklink-go/internal/device/indicator"
	"github.com/yndnr/tracklink-go/internal/infra/buildinfo"
	"github.com/yndnr/tracklink-go/internal/infra/confloader"
	"github.com/yndnr/tracklink-go/internal/infra/shutdown"
	"github.com/yndnr/tracklink-go/internal/storage"
	"github.com/yndnr/tracklink-go/internal/supervisor"
	"github.com/yndnr/tracklink-go/internal/telemetry/logger"
	"github.com/yndnr/tracklink-go/internal/telemetry/metric"
	"github.com/yndnr/tracklink-go/internal/transport"
)

// shutdownTimeout bounds the shutdown hooks, including the final hangup.
const shutdownTimeout = 15 * time.Second

var errNoModem = errors.New("no modem driver is built in; run with --simulate")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile     = flag.String("config", "", "Path to configuration file")
		simulate       = flag.Bool("simulate", false, "Run against the in-memory modem simulator")
		simulateSecret = flag.String("simulate-secret", "", "Secret the simulated controller answers pairing requests with")
		showVersion    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tracklink %s\n", buildinfo.String())
		return nil
	}

	cfg, loader, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	bootID := logger.NewBootID()
	log = log.With("boot_id", bootID)
	logger.SetDefault(log)

	log.Info("starting tracklink",
		"version", buildinfo.Get().Version,
		"config", *configFile,
		"simulate", *simulate)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	modem, err := openModem(cfg, *simulate, *simulateSecret)
	if err != nil {
		return err
	}

	metrics := metric.NewRegistry()
	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	ctx := logger.WithBootID(logger.WithLogger(shutdownHandler.Context(), log), bootID)

	// Transport
	guard := transport.NewGuard(modem, transport.GuardConfig{
		SMSInterval: cfg.Transport.SMSInterval,
		SMSBurst:    cfg.Transport.SMSBurst,
	}, transport.WithGuardMetrics(metrics))

	// Pairing
	store := storage.NewPairingStore(cfg.Device.StateFile)
	rec, err := store.Load()
	if err != nil {
		return fmt.Errorf("load pairing: %w", err)
	}

	serial, err := deviceSerial(ctx, cfg, guard)
	if err != nil {
		return err
	}

	// Journal (after every early return above)
	var journal transport.Journal
	if cfg.Storage.JournalDir != "" {
		j, kv, err := storage.OpenJournal(ctx, storage.DefaultBadgerConfig(cfg.Storage.JournalDir),
			cfg.Storage.JournalLimit, log)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		kv.RegisterMetrics(metrics.Prometheus())
		shutdownHandler.OnShutdown(func(context.Context) error {
			log.Info("closing journal")
			return kv.Close()
		})
		journal = j
	}

	outboxOpts := []transport.OutboxOption{
		transport.WithOutboxMetrics(metrics),
		transport.WithOutboxLogger(log),
	}
	if journal != nil {
		outboxOpts = append(outboxOpts, transport.WithJournal(journal))
	}
	outbox := transport.NewOutbox(guard, outboxOpts...)

	inbox := transport.NewInbox(guard, transport.InboxConfig{
		Counterpart: cfg.Device.ControllerNumber(),
		DedupWindow: cfg.Transport.DedupWindow,
	}, transport.WithInboxMetrics(metrics), transport.WithInboxLogger(log))

	fixes := service.NewFixCache(guard, log)
	session := service.NewPairingSession(service.PairingConfig{
		Serial:     serial,
		Controller: cfg.Device.ControllerNumber(),
		Notify:     cfg.Device.UserNumber,
	}, rec, outbox, store, guard,
		service.WithPairingLogger(log),
		service.WithPairingMetrics(metrics),
		service.WithFixCache(fixes),
	)

	var sw indicator.Switch
	if s, ok := modem.(indicator.Switch); ok {
		sw = s
	}

	sup := supervisor.New(cfg, supervisor.Deps{
		Modem:    guard,
		Sender:   outbox,
		Inbox:    inbox,
		Session:  session,
		Fixes:    fixes,
		Signaler: indicator.NewLogSignaler(log, metrics),
		Switch:   sw,
	}, supervisor.WithLogger(log), supervisor.WithMetrics(metrics))

	// Config watcher
	if path := loader.FilePath(); path != "" {
		watcher, err := watchConfig(path, loader, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	// Metrics export
	exporter := metric.NewExporter(metrics, cfg.Metrics.Textfile, cfg.Metrics.Interval, log)
	exported := make(chan struct{})
	go func() {
		defer close(exported)
		exporter.Run(ctx)
	}()
	shutdownHandler.OnShutdown(func(hctx context.Context) error {
		select {
		case <-exported:
			return nil
		case <-hctx.Done():
			return fmt.Errorf("metrics export: %w", hctx.Err())
		}
	})

	// Supervisor
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := sup.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("supervisor stopped", "error", err)
		}
	}()
	shutdownHandler.OnShutdown(func(hctx context.Context) error {
		log.Info("stopping supervisor")
		select {
		case <-stopped:
			return nil
		case <-hctx.Done():
			return fmt.Errorf("supervisor: %w", hctx.Err())
		}
	})

	log.Info("device started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("device stopped gracefully")
	return nil
}

// openModem returns the modem the daemon drives.
func openModem(cfg *config.Config, simulate bool, secret string) (transport.Modem, error) {
	if !simulate {
		return nil, errNoModem
	}
	serial := cfg.Device.Serial
	if serial == "" {
		serial = "SIMULATED000000"
	}
	sim := transport.NewSimulator(serial)
	if secret != "" {
		sim.SetResponder(transport.ControllerResponder(cfg.Device.ControllerNumber(), secret))
	}
	return sim, nil
}

// deviceSerial returns the configured serial, or the modem IMEI.
func deviceSerial(ctx context.Context, cfg *config.Config, m transport.Modem) (string, error) {
	if cfg.Device.Serial != "" {
		return cfg.Device.Serial, nil
	}
	imei, err := m.IMEI(ctx)
	if err != nil {
		return "", fmt.Errorf("read imei: %w", err)
	}
	return imei, nil
}

// watchConfig applies log.level changes from the configuration file at
// runtime. Other settings take effect on restart.
func watchConfig(path string, loader *confloader.Loader, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := config.Reload(loader)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			log.Info("log level changed", "from", logger.GetLevel(), "to", cfg.Log.Level)
			logger.SetLevel(cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
