package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autogarden/thermctl/internal/climate"
	"github.com/autogarden/thermctl/internal/config"
	"github.com/autogarden/thermctl/internal/log"
	"github.com/autogarden/thermctl/internal/notify"
	"github.com/autogarden/thermctl/internal/relay"
	"github.com/autogarden/thermctl/internal/sensor"
	"github.com/autogarden/thermctl/internal/storage"
	"github.com/autogarden/thermctl/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetDefaultLevel(log.LevelDebug)
	}

	log.Info("Starting climate controller")

	// Load configuration
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("Failed to load config: %v", err)
			os.Exit(1)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if err := cfg.EnsureDataDir(); err != nil {
		log.Error("Failed to create data directory: %v", err)
		os.Exit(1)
	}

	// Open database
	db, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		log.Error("Failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	log.Info("Database initialized at %s", cfg.DatabasePath())

	// Relay outputs
	coolRelay, err := relay.NewRealDriver(cfg.GPIOChip, cfg.CoolRelayPin)
	if err != nil {
		log.Error("Failed to open cooling relay: %v", err)
		os.Exit(1)
	}
	defer coolRelay.Close()

	heatRelay, err := relay.NewRealDriver(cfg.GPIOChip, cfg.HeatRelayPin)
	if err != nil {
		log.Error("Failed to open heating relay: %v", err)
		os.Exit(1)
	}
	defer heatRelay.Close()

	// Temperature sensor
	probe, err := sensor.NewRealReader(cfg.SensorDeviceID, sensor.Window{
		MinF: cfg.SensorMinF,
		MaxF: cfg.SensorMaxF,
	})
	if err != nil {
		log.Error("Failed to open temperature sensor: %v", err)
		os.Exit(1)
	}
	defer probe.Close()

	// Notification channels
	dispatcher := notify.NewDispatcher(notify.NewEventLogSink(db))
	if cfg.DiscordWebhookURL != "" {
		dispatcher.Register(notify.NewDiscordSink(cfg.DiscordWebhookURL))
	}
	var mqttSink *notify.MQTTSink
	if cfg.MQTTBrokerURL != "" {
		mqttSink, err = notify.NewMQTTSink(cfg.MQTTBrokerURL, cfg.MQTTTopicPrefix)
		if err != nil {
			log.Warn("MQTT unavailable, continuing without it: %v", err)
		} else {
			dispatcher.Register(mqttSink)
			defer mqttSink.Close()
		}
	}

	// Climate controller
	ctl := climate.New(db, dispatcher,
		relayDrive("cooling", coolRelay),
		relayDrive("heating", heatRelay),
		climate.Options{
			CoolMinRun: time.Duration(cfg.CoolMinRunSeconds) * time.Second,
			CoolMinOff: time.Duration(cfg.CoolMinOffSeconds) * time.Second,
			HeatMinRun: time.Duration(cfg.HeatMinRunSeconds) * time.Second,
			HeatMinOff: time.Duration(cfg.HeatMinOffSeconds) * time.Second,
			AlertHigh:  cfg.AlertHighF,
			AlertLow:   cfg.AlertLowF,
		})

	// Create service and web server
	svc := &Service{cfg: cfg, db: db, ctl: ctl}
	webServer := web.NewServer(cfg.ServerPort, svc)
	dispatcher.Register(webServer.EventSink())

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutting down...")
		cancel()
	}()

	go dispatcher.Run(ctx)
	go svc.runControlLoop(ctx, probe, webServer, mqttSink)
	go svc.runLogPruner(ctx)

	log.Info("Starting web server on port %d", cfg.ServerPort)
	if err := webServer.Run(ctx); err != nil {
		log.Error("Web server error: %v", err)
	}

	// Drop both relays before the process exits.
	ctl.Shutdown()
	log.Info("Shutdown complete")
}

// relayDrive adapts a relay driver to the actuator callback, reporting
// hardware write failures without propagating them into the control loop.
func relayDrive(name string, d relay.Driver) climate.DriveFunc {
	return func(on bool) error {
		if err := d.Set(on); err != nil {
			log.Error("Failed to drive %s relay: %v", name, err)
			return err
		}
		return nil
	}
}

// Service orchestrates the controller and its collaborators
type Service struct {
	cfg *config.Config
	db  *storage.DB
	ctl *climate.Controller
}

// Controller returns the climate controller
func (s *Service) Controller() *climate.Controller {
	return s.ctl
}

// DB returns the database
func (s *Service) DB() *storage.DB {
	return s.db
}

// runControlLoop ticks the controller at the configured cadence. Each tick
// pulls one reading, runs the decision logic, and pushes the snapshot to
// the reporting channels.
func (s *Service) runControlLoop(ctx context.Context, probe sensor.Reader, webServer *web.Server, mqttSink *notify.MQTTSink) {
	interval := time.Duration(s.cfg.TickIntervalSeconds) * time.Second
	log.Info("Starting control loop (interval: %s)", interval)

	tick := func() {
		snap := s.ctl.Tick(probe.Read())
		webServer.BroadcastSnapshot(snap)
		if mqttSink != nil {
			if err := mqttSink.PublishStatus(snap); err != nil {
				log.Debug("Failed to publish MQTT status: %v", err)
			}
		}
	}

	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick()
		}
	}
}

// runLogPruner trims event logs older than 30 days, once a day.
func (s *Service) runLogPruner(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruned, err := s.db.PruneEventLogs(time.Now().AddDate(0, 0, -30))
			if err != nil {
				log.Warn("Failed to prune event logs: %v", err)
			} else if pruned > 0 {
				log.Info("Pruned %d old event log entries", pruned)
			}
		}
	}
}
