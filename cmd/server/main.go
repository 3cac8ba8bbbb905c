package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/campanile/bellsystem-server/internal/api"
	"github.com/campanile/bellsystem-server/internal/auth"
	"github.com/campanile/bellsystem-server/internal/clock"
	"github.com/campanile/bellsystem-server/internal/config"
	"github.com/campanile/bellsystem-server/internal/eeprom"
	"github.com/campanile/bellsystem-server/internal/history"
	"github.com/campanile/bellsystem-server/internal/relay"
	"github.com/campanile/bellsystem-server/internal/schedule"
)

func main() {
	log := logrus.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Non-volatile storage
	store, err := eeprom.Open(cfg.Storage.EEPROMPath, cfg.Storage.EEPROMSize)
	if err != nil {
		log.Fatalf("Failed to open EEPROM image: %v", err)
	}

	// Event history
	events, err := history.Open(cfg.Storage.HistoryDB)
	if err != nil {
		log.Fatalf("Failed to open event database: %v", err)
	}
	defer events.Close()

	// Credentials; warn loudly while the default password is active
	creds := auth.NewManager(store, cfg.Auth.SessionTTL)
	defaultActive, err := creds.Initialize()
	if err != nil {
		log.Fatalf("Failed to initialize credentials: %v", err)
	}
	if defaultActive {
		log.Warn("Default admin password is active; change it from the settings page")
		if err := events.Record(history.KindSecurity, "default admin password is active"); err != nil {
			log.WithError(err).Warn("record event")
		}
	}

	// Ring decision engine
	clk, err := clock.NewClock(cfg.Time.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}
	bell := ringRecorder{actuator: relay.NewBell(log), events: events, log: log}
	engine := schedule.NewEngine(store, bell, clk, log)
	engine.LoadFromStore()

	// Minute tick; rings run on the tick goroutine, off the request path
	ticker := cron.New()
	if _, err := ticker.AddFunc("* * * * *", engine.OnMinuteTick); err != nil {
		log.Fatalf("Failed to schedule minute tick: %v", err)
	}
	ticker.Start()
	defer ticker.Stop()

	handlers := api.NewHandlers(log, creds, engine, store, bell, events)

	printBanner(cfg, store, log)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Infof("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, handlers.Router()); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// ringRecorder appends each activation to the event history.
type ringRecorder struct {
	actuator relay.Actuator
	events   *history.Log
	log      *logrus.Logger
}

func (r ringRecorder) Activate(d time.Duration) {
	r.actuator.Activate(d)
	if err := r.events.Record(history.KindRing, fmt.Sprintf("bell rang for %s", d)); err != nil {
		r.log.WithError(err).Warn("record ring")
	}
}

func printBanner(cfg *config.Config, store *eeprom.Store, log *logrus.Logger) {
	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println("  Bell System Controller")
	fmt.Println("================================================================================")
	fmt.Println()
	fmt.Println("Server Configuration:")
	fmt.Printf("  Port:           %s\n", cfg.Server.Port)
	fmt.Printf("  Device Name:    %s\n", store.LoadDeviceName())
	fmt.Printf("  Ring Duration:  %ds\n", store.LoadRingDuration())
	fmt.Printf("  Timezone:       %s\n", cfg.Time.Timezone)
	fmt.Printf("  EEPROM Image:   %s (%d bytes)\n", cfg.Storage.EEPROMPath, store.Size())
	fmt.Printf("  Event DB:       %s\n", cfg.Storage.HistoryDB)
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Printf("    POST http://localhost:%s/completeLogin\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/getSchedule\n", cfg.Server.Port)
	fmt.Printf("    POST http://localhost:%s/updateSchedule\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/getTodayRemainingRingTimes\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/ToggleRelay\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/getSettings\n", cfg.Server.Port)
	fmt.Printf("    POST http://localhost:%s/saveSettings\n", cfg.Server.Port)
	fmt.Printf("    POST http://localhost:%s/finalizePassword\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/getServerMessages\n", cfg.Server.Port)
	fmt.Printf("    GET  http://localhost:%s/health\n", cfg.Server.Port)
	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println()
	log.Info("Server ready to receive requests...")
}
