package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Time    TimeConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// StorageConfig holds the EEPROM image and event database locations
type StorageConfig struct {
	EEPROMPath string
	EEPROMSize int
	HistoryDB  string
}

// AuthConfig holds session configuration
type AuthConfig struct {
	SessionTTL time.Duration
}

// TimeConfig holds the device timezone used for all ring decisions
type TimeConfig struct {
	Timezone string
}

// Load reads configuration from flags and environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Define flags
	port := flag.String("port", "8835", "Server port")
	host := flag.String("host", "", "Server host (empty for all interfaces)")
	eepromPath := flag.String("eeprom", "bellsystem.eeprom", "Path to the EEPROM image file")
	eepromSize := flag.Int("eeprom-size", 4096, "EEPROM image size in bytes")
	historyDB := flag.String("db", "bellsystem.db", "Path to SQLite event database file")
	sessionTTL := flag.Duration("session-ttl", time.Hour, "Admin session validity window")
	timezone := flag.String("timezone", "America/Chicago", "IANA timezone for ring schedule evaluation")

	flag.Parse()

	// Override with environment variables if set
	if envPort := os.Getenv("PORT"); envPort != "" {
		*port = envPort
	}
	if envHost := os.Getenv("HOST"); envHost != "" {
		*host = envHost
	}
	if envEEPROM := os.Getenv("EEPROM_PATH"); envEEPROM != "" {
		*eepromPath = envEEPROM
	}
	if envSize := os.Getenv("EEPROM_SIZE"); envSize != "" {
		n, err := strconv.Atoi(envSize)
		if err != nil {
			return nil, fmt.Errorf("invalid EEPROM_SIZE %q: %w", envSize, err)
		}
		*eepromSize = n
	}
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		*historyDB = envDB
	}
	if envTZ := os.Getenv("TZ_NAME"); envTZ != "" {
		*timezone = envTZ
	}
	if envTTL := os.Getenv("SESSION_TTL"); envTTL != "" {
		d, err := time.ParseDuration(envTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", envTTL, err)
		}
		*sessionTTL = d
	}

	cfg.Server = ServerConfig{Port: *port, Host: *host}
	cfg.Storage = StorageConfig{
		EEPROMPath: *eepromPath,
		EEPROMSize: *eepromSize,
		HistoryDB:  *historyDB,
	}
	cfg.Auth = AuthConfig{SessionTTL: *sessionTTL}
	cfg.Time = TimeConfig{Timezone: *timezone}

	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive, got %s", cfg.Auth.SessionTTL)
	}

	return cfg, nil
}
