package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Defaults for values that are not set in the config file.
const (
	DefaultAdultFee            = 20.0
	DefaultJuniorFee           = 10.0
	DefaultAdultAge            = 18
	DefaultStalePendingDays    = 7
	DefaultReadyTimeoutSeconds = 10
	DefaultCurrency            = "eur"
	DefaultLogLeader           = "club."
	DefaultLegacyStoreFile     = "legacy.json"
	DefaultAddress             = ":8080"
)

// Config holds the configuration.
type Config struct {
	// These config values are taken from the given config file.
	ClubName                 string   `json:"club_name"`                   // The name of the club for display.
	LogDir                   string   `json:"log_dir"`                     // The directory in which the daily log is created.
	LogLeader                string   `json:"log_leader"`                  // The first part of the log file name.
	LegacyStoreFile          string   `json:"legacy_store_file"`           // The JSON file holding the old key-value store.
	BackupDir                string   `json:"backup_dir"`                  // Where backups are written by default.
	Timezone                 string   `json:"timezone"`                    // IANA name, eg "Europe/Madrid".  Empty means local time.
	AdultFee                 float64  `json:"adult_fee"`                   // Membership fee for adults.
	JuniorFee                float64  `json:"junior_fee"`                  // Membership fee for juniors.
	AdultAge                 int      `json:"adult_age"`                   // The age at which the adult fee applies.
	StalePendingDays         int      `json:"stale_pending_days"`          // Pending registrations older than this are pruned.
	ReadyTimeoutSeconds      int      `json:"ready_timeout_seconds"`       // How long to wait for the store to become ready.
	FallbackToTemporaryStore bool     `json:"fallback_to_temporary_store"` // Use a temporary store if the database can't be opened.
	SeedAdminEmails          []string `json:"seed_admin_emails"`           // Email addresses of the default administrators.
	Currency                 string   `json:"currency"`                    // Currency for card payments, eg "eur".
	PaymentSuccessURL        string   `json:"payment_success_url"`         // Where the payment service sends the user after paying.
	PaymentCancelURL         string   `json:"payment_cancel_url"`          // Where the payment service sends the user if they cancel.
	Address                  string   `json:"address"`                     // The address the payment web server listens on, eg ":8080".
	ContactEmail             string   `json:"contact_email"`               // Shown on error pages, eg the treasurer.

	// Secrets are taken from the environment.
	StripeSecretKey string
	DBType          string
	DBHostname      string
	DBPort          string
	DBDatabase      string
	DBUser          string
	DBPassword      string
	DBPath          string
}

// GetConfig gets the config from the given file.
func GetConfig(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		em := fmt.Sprintf("cannot open config file: %s", err.Error())
		return nil, errors.New(em)
	}
	defer file.Close()

	config, errParse := getConfigFromReader(file)

	if errParse != nil {
		return nil, errParse
	}

	return config, nil
}

// getConfigFromReader gets the config from the given reader.
func getConfigFromReader(configReader io.Reader) (*Config, error) {

	data, errRead := io.ReadAll(configReader)
	if errRead != nil {
		em := fmt.Sprintf("error reading config file: %s", errRead.Error())
		return nil, errors.New(em)
	}

	config, parseError := parseConfigFromBytes(data)
	if parseError != nil {
		em := fmt.Sprintf("not a valid config file: %s", parseError.Error())
		return nil, errors.New(em)
	}

	return config, nil
}

func parseConfigFromBytes(data []byte) (*Config, error) {
	var config Config
	err := json.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	config.applyDefaults()

	// Get the secrets from the environment.

	// The stripe secret key.
	config.StripeSecretKey = os.Getenv("StripeSecretKey")
	// The database type - "sqlite" (the default), "postgres" or "mysql".
	config.DBType = os.Getenv("DBType")
	// The hostname that the database server is running on.
	config.DBHostname = os.Getenv("DBHost")
	// The database port.
	config.DBPort = os.Getenv("DBPort")
	// The database (schema).
	config.DBDatabase = os.Getenv("DBDatabase")
	// The database user.
	config.DBUser = os.Getenv("DBUser")
	// The database password.
	config.DBPassword = os.Getenv("DBPassword")
	// The SQLite database file.
	config.DBPath = os.Getenv("DBPath")

	return &config, nil
}

// Default returns a config with all the defaults set and the secrets taken
// from the environment, for use when there is no config file.
func Default() *Config {
	config, _ := parseConfigFromBytes([]byte("{}"))
	return config
}

func (c *Config) applyDefaults() {
	if c.AdultFee == 0 {
		c.AdultFee = DefaultAdultFee
	}
	if c.JuniorFee == 0 {
		c.JuniorFee = DefaultJuniorFee
	}
	if c.AdultAge == 0 {
		c.AdultAge = DefaultAdultAge
	}
	if c.StalePendingDays == 0 {
		c.StalePendingDays = DefaultStalePendingDays
	}
	if c.ReadyTimeoutSeconds == 0 {
		c.ReadyTimeoutSeconds = DefaultReadyTimeoutSeconds
	}
	if len(c.Currency) == 0 {
		c.Currency = DefaultCurrency
	}
	if len(c.LogLeader) == 0 {
		c.LogLeader = DefaultLogLeader
	}
	if len(c.LegacyStoreFile) == 0 {
		c.LegacyStoreFile = DefaultLegacyStoreFile
	}
	if len(c.Address) == 0 {
		c.Address = DefaultAddress
	}
}

// Location returns the time zone named in the config, or the local time
// zone if none is given.
func (c *Config) Location() (*time.Location, error) {
	if len(c.Timezone) == 0 {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// StalePendingAge is how long a registration can stay pending before it's
// pruned.
func (c *Config) StalePendingAge() time.Duration {
	return time.Duration(c.StalePendingDays) * 24 * time.Hour
}

// ReadyTimeout is how long to wait for the store to become ready.
func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.ReadyTimeoutSeconds) * time.Second
}
