package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goblimey/go-tools/testsupport"
)

func TestParseConfig(t *testing.T) {

	json := []byte(`
		{
			"club_name": "some club",
			"log_dir": ".",
			"log_leader": "lead.",
			"legacy_store_file": "old.json",
			"backup_dir": "/var/backups",
			"timezone": "Europe/Madrid",
			"adult_fee": 25.5,
			"junior_fee": 12.5,
			"adult_age": 16,
			"stale_pending_days": 3,
			"ready_timeout_seconds": 30,
			"fallback_to_temporary_store": true,
			"seed_admin_emails": ["boss@example.com", "sec@example.com"],
			"currency": "gbp",
			"payment_success_url": "https://example.com/ok",
			"payment_cancel_url": "https://example.com/cancel",
			"address": ":9000",
			"contact_email": "treasurer@example.com"
		}
	`)

	// Set up the environment variables that the config parser picks up.
	t.Setenv("StripeSecretKey", "foo")
	t.Setenv("DBType", "pg")
	t.Setenv("DBHost", "localhost")
	t.Setenv("DBPort", "2")
	t.Setenv("DBDatabase", "db")
	t.Setenv("DBUser", "me")
	t.Setenv("DBPassword", "pw")
	t.Setenv("DBPath", "/data/club.db")

	conf, err := parseConfigFromBytes(json)

	if err != nil {
		t.Error(err)
		return
	}

	if conf.StripeSecretKey != "foo" {
		t.Errorf("want foo got %s", conf.StripeSecretKey)
	}
	if conf.DBType != "pg" {
		t.Errorf("want pg got %s", conf.DBType)
	}
	if conf.DBHostname != "localhost" {
		t.Errorf("want localhost got %s", conf.DBHostname)
	}
	if conf.DBPort != "2" {
		t.Errorf("want 2 got %s", conf.DBPort)
	}
	if conf.DBDatabase != "db" {
		t.Errorf("want db got %s", conf.DBDatabase)
	}
	if conf.DBUser != "me" {
		t.Errorf("want me got %s", conf.DBUser)
	}
	if conf.DBPassword != "pw" {
		t.Errorf("want pw got %s", conf.DBPassword)
	}
	if conf.DBPath != "/data/club.db" {
		t.Errorf("want /data/club.db got %s", conf.DBPath)
	}

	if conf.ClubName != "some club" {
		t.Errorf("want some club, got %s", conf.ClubName)
	}
	if conf.LogDir != "." {
		t.Errorf("want \".\" got %s", conf.LogDir)
	}
	if conf.LogLeader != "lead." {
		t.Errorf("want \"lead.\" got %s", conf.LogLeader)
	}
	if conf.LegacyStoreFile != "old.json" {
		t.Errorf("want old.json got %s", conf.LegacyStoreFile)
	}
	if conf.BackupDir != "/var/backups" {
		t.Errorf("want /var/backups got %s", conf.BackupDir)
	}
	if conf.AdultFee != 25.5 {
		t.Errorf("want 25.5, got %f", conf.AdultFee)
	}
	if conf.JuniorFee != 12.5 {
		t.Errorf("want 12.5, got %f", conf.JuniorFee)
	}
	if conf.AdultAge != 16 {
		t.Errorf("want 16, got %d", conf.AdultAge)
	}
	if conf.StalePendingAge() != 3*24*time.Hour {
		t.Errorf("want 72h, got %v", conf.StalePendingAge())
	}
	if conf.ReadyTimeout() != 30*time.Second {
		t.Errorf("want 30s, got %v", conf.ReadyTimeout())
	}
	if !conf.FallbackToTemporaryStore {
		t.Error("want FallbackToTemporaryStore to be true")
	}
	if len(conf.SeedAdminEmails) != 2 || conf.SeedAdminEmails[1] != "sec@example.com" {
		t.Errorf("want two emails got %v", conf.SeedAdminEmails)
	}
	if conf.Currency != "gbp" {
		t.Errorf("want gbp got %s", conf.Currency)
	}
	if conf.PaymentSuccessURL != "https://example.com/ok" {
		t.Errorf("want https://example.com/ok got %s", conf.PaymentSuccessURL)
	}
	if conf.PaymentCancelURL != "https://example.com/cancel" {
		t.Errorf("want https://example.com/cancel got %s", conf.PaymentCancelURL)
	}
	if conf.Address != ":9000" {
		t.Errorf("want :9000 got %s", conf.Address)
	}
	if conf.ContactEmail != "treasurer@example.com" {
		t.Errorf("want treasurer@example.com got %s", conf.ContactEmail)
	}

	loc, locError := conf.Location()
	if locError != nil {
		t.Error(locError)
		return
	}
	if loc.String() != "Europe/Madrid" {
		t.Errorf("want Europe/Madrid got %s", loc.String())
	}
}

// TestParseConfigDefaults checks that missing values get the defaults.
func TestParseConfigDefaults(t *testing.T) {

	conf, err := parseConfigFromBytes([]byte(`{"club_name": "c"}`))
	if err != nil {
		t.Error(err)
		return
	}

	if conf.AdultFee != DefaultAdultFee {
		t.Errorf("want %f got %f", DefaultAdultFee, conf.AdultFee)
	}
	if conf.JuniorFee != DefaultJuniorFee {
		t.Errorf("want %f got %f", DefaultJuniorFee, conf.JuniorFee)
	}
	if conf.AdultAge != DefaultAdultAge {
		t.Errorf("want %d got %d", DefaultAdultAge, conf.AdultAge)
	}
	if conf.StalePendingAge() != 7*24*time.Hour {
		t.Errorf("want 168h got %v", conf.StalePendingAge())
	}
	if conf.ReadyTimeout() != 10*time.Second {
		t.Errorf("want 10s got %v", conf.ReadyTimeout())
	}
	if conf.Currency != DefaultCurrency {
		t.Errorf("want %s got %s", DefaultCurrency, conf.Currency)
	}
	if conf.LegacyStoreFile != DefaultLegacyStoreFile {
		t.Errorf("want %s got %s", DefaultLegacyStoreFile, conf.LegacyStoreFile)
	}
	if conf.Address != DefaultAddress {
		t.Errorf("want %s got %s", DefaultAddress, conf.Address)
	}

	loc, locError := conf.Location()
	if locError != nil {
		t.Error(locError)
	}
	if loc != time.Local {
		t.Errorf("want local got %s", loc.String())
	}
}

func TestParseConfigWithError(t *testing.T) {

	jsonData := []byte(`{junk: "junk"}`)

	_, err := parseConfigFromBytes(jsonData)

	if err == nil {
		t.Error("expected an error")
	}
}

func TestBadTimezone(t *testing.T) {

	conf := Default()
	conf.Timezone = "Not/A_Zone"

	_, err := conf.Location()
	if err == nil {
		t.Error("expected an error")
	}
}

// TestGetConfig checks that GetConfig correctly reads a config file.
func TestGetConfig(t *testing.T) {

	// Create a temporary directory with a file containing the config.
	testDirName, createDirectoryError := testsupport.CreateWorkingDirectory()

	if createDirectoryError != nil {
		t.Error(createDirectoryError)
		return
	}

	// Ensure that the test files are tidied away at the end.
	defer testsupport.RemoveWorkingDirectory(testDirName)

	configFile := filepath.Join(testDirName, "config.json")
	const configContents = `
		{
			"club_name": "some club",
			"adult_fee": 30
		}
	`

	writeError := os.WriteFile(configFile, []byte(configContents), 0600)
	if writeError != nil {
		t.Error(writeError)
		return
	}

	config, errConfig := GetConfig(configFile)
	if errConfig != nil {
		t.Error(errConfig)
		return
	}

	if config.ClubName != "some club" {
		t.Errorf("want some club, got %s", config.ClubName)
	}

	if config.AdultFee != 30 {
		t.Errorf("want 30, got %f", config.AdultFee)
	}
}

// TestGetConfigMissingFile checks that a missing file gives an error.
func TestGetConfigMissingFile(t *testing.T) {

	_, err := GetConfig("/no/such/dir/config.json")
	if err == nil {
		t.Error("expected an error")
	}
}
