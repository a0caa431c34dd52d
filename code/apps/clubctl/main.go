/*
clubctl is the operations tool for the club's data.  It opens the local
store, waits for it to be ready, moves any data left in the old key-value
store into it and then runs one command, for example:

	clubctl stats
	clubctl backup
	clubctl restore backups/club-20240615-030000.json
	clubctl import-csv members members.csv
	clubctl set-admin-password secretary@example.com 'a long password'
	clubctl -yes wipe-all

The settings come from a JSON config file (config.json by default).  The
database settings and the Stripe secret key come from the environment,
which may be set from a .env file.  The log is written to a daily log file
in the configured log directory.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/stripe/stripe-go/v81"

	"github.com/goblimey/go-tools/dailylogger"

	"github.com/goblimey/go-club-manager/code/pkg/clubdata"
	"github.com/goblimey/go-club-manager/code/pkg/config"
	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
)

const usage = `usage: clubctl [-config file] [-env file] [-seed file] [-yes] command [args]

commands:
  init                            wait for the store and migrate legacy data
  stats                           print the statistics as JSON
  export FILE                     write a snapshot of all collections
  import FILE                     replace all collections with a snapshot
  backup [FILE]                   write a backup (default: in the backup directory)
  restore FILE                    replace all collections from a backup
  prune                           delete stale pending members
  housekeep                       prune every night at 03:00 until interrupted
  import-csv members|players FILE register members or players from a CSV file
  set-admin-password EMAIL PASS   set an administrator's password
  fee-checkout MEMBER_ID          create a Stripe checkout for a member's fee
  fee-complete SESSION_ID         mark the member paid once Stripe says so
  sync                            synchronise with the server
  reset-members                   delete all members (needs -yes)
  wipe-all                        delete everything and re-seed (needs -yes)
`

// app holds everything the commands need.
type app struct {
	conf   *config.Config
	db     *database.Database
	club   *clubdata.Club
	clock  clockwork.Clock
	logger *slog.Logger
	out    io.Writer
	yes    bool
}

func main() {

	configFile := flag.String("config", "./config.json", "the JSON config file")
	envFile := flag.String("env", ".env", "a file of environment settings, ignored if missing")
	seedFile := flag.String("seed", "", "a YAML file of default teams and administrators")
	yes := flag.Bool("yes", false, "confirm a destructive command")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Settings in the .env file don't override the real environment.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "error loading "+*envFile+": "+err.Error())
		os.Exit(1)
	}

	var conf *config.Config
	if _, statError := os.Stat(*configFile); os.IsNotExist(statError) {
		// No config file - use the defaults.
		conf = config.Default()
	} else {
		var configError error
		conf, configError = config.GetConfig(*configFile)
		if configError != nil {
			fmt.Fprintln(os.Stderr, configError.Error())
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, setupError := setUp(ctx, conf, *seedFile)
	if setupError != nil {
		fmt.Fprintln(os.Stderr, setupError.Error())
		os.Exit(1)
	}
	defer a.db.Close()
	a.yes = *yes

	runError := a.run(ctx, flag.Args())
	if runError != nil {
		a.logger.Error(runError.Error())
		fmt.Fprintln(os.Stderr, runError.Error())
		a.db.Close()
		os.Exit(1)
	}
}

// setUp opens the store and creates the Club.
func setUp(ctx context.Context, conf *config.Config, seedFile string) (*app, error) {

	logger := GetDailyLogger(conf.LogDir, conf.LogLeader)

	loc, tzError := conf.Location()
	if tzError != nil {
		return nil, fmt.Errorf("bad timezone %q: %w", conf.Timezone, tzError)
	}

	seed, seedError := loadSeed(seedFile, conf.SeedAdminEmails)
	if seedError != nil {
		return nil, seedError
	}

	// The stripe secret key.
	stripe.Key = conf.StripeSecretKey

	dbConfig := database.DBConfig{
		Type:                conf.DBType,
		Host:                conf.DBHostname,
		Port:                conf.DBPort,
		Name:                conf.DBDatabase,
		User:                conf.DBUser,
		Pass:                conf.DBPassword,
		Path:                conf.DBPath,
		Logger:              logger,
		FallbackToTemporary: conf.FallbackToTemporaryStore,
	}

	db := database.New(&dbConfig)
	db.Seed = seed

	openError := db.Open(ctx)
	if openError != nil {
		return nil, openError
	}

	if db.Fallback() {
		fmt.Fprintln(os.Stderr, "warning: the database could not be opened - using a temporary store")
	}

	clock := clockwork.NewRealClock()

	opts := clubdata.Options{
		Logger:          logger,
		Clock:           clock,
		Location:        loc,
		Fees:            clubdata.Fees{Adult: conf.AdultFee, Junior: conf.JuniorFee, AdultAge: conf.AdultAge},
		ReadyTimeout:    conf.ReadyTimeout(),
		StalePendingAge: conf.StalePendingAge(),
	}

	club := clubdata.New(db, legacy.NewFileStore(conf.LegacyStoreFile), opts)

	a := app{
		conf:   conf,
		db:     db,
		club:   club,
		clock:  clock,
		logger: logger,
		out:    os.Stdout,
	}

	return &a, nil
}

// GetDailyLogger gets a structured logger that writes to a daily log file.
// The leader is used to form the log file name.
func GetDailyLogger(logDir, leader string) *slog.Logger {
	if len(logDir) == 0 {
		logDir = "."
	}

	// Create a daily log writer.
	dailyLogWriter := dailylogger.New(logDir, leader, ".log")

	// Create a structured logger that writes to the dailyLogWriter.
	logger := slog.New(slog.NewTextHandler(dailyLogWriter, nil))

	return logger
}
