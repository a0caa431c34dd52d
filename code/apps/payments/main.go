/*
payments runs a web server that takes members' fees through Stripe.

	/checkout?member=ID  redirects to the Stripe payment page for the member's fee
	/success             Stripe sends the member here after paying
	/cancel              Stripe sends the member here if they cancel

The success URL in the config should carry the session placeholder, for
example "https://club.example.com/success?session_id={CHECKOUT_SESSION_ID}".

The server offers HTTP only.  It's expected to run behind a proxy that
handles TLS.  The settings come from config.json and the environment, which
may be set from a .env file.
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/stripe/stripe-go/v81"

	"github.com/goblimey/go-tools/dailylogger"

	"github.com/goblimey/go-club-manager/code/apps/payments/handler"
	"github.com/goblimey/go-club-manager/code/pkg/clubdata"
	"github.com/goblimey/go-club-manager/code/pkg/config"
	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
	"github.com/goblimey/go-club-manager/code/pkg/payments"
)

func main() {

	// Settings in the .env file don't override the real environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println(err.Error())
		os.Exit(-1)
	}

	// Get configuration.
	conf, errConfig := config.GetConfig("./config.json")
	if errConfig != nil {
		fmt.Println(errConfig.Error())
		os.Exit(-1)
	}

	if len(conf.StripeSecretKey) == 0 {
		fmt.Println("StripeSecretKey is not set")
		os.Exit(-1)
	}

	// The stripe secret key.
	stripe.Key = conf.StripeSecretKey

	logger := GetDailyLogger(conf.LogDir, conf.LogLeader)

	loc, tzError := conf.Location()
	if tzError != nil {
		fmt.Println(tzError.Error())
		os.Exit(-1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConfig := database.DBConfig{
		Type:   conf.DBType,
		Host:   conf.DBHostname,
		Port:   conf.DBPort,
		Name:   conf.DBDatabase,
		User:   conf.DBUser,
		Pass:   conf.DBPassword,
		Path:   conf.DBPath,
		Logger: logger,
	}

	// Payments must go into the real store, so there's no temporary fallback.
	db := database.New(&dbConfig)
	db.Seed = database.DefaultSeed().WithAdminEmails(conf.SeedAdminEmails)
	openError := db.Open(ctx)
	if openError != nil {
		fmt.Println(openError.Error())
		os.Exit(-1)
	}
	defer db.Close()

	opts := clubdata.Options{
		Logger:          logger,
		Clock:           clockwork.NewRealClock(),
		Location:        loc,
		Fees:            clubdata.Fees{Adult: conf.AdultFee, Junior: conf.JuniorFee, AdultAge: conf.AdultAge},
		ReadyTimeout:    conf.ReadyTimeout(),
		StalePendingAge: conf.StalePendingAge(),
	}
	club := clubdata.New(db, legacy.NewFileStore(conf.LegacyStoreFile), opts)

	if _, initError := club.Initialize(ctx); initError != nil {
		logger.Error(initError.Error())
		fmt.Println(initError.Error())
		return
	}

	settings := payments.Settings{
		ClubName:   conf.ClubName,
		Currency:   conf.Currency,
		SuccessURL: conf.PaymentSuccessURL,
		CancelURL:  conf.PaymentCancelURL,
	}

	hdlr := handler.New(conf, payments.New(club, settings, logger), logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/checkout", hdlr.Checkout)
	mux.HandleFunc("/success", hdlr.Success)
	mux.HandleFunc("/cancel", hdlr.Cancel)

	server := http.Server{
		Addr:              conf.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting http server " + conf.Address)
	serverError := server.ListenAndServe()
	if serverError != nil && serverError != http.ErrServerClosed {
		db.Close()
		hdlr.Fatal(serverError)
	}
}

// GetDailyLogger gets a structured logger that writes to a daily log file.
// The leader is used to form the log file name.
func GetDailyLogger(logDir, leader string) *slog.Logger {
	if len(logDir) == 0 {
		logDir = "."
	}

	dailyLogWriter := dailylogger.New(logDir, leader, ".log")

	return slog.New(slog.NewTextHandler(dailyLogWriter, nil))
}
