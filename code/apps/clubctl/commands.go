package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goblimey/go-club-manager/code/apps/clubctl/csvimport"
	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/housekeeping"
	"github.com/goblimey/go-club-manager/code/pkg/payments"
)

// errNeedsConfirmation is returned by a destructive command run without -yes.
var errNeedsConfirmation = errors.New("this command deletes data - run it again with -yes")

// run initialises the club data and runs the command given by args.
func (a *app) run(ctx context.Context, args []string) error {

	command := args[0]
	params := args[1:]

	need := func(n int) error {
		if len(params) < n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", command, n, len(params))
		}
		return nil
	}

	reports, initError := a.club.Initialize(ctx)
	if initError != nil {
		return initError
	}

	switch command {

	case "init":
		return a.printJSON(reports)

	case "stats":
		stats, err := a.club.GetStatistics(ctx)
		if err != nil {
			return err
		}
		return a.printJSON(stats)

	case "export":
		if err := need(1); err != nil {
			return err
		}
		return a.export(ctx, params[0])

	case "import":
		if err := need(1); err != nil {
			return err
		}
		return a.importSnapshot(ctx, params[0])

	case "backup":
		name := ""
		if len(params) > 0 {
			name = params[0]
		}
		return a.backup(ctx, name)

	case "restore":
		if err := need(1); err != nil {
			return err
		}
		return a.restore(ctx, params[0])

	case "prune":
		n, err := a.club.PruneStalePendingMembers(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%d stale pending members deleted\n", n)
		return nil

	case "housekeep":
		loc, tzError := a.conf.Location()
		if tzError != nil {
			return fmt.Errorf("bad timezone %q: %w", a.conf.Timezone, tzError)
		}
		job := func(ctx context.Context) error {
			_, err := a.club.PruneStalePendingMembers(ctx)
			return err
		}
		fmt.Fprintln(a.out, "running housekeeping each night - interrupt to stop")
		housekeeping.RunDaily(ctx, a.clock, loc, a.logger, job)
		return nil

	case "import-csv":
		if err := need(2); err != nil {
			return err
		}
		return a.importCSV(ctx, params[0], params[1])

	case "set-admin-password":
		if err := need(2); err != nil {
			return err
		}
		if err := a.club.SetAdministratorPassword(ctx, params[0], params[1]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "password set")
		return nil

	case "fee-checkout":
		if err := need(1); err != nil {
			return err
		}
		return a.feeCheckout(ctx, params[0])

	case "fee-complete":
		if err := need(1); err != nil {
			return err
		}
		memberID, err := a.checkout().Complete(ctx, params[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "member %d marked as paid\n", memberID)
		return nil

	case "sync":
		result, err := a.club.SyncWithServer(ctx)
		if err != nil {
			return err
		}
		return a.printJSON(result)

	case "reset-members":
		if !a.yes {
			return errNeedsConfirmation
		}
		if err := a.club.ResetMembers(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "all members deleted")
		return nil

	case "wipe-all":
		if !a.yes {
			return errNeedsConfirmation
		}
		if err := a.club.ResetDatabase(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "database wiped and re-seeded")
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}

func (a *app) printJSON(v any) error {
	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (a *app) export(ctx context.Context, name string) error {

	snap, err := a.club.Export(ctx)
	if err != nil {
		return err
	}

	data, jsonError := json.MarshalIndent(snap, "", "  ")
	if jsonError != nil {
		return jsonError
	}

	return os.WriteFile(name, data, 0600)
}

func (a *app) importSnapshot(ctx context.Context, name string) error {

	data, readError := os.ReadFile(name)
	if readError != nil {
		return readError
	}

	var snap database.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%s is not a snapshot: %w", name, err)
	}

	return a.club.Import(ctx, &snap)
}

// backupFileName returns the name of a backup file in dir, made from the
// time, eg "club-20240615-030000.json".
func backupFileName(dir string, t time.Time) string {
	return filepath.Join(dir, "club-"+t.Format("20060102-150405")+".json")
}

func (a *app) backup(ctx context.Context, name string) error {

	if len(name) == 0 {
		dir := a.conf.BackupDir
		if len(dir) == 0 {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
		name = backupFileName(dir, a.clock.Now())
	}

	file, createError := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if createError != nil {
		return createError
	}

	backupError := a.club.Backup(ctx, file)
	closeError := file.Close()
	if backupError != nil {
		os.Remove(name)
		return backupError
	}
	if closeError != nil {
		return closeError
	}

	fmt.Fprintln(a.out, "backup written to "+name)
	return nil
}

func (a *app) restore(ctx context.Context, name string) error {

	file, openError := os.Open(name)
	if openError != nil {
		return openError
	}
	defer file.Close()

	if err := a.club.Restore(ctx, file); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "restored from "+name)
	return nil
}

func (a *app) importCSV(ctx context.Context, kind, name string) error {

	file, openError := os.Open(name)
	if openError != nil {
		return openError
	}
	defer file.Close()

	lines, readError := csvimport.Read(file, kind, a.logger)
	if readError != nil {
		return readError
	}

	result, processError := csvimport.Process(ctx, a.club, kind, lines, a.logger)
	if processError != nil {
		return processError
	}

	fmt.Fprintf(a.out, "%d %s added, %d failed - see the log for details\n", result.Added, kind, result.Failed)
	return nil
}

func (a *app) checkout() *payments.Checkout {
	settings := payments.Settings{
		ClubName:   a.conf.ClubName,
		Currency:   a.conf.Currency,
		SuccessURL: a.conf.PaymentSuccessURL,
		CancelURL:  a.conf.PaymentCancelURL,
	}
	return payments.New(a.club, settings, a.logger)
}

func (a *app) feeCheckout(ctx context.Context, memberIDStr string) error {

	if len(a.conf.StripeSecretKey) == 0 {
		return errors.New("fee-checkout: StripeSecretKey is not set")
	}

	memberID, parseError := strconv.ParseInt(memberIDStr, 10, 64)
	if parseError != nil {
		return fmt.Errorf("fee-checkout: member ID must be a number: %w", parseError)
	}

	url, err := a.checkout().CreateFeeCheckout(ctx, memberID)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, url)
	return nil
}
