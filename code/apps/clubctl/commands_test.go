package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goblimey/go-club-manager/code/pkg/clubdata"
	"github.com/goblimey/go-club-manager/code/pkg/config"
	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
)

// newTestApp creates an app using a temporary SQLite store.
func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()

	db, err := database.OpenDBForTesting(database.TypeSQLite)
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseAndDelete() })

	clock := clockwork.NewFakeClockAt(time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC))
	club := clubdata.New(db, legacy.NewMemoryStore(nil), clubdata.Options{Clock: clock, Location: time.UTC})

	conf := config.Default()
	conf.BackupDir = t.TempDir()

	var out bytes.Buffer
	a := app{conf: conf, db: db, club: club, clock: clock, logger: db.Logger, out: &out}

	return &a, &out
}

func TestBackupFileName(t *testing.T) {
	got := backupFileName("backups", time.Date(2024, time.June, 15, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, filepath.Join("backups", "club-20240615-030405.json"), got)
}

// TestBackupAndRestore checks that a backup written by the backup command
// can be restored.
func TestBackupAndRestore(t *testing.T) {

	a, out := newTestApp(t)
	ctx := context.Background()

	csvFile := filepath.Join(t.TempDir(), "members.csv")
	require.NoError(t, os.WriteFile(csvFile, []byte("Ann,Smith,600,,N1,1990-01-01\n"), 0600))

	require.NoError(t, a.run(ctx, []string{"import-csv", "members", csvFile}))
	assert.Contains(t, out.String(), "1 members added, 0 failed")

	require.NoError(t, a.run(ctx, []string{"backup"}))
	name := backupFileName(a.conf.BackupDir, a.clock.Now())
	_, statError := os.Stat(name)
	require.NoError(t, statError)

	a.yes = true
	require.NoError(t, a.run(ctx, []string{"reset-members"}))

	require.NoError(t, a.run(ctx, []string{"restore", name}))

	members, err := a.club.ListMembers(ctx, database.MemberFilter{})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "Smith", members[0].Surname)
}

func TestDestructiveCommandsNeedConfirmation(t *testing.T) {

	a, _ := newTestApp(t)

	for _, command := range []string{"reset-members", "wipe-all"} {
		err := a.run(context.Background(), []string{command})
		assert.ErrorIs(t, err, errNeedsConfirmation, command)
	}
}

func TestBadCommands(t *testing.T) {

	a, _ := newTestApp(t)

	var testData = [][]string{
		{"no-such-command"},
		{"export"},
		{"import-csv", "members"},
		{"fee-checkout", "1"},
	}

	for _, args := range testData {
		assert.Error(t, a.run(context.Background(), args), args[0])
	}
}

func TestStats(t *testing.T) {

	a, out := newTestApp(t)

	require.NoError(t, a.run(context.Background(), []string{"stats"}))

	assert.Contains(t, out.String(), `"teams": 5`)
	assert.Contains(t, out.String(), `"playersByCategory"`)
}
