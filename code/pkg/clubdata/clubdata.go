// clubdata is the layer that application code calls to manage the club's
// data.  It validates the input, works out derived values such as ages,
// fees and dates, enforces the business rules and passes the results to
// the store.  On startup it waits for the store to be ready and moves any
// data left in the legacy key-value store into it.
package clubdata

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/legacy"
)

// Defaults for the options.
const (
	DefaultReadyPollInterval = 100 * time.Millisecond
	DefaultReadyTimeout      = 10 * time.Second
	DefaultStalePendingAge   = 7 * 24 * time.Hour
	DefaultAdultFee          = 20.0
	DefaultJuniorFee         = 10.0
	DefaultAdultAge          = 18
)

// Store is the set of store operations that the Club uses.
// *database.Database satisfies it.
type Store interface {
	Ready() bool

	AddMember(ctx context.Context, member *database.Member) (int64, error)
	GetMembers(ctx context.Context, filter database.MemberFilter) ([]database.Member, error)
	GetMember(ctx context.Context, id int64) (*database.Member, error)
	UpdateMemberValidation(ctx context.Context, id, adminID int64, at time.Time) error
	SetMemberPaid(ctx context.Context, id int64, paid bool) error
	DeleteMember(ctx context.Context, id int64) error
	ClearMembersAndResetCounter(ctx context.Context) error

	AddFriend(ctx context.Context, friend *database.Friend) (int64, error)
	GetFriends(ctx context.Context, filter database.FriendFilter) ([]database.Friend, error)
	DeleteFriend(ctx context.Context, id int64) error

	AddTeam(ctx context.Context, team *database.Team) (int64, error)
	GetTeams(ctx context.Context) ([]database.Team, error)

	AddPlayer(ctx context.Context, player *database.Player) (int64, error)
	GetPlayers(ctx context.Context, filter database.PlayerFilter) ([]database.Player, error)
	DeletePlayer(ctx context.Context, id int64) error

	AddEvent(ctx context.Context, event *database.Event) (int64, error)
	GetEvents(ctx context.Context, query database.EventQuery) ([]database.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	GetAdministrators(ctx context.Context) ([]database.Administrator, error)
	GetAdministratorByEmail(ctx context.Context, email string) (*database.Administrator, error)
	SetAdministratorPassword(ctx context.Context, id int64, hash string) error

	GetConfigEntry(ctx context.Context, key string) (*database.ConfigEntry, error)
	UpsertConfigEntry(ctx context.Context, entry *database.ConfigEntry) (bool, error)

	GetStatistics(ctx context.Context) (*database.Statistics, error)
	Export(ctx context.Context) (*database.Snapshot, error)
	Import(ctx context.Context, snap *database.Snapshot) error
	ClearAllCollections(ctx context.Context) error
	DropSchema(ctx context.Context) error
	Reopen(ctx context.Context) error
}

// Fees holds the membership fees.  Members aged AdultAge or more pay the
// adult fee, younger members the junior fee.  Members who don't give a
// birth date pay the adult fee.
type Fees struct {
	Adult    float64
	Junior   float64
	AdultAge int
}

// Options configures a Club.  Zero values are replaced by the defaults.
type Options struct {
	Logger            *slog.Logger
	Clock             clockwork.Clock
	Location          *time.Location // The time zone used to work out today's date.
	Fees              Fees
	ReadyPollInterval time.Duration
	ReadyTimeout      time.Duration
	StalePendingAge   time.Duration
}

// Club provides the validated operations on the club's data.  It's safe
// for concurrent use.
type Club struct {
	store   Store
	legacy  legacy.Store
	logger  *slog.Logger
	clock   clockwork.Clock
	loc     *time.Location
	fees    Fees
	poll    time.Duration
	timeout time.Duration
	stale   time.Duration
}

// New creates a Club using the given store and legacy store.  The legacy
// store may be nil if there is no old data to migrate.
func New(store Store, legacyStore legacy.Store, opts Options) *Club {

	c := Club{
		store:   store,
		legacy:  legacyStore,
		logger:  opts.Logger,
		clock:   opts.Clock,
		loc:     opts.Location,
		fees:    opts.Fees,
		poll:    opts.ReadyPollInterval,
		timeout: opts.ReadyTimeout,
		stale:   opts.StalePendingAge,
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.fees.Adult == 0 {
		c.fees.Adult = DefaultAdultFee
	}
	if c.fees.Junior == 0 {
		c.fees.Junior = DefaultJuniorFee
	}
	if c.fees.AdultAge == 0 {
		c.fees.AdultAge = DefaultAdultAge
	}
	if c.poll == 0 {
		c.poll = DefaultReadyPollInterval
	}
	if c.timeout == 0 {
		c.timeout = DefaultReadyTimeout
	}
	if c.stale == 0 {
		c.stale = DefaultStalePendingAge
	}

	return &c
}

// Initialize waits for the store to be ready and then moves any data in
// the legacy store into it.  It returns a report for each legacy key that
// was found.  If the store doesn't become ready within the timeout it
// returns ErrStoreNotReady.
func (c *Club) Initialize(ctx context.Context) ([]MigrationReport, error) {

	waitError := c.waitUntilReady(ctx)
	if waitError != nil {
		c.logger.Error("Initialize: " + waitError.Error())
		return nil, waitError
	}

	return c.migrate(ctx)
}

// waitUntilReady polls the store's ready flag.
func (c *Club) waitUntilReady(ctx context.Context) error {

	if c.store.Ready() {
		return nil
	}

	deadline := c.clock.NewTimer(c.timeout)
	defer deadline.Stop()

	for {
		poll := c.clock.NewTimer(c.poll)

		select {
		case <-ctx.Done():
			poll.Stop()
			return ctx.Err()

		case <-deadline.Chan():
			poll.Stop()
			if c.store.Ready() {
				return nil
			}
			return ErrStoreNotReady

		case <-poll.Chan():
			if c.store.Ready() {
				return nil
			}
		}
	}
}

// today returns today's date in the club's time zone, as YYYY-MM-DD.
func (c *Club) today() string {
	return c.clock.Now().In(c.loc).Format(dateLayout)
}

// SyncResult is returned by SyncWithServer.
type SyncResult struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// SyncStatusNotImplemented is the status returned by SyncWithServer.
const SyncStatusNotImplemented = "not_implemented"

// SyncWithServer is the hook for synchronising with a remote server.
// There is no server yet, so it does nothing.
func (c *Club) SyncWithServer(ctx context.Context) (*SyncResult, error) {
	c.logger.Info("SyncWithServer: not implemented")
	return &SyncResult{Status: SyncStatusNotImplemented, At: c.clock.Now()}, nil
}
