package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/edubd/internal/client/client"
	"github.com/dmitrijs2005/edubd/internal/client/config"
	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/gate"
	"github.com/dmitrijs2005/edubd/internal/client/notify"
	"github.com/dmitrijs2005/edubd/internal/client/services"
	"github.com/dmitrijs2005/edubd/internal/client/session"
	"github.com/dmitrijs2005/edubd/internal/filex"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	store   *session.Store
	router  *gate.Router
	dialog  *dialog.Coordinator
	notes   *notify.Channel
	auth    services.AuthService
	account services.AccountService

	reader *bufio.Reader

	outMu  sync.Mutex
	out    io.Writer
	unsubs []func()
}

// NewApp opens the local database, builds the gateway client and wires the
// session store, router, dialog and notification channel together.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	gw, err := client.NewHTTPClient(c.GatewayURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestRate, 1),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a, err := newApp(c, log, gw, session.NewSQLiteTokenStore(db), in, out)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.db = db
	return a, nil
}

// newApp wires everything above the storage and transport layers.
func newApp(c *config.Config, log logging.Logger, gw client.Client, tokens session.TokenStore, in io.Reader, out io.Writer) (*App, error) {
	a := &App{
		config: c,
		log:    log,
		dialog: dialog.NewCoordinator(),
		notes:  notify.NewChannel(notify.WithTTL(c.NotificationTTL)),
		reader: bufio.NewReader(in),
		out:    out,
	}

	a.store = session.NewStore(gw, tokens, session.WithLogger(log))
	router, err := gate.NewRouter(a.store, a.dialog, gate.WithRouterLogger(log))
	if err != nil {
		return nil, err
	}
	a.router = router
	a.store.SetNavigator(router)

	a.auth = services.NewAuthService(gw, a.store, a.dialog, a.notes, router, log)
	a.account = services.NewAccountService(gw, a.store, a.notes, log)

	a.unsubs = append(a.unsubs,
		a.notes.Subscribe(func(n *notify.Notification) {
			if n != nil {
				a.say(renderNotification(*n))
			}
		}),
		a.dialog.Subscribe(func(s dialog.State) {
			a.say(renderDialog(s))
		}),
		a.router.Subscribe(func(p gate.Page) {
			a.say(renderPage(p))
		}),
	)
	return a, nil
}

// Run bootstraps the session in the background and serves the REPL until
// the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	go func() {
		if err := a.store.Bootstrap(ctx); err != nil {
			a.log.Error(ctx, "bootstrap", "error", err)
		}
	}()

	a.say("Welcome to EduBD (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	for _, fn := range a.unsubs {
		fn()
	}
	a.unsubs = nil
	a.router.Close()
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	snap := a.store.Snapshot()
	s := snap.Status.String()
	if snap.User != nil {
		s = fmt.Sprintf("%s %s", snap.User.Username, snap.User.Role)
	}
	return fmt.Sprintf("(%s) %s", s, a.router.Current().Location)
}

// say writes one line to the user. Subscribers call it from whatever
// goroutine published, so writes are serialized.
func (a *App) say(line string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, line)
}
