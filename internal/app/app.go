package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/handler"
	"github.com/libradesk/libradesk/internal/server"
	"github.com/libradesk/libradesk/internal/service/auth"
	"github.com/libradesk/libradesk/internal/service/catalog"
	"github.com/libradesk/libradesk/internal/service/loans"
	"github.com/libradesk/libradesk/internal/service/lookup"
	"github.com/libradesk/libradesk/internal/service/people"
	"github.com/libradesk/libradesk/internal/service/stats"
	"github.com/libradesk/libradesk/internal/session"
	"github.com/libradesk/libradesk/internal/store"
	"github.com/libradesk/libradesk/pkg/httpclient"
	"github.com/libradesk/libradesk/pkg/logger"
)

// Core bundles everything both the CLI commands and the serve mode need:
// the restored session, the remote collaborators and the local store.
type Core struct {
	Log      *zap.Logger
	Store    *store.Store
	Sessions *session.Manager
	Auth     *auth.Service
	Catalog  *catalog.Service
	Loans    *loans.Service
	People   *people.Service
	Stats    *stats.Service
	Lookup   *lookup.Service
}

// sessionRef breaks the construction cycle between the bearer-injecting
// client and the session manager: the client is built against the ref, the
// manager is bound into it afterwards. Until bound it behaves as logged out.
type sessionRef struct {
	mu  sync.RWMutex
	mgr *session.Manager
}

func (r *sessionRef) bind(mgr *session.Manager) {
	r.mu.Lock()
	r.mgr = mgr
	r.mu.Unlock()
}

func (r *sessionRef) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.mgr == nil {
		return ""
	}
	return r.mgr.Token()
}

func (r *sessionRef) invalidate() {
	r.mu.RLock()
	mgr := r.mgr
	r.mu.RUnlock()
	if mgr != nil {
		mgr.Invalidate()
	}
}

// NewCore wires the client stack. All remote calls share one
// bearer-injecting client whose unauthorized hook drops the session.
func NewCore(ctx context.Context, cfg config.Config, log *zap.Logger) (*Core, error) {
	st, err := store.New(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}

	ref := &sessionRef{}
	client := httpclient.New(ref,
		httpclient.WithUnauthorized(ref.invalidate),
	)
	authSvc := auth.NewService(log, client, cfg.API)
	sessions := session.NewManager(ctx, authSvc, st, log)
	ref.bind(sessions)

	return &Core{
		Log:      log,
		Store:    st,
		Sessions: sessions,
		Auth:     authSvc,
		Catalog:  catalog.NewService(log, client, cfg.API),
		Loans:    loans.NewService(log, client, cfg.API),
		People:   people.NewService(log, client, cfg.API),
		Stats:    stats.NewService(log, client, cfg.API),
		Lookup:   lookup.NewService(log, cfg.Lookup),
	}, nil
}

func (c *Core) Close() error {
	return c.Store.Close()
}

// Run starts the local facade and blocks until a termination signal.
func Run(cfg config.Config) error {
	log := logger.NewLogger(cfg.Log, "libradesk")

	core, err := NewCore(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer core.Close() //nolint:errcheck

	h := handler.New(log, core.Catalog, core.Loans, core.People, core.Stats, core.Sessions, core.Store)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}
