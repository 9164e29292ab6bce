package entrypoint

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/frenchmaster/internal/config"
	"github.com/mrlokans/frenchmaster/internal/content"
	"github.com/mrlokans/frenchmaster/internal/database"
	"github.com/mrlokans/frenchmaster/internal/database/records"
	"github.com/mrlokans/frenchmaster/internal/database/userdata"
	"github.com/mrlokans/frenchmaster/internal/flashcards"
	http_controllers "github.com/mrlokans/frenchmaster/internal/http"
	"github.com/mrlokans/frenchmaster/internal/kvstore"
	"github.com/mrlokans/frenchmaster/internal/maintenance"
	"github.com/mrlokans/frenchmaster/internal/scheduler"
	"github.com/mrlokans/frenchmaster/internal/selection"
	"github.com/mrlokans/frenchmaster/internal/session"
	"github.com/mrlokans/frenchmaster/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill sends SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// stack is the wired application. Fields backed by the database are nil
// when it could not be opened.
type stack struct {
	db       *database.Database
	repo     *records.Repository
	users    *userdata.Repository
	kv       *kvstore.Store
	service  *flashcards.Service
	selector *selection.Selector
	purger   *maintenance.Purger
}

// build opens storage and creates the content service. A database that
// cannot be opened is logged and the service runs cache-only; a KV store
// that cannot be opened falls back to memory.
func build(cfg *config.Config) *stack {
	st := &stack{}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Printf("WARNING: %v; continuing without durable store", err)
	} else {
		st.db = db
		st.repo = records.NewRepository(db.DB)
		st.users = userdata.NewRepository(db.DB)
		st.purger = maintenance.NewPurger(st.repo)
	}

	kv, err := kvstore.Open(cfg.KVStore.Path)
	if err != nil {
		log.Printf("WARNING: %v; keeping auxiliary state in memory", err)
		kv = kvstore.NewMemory()
	}
	st.kv = kv
	if kv.Path() != "" {
		log.Printf("Auxiliary store at %s", kv.Path())
	}

	opts := flashcards.Options{
		KV:            kv,
		Bundle:        content.DirSource{Dir: cfg.Content.Dir},
		Retired:       cfg.Content.Retired,
		DefaultUserID: cfg.Content.DefaultUserID,
	}
	// leave the interfaces nil rather than typed-nil
	if st.repo != nil {
		opts.Store = st.repo
		opts.Users = st.users
	}
	st.service = flashcards.NewService(opts)
	st.selector = selection.NewSelector(st.service, kv)

	return st
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting FrenchMaster v%s", version)

	st := build(cfg)
	if st.db != nil {
		defer func() {
			if err := st.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()
	}

	// Warm the cache; requests arriving earlier wait for this pass
	go st.service.Initialize(context.Background(), cfg.Content.DefaultUserID)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && st.db != nil {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		var err error
		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Printf("WARNING: Failed to initialize task queue, admin actions will run inline: %v", err)
		} else {
			defer func() {
				if err := taskClient.Close(); err != nil {
					log.Printf("Error closing task client: %v", err)
				}
			}()

			taskClient.Register(
				tasks.NewRefreshContentQueue(st.service),
				tasks.NewPurgePredefinedQueue(st.purger, st.service),
			)

			var taskCtx context.Context
			taskCtx, taskCtxCancel = context.WithCancel(context.Background())
			go taskClient.Start(taskCtx)
		}
	}

	// Periodic refresh
	refreshScheduler := scheduler.NewRefreshScheduler(st.service, cfg.Refresh.Enabled, cfg.Refresh.Schedule)
	if err := refreshScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: refresh scheduler not started: %v", err)
	}

	sessionManager, err := session.NewManager(st.sqlDB(), cfg.Session)
	if err != nil {
		log.Printf("WARNING: session store unavailable, using memory: %v", err)
		sessionManager, _ = session.NewManager(nil, cfg.Session)
	}

	routerCfg := http_controllers.RouterConfig{
		Content:       st.service,
		Practice:      st.selector,
		Scheduler:     refreshScheduler,
		Sessions:      sessionManager,
		DefaultUserID: cfg.Content.DefaultUserID,
		Version:       version,
	}
	if st.db != nil {
		routerCfg.Purger = st.purger
		routerCfg.Learners = st.users
		routerCfg.Database = st.db
	}
	if taskClient != nil {
		routerCfg.Tasks = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		refreshScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

func (st *stack) sqlDB() *sql.DB {
	if st.db == nil {
		return nil
	}
	sqlDB, err := st.db.DB.DB()
	if err != nil {
		log.Printf("WARNING: Failed to get SQL DB for sessions: %v", err)
		return nil
	}
	return sqlDB
}
