package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timetrack.org/internal/auth"
	"timetrack.org/internal/authz"
	"timetrack.org/internal/config"
	"timetrack.org/internal/httpapi"
	"timetrack.org/internal/obs"
	"timetrack.org/internal/store/pg"
	"timetrack.org/internal/track"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := pg.Open(cfg.PGDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	store := pg.NewStore(db)

	codec, err := auth.NewCodec([]byte(cfg.JWTSecret), nil)
	if err != nil {
		log.Fatalf("codec: %v", err)
	}
	authSvc, err := auth.NewService(store.Users(), store.Credentials(), codec,
		auth.WithAccessTTL(cfg.AccessTTL),
		auth.WithRefreshTTL(cfg.RefreshTTL),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	guard, err := authz.NewGuard(store.Users(), store)
	if err != nil {
		log.Fatalf("guard: %v", err)
	}
	userSvc, err := track.NewUserService(store.Users())
	if err != nil {
		log.Fatalf("user service: %v", err)
	}
	projectSvc, err := track.NewProjectService(store.Projects(), store.Users())
	if err != nil {
		log.Fatalf("project service: %v", err)
	}
	taskSvc, err := track.NewTaskService(store.Tasks(), store.Projects())
	if err != nil {
		log.Fatalf("task service: %v", err)
	}
	recordSvc, err := track.NewRecordService(store.Records(), store.Tasks(), store.Users())
	if err != nil {
		log.Fatalf("record service: %v", err)
	}

	api := httpapi.New(
		authSvc, guard, userSvc, projectSvc, taskSvc, recordSvc,
		httpapi.ReadyProbe{DB: db},
		version,
		httpapi.Options{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			MaxBodyBytes:   cfg.MaxBodyBytes,
		},
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting timetrack-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
