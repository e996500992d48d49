package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc/health"

	grpchealth "github.com/dtroode/parley-server/internal/api/grpc/health"
	grpcrouter "github.com/dtroode/parley-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/parley-server/internal/api/grpc/server"
	httpcontext "github.com/dtroode/parley-server/internal/api/http/context"
	httprouter "github.com/dtroode/parley-server/internal/api/http/router"
	"github.com/dtroode/parley-server/internal/config"
	"github.com/dtroode/parley-server/internal/logger"
	"github.com/dtroode/parley-server/internal/model"
	"github.com/dtroode/parley-server/internal/password"
	"github.com/dtroode/parley-server/internal/presence"
	"github.com/dtroode/parley-server/internal/realtime"
	badgerrepo "github.com/dtroode/parley-server/internal/repository/badger"
	mongorepo "github.com/dtroode/parley-server/internal/repository/mongo"
	"github.com/dtroode/parley-server/internal/repository/postgres"
	"github.com/dtroode/parley-server/internal/server"
	"github.com/dtroode/parley-server/internal/service"
	storage "github.com/dtroode/parley-server/internal/storage/minio"
	"github.com/dtroode/parley-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

// stores bundles the repositories of the configured backend.
type stores struct {
	users    model.UserStore
	messages model.MessageStore
	pinger   model.Pinger
	close    func(ctx context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	logAppVersion()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize credential store", "driver", cfg.Store.Driver, "error", err)
	}
	logger.Info("credential store ready", "driver", cfg.Store.Driver)

	pingers := map[string]model.Pinger{"store": st.pinger}

	var archive model.Storage
	if cfg.Storage.Enabled {
		minioClient, err := storage.NewClient(ctx, storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize storage client", "error", err)
		}
		archive = minioClient
		pingers["storage"] = minioClient
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	authService := service.NewAuth(st.users, password.NewBcrypt(cfg.Password.Cost), tokenManager, logger)
	userService := service.NewUser(st.users, logger)
	messageService := service.NewMessage(st.messages, st.users, archive, logger)

	hub := realtime.NewHub(presence.NewRegistry(), cfg.Realtime.UnconditionalEvict, logger)
	wsHandler := realtime.NewHandler(authService, hub, messageService, realtime.Config{
		SendBuffer:     cfg.Realtime.SendBuffer,
		MaxMessageSize: cfg.Realtime.MaxMessageSize,
		WriteWait:      cfg.Realtime.WriteWait,
		PongWait:       cfg.Realtime.PongWait,
		PingPeriod:     cfg.Realtime.PingPeriod,
		HistoryLimit:   cfg.Realtime.HistoryLimit,
	}, logger)

	engine := httprouter.New(
		authService,
		userService,
		messageService,
		hub,
		authService,
		httpcontext.NewManager(),
		wsHandler.Handle,
		logger,
	).Register()

	servers := []model.Server{
		server.NewHTTPServer(engine, fmt.Sprintf(":%s", cfg.HTTP.Port)),
	}

	if cfg.GRPC.Enabled {
		healthServer := health.NewServer()
		checker := grpchealth.NewChecker(healthServer, pingers, cfg.GRPC.HealthInterval, logger)
		go checker.Run(ctx)

		grpcSrv := grpcrouter.New(healthServer, logger).Register()
		servers = append(servers, grpcserver.NewGRPCServer(grpcSrv, fmt.Sprintf(":%s", cfg.GRPC.Port)))
	}

	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "server", s.Name(), "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "server", s.Name(), "error", err)
				stop()
			}
		}(s)
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Info("closing realtime connections",
		"connections", hub.Connections(),
		"online", hub.Online())
	shutdown(shutdownCtx, servers, hub, logger)
	wg.Wait()

	if err := st.close(shutdownCtx); err != nil {
		logger.Error("failed to close credential store", "error", err)
	}

	logger.Info("shutdown complete")
}

// shutdown stops the servers before closing the realtime connections, so no
// WebSocket can be upgraded after CloseAll. Hijacked connections are
// invisible to http.Server.Shutdown and must be closed by the hub.
func shutdown(ctx context.Context, servers []model.Server, hub interface{ CloseAll() }, logger *logger.Logger) {
	for _, s := range servers {
		if err := s.Stop(ctx); err != nil {
			logger.Error("error during server shutdown", "server", s.Name(), "error", err, "address", s.Address())
		}
	}
	hub.CloseAll()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		conn, err := mongorepo.NewConnection(ctx, mongorepo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    mongorepo.NewUserRepository(conn),
			messages: mongorepo.NewMessageRepository(conn),
			pinger:   conn,
			close:    conn.Close,
		}, nil

	case config.DriverBadger:
		conn, err := badgerrepo.NewConnection(badgerrepo.Config{
			Path:     cfg.Badger.Path,
			InMemory: cfg.Badger.InMemory,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    badgerrepo.NewUserRepository(conn),
			messages: badgerrepo.NewMessageRepository(conn),
			pinger:   conn,
			close:    func(context.Context) error { return conn.Close() },
		}, nil

	default:
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    postgres.NewUserRepository(conn),
			messages: postgres.NewMessageRepository(conn),
			pinger:   conn,
			close:    func(context.Context) error { return conn.Close() },
		}, nil
	}
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
