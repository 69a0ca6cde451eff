package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	consulapi "github.com/hashicorp/consul/api"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"shopcart/handlers"
	"shopcart/internal/auth"
	"shopcart/internal/cart"
	"shopcart/internal/catalog"
	"shopcart/internal/config"
	"shopcart/internal/consul"
	"shopcart/internal/logging"
	"shopcart/internal/screen"
	"shopcart/internal/stores/database"
	"shopcart/internal/stores/kafka"
	"shopcart/internal/stores/rabbitmq"
	"shopcart/pkg/logkey"
)

func main() {
	err := startApp()
	if err != nil {
		slog.Error("application stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flush, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	/*
		//------------------------------------------------------//
		                Cart store
		//------------------------------------------------------//
	*/
	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	slog.Info("cart store ready", slog.String("Driver", cfg.StoreDriver))

	/*
		//------------------------------------------------------//
		                Change publishers
		//------------------------------------------------------//
	*/
	var publishers []cart.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		k, err := kafka.NewConf(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return fmt.Errorf("setting up kafka: %w", err)
		}
		defer k.Close()
		publishers = append(publishers, k)
	}
	if cfg.RabbitMQURI != "" {
		r, err := rabbitmq.NewConf(cfg.RabbitMQURI, cfg.RabbitQueue)
		if err != nil {
			return fmt.Errorf("setting up rabbitmq: %w", err)
		}
		defer r.Close()
		publishers = append(publishers, r)
	}

	opts := []cart.Option{cart.WithCurrencySymbol(cfg.CurrencySymbol)}
	if len(publishers) > 0 {
		opts = append(opts, cart.WithPublisher(cart.Publishers(publishers...)))
	}
	svc := cart.NewService(store, opts...)
	defer svc.Close()

	/*
		//------------------------------------------------------//
		                Catalog + screens
		//------------------------------------------------------//
	*/
	var consulClient *consulapi.Client
	if cfg.ConsulAddr != "" {
		consulClient, err = consul.NewClient(cfg.ConsulAddr)
		if err != nil {
			return err
		}
	}
	catalogClient := newCatalogClient(cfg, consulClient)
	slog.Info("catalog source", slog.String("Source", catalogClient.String()))

	index := catalog.NewIndex()
	listing := screen.NewListing(svc, catalogClient, index)
	detail := screen.NewDetail(svc, index)
	review := screen.NewCartReview(svc, catalogClient, index)

	if err := listing.Load(ctx); err != nil {
		// The listing can be reloaded through the API once the catalog is reachable.
		slog.Warn("initial catalog load failed", slog.String(logkey.ERROR, err.Error()))
	}
	if err := review.Load(ctx); err != nil {
		slog.Warn("initial cart load failed", slog.String(logkey.ERROR, err.Error()))
	}
	go listing.Watch(ctx)
	go detail.Watch(ctx)
	go review.Watch(ctx)

	/*
		//------------------------------------------------------//
		                Auth
		//------------------------------------------------------//
	*/
	var keys *auth.Keys
	if cfg.AuthSecret != "" {
		keys, err = auth.NewKeys([]byte(cfg.AuthSecret))
		if err != nil {
			return fmt.Errorf("setting up auth: %w", err)
		}
	}

	/*
		//------------------------------------------------------//
		                Servers
		//------------------------------------------------------//
	*/
	h := handlers.NewHandler(svc, listing, detail, review)
	api := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      handlers.API(cfg.EndpointPrefix, cfg.GinMode, keys, cfg.CORSOrigins, h),
	}

	if consulClient != nil {
		deregister, err := registerWithConsul(cfg, consulClient)
		if err != nil {
			// Discovery is optional; the API stays reachable on its address.
			slog.Warn("consul registration failed", slog.String(logkey.ERROR, err.Error()))
		} else {
			defer deregister()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server starting", slog.String("Addr", cfg.HTTPAddr))
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handlers.UnaryLogger))
		handlers.RegisterCartServiceServer(grpcServer, handlers.NewCartItemServiceHandler(svc))
		healthpb.RegisterHealthServer(grpcServer, health.NewServer())
		g.Go(func() error {
			slog.Info("grpc server starting", slog.String("Addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		if err := api.Shutdown(shutdownCtx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (cart.Store, *sql.DB, error) {
	var (
		dialect cart.Dialect
		dsn     string
	)
	switch cfg.StoreDriver {
	case "memory":
		return cart.NewMemoryStore(), nil, nil
	case "postgres":
		dialect, dsn = cart.DialectPostgres, cfg.DatabaseURL
	default:
		dialect, dsn = cart.DialectSQLite, cfg.SQLitePath
	}

	db, err := database.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cart database: %w", err)
	}
	store, err := cart.NewSQLStore(db, dialect)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

func newCatalogClient(cfg config.Config, client *consulapi.Client) *catalog.Client {
	if cfg.UseConsul() {
		return catalog.NewClient(catalog.WithConsul(client, cfg.CatalogServiceName))
	}
	return catalog.NewClient(catalog.WithURLs(cfg.CatalogURL, cfg.SuggestedURL))
}

// registerWithConsul announces the HTTP API and returns the function that withdraws it.
func registerWithConsul(cfg config.Config, client *consulapi.Client) (func(), error) {
	_, portText, err := net.SplitHostPort(cfg.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("parsing HTTP_ADDR: %w", err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return nil, fmt.Errorf("parsing HTTP_ADDR port: %w", err)
	}

	id := cfg.ServiceName + "-" + uuid.NewString()
	checkURL := fmt.Sprintf("http://%s:%d/ping", cfg.ServiceHost, port)
	if err := consul.RegisterService(client, id, cfg.ServiceName, cfg.ServiceHost, port, checkURL); err != nil {
		return nil, err
	}
	return func() {
		if err := consul.DeregisterService(client, id); err != nil {
			slog.Warn("consul deregistration failed", slog.String(logkey.ERROR, err.Error()))
		}
	}, nil
}
