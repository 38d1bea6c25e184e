package main

import (
	"context"
	"fmt"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-marketplace/internal/indexer"
	"github.com/ZilDuck/zilliqa-marketplace/internal/messenger"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var container *di.Container

func main() {
	config.Init("marketplaced")
	defer sentry.Flush(2 * time.Second)

	var err error
	container, err = di.NewContainer(config.Get())
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}
	defer func() {
		if err := container.Delete(); err != nil {
			zap.L().With(zap.Error(err)).Warn("Failed to close container")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Get().ListingStore == di.ElasticStore {
		installMappings()
	}

	if _, err := container.GetMarketplace(); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace")
	}

	subscribe(ctx)

	server, err := container.GetApiServer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build API")
	}

	go serve(ctx, "health", ":"+config.Get().HealthPort, router())
	zap.L().With(zap.String("port", config.Get().Api.Port)).Info("Marketplace Started")
	serve(ctx, "api", ":"+config.Get().Api.Port, server.Router())
}

func installMappings() {
	elastic, err := container.GetElastic()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
	}
	if err := elastic.InstallMappings(config.Get().ElasticSearch.MappingDir); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to install mappings")
	}
}

// subscribe sends listing events to the queue when one is configured, otherwise indexes them directly.
func subscribe(ctx context.Context) {
	manager := container.GetEventManager()

	if service, err := container.GetMessenger(); err == nil {
		zap.L().Info("Publishing listing events to queue")
		messenger.PublishListingEvents(manager, service)
		return
	}

	if config.Get().ListingStore != di.ElasticStore {
		zap.L().Info("Listing events are not persisted")
		return
	}

	eventIndexer, err := container.GetListingEventIndexer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start listing event indexer")
	}
	eventIndexer.Listen(manager)
	go flush(ctx, eventIndexer)
}

func flush(ctx context.Context, eventIndexer indexer.ListingEventIndexer) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			eventIndexer.Flush()
			return
		case <-ticker.C:
			if persisted := eventIndexer.Flush(); persisted > 0 {
				zap.L().With(zap.Int("events", persisted)).Debug("Flushed listing events")
			}
		}
	}
}

func serve(ctx context.Context, name, addr string, handler http.Handler) {
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zap.L().With(zap.Error(err), zap.String("server", name)).Error("Failed to start server")
	}
}

func router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
