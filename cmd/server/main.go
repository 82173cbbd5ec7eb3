// server runs the workspace membership API over HTTP.
// Requires MEMBERSHIP_DATABASE_URL and LEDGER_DATABASE_URL; see .env.example.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspace-console/backend/internal/audit"
	auditrepo "workspace-console/backend/internal/audit/repository"
	"workspace-console/backend/internal/clustersync"
	"workspace-console/backend/internal/config"
	"workspace-console/backend/internal/db"
	"workspace-console/backend/internal/events"
	"workspace-console/backend/internal/events/producer"
	ledgerrepo "workspace-console/backend/internal/ledger/repository"
	memberrepo "workspace-console/backend/internal/membership/repository"
	"workspace-console/backend/internal/saga"
	"workspace-console/backend/internal/server"
	"workspace-console/backend/internal/server/middleware"
	"workspace-console/backend/internal/telemetry/otel"
	workspacerepo "workspace-console/backend/internal/workspace/repository"
	"workspace-console/backend/internal/workspace/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.MembershipDatabaseURL == "" {
		log.Fatal("MEMBERSHIP_DATABASE_URL is not set; create a .env from .env.example")
	}
	if cfg.LedgerDatabaseURL == "" {
		log.Fatal("LEDGER_DATABASE_URL is not set; create a .env from .env.example")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTelExporterEndpoint, "workspace-console", cfg.OTelExporterInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("otel shutdown: %v", err)
		}
	}()

	memberDB, err := db.Open(cfg.MembershipDatabaseURL)
	if err != nil {
		log.Fatalf("membership db: %v", err)
	}
	defer memberDB.Close()

	ledgerDB, err := db.Open(cfg.LedgerDatabaseURL)
	if err != nil {
		log.Fatalf("ledger db: %v", err)
	}
	defer ledgerDB.Close()

	var syncer clustersync.Syncer
	if cfg.ClusterSyncURL != "" {
		syncer = clustersync.NewClient(cfg.ClusterSyncURL, cfg.SyncTimeout())
	} else {
		log.Println("CLUSTER_SYNC_URL not set; using in-process noop syncer")
		syncer = clustersync.NoopSyncer{}
	}

	// Kafka when configured, OTel log records otherwise.
	var emitter events.Emitter
	if brokers := cfg.EventsKafkaBrokersList(); len(brokers) > 0 {
		kp, err := producer.NewKafkaProducer(brokers, cfg.EventsKafkaTopic)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		defer func() {
			// Fire-and-forget emits may still be in flight.
			time.Sleep(events.ShutdownDrainDuration)
			if err := kp.Close(); err != nil {
				log.Printf("kafka producer close: %v", err)
			}
		}()
		emitter = kp
		log.Printf("membership events -> kafka topic %s", cfg.EventsKafkaTopic)
	} else {
		emitter = otel.NewEventEmitter(providers.LoggerProvider)
	}

	svc := service.NewWorkspaceService(
		workspacerepo.NewPostgresRepository(memberDB),
		memberrepo.NewPostgresRepository(memberDB),
		ledgerrepo.NewPostgresRepository(ledgerDB),
		syncer,
		saga.New(),
		emitter,
		cfg.Region,
		cfg.DefaultWorkspaceLimit,
	)

	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(memberDB), middleware.GetClientIP)

	srv := server.NewServer(cfg.HTTPAddr, server.NewRouter(server.NewHandler(svc), auditLogger))

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down http server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("http server stopped")
}
