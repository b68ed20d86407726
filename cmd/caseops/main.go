package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/lexmigra/caseops/internal/billing/application"
	billingdomain "github.com/lexmigra/caseops/internal/billing/domain"
	billingmysql "github.com/lexmigra/caseops/internal/billing/infrastructure/persistence/mysql"
	billinghttp "github.com/lexmigra/caseops/internal/billing/interfaces/http"
	caseapp "github.com/lexmigra/caseops/internal/casefile/application"
	casedomain "github.com/lexmigra/caseops/internal/casefile/domain"
	casemysql "github.com/lexmigra/caseops/internal/casefile/infrastructure/persistence/mysql"
	casehttp "github.com/lexmigra/caseops/internal/casefile/interfaces/http"
	slaapp "github.com/lexmigra/caseops/internal/sla/application"
	sladomain "github.com/lexmigra/caseops/internal/sla/domain"
	slamysql "github.com/lexmigra/caseops/internal/sla/infrastructure/persistence/mysql"
	slahttp "github.com/lexmigra/caseops/internal/sla/interfaces/http"
	suspensionapp "github.com/lexmigra/caseops/internal/suspension/application"
	suspensionhttp "github.com/lexmigra/caseops/internal/suspension/interfaces/http"
	"github.com/lexmigra/caseops/pkg/config"
	"github.com/lexmigra/caseops/pkg/db"
	"github.com/lexmigra/caseops/pkg/logger"
	"github.com/lexmigra/caseops/pkg/metrics"
	"github.com/lexmigra/caseops/pkg/middleware"
	"github.com/lexmigra/caseops/pkg/mq"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.toml", "path to config file")
	flag.Parse()

	// 1. Config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	slogger := logger.Get()

	// 3. Database
	database, err := db.Init(db.Config{
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		log.Fatalf("connect database failed: %v", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&casedomain.CaseFile{},
		&casedomain.Document{},
		&casedomain.Requirement{},
		&billingdomain.Contract{},
		&billingdomain.Payment{},
		&sladomain.Alert{},
	); err != nil {
		log.Fatalf("migrate database failed: %v", err)
	}

	// 4. Kafka producer
	producer, err := mq.NewProducer(mq.Config{
		Brokers:      cfg.Kafka.Brokers,
		MaxRetries:   cfg.Kafka.MaxRetries,
		RetryBackoff: cfg.Kafka.RetryBackoff,
	})
	if err != nil {
		log.Fatalf("create kafka producer failed: %v", err)
	}
	defer producer.Close()

	// 5. Metrics
	m := metrics.New(cfg.ServiceName)
	if cfg.Metrics.Enabled {
		go func() {
			if err := m.Serve(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
				slogger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// 6. Repositories
	caseRepo := casemysql.NewCaseRepository(database.DB)
	documentRepo := casemysql.NewDocumentRepository(database.DB)
	requirementRepo := casemysql.NewRequirementRepository(database.DB)
	contractRepo := billingmysql.NewContractRepository(database.DB)
	paymentRepo := billingmysql.NewPaymentRepository(database.DB)
	alertRepo := slamysql.NewAlertRepository(database.DB)

	// 7. Application services
	stateMachine := caseapp.NewCaseStateMachine(
		caseRepo, documentRepo, requirementRepo,
		database, producer, checklistsFromConfig(cfg.Documents), slogger,
	)
	documentLedger := caseapp.NewDocumentLedger(documentRepo, caseRepo, producer, slogger)
	requirementTracker := caseapp.NewRequirementTracker(
		requirementRepo, caseRepo,
		time.Duration(cfg.Requirement.InternalBufferDays)*24*time.Hour, slogger,
	)
	contractService := billingapp.NewContractService(contractRepo, paymentRepo, database, producer, slogger)
	paymentService := billingapp.NewPaymentService(paymentRepo, contractRepo, producer, slogger)
	suspensionController := suspensionapp.NewController(contractRepo, caseRepo, database, producer, slogger)

	monitor := slaapp.NewMonitor(slaapp.ThresholdsFromConfig(cfg.SLA), nil)
	sweep := slaapp.NewSweepJob(
		monitor, caseRepo, requirementRepo, paymentRepo, contractRepo,
		alertRepo, producer, m,
		time.Duration(cfg.SLA.SweepInterval)*time.Second, slogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweep.Start(ctx)

	// 8. HTTP server
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestLogging())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.ServiceName})
	})

	api := engine.Group("/api/v1")
	casehttp.NewHandler(stateMachine, documentLedger, requirementTracker, m).RegisterRoutes(api)
	billinghttp.NewHandler(contractService, paymentService, m).RegisterRoutes(api)
	suspensionhttp.NewHandler(suspensionController, m).RegisterRoutes(api)
	slahttp.NewHandler(alertRepo, sweep).RegisterRoutes(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		slogger.Info("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slogger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slogger.Error("http server shutdown failed", "error", err)
	}
}

// checklistsFromConfig maps configured service type names onto the document
// checklists released when a case enters document collection.
func checklistsFromConfig(cfg config.DocumentConfig) caseapp.DocumentChecklists {
	checklists := make(caseapp.DocumentChecklists, len(cfg.Required))
	for name, codes := range cfg.Required {
		checklists[casedomain.ServiceType(strings.ToUpper(name))] = codes
	}
	return checklists
}
