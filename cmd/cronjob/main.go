package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/database"
	"github.com/drivehub/service-rental/internal/common/kafka"
	"github.com/drivehub/service-rental/internal/common/logger"
	"github.com/drivehub/service-rental/internal/config"
	"github.com/drivehub/service-rental/internal/jobs"
	"github.com/drivehub/service-rental/internal/repository"
	"github.com/drivehub/service-rental/internal/scheduler"
)

func main() {
	runOnce := flag.String("run-once", "", "Run a job once and exit ('sweep-due-contracts', 'report-contract-stats', 'all')")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-rental-cronjob")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Sweep transitions never take the car lock.
	carRepo := repository.NewGormCarRepository(db)
	clientRepo := repository.NewGormClientRepository(db)
	contractService := application.NewContractService(application.ContractServiceDeps{
		Contracts: repository.NewGormContractRepository(db),
		Cars:      carRepo,
		Gate:      application.NewEligibilityService(clientRepo, clientRepo, carRepo),
		Tx:        repository.NewGormTransactor(db, cfg.TxMaxRetries, nil, log),
		Publisher: kafkaProducer,
		Logger:    log,
	})

	jobRunner := jobs.NewJobRunner(contractService, cfg.CronConfig.JobTimeout, log)

	if *runOnce != "" {
		log.Info("running job once", zap.String("job", *runOnce))
		switch *runOnce {
		case "sweep-due-contracts":
			jobRunner.SweepDueContracts()
		case "report-contract-stats":
			jobRunner.ReportContractStats()
		case "all":
			jobRunner.RunAll()
		default:
			fmt.Fprintf(os.Stderr, "unknown job %q; available: sweep-due-contracts, report-contract-stats, all\n", *runOnce)
			os.Exit(1)
		}
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner, scheduler.Schedules{
		SweepDueContracts:   cfg.CronConfig.SweepSchedule,
		ReportContractStats: cfg.CronConfig.StatsSchedule,
	}, log)
	if err != nil {
		log.Fatal("failed to create scheduler", zap.Error(err))
	}

	cronScheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cronjob scheduler...")
	cronScheduler.Stop()
}
