//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/database"
	"github.com/drivehub/service-rental/internal/common/kafka"
	contractDomain "github.com/drivehub/service-rental/internal/domain/contract"
	rentalEvents "github.com/drivehub/service-rental/internal/events"
	"github.com/drivehub/service-rental/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// rentalStack holds wired-up rental service components.
type rentalStack struct {
	Service         *application.ContractService
	Consumer        *rentalEvents.FleetEventConsumer
	CleanupProducer func()
}

// setupDatabase starts a PostgreSQL container and applies the SQL migrations.
func setupDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("test_rental"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	dbURL, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dbURL), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbURL, "migrations", zap.NewNop()))

	return db, func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupDB := setupDatabase(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, contractDomain.TopicContractEvents, rentalEvents.TopicFleetEvents)

	cleanup := func() {
		if err := testcontainers.TerminateContainer(kafkaContainer); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		cleanupDB()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// newContractService wires the contract service against db. publisher may be nil.
func newContractService(db *gorm.DB, publisher application.EventPublisher, logger *zap.Logger) *application.ContractService {
	carRepo := repository.NewGormCarRepository(db)
	clientRepo := repository.NewGormClientRepository(db)
	return application.NewContractService(application.ContractServiceDeps{
		Contracts: repository.NewGormContractRepository(db),
		Cars:      carRepo,
		Gate:      application.NewEligibilityService(clientRepo, clientRepo, carRepo),
		Tx:        repository.NewGormTransactor(db, 3, nil, logger),
		Publisher: publisher,
		Logger:    logger,
	})
}

// setupRentalStack wires up the full rental service stack with Kafka.
func setupRentalStack(t *testing.T, db *gorm.DB, brokers []string) *rentalStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	svc := newContractService(db, producer, logger)

	groupID := fmt.Sprintf("test-rental-%s", uuid.New().String()[:8])
	consumer := rentalEvents.NewFleetEventConsumer(brokers, groupID, svc, logger)

	return &rentalStack{
		Service:         svc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedCar inserts an AVAILABLE car.
func seedCar(t *testing.T, db *gorm.DB, dailyPrice string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	suffix := id.String()[:8]
	model := repository.CarModel{
		ID:                 id,
		RegistrationNumber: "INT-" + suffix,
		VIN:                "VIN" + suffix + "000000",
		Model:              "Skoda Octavia",
		DailyPrice:         decimal.RequireFromString(dailyPrice),
		Status:             "AVAILABLE",
		Year:               2022,
	}
	require.NoError(t, db.Create(&model).Error, "failed to seed car")
	return id
}

// seedClient inserts a client with a verified identity document.
func seedClient(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	client := repository.ClientModel{
		ID:       id,
		Email:    id.String()[:8] + "@example.test",
		FullName: "Integration Client",
	}
	require.NoError(t, db.Create(&client).Error, "failed to seed client")

	doc := repository.DocumentModel{
		ID:        uuid.New(),
		ClientID:  id,
		Kind:      "IDENTITY",
		Number:    "P" + id.String()[:8],
		Verified:  true,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&doc).Error, "failed to seed document")
	return id
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForContractState polls the contracts table until the state matches.
func waitForContractState(t *testing.T, db *gorm.DB, contractID uuid.UUID, expected string, timeout time.Duration) repository.ContractModel {
	t.Helper()
	var result repository.ContractModel
	require.Eventually(t, func() bool {
		var model repository.ContractModel
		if err := db.Where("id = ?", contractID).First(&model).Error; err != nil {
			return false
		}
		if model.State == expected {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "contract did not transition to %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
