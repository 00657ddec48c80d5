package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/kafka"
)

// RentalTrigger is the part of the contract service driven by fleet events.
type RentalTrigger interface {
	StartRental(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	CompleteRental(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	StartRentalForCar(ctx context.Context, carID uuid.UUID, at time.Time) (*application.ContractDTO, error)
	CompleteRentalForCar(ctx context.Context, carID uuid.UUID) (*application.ContractDTO, error)
}

// FleetEventConsumer listens to fleet events and moves contracts through pickup and return.
type FleetEventConsumer struct {
	consumer *kafka.Consumer
	service  RentalTrigger
	logger   *zap.Logger
}

// NewFleetEventConsumer creates a new FleetEventConsumer.
func NewFleetEventConsumer(
	brokers []string,
	groupID string,
	service RentalTrigger,
	logger *zap.Logger,
) *FleetEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicFleetEvents, logger)
	return &FleetEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming fleet events. This blocks until the context is cancelled.
func (c *FleetEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *FleetEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *FleetEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from fleet topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}
	return c.handleEvent(ctx, cloudEvent)
}

func (c *FleetEventConsumer) handleEvent(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	switch cloudEvent.Type {
	case CarPickedUp, CarReturned:
	default:
		c.logger.Debug("ignoring unhandled fleet event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}

	var evt CarHandoverEvent
	err := cloudEvent.ParseData(&evt)
	if err != nil || evt.CarID == uuid.Nil {
		c.logger.Error("invalid car handover event data",
			zap.String("type", cloudEvent.Type),
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	at := evt.OccurredAt
	if at.IsZero() {
		at = cloudEvent.Time
	}

	var result *application.ContractDTO
	if cloudEvent.Type == CarPickedUp {
		if evt.ContractID != nil {
			result, err = c.service.StartRental(ctx, *evt.ContractID)
		} else {
			result, err = c.service.StartRentalForCar(ctx, evt.CarID, at)
		}
	} else {
		if evt.ContractID != nil {
			result, err = c.service.CompleteRental(ctx, *evt.ContractID)
		} else {
			result, err = c.service.CompleteRentalForCar(ctx, evt.CarID)
		}
	}

	if err != nil {
		if isPermanent(err) {
			// Redelivery cannot change the outcome.
			c.logger.Warn("fleet event not applicable to any contract",
				zap.String("type", cloudEvent.Type),
				zap.String("car_id", evt.CarID.String()),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to apply fleet event",
			zap.String("type", cloudEvent.Type),
			zap.String("car_id", evt.CarID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("fleet event applied",
		zap.String("type", cloudEvent.Type),
		zap.String("car_id", evt.CarID.String()),
		zap.String("contract_id", result.ID.String()),
		zap.String("state", result.State),
	)
	return nil
}

func isPermanent(err error) bool {
	var kinded domain.KindedError
	if !errors.As(err, &kinded) {
		return false
	}
	switch kinded.Kind() {
	case domain.KindNotFound, domain.KindInvalidState, domain.KindValidation, domain.KindForbidden:
		return true
	default:
		return false
	}
}
