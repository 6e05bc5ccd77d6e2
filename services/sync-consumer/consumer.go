package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storeops/retail-platform/shared/cache"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/models"
)

// Consumer applies feature_updated events to the Redis entitlement
// cache. The store write already happened in the tenant service; this is
// the second phase of propagation, so a failed apply is parked in the
// failed_syncs table and retried instead of being lost.
type Consumer struct {
	reader *kafka.Reader
	db     *gorm.DB
	cache  *cache.Cache
}

// NewConsumer creates a consumer in the sync-consumer group
func NewConsumer(broker string, db *gorm.DB, entitlements *cache.Cache) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          events.Topic,
		GroupID:        "sync-consumer",
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	return &Consumer{reader: reader, db: db, cache: entitlements}
}

// Run consumes the platform event stream until the process exits
func (c *Consumer) Run() {
	logrus.Info("Starting entitlement sync consumer")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		msg, err := c.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			// Deadline reads are the idle heartbeat, not a failure
			if err == context.DeadlineExceeded {
				continue
			}
			logrus.WithError(err).Warn("Error reading platform event")
			time.Sleep(time.Second)
			continue
		}

		var event events.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.WithError(err).Warn("Skipping unparseable platform event")
			continue
		}

		if event.Type != events.TypeFeatureUpdated {
			continue
		}

		if err := c.apply(event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event_id":  event.ID,
				"tenant_id": event.TenantID,
				"error":     err,
			}).Warn("Failed to sync entitlements, parking for retry")
			if dlqErr := c.park(event, err); dlqErr != nil {
				logrus.WithError(dlqErr).Error("Failed to park entitlement sync for retry")
			}
		}
	}
}

// apply writes the event's feature set into the entitlement cache
func (c *Consumer) apply(event events.Event) error {
	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		return fmt.Errorf("bad tenant id %q: %w", event.TenantID, err)
	}
	features, err := featuresFromPayload(event.Payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.cache.SetTenantFeatures(ctx, tenantID, features)
}

// featuresFromPayload pulls the feature set out of a feature_updated payload
func featuresFromPayload(payload map[string]interface{}) (models.FeatureSet, error) {
	raw, ok := payload["features"]
	if !ok {
		return nil, fmt.Errorf("event payload has no feature set")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("event feature set has unexpected type %T", raw)
	}
	features := make(models.FeatureSet, 0, len(list))
	for _, item := range list {
		f, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("event feature entry has unexpected type %T", item)
		}
		features = append(features, f)
	}
	return features, nil
}

// park records a failed sync for the retry loop
func (c *Consumer) park(event events.Event, cause error) error {
	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		return fmt.Errorf("bad tenant id %q: %w", event.TenantID, err)
	}

	var featureList models.StringList
	if raw, ok := event.Payload["features"].([]interface{}); ok {
		for _, item := range raw {
			if f, ok := item.(string); ok {
				featureList = append(featureList, f)
			}
		}
	}

	nextRetryAt := time.Now().Add(time.Minute)
	failed := FailedSync{
		ID:              uuid.New(),
		OriginalEventID: event.ID,
		TenantID:        tenantID,
		Features:        featureList,
		ErrorMessage:    cause.Error(),
		Status:          syncPending,
		NextRetryAt:     &nextRetryAt,
	}
	return c.db.Create(&failed).Error
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("failed to close event reader: %w", err)
	}
	return nil
}
