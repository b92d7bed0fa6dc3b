package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/config"
	"github.com/spec-kit/workorder-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventOrderRegistered, n.handleOrderRegistered)
	n.dispatcher.Subscribe(events.EventOrderStatusChanged, n.handleOrderStatusChanged)
	n.dispatcher.Subscribe(events.EventAssessmentFiled, n.handleAssessmentFiled)
	n.dispatcher.Subscribe(events.EventRefillRegistered, n.handleRefillRegistered)
}

func (n *NotificationService) handleOrderRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderRegistered", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStatusChanged", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAssessmentFiled(ctx context.Context, event events.Event) error {
	n.logger.Info("AssessmentFiled", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRefillRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("RefillRegistered", zap.String("order_number", event.OrderNumber), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("order_number", event.OrderNumber),
		zap.String("event_type", string(event.Type)))
}
