package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Rohit-bisht-rise/shopmanagement/internal/domain"
	pkgkafka "github.com/Rohit-bisht-rise/shopmanagement/pkg/kafka"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/logger"
)

// Kafka topics for CRM domain events.
const (
	TopicOrderCreated      = "crm.order.created"
	TopicOrderUpdated      = "crm.order.updated"
	TopicOrderDeleted      = "crm.order.deleted"
	TopicUserRegistered    = "crm.user.registered"
	TopicUserPasswordReset = "crm.user.password_reset"
)

const (
	AggregateTypeOrder = "order"
	AggregateTypeUser  = "user"
	SourceCRM          = "crm"
)

// OrderData is the payload of every order event.
type OrderData struct {
	ID             int64  `json:"id"`
	CustomerID     int64  `json:"customer_id"`
	ProductID      int64  `json:"product_id"`
	Status         string `json:"status"`
	Note           string `json:"note,omitempty"`
	PreviousStatus string `json:"previous_status,omitempty"`
}

// UserRegisteredData is the payload for user.registered.
type UserRegisteredData struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	CustomerID int64  `json:"customer_id"`
}

// PasswordResetData is the payload for user.password_reset. A mailer
// consumes it and sends ResetURL to Email.
type PasswordResetData struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ResetURL string `json:"reset_url"`
}

// Producer publishes CRM domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateType string, aggregateID int64, data any) error {
	id := strconv.FormatInt(aggregateID, 10)
	e, err := pkgkafka.NewEvent(topic, aggregateType, id, SourceCRM, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	e.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.publisher.Publish(ctx, topic, e); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", id),
	)
	return nil
}

func orderData(o *domain.Order) OrderData {
	return OrderData{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		ProductID:  o.ProductID,
		Status:     o.Status,
		Note:       o.Note,
	}
}

func (p *Producer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderCreated, AggregateTypeOrder, o.ID, orderData(o))
}

func (p *Producer) PublishOrderUpdated(ctx context.Context, o *domain.Order, previousStatus string) error {
	data := orderData(o)
	data.PreviousStatus = previousStatus
	return p.publish(ctx, TopicOrderUpdated, AggregateTypeOrder, o.ID, data)
}

func (p *Producer) PublishOrderDeleted(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, TopicOrderDeleted, AggregateTypeOrder, o.ID, orderData(o))
}

func (p *Producer) PublishUserRegistered(ctx context.Context, u *domain.User, c *domain.Customer) error {
	return p.publish(ctx, TopicUserRegistered, AggregateTypeUser, u.ID, UserRegisteredData{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		CustomerID: c.ID,
	})
}

func (p *Producer) PublishPasswordReset(ctx context.Context, u *domain.User, resetURL string) error {
	return p.publish(ctx, TopicUserPasswordReset, AggregateTypeUser, u.ID, PasswordResetData{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		ResetURL: resetURL,
	})
}
