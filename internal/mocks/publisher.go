package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chat-pipeline/internal/models"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishJob(ctx context.Context, job models.DeliveryJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *PublisherMock) PublishEvent(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// DeliveryStrategyMock stands in for either delivery path.
type DeliveryStrategyMock struct {
	mock.Mock
}

func (m *DeliveryStrategyMock) Deliver(ctx context.Context, job models.DeliveryJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
