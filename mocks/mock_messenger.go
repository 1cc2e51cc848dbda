package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ledgerbot/internal/port"
)

// MockMessenger is a mock implementation of port.Messenger.
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, chatID int64, msg port.OutgoingMessage) error {
	args := m.Called(ctx, chatID, msg)
	return args.Error(0)
}

func (m *MockMessenger) SendDocument(ctx context.Context, chatID int64, doc port.Document) error {
	args := m.Called(ctx, chatID, doc)
	return args.Error(0)
}

func (m *MockMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *MockMessenger) AnswerCallback(ctx context.Context, callbackID string) error {
	args := m.Called(ctx, callbackID)
	return args.Error(0)
}
