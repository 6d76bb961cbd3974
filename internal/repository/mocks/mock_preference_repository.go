package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPreferenceRepository struct {
	mock.Mock
}

func (m *MockPreferenceRepository) Allows(ctx context.Context, userID, notificationType string) (bool, error) {
	args := m.Called(ctx, userID, notificationType)
	return args.Bool(0), args.Error(1)
}
