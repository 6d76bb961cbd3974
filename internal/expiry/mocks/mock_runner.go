package mocks

import (
	"context"

	"docnotify/internal/expiry"
	"github.com/stretchr/testify/mock"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunNow(ctx context.Context) (*expiry.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expiry.Summary), args.Error(1)
}
