package authsync_test

import (
	"context"

	"github.com/goliatone/go-authsync"
	"github.com/stretchr/testify/mock"
)

// MockExchanger implements authsync.SessionExchanger
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) EstablishSession(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func (m *MockExchanger) ClearSession(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockResolver implements authsync.TokenResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) TokenResult(ctx context.Context) (*authsync.TokenResult, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).(*authsync.TokenResult)
	return result, args.Error(1)
}

// recordingSink collects activity events in order.
type recordingSink struct {
	events []authsync.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event authsync.ActivityEvent) error {
	s.events = append(s.events, event)
	return nil
}

// quietLogger keeps test output clean.
type quietLogger struct{}

func (quietLogger) Debug(string, ...any) {}
func (quietLogger) Info(string, ...any)  {}
func (quietLogger) Warn(string, ...any)  {}
func (quietLogger) Error(string, ...any) {}
