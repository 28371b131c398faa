package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/service"
)

func TestRegisterAndLoginEmitEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.EventType
	dispatcher.Subscribe(events.EventUserRegistered, func(_ context.Context, e events.Event) error {
		published = append(published, e.Type)
		return nil
	})
	dispatcher.Subscribe(events.EventUserLoggedIn, func(_ context.Context, e events.Event) error {
		published = append(published, e.Type)
		return nil
	})

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "events-test-secret",
			AccessTokenTTLMinutes: 15,
			RefreshTokenTTLHours:  24,
			BcryptCost:            bcrypt.MinCost,
			MinPasswordLength:     6,
		},
	}
	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   newMemoryUserRepo(),
		Dispatcher: dispatcher,
	})

	_, err := svc.Register(context.Background(), "alice@example.com", "secret1", "CUSTOMER")
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventUserLoggedIn}, published)
}

func TestNotificationServiceHandlesEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), nil,
		config.NotificationConfig{EmailFrom: "noreply@example.com"})
	notifications.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventUserRegistered,
		Subject: "alice@example.com",
	})
	assert.NoError(t, err)
}
