package main

import (
	"context"
	"testing"
	"time"

	"gudang/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "migrate", "consume"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	for _, name := range []string{"serve", "migrate"} {
		cmd, _, _ := root.Find([]string{name})
		flag := cmd.Flags().Lookup("reset-products")
		require.NotNil(t, flag, name)
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestConsumeRequiresRabbitMQURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RABBITMQ_URL", "")

	root := newRootCmd()
	root.SetArgs([]string{"consume"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RABBITMQ_URL")
}

func TestServeFailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetArgs([]string{"serve"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLogProductEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := logProductEvent(zap.New(core))

	event := models.ProductEvent{
		Type:       models.ProductCreated,
		ProductID:  "p-1",
		SKU:        "ELE-0001-001",
		OwnerID:    "u-1",
		OccurredAt: time.Now(),
	}
	require.NoError(t, handler(context.Background(), event))

	entries := logs.FilterMessage("product event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "product.created", fields["type"])
	assert.Equal(t, "ELE-0001-001", fields["sku"])
}
