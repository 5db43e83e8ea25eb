package orders

import (
	"context"
	"testing"
	"time"

	"github.com/coderarham/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func newTestOrder(userID string) *domain.Order {
	return &domain.Order{
		ID:             uuid.New(),
		GatewayOrderID: "order_GW" + uuid.NewString()[:8],
		PaymentID:      "pay_" + uuid.NewString()[:8],
		UserID:         userID,
		TotalAmount:    117.99,
		Currency:       "INR",
		Status:         domain.OrderStatusPaid,
		Items: []domain.CartItem{
			{ProductID: "tee-oversized", Name: "Oversized Tee", Price: 24.50, Size: "M", Quantity: 2},
			{ProductID: "cap-classic", Name: "Classic Cap", Price: 9.50, Size: "", Quantity: 1},
		},
	}
}

func TestCreateOrder_AndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-123")

	err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.PaymentID, got.PaymentID)
	assert.Equal(t, 117.99, got.TotalAmount)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "tee-oversized", got.Items[0].ProductID)
}

func TestCreateOrder_WritesOutboxEventInSameTx(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	order := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, order))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, order.ID.String(), events[0].AggregateID)
	assert.Equal(t, "order.completed", events[0].EventType)
	assert.Contains(t, string(events[0].Payload), `"user_id"`)
}

func TestMarkEventAsProcessed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("user-123")))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListOrders_NewestFirstPerUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	first := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, first))
	second := newTestOrder("user-123")
	require.NoError(t, repo.CreateOrder(ctx, second))
	require.NoError(t, repo.CreateOrder(ctx, newTestOrder("someone-else")))

	got, err := repo.ListOrders(ctx, "user-123")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
