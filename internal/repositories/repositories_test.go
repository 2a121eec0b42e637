package repositories_test

import (
	"context"
	"testing"
	"time"

	"gudang/internal/models"
	"gudang/internal/repositories"
	"gudang/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := database.Open(database.Config{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &models.User{}, &models.Product{}))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newProduct(owner, sku string) *models.Product {
	return &models.Product{
		Name:      "Pen",
		Price:     2.5,
		Quantity:  100,
		Category:  "Stationery",
		SKU:       sku,
		CreatedBy: owner,
	}
}

// productRepoSuite runs the behaviour every ProductRepository must share.
func productRepoSuite(t *testing.T, newRepo func(t *testing.T) repositories.ProductRepository) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		p := newProduct("u1", "STA-0001-001")
		require.NoError(t, repo.Create(ctx, p))
		require.NotEmpty(t, p.ID)
		assert.False(t, p.CreatedAt.IsZero())

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "STA-0001-001", found.SKU)
		assert.Equal(t, 2.5, found.Price)
		assert.Equal(t, "u1", found.CreatedBy)

		owned, err := repo.FindOwned(ctx, p.ID, "u1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, owned.ID)

		_, err = repo.FindOwned(ctx, p.ID, "u2")
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		_, err = repo.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newProduct("u1", "STA-0001-001")))

		dup := newProduct("u2", "STA-0001-001")
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, repositories.ErrDuplicateSKU)

		exists, err := repo.ExistsBySKU(ctx, "STA-0001-001")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySKU(ctx, "STA-0001-002")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("list by owner", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, newProduct("u1", "A-0001-001")))
		require.NoError(t, repo.Create(ctx, newProduct("u1", "A-0001-002")))
		require.NoError(t, repo.Create(ctx, newProduct("u2", "A-0001-003")))

		list, err := repo.FindAllByOwner(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, p := range list {
			assert.Equal(t, "u1", p.CreatedBy)
		}
		first, second := list[0], list[1]
		assert.True(t, first.CreatedAt.Before(second.CreatedAt) ||
			(first.CreatedAt.Equal(second.CreatedAt) && first.ID < second.ID))

		empty, err := repo.FindAllByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("update respects owner", func(t *testing.T) {
		repo := newRepo(t)
		p := newProduct("u1", "STA-0001-001")
		require.NoError(t, repo.Create(ctx, p))

		foreign := *p
		foreign.CreatedBy = "u2"
		foreign.Name = "Stolen"
		assert.ErrorIs(t, repo.Update(ctx, &foreign), repositories.ErrNotFound)

		p.Name = "Marker"
		p.Price = 4
		p.Quantity = 0
		require.NoError(t, repo.Update(ctx, p))

		found, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Marker", found.Name)
		assert.Equal(t, 4.0, found.Price)
		assert.Equal(t, 0, found.Quantity)
		assert.Equal(t, "STA-0001-001", found.SKU)
		assert.False(t, found.UpdatedAt.Before(found.CreatedAt))
	})

	t.Run("delete respects owner", func(t *testing.T) {
		repo := newRepo(t)
		p := newProduct("u1", "STA-0001-001")
		require.NoError(t, repo.Create(ctx, p))

		assert.ErrorIs(t, repo.DeleteOwned(ctx, p.ID, "u2"), repositories.ErrNotFound)
		require.NoError(t, repo.DeleteOwned(ctx, p.ID, "u1"))
		assert.ErrorIs(t, repo.DeleteOwned(ctx, p.ID, "u1"), repositories.ErrNotFound)

		_, err := repo.FindByID(ctx, p.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		// The sku is free again.
		exists, err := repo.ExistsBySKU(ctx, "STA-0001-001")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGORMProductRepository(t *testing.T) {
	productRepoSuite(t, func(t *testing.T) repositories.ProductRepository {
		return repositories.NewGORMProductRepository(openTestDB(t))
	})
}

func TestMemoryProductRepository(t *testing.T) {
	productRepoSuite(t, func(*testing.T) repositories.ProductRepository {
		return repositories.NewMemoryProductRepository()
	})
}

func TestProductRepository_ListOrder(t *testing.T) {
	stores := map[string]func(t *testing.T) repositories.ProductRepository{
		"gorm": func(t *testing.T) repositories.ProductRepository {
			return repositories.NewGORMProductRepository(openTestDB(t))
		},
		"memory": func(*testing.T) repositories.ProductRepository {
			return repositories.NewMemoryProductRepository()
		},
	}
	for name, newRepo := range stores {
		t.Run(name, func(t *testing.T) {
			checkListOrder(t, newRepo(t))
		})
	}
}

// checkListOrder inserts the newer product first and expects caller-set
// creation times to be kept and to drive the order.
func checkListOrder(t *testing.T, repo repositories.ProductRepository) {
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	later := newProduct("u1", "A-0001-002")
	later.CreatedAt = base.Add(time.Minute)
	earlier := newProduct("u1", "A-0001-001")
	earlier.CreatedAt = base
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, earlier))

	list, err := repo.FindAllByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, earlier.ID, list[0].ID)
	assert.Equal(t, later.ID, list[1].ID)
	assert.True(t, list[0].CreatedAt.Equal(base))
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
	assert.ErrorIs(t, err, repositories.ErrDuplicateUser)
}
