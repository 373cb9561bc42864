package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/testutil"
)

func TestCartGetDoesNotCreateCart(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)

	cart, err := carts.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCartAddMergesQuantities(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, err := carts.Add(ctx, user.ID, book.ID, floatPtr(2))
	require.NoError(t, err)
	cart, err := carts.Add(ctx, user.ID, book.ID, floatPtr(3))
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	require.NotNil(t, cart.Items[0].Book)
	assert.Equal(t, "Dune", cart.Items[0].Book.Title)
}

func TestCartAddNormalizesQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity *float64
		want     int
	}{
		{"absent", nil, 1},
		{"zero", floatPtr(0), 1},
		{"negative", floatPtr(-4), 1},
		{"nan", floatPtr(math.NaN()), 1},
		{"infinite", floatPtr(math.Inf(1)), 1},
		{"fraction below one", floatPtr(0.5), 1},
		{"fraction", floatPtr(2.7), 2},
		{"whole", floatPtr(4), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			carts := NewCartService(db)
			user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
			book := testutil.CreateBook(t, db, "Dune", "10")

			cart, err := carts.Add(context.Background(), user.ID, book.ID, tt.quantity)
			require.NoError(t, err)
			require.Len(t, cart.Items, 1)
			assert.Equal(t, tt.want, cart.Items[0].Quantity)
		})
	}
}

func TestCartAddRejectsUnknownOrInactiveBook(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")
	require.NoError(t, db.Model(&book).Update("is_active", false).Error)

	_, err := carts.Add(ctx, user.ID, book.ID, nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = carts.Add(ctx, user.ID, 9999, nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = carts.Add(ctx, user.ID, 0, nil)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCartSetQuantityOverwrites(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, err := carts.Add(ctx, user.ID, book.ID, floatPtr(5))
	require.NoError(t, err)

	cart, err := carts.SetQuantity(ctx, user.ID, book.ID, floatPtr(2))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartSetQuantityKeepsPositiveFraction(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, err := carts.Add(ctx, user.ID, book.ID, floatPtr(3))
	require.NoError(t, err)

	cart, err := carts.SetQuantity(ctx, user.ID, book.ID, floatPtr(0.5))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	cart, err = carts.SetQuantity(ctx, user.ID, book.ID, floatPtr(2.7))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartSetQuantityRemovesOnInvalid(t *testing.T) {
	for name, quantity := range map[string]*float64{
		"zero":     floatPtr(0),
		"negative": floatPtr(-1),
		"absent":   nil,
		"nan":      floatPtr(math.NaN()),
		"infinite": floatPtr(math.Inf(1)),
	} {
		t.Run(name, func(t *testing.T) {
			db := testutil.NewDB(t)
			carts := NewCartService(db)
			ctx := context.Background()
			user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
			book := testutil.CreateBook(t, db, "Dune", "10")

			_, err := carts.Add(ctx, user.ID, book.ID, floatPtr(3))
			require.NoError(t, err)

			cart, err := carts.SetQuantity(ctx, user.ID, book.ID, quantity)
			require.NoError(t, err)
			assert.Empty(t, cart.Items)
		})
	}
}

func TestCartSetQuantityMissingLine(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, err := carts.SetQuantity(context.Background(), user.ID, book.ID, floatPtr(2))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Item not in cart", err.(*Error).Message)
}

func TestCartRemove(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	dune := testutil.CreateBook(t, db, "Dune", "10")
	emma := testutil.CreateBook(t, db, "Emma", "8")

	_, err := carts.Add(ctx, user.ID, dune.ID, nil)
	require.NoError(t, err)
	_, err = carts.Add(ctx, user.ID, emma.ID, nil)
	require.NoError(t, err)

	cart, err := carts.Remove(ctx, user.ID, dune.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, emma.ID, cart.Items[0].BookID)

	_, err = carts.Remove(ctx, user.ID, dune.ID)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCartClearIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, err := carts.Add(ctx, user.ID, book.ID, floatPtr(2))
	require.NoError(t, err)

	cart, err := carts.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	cart, err = carts.Clear(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartItemsKeepInsertionOrder(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	first := testutil.CreateBook(t, db, "First", "1")
	second := testutil.CreateBook(t, db, "Second", "2")

	_, err := carts.Add(ctx, user.ID, second.ID, nil)
	require.NoError(t, err)
	_, err = carts.Add(ctx, user.ID, first.ID, nil)
	require.NoError(t, err)
	cart, err := carts.Add(ctx, user.ID, second.ID, nil)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, second.ID, cart.Items[0].BookID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, first.ID, cart.Items[1].BookID)
}

func TestCartConcurrentAddsAreNotLost(t *testing.T) {
	db := testutil.NewDB(t)
	carts := NewCartService(db)
	user := testutil.CreateUser(t, db, "reader@example.com", models.RoleUser)
	book := testutil.CreateBook(t, db, "Dune", "10")

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := carts.Add(context.Background(), user.ID, book.ID, floatPtr(1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := carts.Get(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, workers, cart.Items[0].Quantity)

	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
