package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"assethub/apperr"
	"assethub/models"
	"assethub/store"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(store.NewMemoryStores().Assets)
}

func mustCreate(t *testing.T, l *Ledger, name, kind string, qty int) *models.Asset {
	t.Helper()
	asset, err := l.Create(context.Background(), CreateInput{
		Name:        name,
		Kind:        kind,
		Quantity:    qty,
		HREmail:     "hr@acme.test",
		CompanyName: "Acme",
	})
	require.NoError(t, err)
	return asset
}

func TestCreateValidation(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"empty name", CreateInput{Kind: models.KindReturnable, Quantity: 1}},
		{"bad kind", CreateInput{Name: "Laptop", Kind: "leased", Quantity: 1}},
		{"negative quantity", CreateInput{Name: "Laptop", Kind: models.KindReturnable, Quantity: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Create(ctx, tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestCreateStartsFullyAvailable(t *testing.T) {
	l := newTestLedger(t)
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 4)

	assert.Equal(t, 4, asset.ProductQuantity)
	assert.Equal(t, 4, asset.AvailableQuantity)
	assert.Equal(t, "hr@acme.test", asset.HREmail)
	assert.False(t, asset.CreatedAt.IsZero())
}

func TestListFilters(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	mustCreate(t, l, "MacBook Pro", models.KindReturnable, 2)
	mustCreate(t, l, "Notebook", models.KindNonReturnable, 5)
	drained := mustCreate(t, l, "Monitor", models.KindReturnable, 1)
	require.NoError(t, l.ReserveUnit(ctx, drained.ID))

	t.Run("name substring is case-insensitive", func(t *testing.T) {
		assets, err := l.List(ctx, store.AssetFilter{NameSubstring: "book"})
		require.NoError(t, err)
		assert.Len(t, assets, 2)
	})

	t.Run("kind filter is exact", func(t *testing.T) {
		assets, err := l.List(ctx, store.AssetFilter{Kind: models.KindNonReturnable})
		require.NoError(t, err)
		require.Len(t, assets, 1)
		assert.Equal(t, "Notebook", assets[0].Name)
	})

	t.Run("only available excludes drained assets", func(t *testing.T) {
		assets, err := l.List(ctx, store.AssetFilter{OnlyAvailable: true})
		require.NoError(t, err)
		assert.Len(t, assets, 2)
		for _, a := range assets {
			assert.Greater(t, a.AvailableQuantity, 0)
		}
	})
}

func TestReserveUnit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 1)

	require.NoError(t, l.ReserveUnit(ctx, asset.ID))

	got, err := l.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)

	assert.ErrorIs(t, l.ReserveUnit(ctx, asset.ID), apperr.ErrInventoryExhausted)
	assert.ErrorIs(t, l.ReserveUnit(ctx, primitive.NewObjectID()), apperr.ErrNotFound)
}

func TestReleaseUnitClampsAtTotal(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 2)

	require.NoError(t, l.ReserveUnit(ctx, asset.ID))
	require.NoError(t, l.ReleaseUnit(ctx, asset.ID))
	// A stray double release must not push available past the total.
	require.NoError(t, l.ReleaseUnit(ctx, asset.ID))

	got, err := l.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableQuantity)
	assert.Equal(t, 2, got.ProductQuantity)
}

func TestConcurrentReserveLastUnit(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 1)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = l.ReserveUnit(ctx, asset.ID)
		}(i)
	}
	wg.Wait()

	var won, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, apperr.ErrInventoryExhausted):
			exhausted++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, callers-1, exhausted)

	got, err := l.Get(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)
}

func TestUpdateQuantityMovesBothCounters(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 3)
	require.NoError(t, l.ReserveUnit(ctx, asset.ID))

	five := 5
	got, err := l.Update(ctx, asset.ID, "hr@acme.test", UpdateInput{Quantity: &five})
	require.NoError(t, err)
	assert.Equal(t, 5, got.ProductQuantity)
	assert.Equal(t, 4, got.AvailableQuantity)

	// Shrinking below the units currently out is refused.
	zero := 0
	_, err = l.Update(ctx, asset.ID, "hr@acme.test", UpdateInput{Quantity: &zero})
	assert.Error(t, err)
}

func TestUpdateIsOwnerScoped(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	asset := mustCreate(t, l, "Laptop", models.KindReturnable, 1)

	_, err := l.Update(ctx, asset.ID, "other@corp.test", UpdateInput{Name: "Stolen"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.ErrorIs(t, l.Delete(ctx, asset.ID, "other@corp.test"), apperr.ErrForbidden)
	require.NoError(t, l.Delete(ctx, asset.ID, "HR@Acme.Test")) // owner emails normalize
}
