package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fabocv/santi-pos/internal/catalog"
	"github.com/fabocv/santi-pos/internal/events"
)

func newTestService(t *testing.T) *catalog.Service {
	t.Helper()
	return catalog.NewService(catalog.ServiceConfig{Logger: zerolog.Nop()})
}

func TestLookup(t *testing.T) {
	svc := newTestService(t)

	product, ok := svc.Lookup("100")
	require.True(t, ok)
	require.Equal(t, "Trutro de Pollo", product.Name)
	require.EqualValues(t, 2990, product.PricePerKg)

	_, ok = svc.Lookup("999")
	require.False(t, ok, "a miss is reported, not an error")

	_, ok = svc.Lookup(" 100 ")
	require.True(t, ok, "codes are trimmed before lookup")
}

func TestSearchByPrefix(t *testing.T) {
	svc := newTestService(t)

	pollo := svc.Search("1")
	require.Len(t, pollo, 6)
	for _, p := range pollo {
		require.Equal(t, catalog.CategoryPollo, p.Category)
	}

	all := svc.Search("")
	require.Len(t, all, len(catalog.Seed()))
	require.Equal(t, "100", all[0].Code, "results come back in code order")

	require.Empty(t, svc.Search("9"))
}

func TestUpdatePrice(t *testing.T) {
	bus := &events.Bus{}
	var emitted []events.Event
	bus.Subscribe(events.NotifierFunc(func(_ context.Context, ev events.Event) error {
		emitted = append(emitted, ev)
		return nil
	}))
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	svc := catalog.NewService(catalog.ServiceConfig{
		Logger: zerolog.Nop(),
		Bus:    bus,
		Now:    func() time.Time { return fixed },
	})

	change, err := svc.UpdatePrice(context.Background(), "200", 9490, "op-1")
	require.NoError(t, err)
	require.EqualValues(t, 8990, change.OldPrice)
	require.EqualValues(t, 9490, change.NewPrice)
	require.Equal(t, "op-1", change.OperatorID)
	require.Equal(t, fixed, change.Timestamp)

	updated, ok := svc.Lookup("200")
	require.True(t, ok)
	require.EqualValues(t, 9490, updated.PricePerKg)

	require.Len(t, emitted, 1)
	require.Equal(t, events.TopicPriceUpdated, emitted[0].Topic)

	_, err = svc.UpdatePrice(context.Background(), "200", 9490, "op-1")
	require.ErrorIs(t, err, catalog.ErrPriceUnchanged)

	_, err = svc.UpdatePrice(context.Background(), "999", 1000, "op-1")
	require.ErrorIs(t, err, catalog.ErrUnknownProduct)

	_, err = svc.UpdatePrice(context.Background(), "200", 0, "op-1")
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)
}

func TestSnapshotRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := catalog.NewStore(client, "catalog:snapshot", time.Hour)
	svc := catalog.NewService(catalog.ServiceConfig{Logger: zerolog.Nop(), Store: store})
	ctx := context.Background()

	_, err := svc.UpdatePrice(ctx, "100", 3190, "op-1")
	require.NoError(t, err)

	reloaded := catalog.NewService(catalog.ServiceConfig{Logger: zerolog.Nop(), Store: store})
	ok, err := reloaded.LoadCached(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	product, found := reloaded.Lookup("100")
	require.True(t, found)
	require.EqualValues(t, 3190, product.PricePerKg)
}

func TestLoadCachedWithoutSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := catalog.NewService(catalog.ServiceConfig{
		Logger: zerolog.Nop(),
		Store:  catalog.NewStore(client, "catalog:snapshot", time.Hour),
	})
	ok, err := svc.LoadCached(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRefreshReplacesCatalog(t *testing.T) {
	upstream := []catalog.Product{
		{Code: "100", Name: "Trutro de Pollo", PricePerKg: 3290, Category: catalog.CategoryPollo},
		{Code: "500", Name: "Pechuga de Pavo", PricePerKg: 5990, Category: catalog.CategoryPavo},
	}
	svc := catalog.NewService(catalog.ServiceConfig{
		Logger:  zerolog.Nop(),
		Fetcher: catalog.StaticFetcher{Products: upstream},
	})

	require.NoError(t, svc.Refresh(context.Background()))
	require.Len(t, svc.List(), 2)
	product, ok := svc.Lookup("500")
	require.True(t, ok)
	require.Equal(t, catalog.CategoryPavo, product.Category)
	_, ok = svc.Lookup("200")
	require.False(t, ok, "stale products are dropped on refresh")
}
