package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abgdnv/kasir/internal/product/model"
	"github.com/abgdnv/kasir/internal/product/repository"
	"github.com/abgdnv/kasir/internal/product/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository wraps a real in-memory repository with failure injection and a gate on GetAll.
type fakeRepository struct {
	repository.ProductRepository
	getAllCalls atomic.Int32
	gate        chan struct{}
	writeErr    error
	readErr     error
}

func (f *fakeRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	f.getAllCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.ProductRepository.GetAll(ctx)
}

func (f *fakeRepository) Insert(ctx context.Context, p model.Product) (int64, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.ProductRepository.Insert(ctx, p)
}

func (f *fakeRepository) Import(ctx context.Context, products []model.Product) ([]int64, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	return f.ProductRepository.Import(ctx, products)
}

func newTestHolder(t *testing.T) (*Holder, *fakeRepository, *Loop) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := &fakeRepository{ProductRepository: repository.New(store.NewInMemoryStore(), nil, logger)}
	loop := NewLoop()
	t.Cleanup(loop.Stop)
	return NewHolder(repo, loop, logger), repo, loop
}

func await[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.Await(ctx)
}

func pensil() model.Product {
	return model.Product{
		Name:     "Pensil",
		Price:    decimal.NewFromInt(2000),
		Cost:     decimal.NewFromInt(1000),
		Stock:    2,
		Category: "Alat Tulis",
	}
}

func Test_Holder_AddPensil(t *testing.T) {
	// given
	h, _, _ := newTestHolder(t)
	_, err := await(t, h.Start(context.Background()))
	require.NoError(t, err)
	require.Empty(t, h.Products())

	// when
	id, err := await(t, h.Add(context.Background(), pensil()))

	// then
	require.NoError(t, err)
	products := h.Products()
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)
	assert.Equal(t, "Pensil", products[0].Name)
	assert.Equal(t, model.LowStock, products[0].Status())
	stats := h.Stats()
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.LowStock)
	assert.Equal(t, "2000", stats.InventoryValue.String())
}

func Test_Holder_OutOfStockCount(t *testing.T) {
	h, _, _ := newTestHolder(t)
	empty := pensil()
	empty.Name = "Buku"
	empty.Stock = 0

	_, err := await(t, h.Add(context.Background(), pensil()))
	require.NoError(t, err)
	_, err = await(t, h.Add(context.Background(), empty))
	require.NoError(t, err)

	stats := h.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.OutOfStock)
	assert.Equal(t, 1, stats.LowStock)
}

func Test_Holder_EditAndRemove(t *testing.T) {
	// given
	h, _, _ := newTestHolder(t)
	p := pensil()
	p.Price = decimal.NewFromInt(5000)
	id, err := await(t, h.Add(context.Background(), p))
	require.NoError(t, err)
	p.ID = id

	// when
	edited := p
	edited.Price = decimal.NewFromInt(7000)
	_, err = await(t, h.Edit(context.Background(), edited))

	// then
	require.NoError(t, err)
	got, err := await(t, h.Get(context.Background(), id))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7000).Equal(got.Price))
	assert.True(t, p.Cost.Equal(got.Cost))
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Stock, got.Stock)
	assert.True(t, decimal.NewFromInt(7000).Equal(h.Products()[0].Price))

	// when
	_, err = await(t, h.Remove(context.Background(), edited))

	// then
	require.NoError(t, err)
	assert.Empty(t, h.Products())
}

func Test_Holder_SubscribersSeeEveryList(t *testing.T) {
	h, _, _ := newTestHolder(t)
	var mu sync.Mutex
	var sizes []int
	cancel := h.Subscribe(func(list []model.Product) {
		mu.Lock()
		sizes = append(sizes, len(list))
		mu.Unlock()
	})
	defer cancel()

	_, err := await(t, h.Add(context.Background(), pensil()))
	require.NoError(t, err)
	_, err = await(t, h.Add(context.Background(), pensil()))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2}, sizes)
}

func Test_Holder_WriteFailurePublishesNotice(t *testing.T) {
	// given
	h, repo, _ := newTestHolder(t)
	ErrDisk := errors.New("disk full")
	repo.writeErr = ErrDisk
	notices := make(chan Notice, 4)
	cancel := h.Notices().Subscribe(func(n Notice) {
		if n.Err != nil {
			notices <- n
		}
	})
	defer cancel()

	// when
	_, err := await(t, h.Add(context.Background(), pensil()))

	// then
	assert.ErrorIs(t, err, ErrDisk)
	assert.Empty(t, h.Products())
	select {
	case n := <-notices:
		assert.Equal(t, "add", n.Op)
		assert.ErrorIs(t, n.Err, ErrDisk)
	case <-time.After(time.Second):
		t.Fatal("no notice published")
	}
}

func Test_Holder_RefreshFailureKeepsList(t *testing.T) {
	h, repo, _ := newTestHolder(t)
	_, err := await(t, h.Add(context.Background(), pensil()))
	require.NoError(t, err)

	repo.readErr = errors.New("io fault")
	_, err = await(t, h.Refresh(context.Background()))

	assert.Error(t, err)
	assert.Len(t, h.Products(), 1)
}

func Test_Holder_ConcurrentRefreshesShareOneRead(t *testing.T) {
	// given
	h, repo, _ := newTestHolder(t)
	repo.gate = make(chan struct{})

	// when
	first := h.Refresh(context.Background())
	require.Eventually(t, func() bool { return repo.getAllCalls.Load() == 1 }, time.Second, time.Millisecond)
	second := h.Refresh(context.Background())
	time.Sleep(20 * time.Millisecond)
	close(repo.gate)

	// then
	_, err := await(t, first)
	require.NoError(t, err)
	_, err = await(t, second)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.getAllCalls.Load())
}

func Test_Holder_DropsStaleSnapshot(t *testing.T) {
	// given
	h, _, loop := newTestHolder(t)
	newer := snapshot{gen: 5, list: []model.Product{{ID: 1, Name: "new"}}}
	older := snapshot{gen: 4, list: []model.Product{}}
	var appliedNewer, appliedOlder bool

	// when
	require.NoError(t, loop.Do(context.Background(), func() {
		appliedNewer = h.apply(newer)
		appliedOlder = h.apply(older)
	}))

	// then
	assert.True(t, appliedNewer)
	assert.False(t, appliedOlder)
	require.Len(t, h.Products(), 1)
	assert.Equal(t, "new", h.Products()[0].Name)
}

func Test_Holder_Import(t *testing.T) {
	h, _, _ := newTestHolder(t)
	buku := pensil()
	buku.Name = "Buku"

	ids, err := await(t, h.Import(context.Background(), []model.Product{pensil(), buku}))

	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Len(t, h.Products(), 2)
}

func Test_Holder_Import_Failure(t *testing.T) {
	// given
	h, repo, _ := newTestHolder(t)
	_, err := await(t, h.Add(context.Background(), pensil()))
	require.NoError(t, err)
	errDisk := errors.New("disk full")
	repo.writeErr = errDisk
	calls := repo.getAllCalls.Load()

	// when
	ids, err := await(t, h.Import(context.Background(), []model.Product{pensil(), pensil()}))

	// then
	assert.ErrorIs(t, err, errDisk)
	assert.Empty(t, ids)
	assert.Len(t, h.Products(), 1)
	assert.Equal(t, calls, repo.getAllCalls.Load(), "no refresh after a failed import")
	assert.Equal(t, "import", h.Notices().Get().Op)
}
