package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/logger"
)

var (
	testCodec = NewTokenCodec("secret")
	inWindow  = time.UnixMilli(150)
)

func newPurchaseService(store *fakeStore, queueSize int) *PurchaseService {
	return NewPurchaseService(store, testCodec, logger.Discard(), nil, queueSize)
}

func TestExecute_Success(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	res, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	require.NoError(t, err)

	assert.Equal(t, domain.PurchaseSuccess, res.State)
	assert.Equal(t, int64(7), res.ItemID)
	require.NotNil(t, res.Record)
	assert.Equal(t, "A", res.Record.CustomerID)
	assert.Equal(t, inWindow, res.Record.CreatedAt)
	require.NotNil(t, res.Record.Item)
	assert.Equal(t, int64(9), store.quantity(7))
}

func TestExecute_InvalidToken(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()
	ctx := context.Background()

	for _, token := range []string{"", "forged", testCodec.Derive(8), NewTokenCodec("other").Derive(7)} {
		_, err := svc.Execute(ctx, 7, "A", token, inWindow)
		assert.ErrorIs(t, err, ErrInvalidRequest, "token %q", token)
	}

	assert.Equal(t, int64(10), store.quantity(7))
	assert.Zero(t, store.purchaseCount())
}

func TestExecute_MissingCustomer(t *testing.T) {
	svc := newPurchaseService(newFakeStore(saleItem(7, 10, 100, 200)), 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, "", testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestExecute_CustomerIDTooLong(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, strings.Repeat("c", MaxCustomerIDLen+1), testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, store.purchaseCount())

	_, err = svc.Execute(context.Background(), 7, strings.Repeat("c", MaxCustomerIDLen), testCodec.Derive(7), inWindow)
	assert.NoError(t, err)
}

func TestExecute_AlreadyPurchased(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()
	ctx := context.Background()

	_, err := svc.Execute(ctx, 7, "A", testCodec.Derive(7), inWindow)
	require.NoError(t, err)

	_, err = svc.Execute(ctx, 7, "A", testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
	assert.Equal(t, int64(9), store.quantity(7))
}

func TestExecute_SoldOutRollsBackRecord(t *testing.T) {
	store := newFakeStore(saleItem(7, 0, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Zero(t, store.purchaseCount(), "sold out attempt must not leave a purchase record")
}

func TestExecute_OutsideWindowIsSoldOut(t *testing.T) {
	store := newFakeStore(saleItem(7, 5, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), time.UnixMilli(300))
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, int64(5), store.quantity(7))
}

func TestExecute_StoreFailureIsInternal(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	store.decrementErr = errors.New("connection reset")
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, store.decrementErr, "collaborator errors must not leak")
	assert.Zero(t, store.purchaseCount(), "insert must be rolled back")
	assert.Equal(t, int64(10), store.quantity(7))
}

func TestExecute_InsertFailureIsInternal(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	store.insertErr = errors.New("lock wait timeout")
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, int64(10), store.quantity(7))
}

func TestExecute_IgnoresCallerCancellation(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Execute(ctx, 7, "A", testCodec.Derive(7), inWindow)
	require.NoError(t, err)
	assert.Equal(t, int64(9), store.quantity(7))
}

func TestExecute_ConcurrentNoOversell(t *testing.T) {
	const stock, customers = 20, 50

	store := newFakeStore(saleItem(7, stock, 100, 200))
	svc := newPurchaseService(store, customers)
	defer svc.Close()

	var success, soldOut atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < customers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Execute(context.Background(), 7, fmt.Sprintf("customer-%d", n), testCodec.Derive(7), inWindow)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, ErrSoldOut):
				soldOut.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(stock), success.Load())
	assert.Equal(t, int32(customers-stock), soldOut.Load())
	assert.Zero(t, store.quantity(7))
	assert.Equal(t, stock, store.purchaseCount())
}

func TestExecute_ConcurrentSameCustomer(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 10)
	defer svc.Close()

	var success, repeated atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, ErrAlreadyPurchased):
				repeated.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, int32(19), repeated.Load())
	assert.Equal(t, int64(9), store.quantity(7))
}

func TestExecute_Scenario(t *testing.T) {
	store := newFakeStore(saleItem(7, 1, 100, 200))
	exposure := newExposureService(store, newFakeCache())
	svc := newPurchaseService(store, 10)
	defer svc.Close()
	ctx := context.Background()

	exp, err := exposure.Expose(ctx, 7, inWindow)
	require.NoError(t, err)
	require.True(t, exp.Open())

	res, err := svc.Execute(ctx, 7, "A", exp.Token, inWindow)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseSuccess, res.State)
	assert.Zero(t, store.quantity(7))

	_, err = svc.Execute(ctx, 7, "B", exp.Token, inWindow)
	assert.ErrorIs(t, err, ErrSoldOut)

	_, err = svc.Execute(ctx, 7, "A", exp.Token, inWindow)
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
}

func TestExecute_PublishesCommit(t *testing.T) {
	svc := newPurchaseService(newFakeStore(saleItem(7, 10, 100, 200)), 10)

	_, err := svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	require.NoError(t, err)

	record := <-svc.GetCommitQueue()
	assert.Equal(t, int64(7), record.ItemID)
	assert.Equal(t, "A", record.CustomerID)

	svc.Close()
}

func TestExecute_FullQueueDoesNotBlock(t *testing.T) {
	store := newFakeStore(saleItem(7, 10, 100, 200))
	svc := newPurchaseService(store, 0)
	defer svc.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Execute(context.Background(), 7, "A", testCodec.Derive(7), inWindow)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Execute blocked on the commit queue")
	}
	assert.Equal(t, int64(9), store.quantity(7))
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, domain.PurchaseSuccess, StateOf(nil))
	assert.Equal(t, domain.PurchaseInvalidRequest, StateOf(ErrInvalidRequest))
	assert.Equal(t, domain.PurchaseRepeated, StateOf(fmt.Errorf("wrapped: %w", ErrAlreadyPurchased)))
	assert.Equal(t, domain.PurchaseSoldOut, StateOf(ErrSoldOut))
	assert.Equal(t, domain.PurchaseInternalError, StateOf(ErrInternal))
	assert.Equal(t, domain.PurchaseInternalError, StateOf(errors.New("anything")))
}
