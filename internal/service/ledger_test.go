package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"restaurant-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*Ledger, *memStore, *recordingPublisher, *models.Dish) {
	t.Helper()
	st := newMemStore()
	pub := &recordingPublisher{}
	dish := st.addDish("Pescado con arroz", 15000, true)
	return NewLedger(st, pub, time.UTC), st, pub, dish
}

func TestLedgerPaymentLifecycle(t *testing.T) {
	ledger, st, pub, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 2, CustomerName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	sale := res.Sale
	assert.Equal(t, int64(30000), sale.Total)
	assert.Equal(t, int64(0), sale.Paid)
	assert.Equal(t, int64(30000), sale.Balance)
	assert.Equal(t, models.SaleStatusPending, sale.Status())
	assert.Empty(t, st.paymentsFor(sale.ID))

	updated, payment, err := ledger.ApplyPayment(ctx, sale.ID, 10000, "abono")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), updated.Paid)
	assert.Equal(t, int64(20000), updated.Balance)
	assert.Equal(t, models.SaleStatusPartial, updated.Status())
	assert.Equal(t, int64(10000), payment.Amount)

	partial, err := ledger.ListSales(ctx, models.SaleFilter{Status: models.SaleStatusPartial})
	require.NoError(t, err)
	require.Len(t, partial.Sales, 1)
	assert.Equal(t, sale.ID, partial.Sales[0].ID)
	assert.Equal(t, int64(20000), partial.Summary.TotalBalance)

	updated, _, err = ledger.ApplyPayment(ctx, sale.ID, 20000, "")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), updated.Paid)
	assert.Equal(t, int64(0), updated.Balance)
	assert.Equal(t, models.SaleStatusPaid, updated.Status())

	_, _, err = ledger.ApplyPayment(ctx, sale.ID, 1, "")
	assert.ErrorIs(t, err, ErrAmountExceedsBalance)
	assert.Equal(t, KindValidation, KindOf(err))

	current, err := ledger.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), current.Paid)
	assert.Equal(t, int64(0), current.Balance)

	var sum int64
	for _, p := range st.paymentsFor(sale.ID) {
		sum += p.Amount
	}
	assert.Equal(t, current.Paid, sum)

	assert.Len(t, pub.created, 1)
	assert.Len(t, pub.applied, 2)
}

func TestCreateSaleFullyPaidUpFront(t *testing.T) {
	ledger, st, pub, dish := newTestLedger(t)

	res, err := ledger.CreateSale(context.Background(), &CreateSaleRequest{
		DishID: dish.ID, Quantity: 3, CustomerName: "Luis", InitialPayment: 45000,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.Equal(t, int64(45000), res.Sale.Paid)
	assert.Equal(t, int64(0), res.Sale.Balance)
	assert.Equal(t, models.SaleStatusPaid, res.Sale.Status())

	payments := st.paymentsFor(res.Sale.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, int64(45000), payments[0].Amount)
	assert.Equal(t, models.InitialPaymentNote, payments[0].Note)

	require.Len(t, pub.created, 1)
	assert.Equal(t, int64(45000), pub.created[0].Paid)
	assert.Equal(t, models.EventTypeSaleCreated, pub.created[0].EventType)
	assert.NotEmpty(t, pub.created[0].EventID)
}

func TestCreateSaleValidation(t *testing.T) {
	ledger, st, _, dish := newTestLedger(t)
	inactive := st.addDish("Mojarra frita", 20000, false)
	banquet := st.addDish("Banquete", math.MaxInt64/2, true)

	tests := []struct {
		name string
		req  CreateSaleRequest
		want error
	}{
		{"zero quantity", CreateSaleRequest{DishID: dish.ID, Quantity: 0, CustomerName: "Ana"}, ErrInvalidQuantity},
		{"quantity above column range", CreateSaleRequest{DishID: dish.ID, Quantity: math.MaxInt32 + 1, CustomerName: "Ana"}, ErrInvalidQuantity},
		{"total overflows", CreateSaleRequest{DishID: banquet.ID, Quantity: 3, CustomerName: "Ana"}, ErrInvalidQuantity},
		{"blank customer", CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "   "}, ErrMissingCustomer},
		{"negative payment", CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: -1}, ErrInvalidPayment},
		{"payment over total", CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: 15001}, ErrPaymentExceedsTotal},
		{"unknown dish", CreateSaleRequest{DishID: 999, Quantity: 1, CustomerName: "Ana"}, ErrDishNotFound},
		{"inactive dish", CreateSaleRequest{DishID: inactive.ID, Quantity: 1, CustomerName: "Ana"}, ErrDishInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := ledger.CreateSale(context.Background(), &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, st.sales)
}

func TestCreateSaleBoundaries(t *testing.T) {
	ledger, _, _, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: 15000})
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusPaid, res.Sale.Status())

	res, err = ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: " Ana ", InitialPayment: 0})
	require.NoError(t, err)
	assert.Equal(t, "Ana", res.Sale.CustomerName)
	assert.Equal(t, models.SaleStatusPending, res.Sale.Status())

	res, err = ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: math.MaxInt32, CustomerName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, dish.Price*math.MaxInt32, res.Sale.Total)
	assert.Equal(t, res.Sale.Price*int64(res.Sale.Quantity), res.Sale.Total)
}

func TestPublishOutlivesRequestContext(t *testing.T) {
	ledger, _, pub, dish := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana"})
	require.NoError(t, err)
	_, _, err = ledger.ApplyPayment(ctx, res.Sale.ID, 5000, "")
	require.NoError(t, err)
	require.NoError(t, ledger.DeleteSale(ctx, res.Sale.ID))

	require.Len(t, pub.ctxErrs, 3)
	for _, ctxErr := range pub.ctxErrs {
		assert.NoError(t, ctxErr)
	}
}

func TestCreateSaleSnapshotsDish(t *testing.T) {
	ledger, st, _, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 2, CustomerName: "Ana"})
	require.NoError(t, err)

	catalog := NewCatalogService(st, &memCache{})
	newName, newPrice := "Pescado frito", int64(18000)
	_, err = catalog.Update(ctx, dish.ID, &DishRequest{Name: &newName, Price: &newPrice})
	require.NoError(t, err)
	require.NoError(t, catalog.Delete(ctx, dish.ID))

	sale, err := ledger.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pescado con arroz", sale.Product)
	assert.Equal(t, int64(15000), sale.Price)
	assert.Equal(t, int64(30000), sale.Total)
}

func TestCreateSaleIdempotencyKey(t *testing.T) {
	ledger, st, pub, dish := newTestLedger(t)
	ctx := context.Background()
	req := &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: 5000, IdempotencyKey: "tab-1"}

	first, err := ledger.CreateSale(ctx, req)
	require.NoError(t, err)
	second, err := ledger.CreateSale(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Sale.ID, second.Sale.ID)
	assert.Len(t, st.sales, 1)
	assert.Len(t, st.paymentsFor(first.Sale.ID), 1)
	assert.Len(t, pub.created, 1)
}

func TestCreateSaleWarnsWhenInitialPaymentFails(t *testing.T) {
	ledger, st, _, dish := newTestLedger(t)
	st.createPaymentErr = errBoom

	res, err := ledger.CreateSale(context.Background(), &CreateSaleRequest{
		DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreatedWithWarning, res.Outcome)
	assert.Equal(t, WarningInitialPaymentFailed, res.Warning)
	assert.Equal(t, int64(5000), res.Sale.Paid)
	assert.Empty(t, st.paymentsFor(res.Sale.ID))
}

func TestCreateSaleIgnoresPublishFailure(t *testing.T) {
	ledger, _, pub, dish := newTestLedger(t)
	pub.err = errBoom

	res, err := ledger.CreateSale(context.Background(), &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestApplyPaymentValidation(t *testing.T) {
	ledger, _, pub, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana"})
	require.NoError(t, err)

	_, _, err = ledger.ApplyPayment(ctx, res.Sale.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ledger.ApplyPayment(ctx, res.Sale.ID, -10, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = ledger.ApplyPayment(ctx, 404, 100, "")
	assert.ErrorIs(t, err, ErrSaleNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, _, err = ledger.ApplyPayment(ctx, res.Sale.ID, 15001, "")
	assert.ErrorIs(t, err, ErrAmountExceedsBalance)

	sale, _, err := ledger.ApplyPayment(ctx, res.Sale.ID, 15000, "")
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusPaid, sale.Status())
	assert.Len(t, pub.applied, 1)
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	ledger, st, _, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 2, CustomerName: "Ana"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = ledger.ApplyPayment(ctx, res.Sale.ID, 5000, "")
		}()
	}
	wg.Wait()

	sale, err := ledger.GetSale(ctx, res.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), sale.Paid)
	assert.Equal(t, int64(0), sale.Balance)
	assert.Len(t, st.paymentsFor(sale.ID), 6)
}

func TestDeleteSale(t *testing.T) {
	ledger, st, pub, dish := newTestLedger(t)
	ctx := context.Background()

	res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: "Ana", InitialPayment: 5000})
	require.NoError(t, err)

	require.NoError(t, ledger.DeleteSale(ctx, res.Sale.ID))
	assert.Empty(t, st.paymentsFor(res.Sale.ID))
	require.Len(t, pub.deleted, 1)
	assert.Equal(t, int64(5000), pub.deleted[0].Paid)

	_, err = ledger.GetSale(ctx, res.Sale.ID)
	assert.ErrorIs(t, err, ErrSaleNotFound)

	assert.ErrorIs(t, ledger.DeleteSale(ctx, res.Sale.ID), ErrSaleNotFound)
	_, err = ledger.ListPayments(ctx, res.Sale.ID)
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestDeleteAllSales(t *testing.T) {
	ledger, st, pub, dish := newTestLedger(t)
	ctx := context.Background()

	var first int64
	for _, name := range []string{"Ana", "Luis", "Marta"} {
		res, err := ledger.CreateSale(ctx, &CreateSaleRequest{DishID: dish.ID, Quantity: 1, CustomerName: name})
		require.NoError(t, err)
		if first == 0 {
			first = res.Sale.ID
		}
	}

	_, _, err := ledger.ApplyPayment(ctx, first, 5000, "")
	require.NoError(t, err)

	// listing failures do not matter: the deleted rows come from the delete itself
	st.listErr = errors.New("listing unavailable")

	n, err := ledger.DeleteAllSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, st.sales)
	require.Len(t, pub.deleted, 3)

	var total, paid int64
	for _, event := range pub.deleted {
		total += event.Total
		paid += event.Paid
	}
	assert.Equal(t, int64(45000), total)
	assert.Equal(t, int64(5000), paid)
}

func TestListSalesFilters(t *testing.T) {
	ledger, st, _, _ := newTestLedger(t)
	bogota := time.FixedZone("COT", -5*3600)
	ledger.loc = bogota

	lateMarch9 := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC) // 21:00 March 9 in Bogota
	march10 := time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)

	st.addSale(models.Sale{Product: "Pescado con arroz", Total: 15000, Balance: 15000, CustomerName: "Ana", CreatedAt: lateMarch9})
	st.addSale(models.Sale{Product: "Mojarra frita", Total: 20000, Paid: 20000, CustomerName: "Luis", CreatedAt: march10})
	st.addSale(models.Sale{Product: "Pescado con arroz", Total: 30000, Paid: 10000, Balance: 20000, CustomerName: "Ana", CreatedAt: march10})

	all, err := ledger.ListSales(context.Background(), models.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all.Sales, 3)
	assert.Equal(t, "Pescado con arroz", all.Sales[0].Product)
	assert.Equal(t, lateMarch9, all.Sales[2].CreatedAt)
	assert.Equal(t, models.SaleSummary{Count: 3, TotalAmount: 65000, TotalPaid: 30000, TotalBalance: 35000}, all.Summary)

	day, err := ParseDay("2026-03-09", ledger.Location())
	require.NoError(t, err)
	onDay, err := ledger.ListSales(context.Background(), models.SaleFilter{Day: &day})
	require.NoError(t, err)
	require.Len(t, onDay.Sales, 1)
	assert.Equal(t, "Ana", onDay.Sales[0].CustomerName)

	ana, err := ledger.ListSales(context.Background(), models.SaleFilter{CustomerName: "Ana", Status: models.SaleStatusAll})
	require.NoError(t, err)
	assert.Equal(t, 2, ana.Summary.Count)
	assert.Equal(t, int64(35000), ana.Summary.TotalBalance)

	empty, err := ledger.ListSales(context.Background(), models.SaleFilter{Product: "Arepa"})
	require.NoError(t, err)
	assert.Empty(t, empty.Sales)
	assert.Equal(t, models.SaleSummary{}, empty.Summary)
}

func TestListSalesRejectsUnknownStatus(t *testing.T) {
	ledger, _, _, _ := newTestLedger(t)

	_, err := ledger.ListSales(context.Background(), models.SaleFilter{Status: "LATE"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = ParseDay("09/03/2026", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestListSalesStoreFailure(t *testing.T) {
	ledger, st, _, _ := newTestLedger(t)
	st.listErr = errBoom

	_, err := ledger.ListSales(context.Background(), models.SaleFilter{})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, KindInternal, KindOf(err))
}
