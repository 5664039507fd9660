package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantshop/storefront/internal/domain/order"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func o(productID string, amount string, createdAt time.Time) order.Order {
	return order.Order{
		ID:        "ord-" + productID,
		ProductID: productID,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: createdAt,
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, now)

	assert.Equal(t, 0, got.Overview.TotalOrders)
	assert.True(t, got.Overview.TotalRevenue.IsZero())
	assert.True(t, got.Overview.AverageOrderValue.IsZero(), "no division by zero on empty history")
	assert.True(t, got.Overview.MonthlyGrowth.IsZero())
	assert.Empty(t, got.TopSelling)
	assert.Empty(t, got.MonthlySales)

	require.Len(t, got.DailySales, 30)
	for _, ds := range got.DailySales {
		assert.True(t, ds.Amount.IsZero(), "day %s should be zero", ds.Date)
	}
	assert.Equal(t, "2025-05-17", got.DailySales[0].Date)
	assert.Equal(t, "2025-06-15", got.DailySales[29].Date)
}

func TestSummarize_RevenueWindows(t *testing.T) {
	orders := []order.Order{
		o("p1", "100", now.Add(-2*24*time.Hour)),  // weekly + monthly
		o("p2", "200", now.Add(-10*24*time.Hour)), // monthly only
		o("p3", "300", now.Add(-60*24*time.Hour)), // neither window
	}

	got := Summarize(orders, now)

	assert.Equal(t, 3, got.Overview.TotalOrders)
	assert.True(t, got.Overview.TotalRevenue.Equal(decimal.NewFromInt(600)))
	assert.True(t, got.Overview.AverageOrderValue.Equal(decimal.NewFromInt(200)))

	assert.Equal(t, 2, got.Recent.MonthlyOrders)
	assert.True(t, got.Recent.MonthlyRevenue.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 1, got.Recent.WeeklyOrders)
	assert.True(t, got.Recent.WeeklyRevenue.Equal(decimal.NewFromInt(100)))
}

func TestSummarize_WindowBoundaryInclusive(t *testing.T) {
	exactly30 := now.Add(-30 * 24 * time.Hour)
	got := Summarize([]order.Order{o("p1", "50", exactly30)}, now)

	assert.Equal(t, 1, got.Recent.MonthlyOrders, "order exactly at the window start counts")
}

func TestSummarize_MonthlyGrowth(t *testing.T) {
	// 40 orders: 30 in the last 30 days, 10 older. Growth = (30-10)/10 * 100 = 200%.
	var orders []order.Order
	for i := 0; i < 30; i++ {
		orders = append(orders, o(fmt.Sprintf("r%d", i), "10", now.Add(-time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 10; i++ {
		orders = append(orders, o(fmt.Sprintf("s%d", i), "10", now.Add(-40*24*time.Hour)))
	}

	got := Summarize(orders, now)
	assert.True(t, got.Overview.MonthlyGrowth.Equal(decimal.NewFromInt(200)),
		"expected 200, got %s", got.Overview.MonthlyGrowth)
}

func TestSummarize_MonthlyGrowthZeroForShortHistory(t *testing.T) {
	var orders []order.Order
	for i := 0; i < 30; i++ {
		orders = append(orders, o(fmt.Sprintf("p%d", i), "10", now))
	}

	got := Summarize(orders, now)
	assert.True(t, got.Overview.MonthlyGrowth.IsZero(), "30 or fewer orders yields zero growth")
}

func TestSummarize_MonthlyGrowthZeroDenominator(t *testing.T) {
	// More than 30 orders but all within the window: denominator is zero.
	var orders []order.Order
	for i := 0; i < 35; i++ {
		orders = append(orders, o(fmt.Sprintf("p%d", i), "10", now))
	}

	got := Summarize(orders, now)
	assert.True(t, got.Overview.MonthlyGrowth.IsZero())
}

func TestSummarize_TopSelling(t *testing.T) {
	var orders []order.Order
	sales := map[string]int{"a": 7, "b": 3, "c": 5, "d": 1, "e": 2, "f": 6}
	for id, n := range sales {
		for i := 0; i < n; i++ {
			orders = append(orders, o(id, "1", now))
		}
	}
	// Orders without a product ID are excluded from the ranking.
	orders = append(orders, order.Order{ID: "anon", Amount: decimal.NewFromInt(5), CreatedAt: now})

	got := Summarize(orders, now)

	require.Len(t, got.TopSelling, 5)
	assert.Equal(t, ProductSales{ProductID: "a", Sales: 7}, got.TopSelling[0])
	assert.Equal(t, ProductSales{ProductID: "f", Sales: 6}, got.TopSelling[1])
	assert.Equal(t, ProductSales{ProductID: "c", Sales: 5}, got.TopSelling[2])
	assert.Equal(t, ProductSales{ProductID: "b", Sales: 3}, got.TopSelling[3])
	assert.Equal(t, ProductSales{ProductID: "e", Sales: 2}, got.TopSelling[4])
}

func TestSummarize_DailySalesAccumulation(t *testing.T) {
	today := now
	yesterday := now.Add(-24 * time.Hour)
	orders := []order.Order{
		o("p1", "10", today),
		o("p2", "15", today),
		o("p3", "20", yesterday),
		o("p4", "99", now.Add(-45*24*time.Hour)), // outside window
	}

	got := Summarize(orders, now)

	require.Len(t, got.DailySales, 30)
	last := got.DailySales[29]
	assert.Equal(t, "2025-06-15", last.Date)
	assert.True(t, last.Amount.Equal(decimal.NewFromInt(25)))
	assert.True(t, got.DailySales[28].Amount.Equal(decimal.NewFromInt(20)))

	total := decimal.Zero
	for _, ds := range got.DailySales {
		total = total.Add(ds.Amount)
	}
	assert.True(t, total.Equal(got.Recent.MonthlyRevenue),
		"daily sales must sum to monthly revenue, got %s vs %s", total, got.Recent.MonthlyRevenue)
}

func TestSummarize_MonthlySales(t *testing.T) {
	orders := []order.Order{
		o("p1", "10", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		o("p2", "20", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)),
		o("p3", "30", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)),
	}

	got := Summarize(orders, now)

	require.Len(t, got.MonthlySales, 2)
	assert.Equal(t, "2025-03", got.MonthlySales[0].Month)
	assert.True(t, got.MonthlySales[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "2025-05", got.MonthlySales[1].Month)
	assert.True(t, got.MonthlySales[1].Amount.Equal(decimal.NewFromInt(20)))
}
