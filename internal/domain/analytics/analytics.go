// Package analytics computes sales reports from order history. All functions
// are pure: they take an order snapshot and a reference time and hold no
// state between calls.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantshop/storefront/internal/domain/order"
)

const (
	dailyWindowDays = 30
	topSellingLimit = 5
	growthMinOrders = 30
	dateLayout      = "2006-01-02"
	monthLayout     = "2006-01"
)

var hundred = decimal.NewFromInt(100)

// Overview summarizes the entire order history.
type Overview struct {
	TotalOrders       int
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	MonthlyGrowth     decimal.Decimal
}

// Recent summarizes the trailing 30-day and 7-day windows.
type Recent struct {
	MonthlyOrders  int
	MonthlyRevenue decimal.Decimal
	WeeklyOrders   int
	WeeklyRevenue  decimal.Decimal
}

// ProductSales is a product ranked by number of orders.
type ProductSales struct {
	ProductID string
	Sales     int
}

// DailySale is one calendar day's accumulated revenue.
type DailySale struct {
	Date   string
	Amount decimal.Decimal
}

// MonthlySale is one calendar month's accumulated revenue.
type MonthlySale struct {
	Month  string
	Amount decimal.Decimal
}

// Report is the full sales analytics summary.
type Report struct {
	Overview     Overview
	Recent       Recent
	TopSelling   []ProductSales
	DailySales   []DailySale
	MonthlySales []MonthlySale
}

// Summarize aggregates the order history relative to now. Window membership
// is inclusive: an order created exactly at the window start counts.
func Summarize(orders []order.Order, now time.Time) Report {
	monthStart := now.Add(-dailyWindowDays * 24 * time.Hour)
	weekStart := now.Add(-7 * 24 * time.Hour)

	var (
		totalRevenue   = decimal.Zero
		monthlyRevenue = decimal.Zero
		weeklyRevenue  = decimal.Zero
		monthlyOrders  int
		weeklyOrders   int
	)
	for _, o := range orders {
		totalRevenue = totalRevenue.Add(o.Amount)
		if !o.CreatedAt.Before(monthStart) {
			monthlyOrders++
			monthlyRevenue = monthlyRevenue.Add(o.Amount)
		}
		if !o.CreatedAt.Before(weekStart) {
			weeklyOrders++
			weeklyRevenue = weeklyRevenue.Add(o.Amount)
		}
	}

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = totalRevenue.Div(decimal.NewFromInt(int64(len(orders))))
	}

	return Report{
		Overview: Overview{
			TotalOrders:       len(orders),
			TotalRevenue:      totalRevenue,
			AverageOrderValue: avg,
			MonthlyGrowth:     monthlyGrowth(len(orders), monthlyOrders),
		},
		Recent: Recent{
			MonthlyOrders:  monthlyOrders,
			MonthlyRevenue: monthlyRevenue,
			WeeklyOrders:   weeklyOrders,
			WeeklyRevenue:  weeklyRevenue,
		},
		TopSelling:   topSelling(orders),
		DailySales:   dailySales(orders, now),
		MonthlySales: monthlySales(orders),
	}
}

// monthlyGrowth compares the 30-day window's order count against the rest of
// the history, as a percentage. It is zero for short histories (30 orders or
// fewer) and when there are no orders outside the window.
func monthlyGrowth(total, recent int) decimal.Decimal {
	if total <= growthMinOrders {
		return decimal.Zero
	}
	rest := total - recent
	if rest == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(recent - rest)).
		Div(decimal.NewFromInt(int64(rest))).
		Mul(hundred)
}

// topSelling ranks products by order count, descending, truncated to the top
// five. Orders without a product ID are excluded. Ties break by product ID so
// the ranking is deterministic.
func topSelling(orders []order.Order) []ProductSales {
	counts := make(map[string]int)
	for _, o := range orders {
		if o.ProductID == "" {
			continue
		}
		counts[o.ProductID]++
	}

	ranked := make([]ProductSales, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, ProductSales{ProductID: id, Sales: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Sales != ranked[j].Sales {
			return ranked[i].Sales > ranked[j].Sales
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})

	if len(ranked) > topSellingLimit {
		ranked = ranked[:topSellingLimit]
	}
	return ranked
}

// dailySales builds a fixed window of the last 30 calendar days (UTC, oldest
// first, ending today). Every slot starts at zero; orders outside the window
// contribute nothing.
func dailySales(orders []order.Order, now time.Time) []DailySale {
	sales := make([]DailySale, dailyWindowDays)
	index := make(map[string]int, dailyWindowDays)
	day := now.UTC()
	for i := dailyWindowDays - 1; i >= 0; i-- {
		date := day.AddDate(0, 0, -i).Format(dateLayout)
		slot := dailyWindowDays - 1 - i
		sales[slot] = DailySale{Date: date, Amount: decimal.Zero}
		index[date] = slot
	}

	for _, o := range orders {
		if slot, ok := index[o.CreatedAt.UTC().Format(dateLayout)]; ok {
			sales[slot].Amount = sales[slot].Amount.Add(o.Amount)
		}
	}
	return sales
}

// monthlySales buckets revenue by calendar month, ascending by month key.
func monthlySales(orders []order.Order) []MonthlySale {
	buckets := make(map[string]decimal.Decimal)
	for _, o := range orders {
		key := o.CreatedAt.UTC().Format(monthLayout)
		buckets[key] = buckets[key].Add(o.Amount)
	}

	out := make([]MonthlySale, 0, len(buckets))
	for month, amount := range buckets {
		out = append(out, MonthlySale{Month: month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
