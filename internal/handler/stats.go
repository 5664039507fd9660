package handler

import (
	"net/http"

	"github.com/quantshop/storefront/internal/domain/analytics"
)

type overviewDTO struct {
	TotalOrders       int     `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	MonthlyGrowth     float64 `json:"monthlyGrowth"`
}

type recentDTO struct {
	MonthlyOrders  int     `json:"monthlyOrders"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
	WeeklyOrders   int     `json:"weeklyOrders"`
	WeeklyRevenue  float64 `json:"weeklyRevenue"`
}

type productSalesDTO struct {
	ProductID string `json:"productId"`
	Sales     int    `json:"sales"`
}

type dailySaleDTO struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type monthlySaleDTO struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type statsResponse struct {
	Overview overviewDTO `json:"overview"`
	Recent   recentDTO   `json:"recent"`
	Products struct {
		TopSelling []productSalesDTO `json:"topSelling"`
	} `json:"products"`
	Trends struct {
		DailySales   []dailySaleDTO   `json:"dailySales"`
		MonthlySales []monthlySaleDTO `json:"monthlySales"`
	} `json:"trends"`
}

// EnhancedStats handles GET /api/stats/enhanced.
func (h *Handler) EnhancedStats(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeInternalError(w, r, "Failed to list orders", err)
		return
	}

	report := analytics.Summarize(orders, h.now())

	resp := statsResponse{
		Overview: overviewDTO{
			TotalOrders:       report.Overview.TotalOrders,
			TotalRevenue:      report.Overview.TotalRevenue.InexactFloat64(),
			AverageOrderValue: report.Overview.AverageOrderValue.InexactFloat64(),
			MonthlyGrowth:     report.Overview.MonthlyGrowth.InexactFloat64(),
		},
		Recent: recentDTO{
			MonthlyOrders:  report.Recent.MonthlyOrders,
			MonthlyRevenue: report.Recent.MonthlyRevenue.InexactFloat64(),
			WeeklyOrders:   report.Recent.WeeklyOrders,
			WeeklyRevenue:  report.Recent.WeeklyRevenue.InexactFloat64(),
		},
	}

	resp.Products.TopSelling = make([]productSalesDTO, len(report.TopSelling))
	for i, ts := range report.TopSelling {
		resp.Products.TopSelling[i] = productSalesDTO{ProductID: ts.ProductID, Sales: ts.Sales}
	}

	resp.Trends.DailySales = make([]dailySaleDTO, len(report.DailySales))
	for i, ds := range report.DailySales {
		resp.Trends.DailySales[i] = dailySaleDTO{Date: ds.Date, Amount: ds.Amount.InexactFloat64()}
	}

	resp.Trends.MonthlySales = make([]monthlySaleDTO, len(report.MonthlySales))
	for i, ms := range report.MonthlySales {
		resp.Trends.MonthlySales[i] = monthlySaleDTO{Month: ms.Month, Amount: ms.Amount.InexactFloat64()}
	}

	writeJSON(w, http.StatusOK, resp)
}
