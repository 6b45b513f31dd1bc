package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cashflow-api/internal/cache"
	"cashflow-api/internal/model"
	"cashflow-api/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dashboardDays     = 7
	recentSalesLimit  = 5
	chartLabelLayout  = "02/01"
	chartDayKeyLayout = "2006-01-02"
)

type ReportService interface {
	SellThrough(ctx context.Context) (*SellThrough, error)
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
	Financial(ctx context.Context, salesPage, expensesPage int) (*Financial, error)
	DailyClosing(ctx context.Context, day time.Time) (*ClosingSummary, error)
}

// ReportOptions tunes reporting. Location decides which calendar day a sale
// belongs to.
type ReportOptions struct {
	Location          *time.Location
	CacheTTL          time.Duration
	LowStockThreshold int
}

type SellThrough struct {
	ItemsSold     int64   `json:"items_sold"`
	LifetimeStock int64   `json:"lifetime_stock"`
	Percent       float64 `json:"percent"`
}

type DayBucket struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
}

type Dashboard struct {
	Chart       []DayBucket     `json:"chart"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	NewClients  int64           `json:"new_clients"`
	SellThrough SellThrough     `json:"sell_through"`
	RecentSales []model.Sale    `json:"recent_sales"`
}

type FinancialStats struct {
	Revenue           decimal.Decimal `json:"revenue"`
	CostOfGoods       decimal.Decimal `json:"cost_of_goods"`
	OperatingExpenses decimal.Decimal `json:"operating_expenses"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	Margin            float64         `json:"margin"`
	SaleCount         int             `json:"sale_count"`
}

type FinancialPoint struct {
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

type Financial struct {
	Stats    FinancialStats            `json:"stats"`
	Chart    []FinancialPoint          `json:"chart"`
	Sales    PageResult[model.Sale]    `json:"sales"`
	Expenses PageResult[model.Expense] `json:"expenses"`
}

type LowStockProduct struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// ClosingSummary is the end-of-day snapshot sent by the scheduler.
type ClosingSummary struct {
	Day        string            `json:"day"`
	SalesCount int               `json:"sales_count"`
	Revenue    decimal.Decimal   `json:"revenue"`
	Expenses   decimal.Decimal   `json:"expenses"`
	Balance    decimal.Decimal   `json:"balance"`
	LowStock   []LowStockProduct `json:"low_stock"`
}

type reportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	expenseRepo repository.ExpenseRepository
	reports     cache.ReportCache
	opts        ReportOptions
	log         *zap.Logger
}

func NewReportService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository, expenseRepo repository.ExpenseRepository,
	reports cache.ReportCache, opts ReportOptions, log *zap.Logger) ReportService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &reportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		expenseRepo: expenseRepo,
		reports:     cacheOrNoop(reports),
		opts:        opts,
		log:         loggerOrNop(log),
	}
}

// cached serves key from the report cache or computes and stores it. Cache
// errors only cost a recomputation.
func cached[T any](ctx context.Context, s *reportService, key string, compute func() (*T, error)) (*T, error) {
	var hit T
	ok, err := s.reports.Get(ctx, key, &hit)
	if err != nil {
		s.log.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		return &hit, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	if s.opts.CacheTTL > 0 {
		if err := s.reports.Set(ctx, key, value, s.opts.CacheTTL); err != nil {
			s.log.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func (s *reportService) SellThrough(ctx context.Context) (*SellThrough, error) {
	return cached(ctx, s, "sell-through", func() (*SellThrough, error) {
		return s.sellThrough(ctx)
	})
}

// sellThrough is itemsSold over lifetimeStock as a percentage, 0 when nothing
// was ever stocked.
func (s *reportService) sellThrough(ctx context.Context) (*SellThrough, error) {
	sold, err := s.saleRepo.SumItemsSold(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum items sold: %w", err)
	}
	lifetime, err := s.productRepo.SumLifetimeStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum lifetime stock: %w", err)
	}

	result := &SellThrough{ItemsSold: sold, LifetimeStock: lifetime}
	if lifetime > 0 {
		result.Percent = float64(sold) / float64(lifetime) * 100
	}
	return result, nil
}

func (s *reportService) startOfDay(t time.Time) time.Time {
	local := t.In(s.opts.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.opts.Location)
}

// Dashboard covers the seven local days ending today. Every day has a bucket,
// empty ones included.
func (s *reportService) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	start := s.startOfDay(now).AddDate(0, 0, -(dashboardDays - 1))
	end := start.AddDate(0, 0, dashboardDays)

	return cached(ctx, s, "dashboard:"+start.Format(chartDayKeyLayout), func() (*Dashboard, error) {
		sales, err := s.saleRepo.FindCompletedBetween(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("load sales: %w", err)
		}
		newClients, err := s.clientRepo.CountCreatedSince(ctx, start)
		if err != nil {
			return nil, fmt.Errorf("count new clients: %w", err)
		}
		through, err := s.sellThrough(ctx)
		if err != nil {
			return nil, err
		}

		chart := make([]DayBucket, dashboardDays)
		index := make(map[string]int, dashboardDays)
		for i := range chart {
			day := start.AddDate(0, 0, i)
			chart[i] = DayBucket{Day: day.Format(chartLabelLayout), Revenue: decimal.Zero, Cost: decimal.Zero}
			index[day.Format(chartDayKeyLayout)] = i
		}

		dash := &Dashboard{
			Revenue:     decimal.Zero,
			Cost:        decimal.Zero,
			NewClients:  newClients,
			SellThrough: *through,
		}
		for _, sale := range sales {
			cost := saleCost(sale)
			dash.Revenue = dash.Revenue.Add(sale.Total)
			dash.Cost = dash.Cost.Add(cost)

			i, ok := index[sale.Date.In(s.opts.Location).Format(chartDayKeyLayout)]
			if !ok {
				continue
			}
			chart[i].Revenue = chart[i].Revenue.Add(sale.Total)
			chart[i].Cost = chart[i].Cost.Add(cost)
		}
		dash.Chart = chart
		dash.Profit = dash.Revenue.Sub(dash.Cost)
		dash.RecentSales = newestFirst(sales, recentSalesLimit)
		return dash, nil
	})
}

// Financial folds every completed sale and every expense into KPIs and a
// per-day series, plus one page of each listing.
func (s *reportService) Financial(ctx context.Context, salesPage, expensesPage int) (*Financial, error) {
	key := fmt.Sprintf("financial:%d:%d", salesPage, expensesPage)
	return cached(ctx, s, key, func() (*Financial, error) {
		sales, err := s.saleRepo.FindCompleted(ctx)
		if err != nil {
			return nil, fmt.Errorf("load sales: %w", err)
		}
		expenses, err := s.expenseRepo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("load expenses: %w", err)
		}

		stats := FinancialStats{
			Revenue:           decimal.Zero,
			CostOfGoods:       decimal.Zero,
			OperatingExpenses: decimal.Zero,
			SaleCount:         len(sales),
		}
		points := map[string]*FinancialPoint{}
		point := func(t time.Time) *FinancialPoint {
			local := t.In(s.opts.Location)
			key := local.Format(chartDayKeyLayout)
			p, ok := points[key]
			if !ok {
				p = &FinancialPoint{Day: local.Format(chartLabelLayout), Revenue: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
				points[key] = p
			}
			return p
		}

		for _, sale := range sales {
			cost := saleCost(sale)
			stats.Revenue = stats.Revenue.Add(sale.Total)
			stats.CostOfGoods = stats.CostOfGoods.Add(cost)

			p := point(sale.Date)
			p.Revenue = p.Revenue.Add(sale.Total)
			p.Cost = p.Cost.Add(cost)
			p.Profit = p.Profit.Add(sale.Total.Sub(cost))
		}
		for _, expense := range expenses {
			stats.OperatingExpenses = stats.OperatingExpenses.Add(expense.Value)

			p := point(expense.Date)
			p.Cost = p.Cost.Add(expense.Value)
			p.Profit = p.Profit.Sub(expense.Value)
		}

		stats.TotalCost = stats.CostOfGoods.Add(stats.OperatingExpenses)
		stats.NetProfit = stats.Revenue.Sub(stats.TotalCost)
		if stats.Revenue.IsPositive() {
			stats.Margin = stats.NetProfit.Div(stats.Revenue).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}

		keys := make([]string, 0, len(points))
		for k := range points {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		chart := make([]FinancialPoint, 0, len(keys))
		for _, k := range keys {
			chart = append(chart, *points[k])
		}

		salesP := repository.Page{Number: salesPage, Size: repository.DefaultPageSize}
		pagedSales, salesTotal, err := s.saleRepo.FindCompletedPage(ctx, salesP)
		if err != nil {
			return nil, fmt.Errorf("page sales: %w", err)
		}
		expensesP := repository.Page{Number: expensesPage, Size: repository.DefaultPageSize}
		pagedExpenses, expensesTotal, err := s.expenseRepo.FindPage(ctx, expensesP)
		if err != nil {
			return nil, fmt.Errorf("page expenses: %w", err)
		}

		return &Financial{
			Stats:    stats,
			Chart:    chart,
			Sales:    newPage(pagedSales, salesP, salesTotal),
			Expenses: newPage(pagedExpenses, expensesP, expensesTotal),
		}, nil
	})
}

// DailyClosing summarizes the local day containing day. It is never cached.
func (s *reportService) DailyClosing(ctx context.Context, day time.Time) (*ClosingSummary, error) {
	start := s.startOfDay(day)
	end := start.AddDate(0, 0, 1)

	sales, err := s.saleRepo.FindCompletedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	expenses, err := s.expenseRepo.SumBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}
	low, err := s.productRepo.FindLowStock(ctx, s.opts.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("load low stock: %w", err)
	}

	summary := &ClosingSummary{
		Day:        start.Format(chartDayKeyLayout),
		SalesCount: len(sales),
		Revenue:    decimal.Zero,
		Expenses:   expenses,
		LowStock:   make([]LowStockProduct, 0, len(low)),
	}
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.Total)
	}
	summary.Balance = summary.Revenue.Sub(summary.Expenses)
	for _, p := range low {
		summary.LowStock = append(summary.LowStock, LowStockProduct{ID: p.ID.String(), Name: p.Name, Stock: p.Stock})
	}
	return summary, nil
}

// saleCost is the sum of quantity times the product's current cost price.
func saleCost(sale model.Sale) decimal.Decimal {
	cost := decimal.Zero
	for _, item := range sale.Items {
		if item.Product == nil {
			continue
		}
		cost = cost.Add(item.Product.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return cost
}

// newestFirst returns up to limit sales from an oldest-first slice, newest first.
func newestFirst(sales []model.Sale, limit int) []model.Sale {
	if len(sales) > limit {
		sales = sales[len(sales)-limit:]
	}
	out := make([]model.Sale, 0, len(sales))
	for i := len(sales) - 1; i >= 0; i-- {
		out = append(out, sales[i])
	}
	return out
}
