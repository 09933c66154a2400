package services

import (
	"context"

	"nika.id/models"
	"nika.id/pkg/plans"
	"nika.id/repositories"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AdminStats feeds the admin home page.
type AdminStats struct {
	Users               int64                `json:"users"`
	UsersByPlan         map[plans.Tier]int64 `json:"usersByPlan"`
	TotalViews          int64                `json:"totalViews"`
	RSVPs               int64                `json:"rsvps"`
	Templates           int64                `json:"templates"`
	PendingMessages     int64                `json:"pendingMessages"`
	PendingTransactions int64                `json:"pendingTransactions"`
	PaidTransactions    int64                `json:"paidTransactions"`
	Revenue             decimal.Decimal      `json:"revenue"`
}

// IDashboardService computes the admin overview.
type IDashboardService interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
}

// DashboardService implements IDashboardService.
type DashboardService struct {
	users        repositories.IUserRepository
	templates    repositories.ITemplateRepository
	rsvps        repositories.IRSVPRepository
	messages     repositories.IGuestMessageRepository
	transactions repositories.ITransactionRepository
}

// NewDashboardService wires the repositories it counts over.
func NewDashboardService(r repos) IDashboardService {
	return &DashboardService{
		users:        r.users,
		templates:    r.templates,
		rsvps:        r.rsvps,
		messages:     r.messages,
		transactions: r.transactions,
	}
}

// AdminStats runs the independent aggregates concurrently; the first failure cancels the rest.
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var st AdminStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) { st.Users, err = s.users.Count(gctx); return })
	g.Go(func() (err error) { st.UsersByPlan, err = s.users.CountByPlan(gctx); return })
	g.Go(func() (err error) { st.TotalViews, err = s.users.SumViews(gctx); return })
	g.Go(func() (err error) { st.RSVPs, err = s.rsvps.Count(gctx); return })
	g.Go(func() (err error) { st.Templates, err = s.templates.Count(gctx); return })
	g.Go(func() (err error) {
		st.PendingMessages, err = s.messages.CountByStatus(gctx, models.MessagePending)
		return
	})
	g.Go(func() (err error) {
		st.PendingTransactions, err = s.transactions.CountByStatus(gctx, models.TransactionPending)
		return
	})
	g.Go(func() (err error) {
		st.PaidTransactions, err = s.transactions.CountByStatus(gctx, models.TransactionSuccess)
		return
	})
	g.Go(func() (err error) { st.Revenue, err = s.transactions.SumSuccessful(gctx); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
