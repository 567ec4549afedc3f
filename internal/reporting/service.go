// Package reporting builds read-only views over the ledger, requests and
// inventory. A failing query is logged and its figure falls back to zero or
// empty; a view is always returned.
package reporting

import (
	"log"
	"time"

	"bloodbank-backend/internal/inventory"
	"bloodbank-backend/internal/ledger"
	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/request"

	"gorm.io/gorm"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 100
)

type DashboardView struct {
	TotalDonated     int                 `json:"total_donated"`
	TotalDistributed int                 `json:"total_distributed"`
	ByType           []ledger.TypeTotals `json:"by_type"`
}

type StatsOptions struct {
	RecentStatus models.RequestStatus // empty means fulfilled
	RecentLimit  int                  // <= 0 means 5
}

type StatisticsView struct {
	// Document counts, not units.
	TotalDonations     int64 `json:"total_donations"`
	TotalDistributions int64 `json:"total_distributions"`
	UniqueDonors       int64 `json:"unique_donors"`
	UniqueHospitals    int64 `json:"unique_hospitals"`

	// Units per blood type; every blood type is present.
	DonationsByType     map[models.BloodType]int `json:"donations_by_type"`
	DistributionsByType map[models.BloodType]int `json:"distributions_by_type"`

	RecentRequests []request.RequestResponse `json:"recent_requests"`
	Inventory      []inventory.ItemResponse  `json:"inventory"`
	GeneratedAt    time.Time                 `json:"generated_at"`
}

type HospitalDashboardView struct {
	PendingRequests   int64                     `json:"pending_requests"`
	ApprovedRequests  int64                     `json:"approved_requests"`
	RequestsThisMonth int64                     `json:"requests_this_month"`
	RecentRequests    []request.RequestResponse `json:"recent_requests"`
	Inventory         []inventory.ItemResponse  `json:"inventory"`
}

// Dashboard sums donated and distributed units overall and per blood type.
func Dashboard(db *gorm.DB) DashboardView {
	view := DashboardView{ByType: []ledger.TypeTotals{}}

	totals, err := ledger.TotalsByType(db)
	if err != nil {
		warn("dashboard totals", err)
		return view
	}
	view.ByType = totals
	for _, t := range totals {
		view.TotalDonated += t.Donations
		view.TotalDistributed += t.Distributions
	}
	return view
}

func Statistics(db *gorm.DB, opts StatsOptions) StatisticsView {
	if opts.RecentStatus == "" {
		opts.RecentStatus = models.RequestFulfilled
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.RecentLimit > maxRecentLimit {
		opts.RecentLimit = maxRecentLimit
	}

	view := StatisticsView{
		DonationsByType:     zeroByType(),
		DistributionsByType: zeroByType(),
		RecentRequests:      []request.RequestResponse{},
		GeneratedAt:         time.Now(),
	}

	var err error
	if view.TotalDonations, err = ledger.CountByKind(db, models.TransactionDonation); err != nil {
		warn("count donations", err)
	}
	if view.TotalDistributions, err = ledger.CountByKind(db, models.TransactionDistribution); err != nil {
		warn("count distributions", err)
	}
	if view.UniqueDonors, err = ledger.DistinctCounterparties(db, models.TransactionDonation); err != nil {
		warn("count donors", err)
	}
	if view.UniqueHospitals, err = ledger.DistinctCounterparties(db, models.TransactionDistribution); err != nil {
		warn("count hospitals", err)
	}

	if sums, err := ledger.AggregateByType(db, models.TransactionDonation); err != nil {
		warn("donations by type", err)
	} else {
		mergeInto(view.DonationsByType, sums)
	}
	if sums, err := ledger.AggregateByType(db, models.TransactionDistribution); err != nil {
		warn("distributions by type", err)
	} else {
		mergeInto(view.DistributionsByType, sums)
	}

	if reqs, err := request.List(db, request.ListFilter{Status: opts.RecentStatus, Limit: opts.RecentLimit}); err != nil {
		warn("recent requests", err)
	} else {
		for i := range reqs {
			view.RecentRequests = append(view.RecentRequests, request.NewRequestResponse(&reqs[i]))
		}
	}

	view.Inventory = InventoryStatus(db)
	return view
}

// InventoryStatus is the raw inventory list; empty when the bank is not seeded.
func InventoryStatus(db *gorm.DB) []inventory.ItemResponse {
	bank, err := inventory.Get(db)
	if err != nil {
		warn("inventory", err)
		return []inventory.ItemResponse{}
	}
	return inventory.ItemResponses(bank.Items)
}

func HospitalDashboard(db *gorm.DB, hospitalID uint) HospitalDashboardView {
	view := HospitalDashboardView{RecentRequests: []request.RequestResponse{}}

	base := func() *gorm.DB {
		return db.Model(&models.Request{}).Where("hospital_id = ?", hospitalID)
	}

	if err := base().Where("status = ?", models.RequestPending).Count(&view.PendingRequests).Error; err != nil {
		warn("pending requests", err)
	}
	if err := base().Where("status = ?", models.RequestApproved).Count(&view.ApprovedRequests).Error; err != nil {
		warn("approved requests", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := base().Where("created_at >= ?", monthStart).Count(&view.RequestsThisMonth).Error; err != nil {
		warn("requests this month", err)
	}

	id := hospitalID
	if reqs, err := request.List(db, request.ListFilter{HospitalID: &id, Limit: defaultRecentLimit}); err != nil {
		warn("recent hospital requests", err)
	} else {
		for i := range reqs {
			view.RecentRequests = append(view.RecentRequests, request.NewRequestResponse(&reqs[i]))
		}
	}

	view.Inventory = InventoryStatus(db)
	return view
}

func zeroByType() map[models.BloodType]int {
	m := make(map[models.BloodType]int, len(models.AllBloodTypes))
	for _, bt := range models.AllBloodTypes {
		m[bt] = 0
	}
	return m
}

func mergeInto(dst, src map[models.BloodType]int) {
	for bt, n := range src {
		dst[bt] += n
	}
}

func warn(what string, err error) {
	log.Printf("[WARN] reporting: %s: %v", what, err)
}
