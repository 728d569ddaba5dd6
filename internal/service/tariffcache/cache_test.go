package tariffcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type ViewTestSuite struct {
	suite.Suite
}

func TestView(t *testing.T) {
	suite.Run(t, new(ViewTestSuite))
}

func limit(v int64) *int64 { return &v }

func (s *ViewTestSuite) TestBuildView_NilStateProducesNoTariffMarker() {
	now := time.Now().UTC()

	view := BuildView(nil, now)

	s.False(view.HasTariff)
	s.Equal(now, view.CachedAt)
	s.Nil(view.Limits)

	_, ok := view.Usage(domain.QuotaEmployees)
	s.False(ok)
}

func (s *ViewTestSuite) TestBuildView_CarriesLimitsAndPercentages() {
	now := time.Now().UTC()
	state := &domain.TariffState{
		CompanyID:         "c1",
		Title:             "Pro",
		ValidFrom:         now.AddDate(0, -1, 0),
		ValidTo:           now.AddDate(0, 1, 0),
		MaxEmployees:      limit(10),
		UsedEmployees:     3,
		MaxVerifications:  nil, // unlimited
		UsedVerifications: 500,
		MaxOrders:         limit(0),
		UsedOrders:        0,
		AutoTeams:         true,
	}

	view := BuildView(state, now)

	s.True(view.HasTariff)
	s.False(view.IsExpired)
	s.Equal("Pro", view.Title)
	s.True(view.Automation.AutoTeams)

	employees, ok := view.Usage(domain.QuotaEmployees)
	s.True(ok)
	s.Equal(int64(3), employees.Used)
	s.Equal(int64(10), *employees.Max)
	s.Equal(30.0, view.Percentages[domain.QuotaEmployees])

	verifications, ok := view.Usage(domain.QuotaVerifications)
	s.True(ok)
	s.Nil(verifications.Max)
	s.Equal(0.0, view.Percentages[domain.QuotaVerifications])

	orders, ok := view.Usage(domain.QuotaOrders)
	s.True(ok)
	s.Equal(int64(0), *orders.Max)
	s.Equal(0.0, view.Percentages[domain.QuotaOrders])
}

func (s *ViewTestSuite) TestBuildView_MarksExpiredPlans() {
	now := time.Now().UTC()
	state := &domain.TariffState{
		CompanyID: "c1",
		ValidFrom: now.AddDate(0, -2, 0),
		ValidTo:   now.AddDate(0, -1, 0),
	}

	view := BuildView(state, now)

	s.True(view.HasTariff)
	s.True(view.IsExpired)
}

func (s *ViewTestSuite) TestUsage_NilViewIsAMiss() {
	var view *View

	_, ok := view.Usage(domain.QuotaOrders)

	s.False(ok)
}

func (s *ViewTestSuite) TestUsagePercent_RoundsToOneDecimal() {
	s.Equal(33.3, usagePercent(1, limit(3)))
	s.Equal(66.7, usagePercent(2, limit(3)))
	s.Equal(100.0, usagePercent(3, limit(3)))
	s.Equal(0.0, usagePercent(5, nil))
	s.Equal(0.0, usagePercent(5, limit(0)))
}
