package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
	"github.com/xavierca1/bemquerer-hub/internal/usecase"
)

func TestRangeFor(t *testing.T) {
	// quarta-feira; a semana começa na segunda 22/12
	now := time.Date(2025, 12, 24, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		period entity.Period
		start  time.Time
		end    time.Time
	}{
		{entity.PeriodToday, time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), now},
		{entity.PeriodWeek, time.Date(2025, 12, 22, 0, 0, 0, 0, time.UTC), now},
		{entity.PeriodMonth, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), now},
		{entity.PeriodLastMonth, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC)},
		{entity.PeriodYear, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), now},
	}
	for _, c := range cases {
		p, r := usecase.RangeFor(c.period, now)
		assert.Equal(t, c.period, p)
		assert.True(t, c.start.Equal(r.Start), "%s start %s", c.period, r.Start)
		assert.True(t, c.end.Equal(r.End), "%s end %s", c.period, r.End)
	}

	p, r := usecase.RangeFor("qualquer", now)
	assert.Equal(t, entity.PeriodLast30, p)
	assert.True(t, now.AddDate(0, 0, -30).Equal(r.Start))
}

// TestDashboardMetricsAll - todas as seções com taxas de uma casa decimal
func TestDashboardMetricsAll(t *testing.T) {
	repo := new(MockMetricsRepository)
	repo.On("CreatedBetween", mock.Anything, "c1", mock.Anything).Return([]entity.DealCount{
		{Status: entity.StatusNew}, {Status: entity.StatusScheduled}, {Status: entity.StatusWon, Value: 1500},
	}, nil)
	repo.On("UpdatedBetween", mock.Anything, "c1", mock.Anything, []entity.Status{entity.StatusScheduled, entity.StatusAttended, entity.StatusNoShow}).
		Return([]entity.DealCount{{Status: entity.StatusScheduled}, {Status: entity.StatusAttended}}, nil)
	repo.On("UpdatedBetween", mock.Anything, "c1", mock.Anything, []entity.Status{entity.StatusAttended, entity.StatusNoShow}).
		Return([]entity.DealCount{{Status: entity.StatusAttended}, {Status: entity.StatusAttended}, {Status: entity.StatusNoShow}}, nil)
	repo.On("UpdatedBetween", mock.Anything, "c1", mock.Anything, []entity.Status{entity.StatusWon}).
		Return([]entity.DealCount{{Status: entity.StatusWon, Value: 1500}, {Status: entity.StatusWon, Value: 1000}}, nil)

	uc := usecase.NewDashboardUseCase(repo, zap.NewNop())
	uc.Now = fixedClock(today)

	m, err := uc.Execute(context.Background(), "c1", usecase.DashboardInput{Period: "mes"})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Leads.Total)
	assert.Equal(t, 1, m.Leads.Scheduled)
	assert.Equal(t, 33.3, m.Leads.ConversionRate)
	assert.Equal(t, 2, m.Appointments.Total)
	assert.Equal(t, 2, m.Attendance.Attended)
	assert.Equal(t, 1, m.Attendance.Missed)
	assert.Equal(t, 66.7, m.Attendance.Rate)
	assert.Equal(t, 2500.0, m.Sales.Revenue)
	assert.Equal(t, 1250.0, m.Sales.AverageTicket)
	assert.Equal(t, 66.7, m.Conversion.Rate)
	assert.Equal(t, "01/12 a 22/12", m.Label)
}

func TestDashboardSingleMetricSkipsOthers(t *testing.T) {
	repo := new(MockMetricsRepository)
	repo.On("UpdatedBetween", mock.Anything, "c1", mock.Anything, []entity.Status{entity.StatusScheduled, entity.StatusAttended, entity.StatusNoShow}).
		Return([]entity.DealCount{}, nil)

	m, err := usecase.NewDashboardUseCase(repo, zap.NewNop()).Execute(context.Background(), "c1", usecase.DashboardInput{Type: "agendamentos"})
	require.NoError(t, err)

	assert.NotNil(t, m.Appointments)
	assert.Nil(t, m.Leads)
	assert.Nil(t, m.Sales)
	repo.AssertNotCalled(t, "CreatedBetween", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardUnknownMetric(t *testing.T) {
	_, err := usecase.NewDashboardUseCase(new(MockMetricsRepository), zap.NewNop()).Execute(context.Background(), "c1", usecase.DashboardInput{Type: "churn"})
	assert.True(t, usecase.IsDomainError(err))
}
