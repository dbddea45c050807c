package usecase

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/bemquerer-hub/internal/entity"
)

// Tipos de métrica aceitos; vazio devolve todas.
const (
	MetricLeads        = "leads"
	MetricAppointments = "agendamentos"
	MetricAttendance   = "comparecimentos"
	MetricSales        = "vendas"
	MetricConversion   = "conversao"
)

type DashboardInput struct {
	Type   string `json:"tipo"`
	Period string `json:"periodo"`
}

type DashboardUseCase struct {
	Metrics entity.MetricsRepositoryInterface
	Now     func() time.Time
	log     *zap.SugaredLogger
}

func NewDashboardUseCase(metrics entity.MetricsRepositoryInterface, log *zap.Logger) *DashboardUseCase {
	return &DashboardUseCase{Metrics: metrics, Now: time.Now, log: log.Sugar()}
}

// RangeFor calcula o intervalo do período em relação a now.
func RangeFor(period entity.Period, now time.Time) (entity.Period, entity.DateRange) {
	y, m, d := now.Date()
	loc := now.Location()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch period {
	case entity.PeriodToday:
		return period, entity.DateRange{Start: startOfDay, End: now}
	case entity.PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7 // segunda = 0
		return period, entity.DateRange{Start: startOfDay.AddDate(0, 0, -offset), End: now}
	case entity.PeriodMonth:
		return period, entity.DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: now}
	case entity.PeriodLastMonth:
		firstThisMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return period, entity.DateRange{
			Start: firstThisMonth.AddDate(0, -1, 0),
			End:   firstThisMonth.Add(-time.Second),
		}
	case entity.PeriodYear:
		return period, entity.DateRange{Start: time.Date(y, 1, 1, 0, 0, 0, 0, loc), End: now}
	default:
		return entity.PeriodLast30, entity.DateRange{Start: now.AddDate(0, 0, -30), End: now}
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func (uc *DashboardUseCase) Execute(ctx context.Context, clinicID string, input DashboardInput) (*entity.DashboardMetrics, error) {
	switch input.Type {
	case "", MetricLeads, MetricAppointments, MetricAttendance, MetricSales, MetricConversion:
	default:
		return nil, validationError("tipo: métrica '" + input.Type + "' não reconhecida")
	}

	period, r := RangeFor(entity.Period(input.Period), uc.Now())
	out := &entity.DashboardMetrics{Period: period, Range: r, Label: r.Label()}

	want := func(t string) bool { return input.Type == "" || input.Type == t }
	needLeads := want(MetricLeads) || want(MetricConversion)
	needSales := want(MetricSales) || want(MetricConversion)

	var created, scheduled, attendance, won []entity.DealCount
	g, gctx := errgroup.WithContext(ctx)
	if needLeads {
		g.Go(func() (err error) {
			created, err = uc.Metrics.CreatedBetween(gctx, clinicID, r)
			return err
		})
	}
	if want(MetricAppointments) {
		g.Go(func() (err error) {
			scheduled, err = uc.Metrics.UpdatedBetween(gctx, clinicID, r, entity.StatusScheduled, entity.StatusAttended, entity.StatusNoShow)
			return err
		})
	}
	if want(MetricAttendance) {
		g.Go(func() (err error) {
			attendance, err = uc.Metrics.UpdatedBetween(gctx, clinicID, r, entity.StatusAttended, entity.StatusNoShow)
			return err
		})
	}
	if needSales {
		g.Go(func() (err error) {
			won, err = uc.Metrics.UpdatedBetween(gctx, clinicID, r, entity.StatusWon)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		uc.log.Errorw("❌ Erro ao calcular métricas", "clinic_id", clinicID, "error", err)
		return nil, databaseError("erro ao calcular métricas", err)
	}

	if want(MetricLeads) {
		booked := 0
		for _, d := range created {
			switch d.Status {
			case entity.StatusScheduled, entity.StatusAttended, entity.StatusNoShow:
				booked++
			}
		}
		out.Leads = &entity.LeadsMetric{Total: len(created), Scheduled: booked, ConversionRate: rate(booked, len(created))}
	}
	if want(MetricAppointments) {
		out.Appointments = &entity.AppointmentsMetric{Total: len(scheduled)}
	}
	if want(MetricAttendance) {
		attended := 0
		for _, d := range attendance {
			if d.Status == entity.StatusAttended {
				attended++
			}
		}
		out.Attendance = &entity.AttendanceMetric{
			Total:    len(attendance),
			Attended: attended,
			Missed:   len(attendance) - attended,
			Rate:     rate(attended, len(attendance)),
		}
	}
	if want(MetricSales) {
		revenue := 0.0
		for _, d := range won {
			revenue += d.Value
		}
		avg := 0.0
		if len(won) > 0 {
			avg = math.Round(revenue/float64(len(won))*100) / 100
		}
		out.Sales = &entity.SalesMetric{Total: len(won), Revenue: revenue, AverageTicket: avg}
	}
	if want(MetricConversion) {
		out.Conversion = &entity.ConversionMetric{Leads: len(created), Sales: len(won), Rate: rate(len(won), len(created))}
	}
	return out, nil
}
