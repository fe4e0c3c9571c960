// Package report derives per-professional monthly summaries from completed
// consultation sessions. Reports are projections: recomputed on every call,
// never stored.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/appointment"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

var ErrInvalidMonth = errors.New("month must be YYYY-MM")

const monthLayout = "2006-01"

type MonthlyReport struct {
	ProfessionalID    uuid.UUID
	ProfessionalName  string
	Month             string
	TotalAppointments int
	PresencialCount   int
	VideollamadaCount int
	TotalMinutes      int
	TotalHours        float64
	TotalFeeCents     int64
	Sessions          []session.Session
}

// CompletedSource supplies the completed sessions of one calendar month.
type CompletedSource interface {
	ListCompletedInMonth(ctx context.Context, month string) ([]session.Session, error)
}

type Aggregator struct {
	sessions CompletedSource
	dir      directory.Directory // optional, names zero-activity reports
}

func NewAggregator(sessions CompletedSource, dir directory.Directory) *Aggregator {
	return &Aggregator{sessions: sessions, dir: dir}
}

// ReportFor summarizes one professional's completed sessions in one month. A
// professional with no completed sessions gets a zero-valued report.
func (a *Aggregator) ReportFor(ctx context.Context, professionalID uuid.UUID, month string) (*MonthlyReport, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, ErrInvalidMonth
	}

	completed, err := a.sessions.ListCompletedInMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	rep := &MonthlyReport{ProfessionalID: professionalID, Month: month}
	for _, s := range completed {
		if s.ProfessionalID != professionalID {
			continue
		}
		addSession(rep, s)
	}

	if rep.ProfessionalName == "" && a.dir != nil {
		if prof, err := a.dir.GetProfessional(ctx, professionalID); err == nil {
			rep.ProfessionalName = prof.Name
		}
	}

	return rep, nil
}

// ReportsForAll summarizes every professional with at least one completed
// session in the month. No zero-filled rows.
func (a *Aggregator) ReportsForAll(ctx context.Context, month string) ([]MonthlyReport, error) {
	if _, err := time.Parse(monthLayout, month); err != nil {
		return nil, ErrInvalidMonth
	}

	completed, err := a.sessions.ListCompletedInMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}

	byProfessional := make(map[uuid.UUID]*MonthlyReport)
	for _, s := range completed {
		rep, ok := byProfessional[s.ProfessionalID]
		if !ok {
			rep = &MonthlyReport{ProfessionalID: s.ProfessionalID, Month: month}
			byProfessional[s.ProfessionalID] = rep
		}
		addSession(rep, s)
	}

	result := make([]MonthlyReport, 0, len(byProfessional))
	for _, rep := range byProfessional {
		result = append(result, *rep)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ProfessionalName != result[j].ProfessionalName {
			return result[i].ProfessionalName < result[j].ProfessionalName
		}
		return result[i].ProfessionalID.String() < result[j].ProfessionalID.String()
	})

	return result, nil
}

func addSession(rep *MonthlyReport, s session.Session) {
	if rep.ProfessionalName == "" {
		rep.ProfessionalName = s.ProfessionalName
	}

	rep.TotalAppointments++
	switch s.Modality {
	case appointment.ModalityPresencial:
		rep.PresencialCount++
	case appointment.ModalityTelemedicina:
		rep.VideollamadaCount++
	}
	rep.TotalMinutes += s.DurationMinutes
	rep.TotalHours = float64(rep.TotalMinutes) / 60
	rep.TotalFeeCents += s.FeeCents
	rep.Sessions = append(rep.Sessions, s)
}
