package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/rangemedical/clinic-ops/internal/patients"
	"github.com/rangemedical/clinic-ops/internal/protocols"
	"github.com/rangemedical/clinic-ops/internal/schedule"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// PatientStore loads patient records.
type PatientStore interface {
	Get(ctx context.Context, id string) (*patients.Patient, error)
}

// ProtocolStore loads protocols and their day records.
type ProtocolStore interface {
	GetByToken(ctx context.Context, token string) (*protocols.Protocol, error)
	ListByPatient(ctx context.Context, patientID string) ([]*protocols.Protocol, error)
	Days(ctx context.Context, protocolID string) ([]protocols.DayRecord, error)
}

// PurchaseStore sums a patient's purchase history.
type PurchaseStore interface {
	TotalsByPatient(ctx context.Context, patientID string) (int, float64, error)
}

// Payload is the patient-facing portal view: who the patient is, every
// protocol with its adherence picture, and lifetime purchase totals.
type Payload struct {
	Patient   PatientSummary    `json:"patient"`
	Protocols []ProtocolSummary `json:"protocols"`
	Purchases PurchaseTotals    `json:"purchases"`
}

type PatientSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type ProtocolSummary struct {
	ID            string                    `json:"id"`
	ProgramName   string                    `json:"program_name"`
	ProtocolType  string                    `json:"protocol_type,omitempty"`
	Medication    string                    `json:"medication,omitempty"`
	DoseFrequency string                    `json:"dose_frequency,omitempty"`
	Status        string                    `json:"status"`
	StartDate     *time.Time                `json:"start_date,omitempty"`
	Stats         *schedule.Stats           `json:"stats,omitempty"`
	Sessions      *schedule.SessionProgress `json:"sessions,omitempty"`
	Upcoming      []schedule.UpcomingDose   `json:"upcoming,omitempty"`
}

type PurchaseTotals struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// Service assembles portal payloads, reading through the cache.
type Service struct {
	patients  PatientStore
	protocols ProtocolStore
	purchases PurchaseStore
	cache     *Cache
	logger    *logging.Logger
	today     func() time.Time
}

func NewService(p PatientStore, pr ProtocolStore, pu PurchaseStore, cache *Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		patients:  p,
		protocols: pr,
		purchases: pu,
		cache:     cache,
		logger:    logger,
		today:     func() time.Time { return time.Now() },
	}
}

// Load resolves the access token to its patient and builds the full portal
// payload. Returns (nil, nil) when the token matches no protocol.
func (s *Service) Load(ctx context.Context, token string) (*Payload, error) {
	if cached := s.cache.Get(ctx, token); cached != nil {
		return cached, nil
	}

	anchor, err := s.protocols.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("portal: resolve token: %w", err)
	}
	if anchor == nil {
		return nil, nil
	}

	patient, err := s.patients.Get(ctx, anchor.PatientID)
	if err != nil {
		return nil, fmt.Errorf("portal: load patient: %w", err)
	}
	if patient == nil {
		return nil, nil
	}

	list, err := s.protocols.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("portal: list protocols: %w", err)
	}

	payload := &Payload{
		Patient: PatientSummary{
			ID:    patient.ID,
			Name:  patient.Name(),
			Email: patient.Email,
			Phone: patient.Phone,
		},
	}

	today := s.today()
	for _, p := range list {
		summary := ProtocolSummary{
			ID:            p.ID,
			ProgramName:   p.ProgramName,
			ProtocolType:  p.ProtocolType,
			Medication:    p.Medication,
			DoseFrequency: p.DoseFrequency,
			Status:        p.Status,
			StartDate:     p.StartDate,
		}

		days, err := s.protocols.Days(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("portal: load days: %w", err)
		}

		if p.TimeBound() {
			plan := p.Plan(days)
			stats := schedule.ComputeStats(plan, today)
			summary.Stats = &stats
			if p.Status == protocols.StatusActive {
				summary.Upcoming = schedule.NextDosingDates(plan, today,
					schedule.DefaultUpcomingLimit, schedule.DefaultHorizonDays)
			}
		} else {
			completed := 0
			for _, d := range days {
				if d.Completed {
					completed++
				}
			}
			progress := schedule.ComputeSessionProgress(completed, p.TotalSessions)
			summary.Sessions = &progress
		}
		payload.Protocols = append(payload.Protocols, summary)
	}

	count, total, err := s.purchases.TotalsByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("portal: purchase totals: %w", err)
	}
	payload.Purchases = PurchaseTotals{Count: count, Total: total}

	s.cache.Set(ctx, token, patient.ID, payload)
	return payload, nil
}
