package reminderworker

import (
	"context"
	"errors"
	"time"

	"github.com/rangemedical/clinic-ops/internal/messaging"
	"github.com/rangemedical/clinic-ops/internal/observability/metrics"
	"github.com/rangemedical/clinic-ops/internal/patients"
	"github.com/rangemedical/clinic-ops/internal/protocols"
	"github.com/rangemedical/clinic-ops/internal/schedule"
	"github.com/rangemedical/clinic-ops/pkg/logging"
)

type protocolStore interface {
	List(ctx context.Context, status string, limit int) ([]*protocols.Protocol, error)
	Days(ctx context.Context, protocolID string) ([]protocols.DayRecord, error)
}

type patientStore interface {
	Get(ctx context.Context, id string) (*patients.Patient, error)
}

type reminderSender interface {
	SendDosingReminder(ctx context.Context, req messaging.ReminderSend) (*messaging.Message, error)
}

// Worker texts patients on uncompleted dosing days. It wakes on an
// interval but only sends during the configured local hour, and at most
// once per protocol per day.
type Worker struct {
	protocols protocolStore
	patients  patientStore
	sender    reminderSender
	metrics   *metrics.TrackerMetrics
	logger    *logging.Logger

	interval time.Duration
	batch    int
	sendHour int
	loc      *time.Location
	now      func() time.Time

	sentOn map[string]string
}

func New(protocolStore protocolStore, patientStore patientStore, sender reminderSender, m *metrics.TrackerMetrics, logger *logging.Logger) *Worker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		protocols: protocolStore,
		patients:  patientStore,
		sender:    sender,
		metrics:   m,
		logger:    logger,
		interval:  15 * time.Minute,
		batch:     100,
		sendHour:  9,
		loc:       time.UTC,
		now:       time.Now,
		sentOn:    map[string]string{},
	}
}

func (w *Worker) WithInterval(d time.Duration) *Worker {
	if d > 0 {
		w.interval = d
	}
	return w
}

func (w *Worker) WithBatchSize(n int) *Worker {
	if n > 0 {
		w.batch = n
	}
	return w
}

func (w *Worker) WithSendHour(hour int) *Worker {
	if hour >= 0 && hour <= 23 {
		w.sendHour = hour
	}
	return w
}

func (w *Worker) WithLocation(loc *time.Location) *Worker {
	if loc != nil {
		w.loc = loc
	}
	return w
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	if w.protocols == nil || w.patients == nil || w.sender == nil {
		return
	}
	now := w.now().In(w.loc)
	if now.Hour() != w.sendHour {
		return
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayKey := today.Format("2006-01-02")

	active, err := w.protocols.List(ctx, protocols.StatusActive, w.batch)
	if err != nil {
		w.logger.Error("reminder fetch failed", "error", err)
		return
	}

	for _, proto := range active {
		if w.sentOn[proto.ID] == todayKey {
			continue
		}
		due, day := w.dueToday(ctx, proto, today)
		if !due {
			continue
		}
		if err := w.remind(ctx, proto, day); err != nil {
			if errors.Is(err, messaging.ErrSuppressed) {
				w.sentOn[proto.ID] = todayKey
				continue
			}
			w.metrics.ObserveReminder("failed")
			w.logger.Warn("reminder send failed", "protocol_id", proto.ID, "error", err)
			continue
		}
		w.metrics.ObserveReminder("sent")
		w.sentOn[proto.ID] = todayKey
	}
}

// dueToday reports whether today falls inside the protocol, is a dosing
// day for its cadence, and has not been marked complete.
func (w *Worker) dueToday(ctx context.Context, proto *protocols.Protocol, today time.Time) (bool, int) {
	if !proto.TimeBound() || proto.StartDate == nil {
		return false, 0
	}
	day := dayIndex(*proto.StartDate, today)
	if day < 1 || day > proto.DurationDays {
		return false, 0
	}
	if schedule.IsOffDay(day, schedule.ParseFrequency(proto.DoseFrequency), proto.StartDate) {
		return false, 0
	}
	days, err := w.protocols.Days(ctx, proto.ID)
	if err != nil {
		w.logger.Error("reminder day fetch failed", "protocol_id", proto.ID, "error", err)
		return false, 0
	}
	for _, d := range days {
		if d.Day == day && d.Completed {
			return false, 0
		}
	}
	return true, day
}

func (w *Worker) remind(ctx context.Context, proto *protocols.Protocol, day int) error {
	patient, err := w.patients.Get(ctx, proto.PatientID)
	if err != nil {
		return err
	}
	if patient == nil || patient.GHLContactID == "" {
		w.logger.Info("reminder skipped, no crm contact", "protocol_id", proto.ID)
		return nil
	}
	_, err = w.sender.SendDosingReminder(ctx, messaging.ReminderSend{
		PatientID:   patient.ID,
		ContactID:   patient.GHLContactID,
		FirstName:   patient.FirstName,
		Program:     proto.ProgramName,
		Day:         day,
		AccessToken: proto.AccessToken,
	})
	if err != nil {
		return err
	}
	w.logger.Info("reminder sent", "protocol_id", proto.ID, "day", day)
	return nil
}

func dayIndex(start, today time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(s).Hours()/24) + 1
}
