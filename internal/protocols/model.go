package protocols

import (
	"time"

	"github.com/rangemedical/clinic-ops/internal/schedule"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPaused    = "paused"
)

// Protocol is a patient's assigned treatment course. Time-bound courses
// carry DurationDays and a full set of day records; session-based courses
// (red light, HBOT) carry TotalSessions instead.
type Protocol struct {
	ID                  string     `json:"id"`
	PatientID           string     `json:"patient_id"`
	ProgramName         string     `json:"program_name"`
	ProtocolType        string     `json:"protocol_type"`
	Medication          string     `json:"medication,omitempty"`
	DoseAmount          string     `json:"dose_amount,omitempty"`
	DoseFrequency       string     `json:"dose_frequency,omitempty"`
	Route               string     `json:"route,omitempty"`
	StartDate           *time.Time `json:"start_date,omitempty"`
	EndDate             *time.Time `json:"end_date,omitempty"`
	DurationDays        int        `json:"duration_days,omitempty"`
	TotalSessions       int        `json:"total_sessions,omitempty"`
	Status              string     `json:"status"`
	AccessToken         string     `json:"access_token,omitempty"`
	SpecialInstructions string     `json:"special_instructions,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TimeBound reports whether the protocol runs on a day grid rather than a
// session count.
func (p *Protocol) TimeBound() bool { return p.DurationDays > 0 }

// DayRecord is one calendar day of a time-bound protocol.
type DayRecord struct {
	ID          int64      `json:"id"`
	ProtocolID  string     `json:"protocol_id"`
	Day         int        `json:"day"`
	Date        time.Time  `json:"date"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// Plan adapts a protocol and its day records for the schedule calculator.
func (p *Protocol) Plan(days []DayRecord) schedule.Plan {
	plan := schedule.Plan{
		StartDate:    p.StartDate,
		DurationDays: p.DurationDays,
		Frequency:    schedule.ParseFrequency(p.DoseFrequency),
		Days:         make([]schedule.DayRecord, 0, len(days)),
	}
	for _, d := range days {
		plan.Days = append(plan.Days, schedule.DayRecord{
			Day:       d.Day,
			Date:      d.Date,
			Completed: d.Completed,
		})
	}
	return plan
}
