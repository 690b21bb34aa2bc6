package domain

import "time"

// WorkoutPlan assigns workout templates to weekdays for one client over
// a bounded date range. StartDate/EndDate are ISO YYYY-MM-DD strings
// (inclusive on both ends); the plan is active on a date when
// StartDate <= date <= EndDate. Schedule may omit weekdays entirely,
// which means a rest day.
type WorkoutPlan struct {
	ID        string             `bson:"_id,omitempty" json:"id"`
	TrainerID string             `bson:"trainerId" json:"trainerId"`
	ClientID  string             `bson:"clientId" json:"clientId"`
	Name      string             `bson:"name" json:"name"`
	StartDate string             `bson:"startDate" json:"startDate"`
	EndDate   string             `bson:"endDate" json:"endDate"`
	Schedule  map[Weekday]string `bson:"schedule" json:"schedule"` // weekday -> template ID
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ActiveOn reports whether the plan's date range contains the given
// ISO date string. String comparison is intentional: ISO-8601 dates
// sort identically to their chronological order.
func (p *WorkoutPlan) ActiveOn(date string) bool {
	return p.StartDate <= date && date <= p.EndDate
}

// TemplateIDFor returns the template assigned to a weekday, or the
// empty string for a rest day.
func (p *WorkoutPlan) TemplateIDFor(day Weekday) string {
	return p.Schedule[day]
}
