package domain

import "time"

// TemplateExercise is one exercise within a workout template. Exercises
// are owned by the template as value objects, in order.
type TemplateExercise struct {
	Name     string `bson:"name" json:"name"`
	Sets     int    `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps     string `bson:"reps,omitempty" json:"reps,omitempty"` // e.g. "8-12", "to failure"
	RestSecs int    `bson:"restSecs,omitempty" json:"restSecs,omitempty"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// WorkoutTemplate is a reusable, named ordered list of exercises.
// Plans reference templates by ID only; the template itself is never
// embedded in a plan.
type WorkoutTemplate struct {
	ID          string             `bson:"_id,omitempty" json:"id"`
	TrainerID   string             `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []TemplateExercise `bson:"exercises" json:"exercises"`

	// DemoObjectKey points at an optional demo video in object storage.
	// Clients fetch it through a presigned download URL.
	DemoObjectKey string `bson:"demoObjectKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
