package schedule

import (
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var monday = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

func threeDayTemplate() *domain.ProgramTemplate {
	rest := 90
	exID := primitive.NewObjectID()
	return &domain.ProgramTemplate{
		Name: "Three day split",
		Days: []domain.WorkoutDaySpec{
			{DayNumber: 1, Name: "Push", Exercises: []domain.ExerciseSpec{
				{ExerciseID: &exID, Sets: 4, Reps: "8", Weight: "60kg", RestSeconds: &rest, Notes: "pause at bottom", Order: 1},
				{Name: "Dips", Sets: 3, Reps: "AMRAP", Weight: "bodyweight", Order: 2},
			}},
			{DayNumber: 2, Name: "Pull", Exercises: []domain.ExerciseSpec{
				{Name: "Rows", Sets: 4, Reps: "10", Weight: "50kg", Order: 1},
			}},
			{DayNumber: 3, Name: "Legs", Exercises: []domain.ExerciseSpec{
				{Name: "Squat", Sets: 5, Reps: "5", Weight: "80% 1RM", Order: 1},
				{Name: "Lunge", Sets: 3, Reps: "12", Order: 2},
			}},
		},
	}
}

func TestExpand_DayDistribution(t *testing.T) {
	instances := Expand(Params{Template: threeDayTemplate(), StartDate: monday, DurationWeeks: 1})

	dueByDay := map[int]time.Time{}
	for _, inst := range instances {
		dueByDay[inst.DayNumber] = inst.DueDate
	}
	assert.Equal(t, monday, dueByDay[1])
	assert.Equal(t, monday.AddDate(0, 0, 2), dueByDay[2])
	assert.Equal(t, monday.AddDate(0, 0, 4), dueByDay[3])
}

func TestExpand_CountAndOrder(t *testing.T) {
	instances := Expand(Params{Template: threeDayTemplate(), StartDate: monday, DurationWeeks: 3})
	require.Len(t, instances, 3*5)

	// week-major, then day, then exercise
	prev := instances[0]
	for _, inst := range instances[1:] {
		key := func(i domain.ExerciseInstance) int { return i.WeekNumber*10000 + i.DayNumber*100 + i.Order }
		assert.Less(t, key(prev), key(inst))
		prev = inst
	}

	last := instances[len(instances)-1]
	assert.Equal(t, 3, last.WeekNumber)
	assert.Equal(t, monday.AddDate(0, 0, 14+4), last.DueDate)
}

func TestExpand_Deterministic(t *testing.T) {
	p := Params{
		Template:     threeDayTemplate(),
		AssignmentID: primitive.NewObjectID(),
		ClientID:     primitive.NewObjectID(),
		TrainerID:    primitive.NewObjectID(),
		StartDate:    monday.Add(15 * time.Hour),
	}
	first := Expand(p)
	second := Expand(p)
	assert.Equal(t, first, second)
	assert.Len(t, first, DefaultDurationWeeks*5)
	assert.Equal(t, monday, first[0].DueDate, "start date is truncated to its calendar day")
}

func TestExpand_CopiesPrescription(t *testing.T) {
	tmpl := threeDayTemplate()
	instances := Expand(Params{Template: tmpl, StartDate: monday, DurationWeeks: 1})

	first := instances[0]
	assert.Equal(t, 4, first.Sets)
	assert.Equal(t, "8", first.Reps)
	assert.Equal(t, "60kg", first.Weight)
	assert.Equal(t, 90, first.RestSeconds)
	assert.Equal(t, "pause at bottom", first.Notes)
	assert.Equal(t, "Push", first.DayName)
	assert.Equal(t, domain.InstancePending, first.Status)
	require.NotNil(t, first.ExerciseID)

	// edits to the template after expansion never reach the instances
	tmpl.Days[0].Exercises[0].Sets = 10
	*tmpl.Days[0].Exercises[0].RestSeconds = 30
	*tmpl.Days[0].Exercises[0].ExerciseID = primitive.NewObjectID()
	assert.Equal(t, 4, first.Sets)
	assert.Equal(t, 90, first.RestSeconds)
	assert.NotEqual(t, *tmpl.Days[0].Exercises[0].ExerciseID, *first.ExerciseID)
}

func TestExpand_AdHocExerciseAndDefaults(t *testing.T) {
	tmpl := &domain.ProgramTemplate{
		Name: "Minimal",
		Days: []domain.WorkoutDaySpec{{DayNumber: 1, Exercises: []domain.ExerciseSpec{{Name: "Plank"}, {Name: "Crunch"}}}},
	}
	instances := Expand(Params{Template: tmpl, StartDate: monday, DurationWeeks: 1})
	require.Len(t, instances, 2)

	assert.Nil(t, instances[0].ExerciseID)
	assert.Equal(t, domain.DefaultSets, instances[0].Sets)
	assert.Equal(t, domain.DefaultReps, instances[0].Reps)
	assert.Equal(t, domain.DefaultWeight, instances[0].Weight)
	assert.Equal(t, domain.DefaultRestSeconds, instances[0].RestSeconds)
	assert.Equal(t, 1, instances[0].Order)
	assert.Equal(t, 2, instances[1].Order)
}

func TestExpand_EmptyTemplate(t *testing.T) {
	instances := Expand(Params{Template: &domain.ProgramTemplate{Name: "Empty"}, StartDate: monday, DurationWeeks: 8})
	assert.NotNil(t, instances)
	assert.Empty(t, instances)

	assert.Empty(t, Expand(Params{StartDate: monday}))
}

func TestExpand_MoreThanSevenSessionsCollapse(t *testing.T) {
	tmpl := &domain.ProgramTemplate{Name: "Daily doubles"}
	for d := 1; d <= 8; d++ {
		tmpl.Days = append(tmpl.Days, domain.WorkoutDaySpec{DayNumber: d, Exercises: []domain.ExerciseSpec{{Name: "Run"}}})
	}

	instances := Expand(Params{Template: tmpl, StartDate: monday, DurationWeeks: 2})
	require.Len(t, instances, 16)
	for _, inst := range instances {
		want := monday.AddDate(0, 0, (inst.WeekNumber-1)*7)
		assert.Equal(t, want, inst.DueDate)
	}
}

func TestExpand_ExplicitSessionsPerWeek(t *testing.T) {
	instances := Expand(Params{Template: threeDayTemplate(), StartDate: monday, DurationWeeks: 1, SessionsPerWeek: 2})
	dueByDay := map[int]time.Time{}
	for _, inst := range instances {
		dueByDay[inst.DayNumber] = inst.DueDate
	}
	// floor(7/2) = 3
	assert.Equal(t, monday.AddDate(0, 0, 3), dueByDay[2])
	assert.Equal(t, monday.AddDate(0, 0, 6), dueByDay[3])
}

func TestResolveDefaults(t *testing.T) {
	assert.Equal(t, 6, ResolveDurationWeeks(6, 8))
	assert.Equal(t, 8, ResolveDurationWeeks(0, 8))
	assert.Equal(t, DefaultDurationWeeks, ResolveDurationWeeks(0, 0))

	tmpl := threeDayTemplate()
	assert.Equal(t, 5, ResolveSessionsPerWeek(5, tmpl))
	assert.Equal(t, 3, ResolveSessionsPerWeek(0, tmpl))
	tmpl.SessionsPerWeek = 4
	assert.Equal(t, 4, ResolveSessionsPerWeek(0, tmpl))
	assert.Equal(t, 0, ResolveSessionsPerWeek(0, nil))
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2025, time.June, 8, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(sunday))
	assert.Equal(t, monday, WeekStart(monday))

	start, end := WeekRange(monday.AddDate(0, 0, 3))
	assert.Equal(t, monday, start)
	assert.Equal(t, monday.AddDate(0, 0, 7), end)
}
