package patient

import "math"

// Canonical column names, in the order the preprocessing transform was fitted on.
const (
	ColAge                  = "age"
	ColSex                  = "sex"
	ColChestPainType        = "chest_pain_type"
	ColRestingBloodPressure = "resting_blood_pressure"
	ColCholestoral          = "cholestoral"
	ColFastingBloodSugar    = "fasting_blood_sugar"
	ColRestECG              = "rest_ecg"
	ColMaxHeartRate         = "Max_heart_rate"
	ColExerciseAngina       = "exercise_induced_angina"
	ColOldpeak              = "oldpeak"
	ColSlope                = "slope"
	ColVessels              = "vessels_colored_by_flourosopy"
	ColThalassemia          = "thalassemia"
)

// NumColumns is the width of an encoded row.
const NumColumns = 13

var columns = [NumColumns]string{
	ColAge, ColSex, ColChestPainType, ColRestingBloodPressure, ColCholestoral,
	ColFastingBloodSugar, ColRestECG, ColMaxHeartRate, ColExerciseAngina,
	ColOldpeak, ColSlope, ColVessels, ColThalassemia,
}

// Columns returns the canonical column names in order.
func Columns() []string {
	out := make([]string, NumColumns)
	copy(out, columns[:])
	return out
}

// Range is the inclusive domain of a numeric field.
type Range struct {
	Min, Max, Default float64
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, v))
}

// Numeric field domains.
var (
	AgeRange          = Range{Min: 20, Max: 100, Default: 50}
	RestingBPRange    = Range{Min: 80, Max: 200, Default: 120}
	CholestoralRange  = Range{Min: 100, Max: 500, Default: 200}
	MaxHeartRateRange = Range{Min: 60, Max: 220, Default: 150}
	OldpeakRange      = Range{Min: 0, Max: 10, Default: 1.0}
)

// Record is one patient's inputs as collected by the form.
type Record struct {
	Age                  int
	Sex                  Sex
	ChestPain            ChestPain
	RestingBloodPressure int
	Cholestoral          int
	FastingBloodSugar    YesNo
	RestECG              RestECG
	MaxHeartRate         int
	ExerciseAngina       YesNo
	Oldpeak              float64
	Slope                Slope
	Vessels              Vessels
	Thalassemia          Thal
}

// Default returns the record the form starts with.
func Default() Record {
	return Record{
		Age:                  int(AgeRange.Default),
		Sex:                  SexMale,
		ChestPain:            ChestPainTypicalAngina,
		RestingBloodPressure: int(RestingBPRange.Default),
		Cholestoral:          int(CholestoralRange.Default),
		FastingBloodSugar:    No,
		RestECG:              RestECGNormal,
		MaxHeartRate:         int(MaxHeartRateRange.Default),
		ExerciseAngina:       No,
		Oldpeak:              OldpeakRange.Default,
		Slope:                SlopeUpsloping,
		Vessels:              Vessels0,
		Thalassemia:          ThalNormal,
	}
}

// Clamped returns a copy with every numeric field limited to its domain.
func (r Record) Clamped() Record {
	r.Age = int(AgeRange.Clamp(float64(r.Age)))
	r.RestingBloodPressure = int(RestingBPRange.Clamp(float64(r.RestingBloodPressure)))
	r.Cholestoral = int(CholestoralRange.Clamp(float64(r.Cholestoral)))
	r.MaxHeartRate = int(MaxHeartRateRange.Clamp(float64(r.MaxHeartRate)))
	r.Oldpeak = OldpeakRange.Clamp(r.Oldpeak)
	return r
}

// Row is an encoded record, indexed like Columns().
type Row [NumColumns]float64

// Encode applies the categorical code tables and lays the values out in
// canonical column order.
func (r Record) Encode() Row {
	return Row{
		float64(r.Age),
		float64(r.Sex.Code()),
		float64(r.ChestPain.Code()),
		float64(r.RestingBloodPressure),
		float64(r.Cholestoral),
		float64(r.FastingBloodSugar.Code()),
		float64(r.RestECG.Code()),
		float64(r.MaxHeartRate),
		float64(r.ExerciseAngina.Code()),
		r.Oldpeak,
		float64(r.Slope.Code()),
		float64(r.Vessels.Code()),
		float64(r.Thalassemia.Code()),
	}
}

// Values returns the row as a slice.
func (row Row) Values() []float64 {
	out := make([]float64, NumColumns)
	copy(out, row[:])
	return out
}
