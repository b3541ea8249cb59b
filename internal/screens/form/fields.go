package form

import (
	"fmt"

	"github.com/abhisek/heartrisk/internal/patient"
	"github.com/abhisek/heartrisk/internal/ui/components"
)

// Numeric widgets.
const (
	numAge = iota
	numRestingBP
	numCholestoral
	numMaxHeartRate
	numOldpeak
	numCount
)

// Option widgets.
const (
	selSex = iota
	selChestPain
	selFastingBloodSugar
	selRestECG
	selExerciseAngina
	selSlope
	selVessels
	selThalassemia
	selCount
)

// slot places one widget in the focus order.
type slot struct {
	numeric bool
	index   int
}

// order is the on-screen and focus order: the canonical column order,
// followed by the Predict button.
var order = []slot{
	{numeric: true, index: numAge},
	{index: selSex},
	{index: selChestPain},
	{numeric: true, index: numRestingBP},
	{numeric: true, index: numCholestoral},
	{index: selFastingBloodSugar},
	{index: selRestECG},
	{numeric: true, index: numMaxHeartRate},
	{index: selExerciseAngina},
	{numeric: true, index: numOldpeak},
	{index: selSlope},
	{index: selVessels},
	{index: selThalassemia},
}

// buttonSlot is the focus index of the Predict button.
var buttonSlot = len(order)

func newNumberFields(rec patient.Record) [numCount]components.NumberField {
	return [numCount]components.NumberField{
		numAge: components.NewNumberField("Age",
			patient.AgeRange.Min, patient.AgeRange.Max, 1, float64(rec.Age), 0),
		numRestingBP: components.NewNumberField("Resting Blood Pressure (mm Hg)",
			patient.RestingBPRange.Min, patient.RestingBPRange.Max, 1, float64(rec.RestingBloodPressure), 0),
		numCholestoral: components.NewNumberField("Cholestoral Level (mg/dL)",
			patient.CholestoralRange.Min, patient.CholestoralRange.Max, 1, float64(rec.Cholestoral), 0),
		numMaxHeartRate: components.NewNumberField("Maximum Heart Rate Achieved",
			patient.MaxHeartRateRange.Min, patient.MaxHeartRateRange.Max, 1, float64(rec.MaxHeartRate), 0),
		numOldpeak: components.NewNumberField("ST Depression (Oldpeak)",
			patient.OldpeakRange.Min, patient.OldpeakRange.Max, 0.1, rec.Oldpeak, 2),
	}
}

func newSelects(rec patient.Record) [selCount]components.Select {
	return [selCount]components.Select{
		selSex:               components.NewSelect("Sex", patient.SexOptions(), int(rec.Sex)),
		selChestPain:         components.NewSelect("Chest Pain Type", patient.ChestPainOptions(), int(rec.ChestPain)),
		selFastingBloodSugar: components.NewSelect("Fasting Blood Sugar > 120 mg/dL", patient.YesNoOptions(), int(rec.FastingBloodSugar)),
		selRestECG:           components.NewSelect("Resting ECG Results", patient.RestECGOptions(), int(rec.RestECG)),
		selExerciseAngina:    components.NewSelect("Exercise-Induced Angina", patient.YesNoOptions(), int(rec.ExerciseAngina)),
		selSlope:             components.NewSelect("Slope of ST Segment", patient.SlopeOptions(), int(rec.Slope)),
		selVessels:           components.NewSelect("Vessels Colored by Fluoroscopy", patient.VesselOptions(), int(rec.Vessels)),
		selThalassemia:       components.NewSelect("Thalassemia", patient.ThalOptions(), int(rec.Thalassemia)),
	}
}

// record reads the committed widget values back into a patient record.
func record(nums [numCount]components.NumberField, sels [selCount]components.Select) (patient.Record, error) {
	var (
		rec patient.Record
		err error
	)
	rec.Age = nums[numAge].IntValue()
	rec.RestingBloodPressure = nums[numRestingBP].IntValue()
	rec.Cholestoral = nums[numCholestoral].IntValue()
	rec.MaxHeartRate = nums[numMaxHeartRate].IntValue()
	rec.Oldpeak = nums[numOldpeak].Value()

	if rec.Sex, err = patient.ParseSex(sels[selSex].Value()); err != nil {
		return rec, fmt.Errorf("sex: %w", err)
	}
	if rec.ChestPain, err = patient.ParseChestPain(sels[selChestPain].Value()); err != nil {
		return rec, fmt.Errorf("chest pain type: %w", err)
	}
	if rec.FastingBloodSugar, err = patient.ParseYesNo(sels[selFastingBloodSugar].Value()); err != nil {
		return rec, fmt.Errorf("fasting blood sugar: %w", err)
	}
	if rec.RestECG, err = patient.ParseRestECG(sels[selRestECG].Value()); err != nil {
		return rec, fmt.Errorf("rest ecg: %w", err)
	}
	if rec.ExerciseAngina, err = patient.ParseYesNo(sels[selExerciseAngina].Value()); err != nil {
		return rec, fmt.Errorf("exercise induced angina: %w", err)
	}
	if rec.Slope, err = patient.ParseSlope(sels[selSlope].Value()); err != nil {
		return rec, fmt.Errorf("slope: %w", err)
	}
	if rec.Vessels, err = patient.ParseVessels(sels[selVessels].Value()); err != nil {
		return rec, fmt.Errorf("vessels: %w", err)
	}
	if rec.Thalassemia, err = patient.ParseThal(sels[selThalassemia].Value()); err != nil {
		return rec, fmt.Errorf("thalassemia: %w", err)
	}
	return rec, nil
}
