package patient

import (
	"errors"
	"fmt"
)

// ErrUnknownOption is returned when a display label is not one of a field's options.
var ErrUnknownOption = errors.New("unknown option")

// Sex is the patient's recorded sex.
type Sex int

const (
	SexMale Sex = iota
	SexFemale
)

var sexLabels = []string{"Male", "Female"}

// Code returns the integer the model was trained on.
func (s Sex) Code() int {
	switch s {
	case SexMale:
		return 1
	case SexFemale:
		return 0
	}
	panic(fmt.Sprintf("patient: invalid Sex %d", int(s)))
}

func (s Sex) String() string { return label(sexLabels, int(s)) }

// ChestPain is the chest pain type.
type ChestPain int

const (
	ChestPainTypicalAngina ChestPain = iota
	ChestPainAtypicalAngina
	ChestPainNonAnginal
	ChestPainAsymptomatic
)

var chestPainLabels = []string{"Typical Angina", "Atypical Angina", "Non-Anginal Pain", "Asymptomatic"}

func (c ChestPain) Code() int {
	switch c {
	case ChestPainTypicalAngina:
		return 1
	case ChestPainAtypicalAngina:
		return 2
	case ChestPainNonAnginal:
		return 3
	case ChestPainAsymptomatic:
		return 4
	}
	panic(fmt.Sprintf("patient: invalid ChestPain %d", int(c)))
}

func (c ChestPain) String() string { return label(chestPainLabels, int(c)) }

// YesNo covers the boolean findings (fasting blood sugar > 120 mg/dL,
// exercise-induced angina).
type YesNo int

const (
	No YesNo = iota
	Yes
)

var yesNoLabels = []string{"No", "Yes"}

func (y YesNo) Code() int {
	switch y {
	case No:
		return 0
	case Yes:
		return 1
	}
	panic(fmt.Sprintf("patient: invalid YesNo %d", int(y)))
}

func (y YesNo) String() string { return label(yesNoLabels, int(y)) }

// RestECG is the resting electrocardiogram result.
type RestECG int

const (
	RestECGNormal RestECG = iota
	RestECGSTTAbnormality
	RestECGLVHypertrophy
)

var restECGLabels = []string{"Normal", "ST-T wave abnormality", "Left ventricular hypertrophy"}

func (r RestECG) Code() int {
	switch r {
	case RestECGNormal:
		return 0
	case RestECGSTTAbnormality:
		return 1
	case RestECGLVHypertrophy:
		return 2
	}
	panic(fmt.Sprintf("patient: invalid RestECG %d", int(r)))
}

func (r RestECG) String() string { return label(restECGLabels, int(r)) }

// Slope is the slope of the peak exercise ST segment.
type Slope int

const (
	SlopeUpsloping Slope = iota
	SlopeFlat
	SlopeDownsloping
)

var slopeLabels = []string{"Upsloping", "Flat", "Downsloping"}

func (s Slope) Code() int {
	switch s {
	case SlopeUpsloping:
		return 1
	case SlopeFlat:
		return 2
	case SlopeDownsloping:
		return 3
	}
	panic(fmt.Sprintf("patient: invalid Slope %d", int(s)))
}

func (s Slope) String() string { return label(slopeLabels, int(s)) }

// Vessels is the number of major vessels colored by fluoroscopy.
type Vessels int

const (
	Vessels0 Vessels = iota
	Vessels1
	Vessels2
	Vessels3
)

var vesselLabels = []string{"0", "1", "2", "3"}

func (v Vessels) Code() int {
	switch v {
	case Vessels0, Vessels1, Vessels2, Vessels3:
		return int(v)
	}
	panic(fmt.Sprintf("patient: invalid Vessels %d", int(v)))
}

func (v Vessels) String() string { return label(vesselLabels, int(v)) }

// Thal is the thalassemia finding.
type Thal int

const (
	ThalNormal Thal = iota
	ThalFixedDefect
	ThalReversibleDefect
)

var thalLabels = []string{"Normal", "Fixed Defect", "Reversible Defect"}

func (t Thal) Code() int {
	switch t {
	case ThalNormal:
		return 3
	case ThalFixedDefect:
		return 6
	case ThalReversibleDefect:
		return 7
	}
	panic(fmt.Sprintf("patient: invalid Thal %d", int(t)))
}

func (t Thal) String() string { return label(thalLabels, int(t)) }

// Option lists, in display order. Index i is the enum value i.
func SexOptions() []string       { return clone(sexLabels) }
func ChestPainOptions() []string { return clone(chestPainLabels) }
func YesNoOptions() []string     { return clone(yesNoLabels) }
func RestECGOptions() []string   { return clone(restECGLabels) }
func SlopeOptions() []string     { return clone(slopeLabels) }
func VesselOptions() []string    { return clone(vesselLabels) }
func ThalOptions() []string      { return clone(thalLabels) }

func ParseSex(s string) (Sex, error) {
	i, err := parse(sexLabels, s)
	return Sex(i), err
}

func ParseChestPain(s string) (ChestPain, error) {
	i, err := parse(chestPainLabels, s)
	return ChestPain(i), err
}

func ParseYesNo(s string) (YesNo, error) {
	i, err := parse(yesNoLabels, s)
	return YesNo(i), err
}

func ParseRestECG(s string) (RestECG, error) {
	i, err := parse(restECGLabels, s)
	return RestECG(i), err
}

func ParseSlope(s string) (Slope, error) {
	i, err := parse(slopeLabels, s)
	return Slope(i), err
}

func ParseVessels(s string) (Vessels, error) {
	i, err := parse(vesselLabels, s)
	return Vessels(i), err
}

func ParseThal(s string) (Thal, error) {
	i, err := parse(thalLabels, s)
	return Thal(i), err
}

func parse(labels []string, s string) (int, error) {
	for i, l := range labels {
		if l == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %q (want one of %q)", ErrUnknownOption, s, labels)
}

func label(labels []string, i int) string {
	if i < 0 || i >= len(labels) {
		return fmt.Sprintf("invalid(%d)", i)
	}
	return labels[i]
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
