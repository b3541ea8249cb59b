package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/heartrisk/internal/patient"
	"github.com/abhisek/heartrisk/internal/predict"
	"github.com/abhisek/heartrisk/internal/store"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one prediction from flags and print the result",
	Long: `Runs the encode, transform and predict pipeline once. Flags mirror the
form fields and default to the same values. Numeric values are clamped to
their domains.`,
	Example: `  heartrisk predict --age 61 --chest-pain "Asymptomatic" --thal "Reversible Defect"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recordFromFlags(cmd)
		if err != nil {
			return err
		}

		bundle, err := loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		outcome, err := predict.FromBundle(bundle).Evaluate(rec)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}
		logger.Info("prediction",
			zap.String("risk", outcome.Risk.String()),
			zap.Int("label", outcome.Label),
		)

		if cfg.History.Enabled {
			if err := appendHistory(cmd.Context(), outcome, bundle.ModelKind); err != nil {
				logger.Warn("history append failed", zap.Error(err))
			}
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		return printOutcome(cmd, outcome, asJSON)
	},
}

func init() {
	def := patient.Default()
	f := predictCmd.Flags()
	f.Int("age", def.Age, "Age (20-100)")
	f.String("sex", def.Sex.String(), optionsHelp("Sex", patient.SexOptions()))
	f.String("chest-pain", def.ChestPain.String(), optionsHelp("Chest pain type", patient.ChestPainOptions()))
	f.Int("resting-bp", def.RestingBloodPressure, "Resting blood pressure in mm Hg (80-200)")
	f.Int("cholestoral", def.Cholestoral, "Cholestoral level in mg/dL (100-500)")
	f.String("fasting-blood-sugar", def.FastingBloodSugar.String(), optionsHelp("Fasting blood sugar > 120 mg/dL", patient.YesNoOptions()))
	f.String("rest-ecg", def.RestECG.String(), optionsHelp("Resting ECG results", patient.RestECGOptions()))
	f.Int("max-heart-rate", def.MaxHeartRate, "Maximum heart rate achieved (60-220)")
	f.String("exercise-angina", def.ExerciseAngina.String(), optionsHelp("Exercise-induced angina", patient.YesNoOptions()))
	f.Float64("oldpeak", def.Oldpeak, "ST depression (0.0-10.0)")
	f.String("slope", def.Slope.String(), optionsHelp("Slope of ST segment", patient.SlopeOptions()))
	f.String("vessels", def.Vessels.String(), optionsHelp("Vessels colored by fluoroscopy", patient.VesselOptions()))
	f.String("thal", def.Thalassemia.String(), optionsHelp("Thalassemia", patient.ThalOptions()))
	f.Bool("json", false, "Print the outcome as JSON")
}

func optionsHelp(name string, opts []string) string {
	return fmt.Sprintf("%s: %s", name, strings.Join(opts, " | "))
}

// recordFromFlags builds a clamped record from the predict flags.
func recordFromFlags(cmd *cobra.Command) (patient.Record, error) {
	f := cmd.Flags()
	var (
		rec patient.Record
		err error
	)
	rec.Age, _ = f.GetInt("age")
	rec.RestingBloodPressure, _ = f.GetInt("resting-bp")
	rec.Cholestoral, _ = f.GetInt("cholestoral")
	rec.MaxHeartRate, _ = f.GetInt("max-heart-rate")
	rec.Oldpeak, _ = f.GetFloat64("oldpeak")

	str := func(name string) string {
		v, _ := f.GetString(name)
		return v
	}
	if rec.Sex, err = patient.ParseSex(str("sex")); err != nil {
		return rec, fmt.Errorf("--sex: %w", err)
	}
	if rec.ChestPain, err = patient.ParseChestPain(str("chest-pain")); err != nil {
		return rec, fmt.Errorf("--chest-pain: %w", err)
	}
	if rec.FastingBloodSugar, err = patient.ParseYesNo(str("fasting-blood-sugar")); err != nil {
		return rec, fmt.Errorf("--fasting-blood-sugar: %w", err)
	}
	if rec.RestECG, err = patient.ParseRestECG(str("rest-ecg")); err != nil {
		return rec, fmt.Errorf("--rest-ecg: %w", err)
	}
	if rec.ExerciseAngina, err = patient.ParseYesNo(str("exercise-angina")); err != nil {
		return rec, fmt.Errorf("--exercise-angina: %w", err)
	}
	if rec.Slope, err = patient.ParseSlope(str("slope")); err != nil {
		return rec, fmt.Errorf("--slope: %w", err)
	}
	if rec.Vessels, err = patient.ParseVessels(str("vessels")); err != nil {
		return rec, fmt.Errorf("--vessels: %w", err)
	}
	if rec.Thalassemia, err = patient.ParseThal(str("thal")); err != nil {
		return rec, fmt.Errorf("--thal: %w", err)
	}
	return rec.Clamped(), nil
}

func appendHistory(ctx context.Context, outcome *predict.Outcome, modelKind string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = st.EventRepo().AppendPrediction(ctx, store.PredictionEventData{
		Row:       outcome.Row.Values(),
		Label:     outcome.Label,
		Risk:      outcome.Risk.String(),
		ModelKind: modelKind,
	})
	return err
}

type outcomeJSON struct {
	Risk  string    `json:"risk"`
	Label int       `json:"label"`
	Row   []float64 `json:"row"`
}

func printOutcome(cmd *cobra.Command, outcome *predict.Outcome, asJSON bool) error {
	out := cmd.OutOrStdout()
	if !asJSON {
		_, err := fmt.Fprintln(out, outcome.Risk.Message())
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomeJSON{
		Risk:  outcome.Risk.String(),
		Label: outcome.Label,
		Row:   outcome.Row.Values(),
	})
}
