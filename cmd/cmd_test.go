package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/heartrisk/internal/artifact/artifacttest"
	"github.com/abhisek/heartrisk/internal/patient"
)

// resetFlags restores every flag to its default; cobra keeps parsed values
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HEARTRISK_CONFIG", "")
	t.Setenv("HEARTRISK_ARTIFACTS", "")
	t.Setenv("HEARTRISK_HISTORY", "")
	t.Setenv("HEARTRISK_DB", "")
	t.Setenv("HEARTRISK_LOG_FILE", filepath.Join(t.TempDir(), "heartrisk.log"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPredictDefaults(t *testing.T) {
	dir := artifacttest.WriteDefault(t)

	out, err := execute(t, "predict", "--artifacts", dir)
	require.NoError(t, err)
	assert.Equal(t, "✅ Low Risk!\n", out)
}

func TestPredictHighRiskJSON(t *testing.T) {
	dir := artifacttest.WriteDefault(t)

	out, err := execute(t, "predict", "--artifacts", dir, "--json",
		"--chest-pain", "Asymptomatic",
		"--thal", "Reversible Defect",
		"--oldpeak", "4",
		"--vessels", "2",
	)
	require.NoError(t, err)

	var got outcomeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "High Risk", got.Risk)
	assert.Equal(t, 1, got.Label)
	assert.Equal(t, artifacttest.HighRiskRecord().Encode().Values(), got.Row)
}

func TestPredictClampsNumericFlags(t *testing.T) {
	dir := artifacttest.WriteDefault(t)

	out, err := execute(t, "predict", "--artifacts", dir, "--json", "--age", "150", "--oldpeak=-3")
	require.NoError(t, err)

	var got outcomeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 100.0, got.Row[0])
	assert.Equal(t, 0.0, got.Row[9])
}

func TestPredictUnknownOption(t *testing.T) {
	dir := artifacttest.WriteDefault(t)

	_, err := execute(t, "predict", "--artifacts", dir, "--sex", "Other")
	assert.ErrorIs(t, err, patient.ErrUnknownOption)
}

func TestPredictMissingArtifacts(t *testing.T) {
	_, err := execute(t, "predict", "--artifacts", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "load artifacts")
}

func TestPredictHistoryThenList(t *testing.T) {
	dir := artifacttest.WriteDefault(t)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "predict", "--artifacts", dir, "--history", "--db", db,
		"--chest-pain", "Asymptomatic", "--thal", "Reversible Defect", "--oldpeak", "4")
	require.NoError(t, err)
	_, err = execute(t, "predict", "--artifacts", dir, "--history", "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "history", "list", "--db", db, "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "High Risk")
	assert.Contains(t, out, "Low Risk")
	assert.Contains(t, out, "2 predictions")
}

func TestPredictWithoutHistoryStoresNothing(t *testing.T) {
	dir := artifacttest.WriteDefault(t)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := execute(t, "predict", "--artifacts", dir, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "history", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No predictions found.")
}

func TestVerify(t *testing.T) {
	b := artifacttest.Default()
	b.Checksums = true
	dir := b.Write(t)

	out, err := execute(t, "verify", "--artifacts", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "random_forest")
	assert.Contains(t, out, "Checksums: verified")
	assert.Contains(t, out, "model.json")
	assert.Contains(t, out, "OK")
}

func TestArtifactsFromEnv(t *testing.T) {
	dir := artifacttest.WriteDefault(t)
	resetFlags(rootCmd)

	var out bytes.Buffer
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HEARTRISK_CONFIG", "")
	t.Setenv("HEARTRISK_LOG_FILE", filepath.Join(t.TempDir(), "heartrisk.log"))
	t.Setenv("HEARTRISK_ARTIFACTS", dir)
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"predict"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "✅ Low Risk!\n", out.String())
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "heartrisk (devel)\n", out)
}

func TestShippedDemoBundleVerifies(t *testing.T) {
	out, err := execute(t, "verify", "--artifacts", filepath.Join("..", "artifacts"))
	require.NoError(t, err)
	assert.Contains(t, out, "Checksums: verified")
	assert.Contains(t, out, "Features:  28")
}
