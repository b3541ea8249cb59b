package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/heartrisk/internal/artifact/artifacttest"
	"github.com/abhisek/heartrisk/internal/model"
	"github.com/abhisek/heartrisk/internal/patient"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLoadDefaultBundle(t *testing.T) {
	dir := artifacttest.WriteDefault(t)

	b, err := Load(context.Background(), dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, "random_forest", b.ModelKind)
	assert.Equal(t, []int{0, 1}, b.Classifier.Classes())
	assert.Len(t, b.FeatureNames, 28)
	if diff := cmp.Diff(patient.Columns(), b.Transform.InputColumns()); diff != "" {
		t.Errorf("input columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(b.FeatureNames, b.Transform.FeatureNamesOut()); diff != "" {
		t.Errorf("feature names mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "v1.0.0", b.Versions[ModelFile])
}

func TestLoadLogisticRegression(t *testing.T) {
	fx := artifacttest.Default()
	fx.Model = artifacttest.Logistic()

	b, err := Load(context.Background(), fx.Write(t), Options{})
	require.NoError(t, err)
	assert.Equal(t, "logistic_regression", b.ModelKind)
	_, ok := b.Classifier.(*model.LogisticRegression)
	assert.True(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	for _, name := range []string{ModelFile, PreprocessorFile, FeatureNamesFile} {
		t.Run(name, func(t *testing.T) {
			fx := artifacttest.Default()
			fx.Raw = map[string][]byte{name: nil}

			_, err := Load(context.Background(), fx.Write(t), Options{})
			require.Error(t, err)
			assert.ErrorContains(t, err, name)
			assert.True(t, errors.Is(err, os.ErrNotExist))
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		raw  string
		want string
	}{
		{"not json", ModelFile, "{", "invalid JSON"},
		{"wrong kind", ModelFile, `{"format_version":"v1.0.0","kind":"svm","classes":[0,1]}`, "schema validation failed"},
		{"forest without trees", ModelFile, `{"format_version":"v1.0.0","kind":"random_forest","classes":[0,1],"n_features":28}`, "schema validation failed"},
		{"names not array", FeatureNamesFile, `{"a":1}`, "schema validation failed"},
		{"duplicate names", FeatureNamesFile, `["a","a"]`, "schema validation failed"},
		{"preprocessor missing transformers", PreprocessorFile, `{"format_version":"v1.0.0","kind":"column_transformer","input_columns":["age"]}`, "schema validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := artifacttest.Default()
			fx.Raw = map[string][]byte{tt.file: []byte(tt.raw)}

			_, err := Load(context.Background(), fx.Write(t), Options{})
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.file)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadUnsupportedVersion(t *testing.T) {
	fx := artifacttest.Default()
	fx.Preprocessor.FormatVersion = "v2.0.0"

	_, err := Load(context.Background(), fx.Write(t), Options{})
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestLoadMisalignedFeatureNames(t *testing.T) {
	fx := artifacttest.Default()
	names := artifacttest.FeatureNames()
	names[0], names[1] = names[1], names[0]
	fx.FeatureNames = names

	_, err := Load(context.Background(), fx.Write(t), Options{})
	assert.True(t, errors.Is(err, ErrMisaligned))
}

func TestLoadNonCanonicalInputColumns(t *testing.T) {
	fx := artifacttest.Default()
	cols := patient.Columns()
	cols[0], cols[1] = cols[1], cols[0]
	fx.Preprocessor.InputColumns = cols

	_, err := Load(context.Background(), fx.Write(t), Options{})
	assert.True(t, errors.Is(err, ErrMisaligned))
}

func TestLoadModelFeatureCountMismatch(t *testing.T) {
	fx := artifacttest.Default()
	lr := artifacttest.Logistic()
	lr.FeatureNames = nil
	lr.Coef = lr.Coef[:10]
	fx.Model = lr

	_, err := Load(context.Background(), fx.Write(t), Options{})
	assert.True(t, errors.Is(err, ErrMisaligned))
}

func TestLoadChecksums(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		fx := artifacttest.Default()
		fx.Checksums = true
		_, err := Load(context.Background(), fx.Write(t), Options{RequireChecksums: true})
		require.NoError(t, err)
	})

	t.Run("tampered", func(t *testing.T) {
		fx := artifacttest.Default()
		fx.Checksums = true
		dir := fx.Write(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, FeatureNamesFile), []byte(`["x"]`), 0o644))

		_, err := Load(context.Background(), dir, Options{})
		assert.True(t, errors.Is(err, ErrChecksum))
	})

	t.Run("required but absent", func(t *testing.T) {
		_, err := Load(context.Background(), artifacttest.WriteDefault(t), Options{RequireChecksums: true})
		assert.True(t, errors.Is(err, ErrMissingChecksums))
	})
}

func TestLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, artifacttest.WriteDefault(t), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "ABC123  model.json\ndef456 *preprocessor.json\n",
			want: map[string]string{
				"model.json":        "abc123",
				"preprocessor.json": "def456",
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "comments and malformed lines skipped",
			input: "# generated\nabc123  file.json\nbadline\n  \nfoo  bar  baz\n",
			want:  map[string]string{"file.json": "abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChecksums([]byte(tt.input)))
		})
	}
}

func TestVerify(t *testing.T) {
	fx := artifacttest.Default()
	fx.Checksums = true
	dir := fx.Write(t)

	r, err := Verify(context.Background(), dir, Options{})
	require.NoError(t, err)
	assert.True(t, r.ChecksumsListed)
	assert.Equal(t, 28, r.NumFeatures)
	require.Len(t, r.Files, 3)

	raw, err := os.ReadFile(filepath.Join(dir, ModelFile))
	require.NoError(t, err)
	assert.Equal(t, Checksum(raw), r.Files[0].SHA256)
	assert.Equal(t, "v1.0.0", r.Files[0].FormatVersion)
	assert.Equal(t, "", r.Files[2].FormatVersion)
}
