// Package artifact loads the classifier, the fitted preprocessing transform
// and the transformed feature-name list from an artifact bundle directory.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/heartrisk/internal/model"
	"github.com/abhisek/heartrisk/internal/patient"
)

// Bundle file names.
const (
	ModelFile        = "model.json"
	PreprocessorFile = "preprocessor.json"
	FeatureNamesFile = "feature_names.json"
)

// SupportedMajor is the only artifact format major version this build reads.
const SupportedMajor = "v1"

var (
	ErrChecksum           = errors.New("checksum verification failed")
	ErrMissingChecksums   = errors.New("checksums.txt required but not found")
	ErrUnsupportedVersion = errors.New("unsupported artifact format version")
	ErrMisaligned         = errors.New("artifacts are not aligned")
)

// Bundle is the loaded, read-only set of artifacts.
type Bundle struct {
	Dir          string
	Transform    model.Transformer
	Classifier   model.Classifier
	FeatureNames []string
	ModelKind    string
	Versions     map[string]string // file -> format_version
}

// Options configures Load.
type Options struct {
	// RequireChecksums makes a missing checksums.txt fatal.
	RequireChecksums bool
	Logger           *zap.Logger
}

// header is the envelope shared by model.json and preprocessor.json.
type header struct {
	FormatVersion string `json:"format_version"`
	Kind          string `json:"kind"`
}

// featureNamer is implemented by classifiers that record their fitted input layout.
type featureNamer interface {
	FeatureNames() []string
	NumFeatures() int
}

// Load reads and cross-checks the three artifacts in dir. The files are read
// concurrently; any failure is returned wrapped with the file it came from.
func Load(ctx context.Context, dir string, opts Options) (*Bundle, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sums, err := readChecksums(dir, opts.RequireChecksums)
	if err != nil {
		return nil, err
	}

	var (
		transform  *model.ColumnTransformer
		classifier model.Classifier
		names      []string
		prepHdr    header
		modelHdr   header
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := readArtifact(ctx, dir, PreprocessorFile, sums)
		if err != nil {
			return err
		}
		transform, prepHdr, err = decodePreprocessor(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", PreprocessorFile, err)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := readArtifact(ctx, dir, ModelFile, sums)
		if err != nil {
			return err
		}
		classifier, modelHdr, err = decodeModel(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", ModelFile, err)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := readArtifact(ctx, dir, FeatureNamesFile, sums)
		if err != nil {
			return err
		}
		names, err = decodeFeatureNames(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", FeatureNamesFile, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkAlignment(transform, classifier, names); err != nil {
		return nil, err
	}

	b := &Bundle{
		Dir:          dir,
		Transform:    transform,
		Classifier:   classifier,
		FeatureNames: names,
		ModelKind:    modelHdr.Kind,
		Versions: map[string]string{
			ModelFile:        modelHdr.FormatVersion,
			PreprocessorFile: prepHdr.FormatVersion,
		},
	}
	log.Info("artifacts loaded",
		zap.String("dir", dir),
		zap.String("model_kind", b.ModelKind),
		zap.Int("features", len(names)),
		zap.Bool("checksums", sums != nil))
	return b, nil
}

func readChecksums(dir string, required bool) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ChecksumsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if required {
				return nil, ErrMissingChecksums
			}
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", ChecksumsFile, err)
	}
	return parseChecksums(data), nil
}

// readArtifact reads one file and, when a checksum list is present, verifies it.
func readArtifact(ctx context.Context, dir, name string, sums map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if sums != nil {
		want, ok := sums[name]
		if !ok {
			return nil, fmt.Errorf("%w: no checksum listed for %s", ErrChecksum, name)
		}
		if err := verifyChecksum(name, raw, want); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func checkVersion(v string) error {
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (this build reads %s.x)", ErrUnsupportedVersion, v, SupportedMajor)
	}
	return nil
}

func decodePreprocessor(raw []byte) (*model.ColumnTransformer, header, error) {
	var hdr header
	if err := validateDocument("preprocessor", raw); err != nil {
		return nil, hdr, err
	}
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, hdr, err
	}
	if err := checkVersion(hdr.FormatVersion); err != nil {
		return nil, hdr, err
	}

	var spec model.ColumnTransformerSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, hdr, err
	}
	ct, err := model.NewColumnTransformer(spec)
	return ct, hdr, err
}

func decodeModel(raw []byte) (model.Classifier, header, error) {
	var hdr header
	if err := validateDocument("model", raw); err != nil {
		return nil, hdr, err
	}
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, hdr, err
	}
	if err := checkVersion(hdr.FormatVersion); err != nil {
		return nil, hdr, err
	}

	switch hdr.Kind {
	case "random_forest":
		var spec model.ForestSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, hdr, err
		}
		f, err := model.NewRandomForest(spec)
		return f, hdr, err
	case "logistic_regression":
		var spec model.LogisticSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return nil, hdr, err
		}
		l, err := model.NewLogisticRegression(spec)
		return l, hdr, err
	}
	return nil, hdr, fmt.Errorf("unknown model kind %q", hdr.Kind)
}

func decodeFeatureNames(raw []byte) ([]string, error) {
	if err := validateDocument("feature_names", raw); err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// checkAlignment verifies the transform reads the canonical patient columns
// and that its outputs line up one-to-one with the feature-name list and the
// classifier's expected inputs.
func checkAlignment(t model.Transformer, c model.Classifier, names []string) error {
	if in := t.InputColumns(); !slices.Equal(in, patient.Columns()) {
		return fmt.Errorf("%w: %s input columns %q, want %q", ErrMisaligned, PreprocessorFile, in, patient.Columns())
	}
	if out := t.FeatureNamesOut(); !slices.Equal(out, names) {
		return fmt.Errorf("%w: %s produces %d features that differ from %s (%d names)",
			ErrMisaligned, PreprocessorFile, len(out), FeatureNamesFile, len(names))
	}
	if fn, ok := c.(featureNamer); ok {
		if want := fn.FeatureNames(); want != nil && !slices.Equal(want, names) {
			return fmt.Errorf("%w: %s feature_names differ from %s", ErrMisaligned, ModelFile, FeatureNamesFile)
		}
		if fn.NumFeatures() != len(names) {
			return fmt.Errorf("%w: %s expects %d features, %s lists %d",
				ErrMisaligned, ModelFile, fn.NumFeatures(), FeatureNamesFile, len(names))
		}
	}
	return nil
}
