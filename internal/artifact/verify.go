package artifact

import (
	"context"
	"os"
	"path/filepath"
)

// FileReport describes one artifact file.
type FileReport struct {
	Name          string
	Size          int64
	SHA256        string
	FormatVersion string
}

// Report summarises a successfully loaded bundle.
type Report struct {
	Dir             string
	ModelKind       string
	Classes         []int
	NumFeatures     int
	ChecksumsListed bool
	Files           []FileReport
}

// Verify loads the bundle in dir with the same checks as Load and reports
// what it found.
func Verify(ctx context.Context, dir string, opts Options) (*Report, error) {
	b, err := Load(ctx, dir, opts)
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(filepath.Join(dir, ChecksumsFile))
	r := &Report{
		Dir:             dir,
		ModelKind:       b.ModelKind,
		Classes:         b.Classifier.Classes(),
		NumFeatures:     len(b.FeatureNames),
		ChecksumsListed: statErr == nil,
	}
	for _, name := range []string{ModelFile, PreprocessorFile, FeatureNamesFile} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		r.Files = append(r.Files, FileReport{
			Name:          name,
			Size:          int64(len(raw)),
			SHA256:        Checksum(raw),
			FormatVersion: b.Versions[name],
		})
	}
	return r, nil
}
