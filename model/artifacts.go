package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v2"
)

const (
	// NumericFeatures is the number of scaled inputs: age, height, weight.
	NumericFeatures = 3
	// FeatureCount is the classifier input width: category code plus the
	// scaled numerics.
	FeatureCount = NumericFeatures + 1

	DefaultEncoderFile    = "category_encoder.json"
	DefaultScalerFile     = "scaler.json"
	DefaultClassifierFile = "model.json"
	DefaultDecoderFile    = "label_decoder.json"
)

// ArtifactFiles locates the four artifact files. Relative file names are
// resolved against Dir.
type ArtifactFiles struct {
	Dir        string
	Encoder    string
	Scaler     string
	Classifier string
	Decoder    string
}

func DefaultArtifactFiles(dir string) ArtifactFiles {
	return ArtifactFiles{
		Dir:        dir,
		Encoder:    DefaultEncoderFile,
		Scaler:     DefaultScalerFile,
		Classifier: DefaultClassifierFile,
		Decoder:    DefaultDecoderFile,
	}
}

func (f ArtifactFiles) path(name string) string {
	if filepath.IsAbs(name) || f.Dir == "" {
		return name
	}
	return filepath.Join(f.Dir, name)
}

// Artifacts is the loaded, read-only pipeline state shared by all requests.
type Artifacts struct {
	Encoder    *CategoryEncoder
	Scaler     *StandardScaler
	Classifier Classifier
	Decoder    *LabelDecoder
	// Fingerprint identifies the exact artifact bytes that were loaded.
	Fingerprint string
}

// LoadArtifacts reads, decodes and cross-checks the four artifacts.
func LoadArtifacts(files ArtifactFiles) (*Artifacts, error) {
	digest := xxhash.New()

	var encFile categoryEncoderFile
	if err := readArtifact(files.path(files.Encoder), &encFile, digest); err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}
	var scFile scalerFile
	if err := readArtifact(files.path(files.Scaler), &scFile, digest); err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	var clfFile classifierFile
	if err := readArtifact(files.path(files.Classifier), &clfFile, digest); err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	var decFile labelDecoderFile
	if err := readArtifact(files.path(files.Decoder), &decFile, digest); err != nil {
		return nil, fmt.Errorf("load decoder: %w", err)
	}

	encoder, err := NewCategoryEncoder(encFile.Classes)
	if err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}
	scaler, err := NewStandardScaler(scFile.Mean, scFile.Scale)
	if err != nil {
		return nil, fmt.Errorf("load scaler: %w", err)
	}
	classifier, err := newClassifier(clfFile)
	if err != nil {
		return nil, fmt.Errorf("load classifier: %w", err)
	}
	decoder, err := NewLabelDecoder(decFile.Classes)
	if err != nil {
		return nil, fmt.Errorf("load decoder: %w", err)
	}

	a := &Artifacts{
		Encoder:     encoder,
		Scaler:      scaler,
		Classifier:  classifier,
		Decoder:     decoder,
		Fingerprint: fmt.Sprintf("%016x", digest.Sum64()),
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Artifacts) validate() error {
	if a.Scaler.Len() != NumericFeatures {
		return fmt.Errorf("scaler has %d features, want %d", a.Scaler.Len(), NumericFeatures)
	}
	if a.Classifier.NumFeatures() != FeatureCount {
		return fmt.Errorf("classifier expects %d features, want %d", a.Classifier.NumFeatures(), FeatureCount)
	}
	for _, class := range a.Classifier.Classes() {
		if class >= a.Decoder.Len() {
			return fmt.Errorf("classifier can emit class %d but decoder knows %d labels", class, a.Decoder.Len())
		}
	}
	return nil
}

func readArtifact(path string, out interface{}, digest *xxhash.Digest) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, _ = digest.Write(data)
	return decodeArtifact(path, data, out)
}

func decodeArtifact(path string, data []byte, out interface{}) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported artifact format %q for %s", ext, path)
	}
	return nil
}
