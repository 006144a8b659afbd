package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/OldStager01/car-analytics/internal/codec"
	"github.com/OldStager01/car-analytics/internal/logger"
	"github.com/OldStager01/car-analytics/pkg/models"
)

// ErrArtifactUnavailable means the classifier or its codecs could not be
// loaded. Prediction is disabled; nothing else is affected.
var ErrArtifactUnavailable = errors.New("model artifacts unavailable")

const (
	DefaultModelFile = "car_brand_model.json"
	DefaultCodecFile = "label_encoders.json"
)

type Config struct {
	Dir       string
	ModelFile string
	CodecFile string
}

func (c Config) modelPath() string {
	name := c.ModelFile
	if name == "" {
		name = DefaultModelFile
	}
	return filepath.Join(c.Dir, name)
}

func (c Config) codecPath() string {
	name := c.CodecFile
	if name == "" {
		name = DefaultCodecFile
	}
	return filepath.Join(c.Dir, name)
}

// Artifacts is either a usable classifier/codec pair or neither. Err
// explains why the pair is unavailable.
type Artifacts struct {
	Classifier Classifier
	Codecs     *codec.Set
	Err        error
}

func (a Artifacts) Available() bool {
	return a.Classifier != nil && a.Codecs != nil
}

// Loader reads the artifacts at most once per process.
type Loader struct {
	cfg    Config
	once   sync.Once
	result Artifacts
}

func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load returns the memoized artifacts, reading them on first call. It
// never fails; check Available on the result.
func (l *Loader) Load() Artifacts {
	l.once.Do(func() {
		classifier, codecs, err := l.read()
		if err != nil {
			l.result = Artifacts{Err: fmt.Errorf("%w: %v", ErrArtifactUnavailable, err)}
			logger.WithFields(map[string]interface{}{
				"model_path": l.cfg.modelPath(),
				"codec_path": l.cfg.codecPath(),
			}).Warnf("Prediction disabled: %v", err)
			return
		}

		l.result = Artifacts{Classifier: classifier, Codecs: codecs}
		logger.WithFields(map[string]interface{}{
			"classes":  classifier.NumClasses(),
			"features": classifier.NumFeatures(),
		}).Info("Model artifacts loaded")
	})
	return l.result
}

func (l *Loader) read() (Classifier, *codec.Set, error) {
	codecs, err := readCodecs(l.cfg.codecPath())
	if err != nil {
		return nil, nil, err
	}

	classifier, err := readModel(l.cfg.modelPath())
	if err != nil {
		return nil, nil, err
	}

	if err := checkCompatible(classifier, codecs); err != nil {
		return nil, nil, err
	}
	return classifier, codecs, nil
}

func readCodecs(path string) (*codec.Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read codecs: %w", err)
	}

	var domains map[string][]string
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("decode codecs %s: %w", path, err)
	}

	set, err := codec.NewSet(domains)
	if err != nil {
		return nil, fmt.Errorf("build codecs: %w", err)
	}

	required := append([]models.Field{models.TargetField}, models.CategoricalFeatures...)
	for _, f := range required {
		if !set.Has(string(f)) {
			return nil, fmt.Errorf("codecs missing field %q", f)
		}
	}
	return set, nil
}

func readModel(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	var spec ModelSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}

	return NewTreeEnsemble(spec)
}

func checkCompatible(classifier Classifier, codecs *codec.Set) error {
	if classifier.NumFeatures() != len(models.FeatureFields) {
		return fmt.Errorf("%w: model expects %d features, rows have %d",
			ErrMalformedModel, classifier.NumFeatures(), len(models.FeatureFields))
	}

	target, err := codecs.Codec(string(models.TargetField))
	if err != nil {
		return err
	}
	if classifier.NumClasses() != target.Size() {
		return fmt.Errorf("%w: model has %d classes, %s codec has %d",
			ErrMalformedModel, classifier.NumClasses(), models.TargetField, target.Size())
	}
	return nil
}
