// Package ta3n builds Temporal Attentive Adversarial Network (TA3N) streams.
// Unlike the convolutional families, TA3N consumes per-segment feature
// vectors (either from a backbone over raw images or pre-extracted) and pools
// them into a clip-level representation; the pooling itself is implemented
// here so that segment aggregation behaves the same at selection time and in
// the training runtime.
package ta3n

import (
	"errors"
	"fmt"

	"github.com/visionda/videofeat/logging"
	"github.com/visionda/videofeat/weights"
)

// Default feature widths for feature-input streams
const (
	DefaultInputSize  = 1024
	DefaultOutputSize = 256
)

// ErrUnknownAggregation is returned for aggregation strategies outside the
// closed set
var ErrUnknownAggregation = errors.New("unknown frame aggregation")

// Aggregation selects how per-segment features pool into a clip vector
type Aggregation string

const (
	AggAvgPool    Aggregation = "avgpool"    // uniform mean over segments
	AggTemPooling Aggregation = "tempooling" // tapered weighted mean
	AggTemAttn    Aggregation = "temattn"    // energy-driven attention weights
	AggTRN        Aggregation = "trn"        // multi-scale relation pooling
)

// Validate checks the aggregation strategy against the closed set
func (a Aggregation) Validate() error {
	switch a {
	case AggAvgPool, AggTemPooling, AggTemAttn, AggTRN:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAggregation, string(a))
	}
}

// InputMode distinguishes image-driven from feature-driven streams
type InputMode string

const (
	ImageInput   InputMode = "image"
	FeatureInput InputMode = "feature"
)

// Stream describes one TA3N pathway over a single input modality
type Stream struct {
	modality    string
	mode        InputMode
	pretrained  weights.ID
	inputSize   int
	outputSize  int
	segments    int
	aggregation Aggregation
}

// Modality returns the input stream name ("rgb", "flow" or "audio")
func (s *Stream) Modality() string { return s.modality }

// Mode returns whether the stream is image- or feature-driven
func (s *Stream) Mode() InputMode { return s.mode }

// InputDim returns the per-segment feature width the stream consumes
func (s *Stream) InputDim() int { return s.inputSize }

// OutputDim returns the feature width the stream produces: the segment width
// for image-driven streams, the projected width for feature-driven ones
func (s *Stream) OutputDim() int {
	if s.mode == ImageInput {
		return s.inputSize
	}
	return s.outputSize
}

// Segments returns the fixed segment count, 0 when unconstrained
func (s *Stream) Segments() int { return s.segments }

// Aggregation returns the pooling strategy of the stream
func (s *Stream) Aggregation() Aggregation { return s.aggregation }

// Pretrained returns the checkpoint identifier, if the stream has one
func (s *Stream) Pretrained() (weights.ID, bool) {
	return s.pretrained, s.pretrained != ""
}

// Tag identifies the constructor path that produced the stream
func (s *Stream) Tag() string { return "ta3n" }

// Streams holds the per-modality TA3N pathways of a joint network
type Streams struct {
	RGB   *Stream
	Flow  *Stream
	Audio *Stream

	// Classes sizes the classifier heads the runtime attaches downstream
	Classes map[string]int
}

// JointImage builds image-driven TA3N streams, one per non-empty checkpoint
// id. Image-driven streams pool with a plain average; numClasses sizes the
// classifier the runtime attaches downstream.
func JointImage(rgbPT, flowPT, audioPT weights.ID, inputSize, numClasses int) *Streams {
	logger := logging.WithFields(logging.Fields{
		"component": "ta3n",
		"mode":      string(ImageInput),
	})

	joint := &Streams{Classes: map[string]int{"verb": numClasses}}
	for _, in := range []struct {
		modality string
		pt       weights.ID
	}{
		{"rgb", rgbPT},
		{"flow", flowPT},
		{"audio", audioPT},
	} {
		if in.pt == "" {
			continue
		}
		if !weights.Exists(in.pt) {
			logger.Warn("checkpoint not in cache, runtime will fetch it", logging.Fields{
				"modality":   in.modality,
				"checkpoint": string(in.pt),
			})
		}
		stream := &Stream{
			modality:    in.modality,
			mode:        ImageInput,
			pretrained:  in.pt,
			inputSize:   inputSize,
			outputSize:  inputSize,
			aggregation: AggAvgPool,
		}
		joint.set(in.modality, stream)
	}
	return joint
}

// JointFeature builds feature-driven TA3N streams for the active modalities
func JointFeature(rgb, flow, audio bool, inputSize, outputSize int, aggregation Aggregation, segments int, classes map[string]int) (*Streams, error) {
	if err := aggregation.Validate(); err != nil {
		return nil, err
	}
	if segments < 1 {
		return nil, fmt.Errorf("segment count must be positive, got %d", segments)
	}

	joint := &Streams{Classes: classes}
	for _, in := range []struct {
		modality string
		active   bool
	}{
		{"rgb", rgb},
		{"flow", flow},
		{"audio", audio},
	} {
		if !in.active {
			continue
		}
		joint.set(in.modality, &Stream{
			modality:    in.modality,
			mode:        FeatureInput,
			inputSize:   inputSize,
			outputSize:  outputSize,
			segments:    segments,
			aggregation: aggregation,
		})
	}
	return joint, nil
}

func (j *Streams) set(modality string, s *Stream) {
	switch modality {
	case "rgb":
		j.RGB = s
	case "flow":
		j.Flow = s
	case "audio":
		j.Audio = s
	}
}
