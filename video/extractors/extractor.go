// Package extractors selects and configures the feature-extraction backbone
// for a video domain-adaptation pipeline. Given a model name, input modality,
// optional attention variant and class-count metadata it returns the
// per-stream network plus the two feature widths the classifier head and the
// domain-discriminator head consume.
package extractors

import (
	"errors"
	"fmt"

	"github.com/visionda/videofeat/logging"
	"github.com/visionda/videofeat/models/i3d"
	"github.com/visionda/videofeat/models/res3d"
	"github.com/visionda/videofeat/models/selayer"
	"github.com/visionda/videofeat/models/ta3n"
	"github.com/visionda/videofeat/video/config"
	"github.com/visionda/videofeat/weights"
)

var (
	// ErrMissingVerbClasses is returned when the class-count table has no
	// "verb" entry, the only task the image-input selector consults
	ErrMissingVerbClasses = errors.New(`class counts missing "verb" entry`)

	// ErrFeatureInputModel is returned when a model family that cannot
	// consume pre-extracted features is requested on the feature path
	ErrFeatureInputModel = errors.New("model does not support feature input")
)

// Stream is the consumer-facing view of one backbone pathway
type Stream interface {
	// Modality returns the input stream name ("rgb", "flow" or "audio")
	Modality() string

	// OutputDim returns the feature width the stream produces
	OutputDim() int

	// Tag identifies the constructor path that produced the stream
	Tag() string
}

// Network is the selected backbone, one pathway per input stream. A nil
// field means the modality is absent; Audio is always nil for the
// convolutional families, which never produce an audio stream.
type Network struct {
	RGB   Stream
	Flow  Stream
	Audio Stream
}

// Dims holds the output feature widths of a selected backbone
type Dims struct {
	// Class is the width of the vector fed to the task classifier head
	Class int

	// Domain is the width of the vector fed to the domain discriminator
	Domain int
}

// FeatureSpec configures backbone selection for pre-extracted feature input
type FeatureSpec struct {
	Model       config.ModelName
	Modality    config.Modality
	Classes     config.ClassCounts
	Aggregation ta3n.Aggregation
	Segments    int

	// InputSize and OutputSize default to 1024 and 256 when zero
	InputSize  int
	OutputSize int
}

// Factory selects backbones from configuration values
type Factory struct {
	logger logging.Logger
}

// NewFactory creates a backbone factory
func NewFactory() *Factory {
	return &Factory{
		logger: logging.WithFields(logging.Fields{
			"component": "backbone_factory",
		}),
	}
}

// ImageBackbone selects a backbone for raw image input. Attention and model
// name are validated against their closed sets before anything is built; a
// failed validation returns no partial network.
func (f *Factory) ImageBackbone(model config.ModelName, modality config.Modality, attention config.Attention, classes config.ClassCounts) (*Network, Dims, error) {
	logger := f.logger.WithFields(logging.Fields{
		"model":    string(model),
		"modality": string(modality),
	})

	rgb, flow, audio, err := modality.Decode()
	if err != nil {
		return nil, Dims{}, err
	}
	if err := attention.Validate(); err != nil {
		return nil, Dims{}, err
	}
	if err := model.Validate(); err != nil {
		return nil, Dims{}, err
	}

	// only the verb task applies when the input is raw images
	numClasses, ok := classes.Verb()
	if !ok {
		return nil, Dims{}, ErrMissingVerbClasses
	}

	if model.IsTemporalAggregation() {
		return f.imageTA3N(rgb, flow, audio, numClasses, logger)
	}

	switch model {
	case config.ModelI3D:
		return f.imageI3D(rgb, flow, attention, numClasses, logger)
	default:
		return f.imageRes3D(model, rgb, flow, attention, logger)
	}
}

// imageTA3N handles the temporal-aggregation family on the image path: each
// active stream contributes a fixed 1024-wide feature, the domain head always
// sees 1024.
func (f *Factory) imageTA3N(rgb, flow, audio bool, numClasses int, logger logging.Logger) (*Network, Dims, error) {
	var rgbPT, flowPT, audioPT weights.ID

	dims := Dims{Class: 0, Domain: ta3n.DefaultInputSize}
	if rgb {
		rgbPT = weights.RGBTA3N
		dims.Class += dims.Domain
	}
	if flow {
		flowPT = weights.FlowTA3N
		dims.Class += dims.Domain
	}
	if audio {
		audioPT = weights.AudioTA3N
		dims.Class += dims.Domain
	}

	logger.Info("selected temporal aggregation backbone")
	joint := ta3n.JointImage(rgbPT, flowPT, audioPT, ta3n.DefaultInputSize, numClasses)

	net := &Network{}
	if joint.RGB != nil {
		net.RGB = joint.RGB
	}
	if joint.Flow != nil {
		net.Flow = joint.Flow
	}
	if joint.Audio != nil {
		net.Audio = joint.Audio
	}
	return net, dims, nil
}

// imageI3D handles the I3D family: 1024 per stream, halved domain width when
// rgb and flow run jointly
func (f *Factory) imageI3D(rgb, flow bool, attention config.Attention, numClasses int, logger logging.Logger) (*Network, Dims, error) {
	var rgbPT, flowPT weights.ID
	if rgb {
		rgbPT = weights.RGBImageNet // alternative: weights.RGBCharades
	}
	if flow {
		flowPT = weights.FlowImageNet // alternative: weights.FlowCharades
	}

	var dims Dims
	if rgb && flow {
		dims.Class = 2 * i3d.FeatureDim
		dims.Domain = dims.Class / 2
	} else {
		dims.Class = i3d.FeatureDim
		dims.Domain = dims.Class
	}

	var joint *i3d.Streams
	if attention.Enabled() {
		variant, err := selayer.Parse(string(attention))
		if err != nil {
			return nil, Dims{}, err
		}
		logger.Info("I3D with SELayer", logging.Fields{"attention": string(attention)})
		joint = i3d.SEJoint(rgbPT, flowPT, variant, numClasses, true)
	} else {
		logger.Info("I3D without SELayer")
		joint = i3d.Joint(rgbPT, flowPT, numClasses, true)
	}

	net := &Network{}
	if joint.RGB != nil {
		net.RGB = joint.RGB
	}
	if joint.Flow != nil {
		net.Flow = joint.Flow
	}
	return net, dims, nil
}

// imageRes3D handles the 18-layer residual families: 512 per stream, halved
// domain width when rgb and flow run jointly
func (f *Factory) imageRes3D(model config.ModelName, rgb, flow bool, attention config.Attention, logger logging.Logger) (*Network, Dims, error) {
	var dims Dims
	if rgb && flow {
		dims.Class = 2 * res3d.FeatureDim
		dims.Domain = dims.Class / 2
	} else {
		dims.Class = res3d.FeatureDim
		dims.Domain = dims.Class
	}

	var variant selayer.Variant
	if attention.Enabled() {
		var err error
		variant, err = selayer.Parse(string(attention))
		if err != nil {
			return nil, Dims{}, err
		}
		logger.Info("3D-ResNet with SELayer", logging.Fields{"attention": string(attention)})
	} else {
		logger.Info("3D-ResNet without SELayer")
	}

	var joint *res3d.Streams
	switch model {
	case config.ModelR3D18:
		if attention.Enabled() {
			joint = res3d.SER3D18(rgb, flow, true, variant)
		} else {
			joint = res3d.R3D18(rgb, flow, true)
		}
	case config.ModelR2Plus1D:
		if attention.Enabled() {
			joint = res3d.SER2Plus1D18(rgb, flow, true, variant)
		} else {
			joint = res3d.R2Plus1D18(rgb, flow, true)
		}
	case config.ModelMC318:
		if attention.Enabled() {
			joint = res3d.SEMC318(rgb, flow, true, variant)
		} else {
			joint = res3d.MC318(rgb, flow, true)
		}
	default:
		// Validate ran earlier; reaching this means a new family was added
		// to the enum without a branch here
		return nil, Dims{}, fmt.Errorf("%w: %q", config.ErrUnknownModel, string(model))
	}

	net := &Network{}
	if joint.RGB != nil {
		net.RGB = joint.RGB
	}
	if joint.Flow != nil {
		net.Flow = joint.Flow
	}
	return net, dims, nil
}

// FeatureBackbone selects a backbone for pre-extracted feature input. Only
// the temporal-aggregation family consumes features; any other model name is
// an invalid configuration. Both output widths equal the configured output
// size for every modality combination.
func (f *Factory) FeatureBackbone(spec FeatureSpec) (*Network, Dims, error) {
	logger := f.logger.WithFields(logging.Fields{
		"model":    string(spec.Model),
		"modality": string(spec.Modality),
	})

	rgb, flow, audio, err := spec.Modality.Decode()
	if err != nil {
		return nil, Dims{}, err
	}
	if err := spec.Model.Validate(); err != nil {
		return nil, Dims{}, err
	}
	if !spec.Model.IsTemporalAggregation() {
		return nil, Dims{}, fmt.Errorf("%w: %q", ErrFeatureInputModel, string(spec.Model))
	}

	inputSize := spec.InputSize
	if inputSize == 0 {
		inputSize = ta3n.DefaultInputSize
	}
	outputSize := spec.OutputSize
	if outputSize == 0 {
		outputSize = ta3n.DefaultOutputSize
	}

	logger.Info("selected temporal aggregation backbone for feature input", logging.Fields{
		"aggregation": string(spec.Aggregation),
		"segments":    spec.Segments,
	})
	joint, err := ta3n.JointFeature(rgb, flow, audio, inputSize, outputSize, spec.Aggregation, spec.Segments, spec.Classes)
	if err != nil {
		return nil, Dims{}, err
	}

	net := &Network{}
	if joint.RGB != nil {
		net.RGB = joint.RGB
	}
	if joint.Flow != nil {
		net.Flow = joint.Flow
	}
	if joint.Audio != nil {
		net.Audio = joint.Audio
	}

	dims := Dims{Class: outputSize, Domain: outputSize}
	return net, dims, nil
}
