// Package i3d builds Inflated 3D ConvNet (I3D) backbone streams for RGB and
// optical-flow input, optionally augmented with an SELayer attention variant.
// Streams are descriptors: they carry the architecture metadata and the
// checkpoint selection the training runtime materializes into weights.
package i3d

import (
	"github.com/visionda/videofeat/logging"
	"github.com/visionda/videofeat/models/selayer"
	"github.com/visionda/videofeat/weights"
)

// FeatureDim is the width of the pooled mixed_5c output per stream
const FeatureDim = 1024

// mixedChannels are the output widths of the Inception mixed blocks,
// in network order through mixed_5c
var mixedChannels = []int{256, 480, 512, 512, 512, 528, 832, 832, 1024}

// Stream describes one I3D backbone over a single input modality
type Stream struct {
	modality   string
	pretrained weights.ID
	attention  selayer.Variant
	numClasses int
}

// Modality returns the input stream name ("rgb" or "flow")
func (s *Stream) Modality() string { return s.modality }

// OutputDim returns the feature width the stream produces
func (s *Stream) OutputDim() int { return FeatureDim }

// Pretrained returns the checkpoint identifier the stream initializes from
func (s *Stream) Pretrained() weights.ID { return s.pretrained }

// NumClasses returns the classifier width that replaces the checkpoint logits
func (s *Stream) NumClasses() int { return s.numClasses }

// Attention returns the SELayer variant, if one is attached
func (s *Stream) Attention() (selayer.Variant, bool) {
	return s.attention, s.attention != ""
}

// BlockChannels returns the per-block output widths of the backbone
func (s *Stream) BlockChannels() []int {
	out := make([]int, len(mixedChannels))
	copy(out, mixedChannels)
	return out
}

// Tag identifies the constructor path that produced the stream
func (s *Stream) Tag() string {
	if s.attention != "" {
		return "se_i3d/" + s.attention.String()
	}
	return "i3d"
}

// Streams holds the per-modality I3D backbones of a joint network
type Streams struct {
	RGB  *Stream
	Flow *Stream
}

// Joint builds plain I3D streams for whichever checkpoints are set. An empty
// checkpoint id disables that modality.
func Joint(rgbPT, flowPT weights.ID, numClasses int, pretrained bool) *Streams {
	return build(rgbPT, flowPT, "", numClasses, pretrained)
}

// SEJoint builds I3D streams with an SELayer variant attached to each stream
func SEJoint(rgbPT, flowPT weights.ID, attention selayer.Variant, numClasses int, pretrained bool) *Streams {
	return build(rgbPT, flowPT, attention, numClasses, pretrained)
}

func build(rgbPT, flowPT weights.ID, attention selayer.Variant, numClasses int, pretrained bool) *Streams {
	logger := logging.WithFields(logging.Fields{
		"component": "i3d",
	})

	joint := &Streams{}
	if rgbPT != "" {
		joint.RGB = newStream("rgb", rgbPT, attention, numClasses, pretrained, logger)
	}
	if flowPT != "" {
		joint.Flow = newStream("flow", flowPT, attention, numClasses, pretrained, logger)
	}
	return joint
}

func newStream(modality string, pt weights.ID, attention selayer.Variant, numClasses int, pretrained bool, logger logging.Logger) *Stream {
	if pretrained && !weights.Exists(pt) {
		logger.Warn("checkpoint not in cache, runtime will fetch it", logging.Fields{
			"modality":   modality,
			"checkpoint": string(pt),
		})
	}

	return &Stream{
		modality:   modality,
		pretrained: pt,
		attention:  attention,
		numClasses: numClasses,
	}
}
