// Package res3d builds 18-layer 3D-ResNet backbone streams: R3D-18 (full 3D
// convolutions), MC3-18 (mixed 3D/2D convolutions) and R(2+1)D-18 (factored
// spatiotemporal convolutions), each with an optional SELayer variant.
package res3d

import (
	"github.com/visionda/videofeat/logging"
	"github.com/visionda/videofeat/models/selayer"
	"github.com/visionda/videofeat/weights"
)

// FeatureDim is the width of the pooled layer4 output per stream
const FeatureDim = 512

// Family selects the convolution layout of the 18-layer residual backbone
type Family string

const (
	R3D      Family = "r3d_18"
	MC3      Family = "mc3_18"
	R2Plus1D Family = "r2plus1d_18"
)

// layerChannels are the residual stage widths shared by all three families
var layerChannels = []int{64, 128, 256, 512}

// checkpoints maps each family to its torchvision checkpoint
var checkpoints = map[Family]weights.ID{
	R3D:      weights.R3D18,
	MC3:      weights.MC318,
	R2Plus1D: weights.R2Plus1D18,
}

// Stream describes one 3D-ResNet backbone over a single input modality
type Stream struct {
	family     Family
	modality   string
	attention  selayer.Variant
	pretrained bool
}

// Modality returns the input stream name ("rgb" or "flow")
func (s *Stream) Modality() string { return s.modality }

// OutputDim returns the feature width the stream produces
func (s *Stream) OutputDim() int { return FeatureDim }

// Family returns the convolution layout of the backbone
func (s *Stream) Family() Family { return s.family }

// Pretrained returns the checkpoint the stream initializes from, when any
func (s *Stream) Pretrained() (weights.ID, bool) {
	if !s.pretrained {
		return "", false
	}
	return checkpoints[s.family], true
}

// Attention returns the SELayer variant, if one is attached
func (s *Stream) Attention() (selayer.Variant, bool) {
	return s.attention, s.attention != ""
}

// StageChannels returns the residual stage widths of the backbone
func (s *Stream) StageChannels() []int {
	out := make([]int, len(layerChannels))
	copy(out, layerChannels)
	return out
}

// Tag identifies the constructor path that produced the stream
func (s *Stream) Tag() string {
	if s.attention != "" {
		return "se_" + string(s.family) + "/" + s.attention.String()
	}
	return string(s.family)
}

// Streams holds the per-modality backbones of a joint network
type Streams struct {
	RGB  *Stream
	Flow *Stream
}

// R3D18 builds plain R3D-18 streams for the active modalities
func R3D18(rgb, flow, pretrained bool) *Streams {
	return build(R3D, rgb, flow, "", pretrained)
}

// MC318 builds plain MC3-18 streams for the active modalities
func MC318(rgb, flow, pretrained bool) *Streams {
	return build(MC3, rgb, flow, "", pretrained)
}

// R2Plus1D18 builds plain R(2+1)D-18 streams for the active modalities
func R2Plus1D18(rgb, flow, pretrained bool) *Streams {
	return build(R2Plus1D, rgb, flow, "", pretrained)
}

// SER3D18 builds R3D-18 streams with an SELayer variant attached
func SER3D18(rgb, flow, pretrained bool, attention selayer.Variant) *Streams {
	return build(R3D, rgb, flow, attention, pretrained)
}

// SEMC318 builds MC3-18 streams with an SELayer variant attached
func SEMC318(rgb, flow, pretrained bool, attention selayer.Variant) *Streams {
	return build(MC3, rgb, flow, attention, pretrained)
}

// SER2Plus1D18 builds R(2+1)D-18 streams with an SELayer variant attached
func SER2Plus1D18(rgb, flow, pretrained bool, attention selayer.Variant) *Streams {
	return build(R2Plus1D, rgb, flow, attention, pretrained)
}

func build(family Family, rgb, flow bool, attention selayer.Variant, pretrained bool) *Streams {
	logger := logging.WithFields(logging.Fields{
		"component": "res3d",
		"family":    string(family),
	})

	if pretrained && !weights.Exists(checkpoints[family]) {
		logger.Warn("checkpoint not in cache, runtime will fetch it", logging.Fields{
			"checkpoint": string(checkpoints[family]),
		})
	}

	joint := &Streams{}
	if rgb {
		joint.RGB = &Stream{family: family, modality: "rgb", attention: attention, pretrained: pretrained}
	}
	if flow {
		joint.Flow = &Stream{family: family, modality: "flow", attention: attention, pretrained: pretrained}
	}
	return joint
}
