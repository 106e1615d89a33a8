package config

import (
	"errors"
	"fmt"
)

// Configuration errors. Selectors wrap these with the offending value so
// callers can both match the class of failure and read the bad input.
var (
	ErrUnknownModel     = errors.New("unknown model name")
	ErrUnknownAttention = errors.New("unknown attention type")
	ErrUnknownModality  = errors.New("unknown modality")
)

// ModelName identifies a backbone architecture family
type ModelName string

const (
	ModelI3D      ModelName = "I3D"
	ModelR3D18    ModelName = "R3D_18"
	ModelMC318    ModelName = "MC3_18"
	ModelR2Plus1D ModelName = "R2PLUS1D_18"
	ModelTA3N     ModelName = "TA3N"
)

// Validate checks the model name against the closed set of supported families
func (m ModelName) Validate() error {
	switch m {
	case ModelI3D, ModelR3D18, ModelMC318, ModelR2Plus1D, ModelTA3N:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownModel, string(m))
	}
}

// IsTemporalAggregation reports whether the family aggregates per-segment
// features instead of convolving raw clips
func (m ModelName) IsTemporalAggregation() bool {
	return m == ModelTA3N
}

// Attention selects a squeeze-and-excitation variant inserted into the
// backbone, or AttentionNone for the plain architecture
type Attention string

const (
	AttentionNone Attention = "None"

	SELayerC   Attention = "SELayerC"
	SELayerT   Attention = "SELayerT"
	SELayerCoC Attention = "SELayerCoC"
	SELayerMC  Attention = "SELayerMC"
	SELayerCT  Attention = "SELayerCT"
	SELayerTC  Attention = "SELayerTC"
	SELayerMAC Attention = "SELayerMAC"
)

// Validate checks the attention selector against the recognized variants
func (a Attention) Validate() error {
	switch a {
	case AttentionNone, SELayerC, SELayerT, SELayerCoC, SELayerMC, SELayerCT, SELayerTC, SELayerMAC:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAttention, string(a))
	}
}

// Enabled reports whether an attention layer should be inserted
func (a Attention) Enabled() bool {
	return a != AttentionNone
}

// Modality names the input stream combination fed to the backbone
type Modality string

const (
	ModalityRGB   Modality = "rgb"
	ModalityFlow  Modality = "flow"
	ModalityAudio Modality = "audio"
	ModalityJoint Modality = "joint" // rgb + flow
	ModalityAll   Modality = "all"   // rgb + flow + audio
)

// Decode expands the modality selector into per-stream activity flags
func (m Modality) Decode() (rgb, flow, audio bool, err error) {
	switch m {
	case ModalityRGB:
		return true, false, false, nil
	case ModalityFlow:
		return false, true, false, nil
	case ModalityAudio:
		return false, false, true, nil
	case ModalityJoint:
		return true, true, false, nil
	case ModalityAll:
		return true, true, true, nil
	default:
		return false, false, false, fmt.Errorf("%w: %q", ErrUnknownModality, string(m))
	}
}
