package extractors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionda/videofeat/logging"
	"github.com/visionda/videofeat/models/ta3n"
	"github.com/visionda/videofeat/video/config"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(nil)
	m.Run()
}

var classes = config.ClassCounts{"verb": 8, "noun": 300}

func TestImageBackboneI3DJoint(t *testing.T) {
	f := NewFactory()

	net, dims, err := f.ImageBackbone(config.ModelI3D, config.ModalityJoint, config.AttentionNone, classes)
	require.NoError(t, err)

	assert.Equal(t, Dims{Class: 2048, Domain: 1024}, dims)
	require.NotNil(t, net.RGB)
	require.NotNil(t, net.Flow)
	assert.Nil(t, net.Audio)
	assert.Equal(t, "i3d", net.RGB.Tag())
	assert.Equal(t, 1024, net.RGB.OutputDim())
	assert.Equal(t, "rgb", net.RGB.Modality())
	assert.Equal(t, "flow", net.Flow.Modality())
}

func TestImageBackboneI3DSingleStream(t *testing.T) {
	f := NewFactory()

	net, dims, err := f.ImageBackbone(config.ModelI3D, config.ModalityRGB, config.AttentionNone, classes)
	require.NoError(t, err)

	assert.Equal(t, Dims{Class: 1024, Domain: 1024}, dims)
	require.NotNil(t, net.RGB)
	assert.Nil(t, net.Flow)
	assert.Nil(t, net.Audio)
}

func TestImageBackboneR3D18RGB(t *testing.T) {
	f := NewFactory()

	net, dims, err := f.ImageBackbone(config.ModelR3D18, config.ModalityRGB, config.AttentionNone, classes)
	require.NoError(t, err)

	assert.Equal(t, Dims{Class: 512, Domain: 512}, dims)
	require.NotNil(t, net.RGB)
	assert.Nil(t, net.Flow)
	assert.Nil(t, net.Audio)
	assert.Equal(t, "r3d_18", net.RGB.Tag())
}

func TestImageBackboneR3D18WithSELayer(t *testing.T) {
	f := NewFactory()

	net, dims, err := f.ImageBackbone(config.ModelR3D18, config.ModalityRGB, config.SELayerC, classes)
	require.NoError(t, err)

	// same widths as the plain path, but the SE constructor must have run
	assert.Equal(t, Dims{Class: 512, Domain: 512}, dims)
	require.NotNil(t, net.RGB)
	assert.Equal(t, "se_r3d_18/SELayerC", net.RGB.Tag())
}

func TestImageBackboneResidualFamilies(t *testing.T) {
	f := NewFactory()

	tags := map[config.ModelName]string{
		config.ModelR3D18:    "r3d_18",
		config.ModelMC318:    "mc3_18",
		config.ModelR2Plus1D: "r2plus1d_18",
	}

	for model, tag := range tags {
		net, dims, err := f.ImageBackbone(model, config.ModalityJoint, config.AttentionNone, classes)
		require.NoError(t, err, string(model))

		assert.Equal(t, Dims{Class: 1024, Domain: 512}, dims, string(model))
		require.NotNil(t, net.RGB, string(model))
		require.NotNil(t, net.Flow, string(model))
		assert.Nil(t, net.Audio, string(model))
		assert.Equal(t, tag, net.RGB.Tag())
		assert.Equal(t, 512, net.RGB.OutputDim(), string(model))
	}
}

func TestImageBackboneTA3N(t *testing.T) {
	f := NewFactory()

	net, dims, err := f.ImageBackbone(config.ModelTA3N, config.ModalityAll, config.AttentionNone, classes)
	require.NoError(t, err)

	// 1024 per active stream for the class head, fixed 1024 for the domain head
	assert.Equal(t, Dims{Class: 3072, Domain: 1024}, dims)
	require.NotNil(t, net.RGB)
	require.NotNil(t, net.Flow)
	require.NotNil(t, net.Audio)
	assert.Equal(t, "ta3n", net.RGB.Tag())

	_, dims, err = f.ImageBackbone(config.ModelTA3N, config.ModalityRGB, config.AttentionNone, classes)
	require.NoError(t, err)
	assert.Equal(t, Dims{Class: 1024, Domain: 1024}, dims)
}

func TestImageBackboneInvalidAttention(t *testing.T) {
	f := NewFactory()

	net, _, err := f.ImageBackbone(config.ModelI3D, config.ModalityJoint, config.Attention("InvalidName"), classes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrUnknownAttention))
	assert.Contains(t, err.Error(), "InvalidName")
	assert.Nil(t, net)
}

func TestImageBackboneInvalidModel(t *testing.T) {
	f := NewFactory()

	net, _, err := f.ImageBackbone(config.ModelName("NotAModel"), config.ModalityJoint, config.AttentionNone, classes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrUnknownModel))
	assert.Contains(t, err.Error(), "NotAModel")
	assert.Nil(t, net)
}

func TestImageBackboneMissingVerbClasses(t *testing.T) {
	f := NewFactory()

	_, _, err := f.ImageBackbone(config.ModelI3D, config.ModalityJoint, config.AttentionNone, config.ClassCounts{"noun": 300})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingVerbClasses))
}

func TestImageBackboneIdempotent(t *testing.T) {
	f := NewFactory()

	_, first, err := f.ImageBackbone(config.ModelI3D, config.ModalityJoint, config.AttentionNone, classes)
	require.NoError(t, err)
	_, second, err := f.ImageBackbone(config.ModelI3D, config.ModalityJoint, config.AttentionNone, classes)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFeatureBackboneTA3N(t *testing.T) {
	f := NewFactory()

	// both widths equal the output size for every modality combination
	for _, modality := range []config.Modality{config.ModalityRGB, config.ModalityFlow, config.ModalityAudio, config.ModalityJoint, config.ModalityAll} {
		net, dims, err := f.FeatureBackbone(FeatureSpec{
			Model:       config.ModelTA3N,
			Modality:    modality,
			Classes:     classes,
			Aggregation: ta3n.AggAvgPool,
			Segments:    5,
		})
		require.NoError(t, err, string(modality))
		assert.Equal(t, Dims{Class: 256, Domain: 256}, dims, string(modality))
		require.NotNil(t, net)
	}
}

func TestFeatureBackboneStreams(t *testing.T) {
	f := NewFactory()

	net, _, err := f.FeatureBackbone(FeatureSpec{
		Model:       config.ModelTA3N,
		Modality:    config.ModalityJoint,
		Classes:     classes,
		Aggregation: ta3n.AggTRN,
		Segments:    5,
	})
	require.NoError(t, err)
	require.NotNil(t, net.RGB)
	require.NotNil(t, net.Flow)
	assert.Nil(t, net.Audio)
	assert.Equal(t, 256, net.RGB.OutputDim())
}

func TestFeatureBackboneCustomOutputSize(t *testing.T) {
	f := NewFactory()

	_, dims, err := f.FeatureBackbone(FeatureSpec{
		Model:       config.ModelTA3N,
		Modality:    config.ModalityAll,
		Classes:     classes,
		Aggregation: ta3n.AggTemAttn,
		Segments:    3,
		InputSize:   2048,
		OutputSize:  512,
	})
	require.NoError(t, err)
	assert.Equal(t, Dims{Class: 512, Domain: 512}, dims)
}

func TestFeatureBackboneRejectsConvFamilies(t *testing.T) {
	f := NewFactory()

	for _, model := range []config.ModelName{config.ModelI3D, config.ModelR3D18, config.ModelMC318, config.ModelR2Plus1D} {
		net, _, err := f.FeatureBackbone(FeatureSpec{
			Model:       model,
			Modality:    config.ModalityJoint,
			Classes:     classes,
			Aggregation: ta3n.AggAvgPool,
			Segments:    5,
		})
		require.Error(t, err, string(model))
		assert.True(t, errors.Is(err, ErrFeatureInputModel), string(model))
		assert.Contains(t, err.Error(), string(model))
		assert.Nil(t, net, string(model))
	}
}

func TestFeatureBackboneInvalidModel(t *testing.T) {
	f := NewFactory()

	_, _, err := f.FeatureBackbone(FeatureSpec{
		Model:       config.ModelName("NotAModel"),
		Modality:    config.ModalityJoint,
		Classes:     classes,
		Aggregation: ta3n.AggAvgPool,
		Segments:    5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrUnknownModel))
}

func TestFeatureBackboneInvalidAggregation(t *testing.T) {
	f := NewFactory()

	_, _, err := f.FeatureBackbone(FeatureSpec{
		Model:       config.ModelTA3N,
		Modality:    config.ModalityJoint,
		Classes:     classes,
		Aggregation: ta3n.Aggregation("maxpool"),
		Segments:    5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ta3n.ErrUnknownAggregation))
	assert.Contains(t, err.Error(), "maxpool")
}
