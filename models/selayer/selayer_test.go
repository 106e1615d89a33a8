package selayer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, name := range []string{"SELayerC", "SELayerT", "SELayerCoC", "SELayerMC", "SELayerCT", "SELayerTC", "SELayerMAC"} {
		v, err := Parse(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, v.String())
	}

	_, err := Parse("SELayerX")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVariant))
	assert.Contains(t, err.Error(), "SELayerX")
}

func TestAxes(t *testing.T) {
	assert.Equal(t, []Axis{Channel}, C.Axes())
	assert.Equal(t, []Axis{Temporal}, T.Axes())
	assert.Equal(t, []Axis{Channel, Temporal}, CT.Axes())
	assert.Equal(t, []Axis{Temporal, Channel}, TC.Axes())
	assert.Equal(t, []Axis{Channel}, MAC.Axes())
}
