package plural

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlural(t *testing.T) {
	assert.Equal(t, "s", Of(0, "s"))
	assert.Equal(t, "", Of(1, "s"))
	assert.Equal(t, "es", Of(2, "es"))
	assert.Equal(t, "", Slice([]string{"T"}, "s"))
	assert.Equal(t, "s", Slice([]float64{1, 2}, "s"))
}
