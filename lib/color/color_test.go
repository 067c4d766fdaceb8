package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate("#3DB5BE"))
	assert.Nil(t, Validate("blue"))
	assert.Nil(t, Validate("rgb(10, 20, 30)"))
	assert.Nil(t, Validate(None))
	assert.NotNil(t, Validate("#zzz"))
	assert.NotNil(t, Validate("not a color"))
}

func TestContrast(t *testing.T) {
	c, err := Contrast("#F2F2F2")
	assert.Nil(t, err)
	assert.Equal(t, Dark, c)

	c, err = Contrast("#8D2145")
	assert.Nil(t, err)
	assert.Equal(t, White, c)

	_, err = Contrast("nope")
	assert.NotNil(t, err)
}

func TestDarken(t *testing.T) {
	d, err := Darken("#ffffff")
	assert.Nil(t, err)
	assert.Equal(t, "#e6e6e6", d)
}
