package vkgrid_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/celer/vkgrid"
)

func TestIsFatal(t *testing.T) {
	assert.False(t, vkgrid.IsFatal(nil))
	assert.False(t, vkgrid.IsFatal(vkgrid.ErrSizeMismatch))
	assert.True(t, vkgrid.IsFatal(errors.Wrap(vkgrid.ErrFatalGraphics, "context")))
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { vkgrid.Must(nil) })
	assert.Panics(t, func() { vkgrid.Must(errors.New("bad")) })
}

func TestConfigureLogging(t *testing.T) {
	defer vkgrid.SetLogger(nil)

	l := vkgrid.ConfigureLogging("debug")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Equal(t, logrus.FieldLogger(l), vkgrid.Logger())

	l = vkgrid.ConfigureLogging("nonsense")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
