package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithField("component", "router").Infof("served %s", "hourly")

	assert.Contains(t, buf.String(), "served hourly")
	assert.Contains(t, buf.String(), `"component":"router"`)
}

func TestIsDebugEnabled(t *testing.T) {
	assert.False(t, IsDebugEnabled(New("info", "test")))
	assert.True(t, IsDebugEnabled(NewWithWriter("debug", &bytes.Buffer{})))
	assert.True(t, IsDebugEnabled(NewWithWriter("debug", &bytes.Buffer{}).WithField("component", "hourly_backend")))
}

func TestStringToLevel(t *testing.T) {
	assert.Equal(t, "warning", StringToLevel("warn").String())
	assert.Equal(t, "info", StringToLevel("nonsense").String())
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Errorf("nothing to see: %d", 1)
	assert.False(t, IsDebugEnabled(log))
}
