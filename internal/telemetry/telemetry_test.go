package telemetry_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"hyperdbg/internal/telemetry"
)

func TestNewDefaultsToInfoLevelOnBadLevel(t *testing.T) {
	l := telemetry.New("not-a-level", false)
	assert.Equal(t, "info", l.GetLevel().String())
}

func TestWithErrAttachesField(t *testing.T) {
	l := telemetry.New("debug", true)
	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	l.WithErr(assert.AnError).Error("operation failed")
	assert.Contains(t, buf.String(), "assert.AnError")
}
