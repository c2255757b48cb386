package dicomlog

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]int{
		"off": LevelOff, "error": LevelError, "WARN": LevelWarn, "info": LevelInfo,
		" debug ": LevelDebug, "trace": LevelTrace, "3": 3,
	} {
		got, ok := ParseLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseLevel("loud")
	assert.False(t, ok)
}

func TestEventRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLevel(Level())

	SetLevel(LevelWarn)
	Event(LevelInfo, "hidden", Fields{"path": "a.dcm"})
	assert.Empty(t, buf.String())

	Warn("shown", Fields{"path": "a.dcm"})
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "path=a.dcm")

	buf.Reset()
	SetLevel(LevelOff)
	Warn("silenced", nil)
	assert.Empty(t, buf.String())
}

func TestConfigureFromEnv(t *testing.T) {
	defer SetLevel(Level())
	t.Setenv(EnvVar, "debug")
	assert.True(t, ConfigureFromEnv())
	assert.Equal(t, LevelDebug, Level())

	t.Setenv(EnvVar, "bogus")
	assert.False(t, ConfigureFromEnv())
	assert.Equal(t, LevelDebug, Level())
}
