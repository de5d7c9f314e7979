package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldLogRespectsThreshold(t *testing.T) {
	InitLogger("warning", 50, time.Second, true)

	assert.True(t, GlobalLogger.shouldLog("error"))
	assert.True(t, GlobalLogger.shouldLog("warning"))
	assert.False(t, GlobalLogger.shouldLog("info"))
	assert.False(t, GlobalLogger.shouldLog("debug"))
}

func TestShouldLogRejectsUnknownLevel(t *testing.T) {
	InitLogger("info", 50, time.Second, true)

	assert.False(t, GlobalLogger.shouldLog("bogus"))
	assert.False(t, GlobalLogger.shouldLog(""))
}

func TestShouldLogDefaultsUnknownThresholdToInfo(t *testing.T) {
	InitLogger("info", 50, time.Second, true)
	GlobalLogger.logLevel = "mystery"

	assert.True(t, GlobalLogger.shouldLog("info"))
	assert.False(t, GlobalLogger.shouldLog("debug"))
}
