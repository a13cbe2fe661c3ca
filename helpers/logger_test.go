package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFansOutToLogList(t *testing.T) {
	logger := NewFileLogger()
	logList := []string{}
	logger.SetLogList(&logList)

	logger.Infoln("🧪 Experiment 'Headline test' created")
	logger.Warnln("experiment exp-1 expired")
	logger.Errorln("couldn't persist experiment exp-1")

	require.Len(t, logList, 3)
	assert.Contains(t, logList[0], "Headline test")
	assert.Contains(t, logList[1], "expired")
	assert.Contains(t, logList[2], "couldn't persist")
}

func TestLoggerWithoutLogList(t *testing.T) {
	logger := NewFileLogger()

	// No list wired: logging must not panic, nothing to collect
	logger.Infoln("unwatched line")
	logger.Errorln("unwatched error")
}
