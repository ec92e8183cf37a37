// internal/logging/logging_test.go
package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	require.Equal(t, logrus.DebugLevel, New("debug", "text").GetLevel())
	require.Equal(t, logrus.WarnLevel, New(" warn ", "text").GetLevel())
	require.Equal(t, logrus.InfoLevel, New("chatty", "text").GetLevel())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "info", "JSON")
	logger.WithField("user_id", "alice").Info("meal logged")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "alice", entry["user_id"])
	require.Equal(t, "meal logged", entry["msg"])
}

func TestTextFormatDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(&buf, "info", "")
	logger.Info("hello")
	require.Contains(t, buf.String(), `msg=hello`)
}
