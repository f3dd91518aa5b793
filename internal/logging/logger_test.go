package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logrus.Level
		wantErr bool
	}{
		{"", logrus.InfoLevel, false},
		{"debug", logrus.DebugLevel, false},
		{"WARN", logrus.WarnLevel, false},
		{" error ", logrus.ErrorLevel, false},
		{"loud", logrus.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_File(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	path := filepath.Join(t.TempDir(), "repcount.log")
	closer, err := Setup(SetupParams{LogFileName: path, LogLevel: "debug", LogFormatJSON: true})
	require.NoError(t, err)

	logrus.WithField("exercise", "squats").Info("Set complete")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"exercise":"squats"`)
	assert.Contains(t, string(data), `"msg":"Set complete"`)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(SetupParams{LogLevel: "shouty"})
	assert.Error(t, err)
}
