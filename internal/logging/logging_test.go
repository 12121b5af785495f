package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name    string
		logsDir string
		appName string
		want    string
	}{
		{
			name:    "basic path",
			logsDir: "perilgenlogs",
			appName: "perilgen",
			want:    filepath.Join("perilgenlogs", "perilgen.20260212_213836.log"),
		},
		{
			name:    "relative path with dot",
			logsDir: "./perilgenlogs",
			appName: "perilgen",
			want:    filepath.Join(".", "perilgenlogs", "perilgen.20260212_213836.log"),
		},
		{
			name:    "absolute path",
			logsDir: filepath.Join("/var", "log", "perilgen"),
			appName: "perilgen",
			want:    filepath.Join("/var", "log", "perilgen", "perilgen.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.appName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}
