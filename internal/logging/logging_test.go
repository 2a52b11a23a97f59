package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		want    zapcore.Level
		wantErr bool
	}{
		{level: "info", format: "json", want: zapcore.InfoLevel},
		{level: "DEBUG", format: "console", want: zapcore.DebugLevel},
		{level: " warn ", format: "json", want: zapcore.WarnLevel},
		{level: "verbose", format: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			assert.False(t, l.Core().Enabled(tt.want-1))
		})
	}
}
