package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/neo-hazard-etl/internal/config"
	"github.com/couchcryptid/neo-hazard-etl/internal/domain"
)

func TestLogAssessSettings_DensityMismatch(t *testing.T) {
	tests := []struct {
		name     string
		earth    float64
		moon     float64
		wantWarn bool
	}{
		{name: "defaults differ", earth: 2000, moon: 2500, wantWarn: true},
		{name: "unified", earth: 2500, moon: 2500, wantWarn: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))
			cfg := &config.Config{
				ValidationPolicy: domain.PolicyPermissive,
				DensityEarth:     tt.earth,
				DensityMoon:      tt.moon,
			}

			logAssessSettings(logger, cfg)

			out := buf.String()
			assert.Contains(t, out, "assessment settings")
			if tt.wantWarn {
				assert.Contains(t, out, "level=WARN")
				assert.Contains(t, out, "impactor densities differ")
			} else {
				assert.NotContains(t, out, "level=WARN")
			}
		})
	}
}
