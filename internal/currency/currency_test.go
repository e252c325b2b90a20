package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertINRToUSDCents(t *testing.T) {
	tests := []struct {
		name  string
		paise int64
		want  int64
	}{
		{"exact dollar", 8391, 100},
		{"zero", 0, 0},
		{"rounds up", 4240, 51},      // 50.530...
		{"rounds down", 4200, 50},    // 50.053...
		{"large cart", 250000, 2979}, // 2500 rupees
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertINRToUSDCents(tt.paise))
		})
	}
}

func TestEstimateUSD(t *testing.T) {
	assert.Equal(t, "29.80", EstimateUSD(2500))
	assert.Equal(t, "0.00", EstimateUSD(0))
	assert.Equal(t, "1.19", EstimateUSD(100))
	// Fractional rupees count: 125.99 is 1.5018, not 1.49.
	assert.Equal(t, "1.50", EstimateUSD(125.99))
}
