package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type thresholdRequest struct {
	Type      int64           `json:"type" validate:"required,oneof=1 2 3"`
	Threshold decimal.Decimal `json:"threshold" validate:"gte=0,lt=100000000,decimals=2"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := ValidateStruct(&thresholdRequest{Type: 1, Threshold: decimal.RequireFromString("50.00")})
		assert.NoError(t, err)
	})

	t.Run("zero threshold is allowed", func(t *testing.T) {
		err := ValidateStruct(&thresholdRequest{Type: 3, Threshold: decimal.Zero})
		assert.NoError(t, err)
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := ValidateStruct(&thresholdRequest{Type: 9, Threshold: decimal.RequireFromString("-1")})
		require.Error(t, err)

		var verr *Errors
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "type", verr.Fields[0].Field)
		assert.Equal(t, "oneof", verr.Fields[0].Tag)
		assert.Equal(t, "threshold", verr.Fields[1].Field)
		assert.Equal(t, "gte", verr.Fields[1].Tag)
		assert.Contains(t, err.Error(), "field 'threshold' must be greater than or equal to 0")
	})

	t.Run("threshold precision and range", func(t *testing.T) {
		tests := []struct {
			threshold string
			tag       string
		}{
			{"3.45", ""},
			{"3.4", ""},
			{"99999999.99", ""},
			{"3.456", "decimals"},
			{"0.001", "decimals"},
			{"100000000", "lt"},
		}

		for _, tt := range tests {
			err := ValidateStruct(&thresholdRequest{Type: 3, Threshold: decimal.RequireFromString(tt.threshold)})
			if tt.tag == "" {
				assert.NoError(t, err, tt.threshold)
				continue
			}

			var verr *Errors
			require.ErrorAs(t, err, &verr, tt.threshold)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.tag, verr.Fields[0].Tag, tt.threshold)
		}
	})

	t.Run("rejects non structs", func(t *testing.T) {
		assert.Error(t, ValidateStruct(42))
		assert.NoError(t, ValidateStruct(nil))
	})
}
