package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		days    []time.Weekday
	}{
		{name: "Empty", encoded: "", days: nil},
		{name: "Single", encoded: "0", days: []time.Weekday{time.Sunday}},
		{name: "Several", encoded: "1,4,6", days: []time.Weekday{time.Monday, time.Thursday, time.Saturday}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.encoded, formatWeekdays(tt.days))

			got, err := parseWeekdays(tt.encoded)
			require.NoError(t, err)
			assert.Equal(t, tt.days, got)
		})
	}

	_, err := parseWeekdays("1,x")
	assert.Error(t, err)
}
