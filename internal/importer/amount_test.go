package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/importer"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1234.56", want: "1234.56"},
		{in: "1.234,56", want: "1234.56"},
		{in: "1,234.56", want: "1234.56"},
		{in: "-588,74", want: "-588.74"},
		{in: "10,00", want: "10"},
		{in: "1.234.567", want: "1234567"},
		{in: "1,234,567", want: "1234567"},
		{in: "+21000", want: "21000"},
		{in: "12,50 €", want: "12.5"},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := importer.ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
