package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already e164", "+15551234567", "+15551234567"},
		{"foreign e164 untouched", "+445551234567", "+445551234567"},
		{"bare ten digits", "5551234567", "+15551234567"},
		{"eleven digits with country code", "15551234567", "+15551234567"},
		{"formatted national", "(555) 123-4567", "+15551234567"},
		{"dashes and spaces", "555 123 4567", "+15551234567"},
		{"odd length passthrough", "44123456789012", "+44123456789012"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}
