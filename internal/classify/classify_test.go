package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		group string
		want  string
	}{
		{"transport_notices", "transport_notice"},
		{"transport_works", "transport_notice"},
		{"weather_warnings", "weather_warning"},
		{"hkma_press", "monetary_press"},
		{"monetary_press", "monetary_press"},
		{"hkma_circulars", "monetary_circular"},
		{"monetary_circulars", "monetary_circular"},
		{"health_alerts", "health_alert"},
		{"health_guidelines", "health_guideline"},
		{"lands_department_notices", "administrative"},
		{"", "administrative"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Categorize(tc.group), "group %q", tc.group)
	}
}
