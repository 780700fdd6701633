package classify

// Semantic categories persisted with every signal.
const (
	CategoryTransport        = "transport_notice"
	CategoryWeatherWarning   = "weather_warning"
	CategoryMonetaryPress    = "monetary_press"
	CategoryMonetaryCircular = "monetary_circular"
	CategoryHealthAlert      = "health_alert"
	CategoryHealthGuideline  = "health_guideline"
	CategoryAdministrative   = "administrative"
)

// byGroup is enumerated rather than inferred: category drives
// downstream grouping and has to stay stable and auditable across
// releases. New feed groups land in administrative until added here.
var byGroup = map[string]string{
	"transport_notices":  CategoryTransport,
	"transport_works":    CategoryTransport,
	"weather_warnings":   CategoryWeatherWarning,
	"hkma_press":         CategoryMonetaryPress,
	"monetary_press":     CategoryMonetaryPress,
	"hkma_circulars":     CategoryMonetaryCircular,
	"monetary_circulars": CategoryMonetaryCircular,
	"health_alerts":      CategoryHealthAlert,
	"health_guidelines":  CategoryHealthGuideline,
}

// Categorize maps a feed group to its semantic category.
func Categorize(feedGroup string) string {
	if c, ok := byGroup[feedGroup]; ok {
		return c
	}
	return CategoryAdministrative
}
