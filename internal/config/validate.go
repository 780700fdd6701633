package config

import (
	"fmt"
	"strings"

	"govsignal-engine/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong
// or suspicious about it. Callers decide whether warnings block.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Pipeline.FeedGroups = trimList(out.Pipeline.FeedGroups)
	if out.Pipeline.AnchorLanguage == "" {
		out.Pipeline.AnchorLanguage = domain.LangEN
	}

	// ---- Rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.Polling.Enabled && out.Polling.IntervalMinutes <= 0 {
		res.addErr("polling.interval_minutes must be > 0 when polling is enabled")
	} else if out.Polling.Enabled && out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d); government servers may rate limit you.", out.Polling.IntervalMinutes)
	}

	if out.Fetch.FeedTimeoutSeconds <= 0 {
		res.addErr("fetch.feed_timeout_seconds must be > 0")
	}
	if out.Fetch.BulkTimeoutSeconds <= 0 {
		res.addErr("fetch.bulk_timeout_seconds must be > 0")
	}
	if out.Fetch.BulkTimeoutSeconds < out.Fetch.FeedTimeoutSeconds {
		res.addWarn("fetch.bulk_timeout_seconds (%d) is below feed_timeout_seconds (%d); bulk documents are usually the slower fetch.",
			out.Fetch.BulkTimeoutSeconds, out.Fetch.FeedTimeoutSeconds)
	}
	if out.Fetch.PerHostRPS <= 0 {
		res.addErr("fetch.per_host_rps must be > 0")
	} else if out.Fetch.PerHostRPS > 5 {
		res.addWarn("fetch.per_host_rps is high (%.1f); keep polling of .gov.hk hosts polite.", out.Fetch.PerHostRPS)
	}
	if out.Fetch.PerHostBurst <= 0 {
		res.addErr("fetch.per_host_burst must be > 0")
	}

	validAnchor := false
	for _, l := range domain.Languages {
		if out.Pipeline.AnchorLanguage == l {
			validAnchor = true
			break
		}
	}
	if !validAnchor {
		res.addErr("pipeline.anchor_language must be one of %s", strings.Join(domain.Languages, ", "))
	}

	if len(out.Pipeline.FeedGroups) == 0 {
		res.addWarn("pipeline.feed_groups is empty; every active source will be polled.")
	}

	return out, res
}
