package notifier

import (
	"fmt"
	"sort"
	"strings"

	"TrendSentinel/internal/config"
	"TrendSentinel/internal/model"
)

var kindLabels = map[model.TriggerKind]string{
	model.TriggerPullbackA: "Pullback 25%",
	model.TriggerPullbackB: "Pullback 50%",
	model.TriggerBreakoutS: "Breakout 20d",
}

// FormatDailyReport renders one run's results as a notification message.
func FormatDailyReport(report *model.RunReport, cfg *config.Config) Message {
	title := fmt.Sprintf("Stock Alerts %s | Regime %s",
		report.AsOf.Format("2006-01-02"), report.Regime.State)

	var b strings.Builder
	writeRegimeSection(&b, report.Regime)
	b.WriteString("\n")

	if !report.Regime.AllowNewEntries {
		fmt.Fprintf(&b, "New entries stopped. max_exposure=%.0f%%\n", report.Regime.MaxExposure*100)
		if len(report.Events) > 0 {
			fmt.Fprintf(&b, "Triggers observed (not actionable): %s\n",
				strings.Join(report.TriggeredTickers(), ", "))
		}
	} else if len(report.Events) == 0 {
		b.WriteString("No signals.\n")
	} else {
		writeEventsSection(&b, report.Events)
	}

	b.WriteString("\n")
	writeSummarySection(&b, report)
	b.WriteString("\n")
	writeConfigSection(&b, cfg)

	return Message{Title: title, Body: strings.TrimRight(b.String(), "\n")}
}

func writeRegimeSection(b *strings.Builder, regime model.RegimeResult) {
	fmt.Fprintf(b, "Composite score: %.1f (%s), max exposure %.0f%%\n",
		regime.CompositeScore, regime.State, regime.MaxExposure*100)
	fmt.Fprintf(b, "  Conditions: %.1f (level %.3f, 1w %+.3f, 4w %+.3f)\n",
		regime.ConditionsScore, regime.ConditionsLevel, regime.Change1W, regime.Change4W)
	fmt.Fprintf(b, "  Trend: %d | Conditions score 4w change: %+.1f\n",
		regime.TrendScore, regime.ScoreChange4W)
	if regime.RiskOffTriggered {
		b.WriteString("  Rapid tightening detected, exposure haircut applied\n")
	}
	fmt.Fprintf(b, "  Conditions as of %s\n", regime.ConditionsAsOf.Format("2006-01-02"))
}

func writeEventsSection(b *strings.Builder, events []model.TriggerEvent) {
	byKind := map[model.TriggerKind][]model.TriggerEvent{}
	for _, ev := range events {
		byKind[ev.Kind] = append(byKind[ev.Kind], ev)
	}
	for _, kind := range []model.TriggerKind{model.TriggerPullbackA, model.TriggerPullbackB, model.TriggerBreakoutS} {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(b, "%s:\n", kindLabels[kind])
		for _, ev := range group {
			line := fmt.Sprintf("  %s @ %.2f (ref high %.2f", ev.Ticker, ev.ReferencePrice, ev.ReferenceHigh)
			if kind == model.TriggerBreakoutS {
				line += fmt.Sprintf(", vol %.2fx", ev.ReferenceVolumeRatio)
			}
			line += ")"
			if !ev.EligibleUnderRegime {
				line += " [regime blocked]"
			}
			b.WriteString(line + "\n")
		}
	}
}

func writeSummarySection(b *strings.Builder, report *model.RunReport) {
	eligible := report.EligibleTickers()
	fmt.Fprintf(b, "Eligible: %d/%d", len(eligible), len(report.Eligibility))
	if len(eligible) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(eligible, ", "))
	}
	b.WriteString("\n")

	if counts := report.RejectionCounts(); len(counts) > 0 {
		type pair struct {
			reason string
			n      int
		}
		pairs := make([]pair, 0, len(counts))
		for reason, n := range counts {
			pairs = append(pairs, pair{reason, n})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].n != pairs[j].n {
				return pairs[i].n > pairs[j].n
			}
			return pairs[i].reason < pairs[j].reason
		})
		if len(pairs) > 5 {
			pairs = pairs[:5]
		}
		parts := make([]string, 0, len(pairs))
		for _, p := range pairs {
			parts = append(parts, fmt.Sprintf("%s=%d", p.reason, p.n))
		}
		fmt.Fprintf(b, "Rejections: %s\n", strings.Join(parts, ", "))
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(b, "Skipped (data errors): %s\n", strings.Join(report.Skipped, ", "))
	}
}

func writeConfigSection(b *strings.Builder, cfg *config.Config) {
	fmt.Fprintf(b, "Filters: tol=%.3f dd20=%.2f ext52w=%.2f | Breakout vol x%.1f\n",
		cfg.Filters.Tolerance, cfg.Filters.Drawdown20DMax,
		cfg.Filters.High52wMaxMultiple, cfg.Triggers.BreakoutVolumeMult)
}
