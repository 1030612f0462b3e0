package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/estateforge/estateplan/pkg/pipeline"
	"github.com/estateforge/estateplan/pkg/validation"
	"github.com/estateforge/estateplan/pkg/zoning"
)

func printValidationReport(r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Printf("  [%s] %s\n", e.Level, e.Message)
			if e.Path != "" {
				fmt.Printf("    -> %s = %v\n", e.Path, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Printf("    expected: %s\n", e.Expected)
			}
		}
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Printf("  [%s] %s\n", w.Level, w.Message)
			if w.Path != "" {
				fmt.Printf("    -> %s = %v\n", w.Path, w.ActualValue)
			}
			if w.Expected != "" {
				fmt.Printf("    expected: %s\n", w.Expected)
			}
		}
		fmt.Println()
	}

	if len(r.Info) > 0 {
		fmt.Printf("INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Printf("  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Println()
	}

	if r.Valid {
		fmt.Printf("Result: VALID (%s)\n", r.Summary)
	} else {
		fmt.Printf("Result: INVALID (%s)\n", r.Summary)
	}
}

func printSummary(res *pipeline.Result) {
	s := res.Summary
	w := os.Stderr

	fmt.Fprintf(w, "Plan %s\n", res.RunID)
	fmt.Fprintln(w, "==========================================")
	fmt.Fprintf(w, "  Site area:       %.1f rai (%.1f ha)\n", s.SiteAreaRai, s.SiteAreaHa)
	fmt.Fprintf(w, "  Blocks / lots:   %d / %d\n", s.BlockCount, s.LotCount)
	fmt.Fprintf(w, "  Road length:     %.0f m\n", s.RoadLengthM)
	fmt.Fprintf(w, "  Utility runs:    %.0f m\n", s.UtilityLengthM)
	fmt.Fprintf(w, "  Avg lot width:   %.1f m\n", s.AvgLotWidthM)
	fmt.Fprintf(w, "  Sellable ratio:  %.0f%%\n", s.SellableRatio*100)
	if s.FlaggedLots > 0 {
		fmt.Fprintf(w, "  Flagged lots:    %d\n", s.FlaggedLots)
	}
	if s.Degraded {
		fmt.Fprintln(w, "  NOTE: one or more stages used a degraded fallback")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Zoning")
	fmt.Fprintln(w, "------")
	zones := make([]zoning.Zone, 0, len(s.ZoneCounts))
	for z := range s.ZoneCounts {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	for _, z := range zones {
		fmt.Fprintf(w, "  %-12s %3d blocks  %5.1f%%\n", z, s.ZoneCounts[z], s.ZoneShares[z]*100)
	}

	if len(res.Blocks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Largest blocks")
		fmt.Fprintln(w, "--------------")
		idx := zoning.SortByArea(res.Blocks)
		if len(idx) > 5 {
			idx = idx[:5]
		}
		for _, i := range idx {
			b := res.Blocks[i]
			fmt.Fprintf(w, "  %-10s %-12s %8.0f m²\n", b.ID, b.Zone, b.Area)
		}
	}

	if res.Cost != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Cost Estimate")
		fmt.Fprintln(w, "-------------")
		e := res.Cost.Estimate
		fmt.Fprintf(w, "  Earthworks:      ฿%s\n", formatMoney(e.Earthworks))
		fmt.Fprintf(w, "  Roadworks:       ฿%s\n", formatMoney(e.Roadworks))
		fmt.Fprintf(w, "  Utilities:       ฿%s\n", formatMoney(e.Utilities))
		fmt.Fprintf(w, "  Landscape:       ฿%s\n", formatMoney(e.Landscape))
		fmt.Fprintf(w, "  Other:           ฿%s\n", formatMoney(e.Other))
		fmt.Fprintf(w, "  TOTAL:           ฿%s\n", formatMoney(e.Total))
		fmt.Fprintf(w, "  Per sellable rai: ฿%s\n", formatMoney(res.Cost.Summary.PerSellableRai))
	}
	fmt.Fprintln(w)
}

func formatMoney(v float64) string {
	if v >= 1_000_000_000 {
		return fmt.Sprintf("%.2fB", v/1_000_000_000)
	}
	if v >= 1_000_000 {
		return fmt.Sprintf("%.2fM", v/1_000_000)
	}
	if v >= 1_000 {
		return fmt.Sprintf("%.0fK", v/1_000)
	}
	return fmt.Sprintf("%.0f", v)
}
