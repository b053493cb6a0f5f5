package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"resume-screener/internal/aggregate"
	"resume-screener/internal/export"
	"resume-screener/internal/report"
	"resume-screener/internal/runs"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func parseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case formatTable, formatJSON, formatCSV:
		return f, nil
	case "":
		return formatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q: use table, json or csv", raw)
	}
}

type jsonOutput struct {
	RunID    string             `json:"runId"`
	Industry string             `json:"industry"`
	Stats    aggregate.Stats    `json:"stats"`
	Files    []runs.File        `json:"files"`
	Results  []aggregate.Ranked `json:"results"`
}

func writeRun(w io.Writer, format string, run runs.Run, ranked []aggregate.Ranked) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonOutput{
			RunID:    run.ID,
			Industry: run.Industry,
			Stats:    run.Stats,
			Files:    run.Files,
			Results:  ranked,
		})
	case formatCSV:
		reports := make([]report.Report, len(ranked))
		for i, r := range ranked {
			reports[i] = r.Report
		}
		return export.Write(w, reports)
	default:
		return writeTable(w, run, ranked)
	}
}

func writeTable(w io.Writer, run runs.Run, ranked []aggregate.Ranked) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Industry: %s\n\n", run.Industry)
	fmt.Fprintln(tw, "#\tNAME\tSCORE\tRELEVANCE\tEXPERIENCE\tTECH\tSOFT\tCERTS\tEMAIL\tBADGE")
	for i, r := range ranked {
		pos := r.Rank
		if pos == 0 {
			pos = i + 1
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%d%%\t%s\t%d\t%d\t%d\t%s\t%s\n",
			pos,
			r.Name,
			r.Score,
			r.Relevance(),
			report.ExperienceLabel(r.Experience()),
			len(r.FoundSkills.Technical),
			len(r.FoundSkills.Soft),
			len(r.FoundSkills.Certifications),
			r.Email,
			r.Badge,
		)
	}
	s := run.Stats
	fmt.Fprintf(tw, "\nShowing %d of %d. Avg score %.2f, avg relevance %.2f%%, high relevance %d.\n",
		len(ranked), s.Total, s.AvgScore, s.AvgRelevance, s.HighRelevance)
	return tw.Flush()
}
