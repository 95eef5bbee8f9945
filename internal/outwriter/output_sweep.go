package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// WriteSweepResults outputs cleanup sweep reports, dispatching based on the
// output format configured.
func WriteSweepResults(reports []*schema.SweepReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeSweepsJSON(reports, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeSweepsCSV(reports, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSweepTable(reports, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

func writeSweepsJSON(reports []*schema.SweepReport, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, reports)
	}, "Wrote JSON")
}

func writeSweepsCSV(reports []*schema.SweepReport, cfg *contract.Config) error {
	header := []string{"sweep_id", "topic", "passes", "checks", "actions", "converged", "started_at", "ended_at"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, r := range reports {
				rec := []string{
					r.SweepID,
					r.TopicID,
					strconv.Itoa(len(r.Passes)),
					strconv.Itoa(r.TotalChecks()),
					strconv.Itoa(r.TotalActions()),
					strconv.FormatBool(r.Converged),
					r.StartedAt.Format(contract.DateTimeFormat),
					r.EndedAt.Format(contract.DateTimeFormat),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

func writeSweepTable(reports []*schema.SweepReport, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Topic", "Passes", "Checks", "Actions", "Over Before", "Over After", "Converged"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	var converged, total int
	for _, r := range reports {
		if r == nil {
			continue
		}
		total++
		if r.Converged {
			converged++
		}
		data = append(data, []string{
			r.TopicID,
			strconv.Itoa(len(r.Passes)),
			strconv.Itoa(r.TotalChecks()),
			strconv.Itoa(r.TotalActions()),
			overCountLabel(r.Before),
			overCountLabel(r.After),
			strconv.FormatBool(r.Converged),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Swept %d topics, %d converged\n", total, converged); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Cleanup completed in %v with %d workers. Graph backend: %s\n",
		duration, cfg.Workers, cfg.GraphBackend); err != nil {
		return err
	}
	return nil
}

func overCountLabel(dist *schema.Distribution) string {
	if dist == nil {
		return "-"
	}
	return strconv.Itoa(dist.OverCount())
}
