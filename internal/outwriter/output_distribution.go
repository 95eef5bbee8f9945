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

// WriteDistributionResults outputs a capacity distribution, dispatching based
// on the output format configured.
func WriteDistributionResults(dist *schema.Distribution, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeDistributionJSON(dist, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeDistributionCSV(dist, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDistributionTable(dist, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

func writeDistributionJSON(dist *schema.Distribution, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		type JSONDistribution struct {
			*schema.Distribution
			OverCount int `json:"over_count"`
		}
		return writeJSON(w, JSONDistribution{Distribution: dist, OverCount: dist.OverCount()})
	}, "Wrote JSON")
}

func writeDistributionCSV(dist *schema.Distribution, cfg *contract.Config) error {
	header := []string{"topic", "timeframe", "perspective", "tier", "count", "max", "status"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			writeCell := func(c schema.DistributionCell) error {
				return csvWriter.Write([]string{
					dist.TopicID,
					string(c.Timeframe),
					string(c.Perspective),
					strconv.Itoa(c.Tier),
					strconv.Itoa(c.Count),
					strconv.Itoa(c.Max),
					contract.GetPlainCapacityLabel(c.Count, c.Max),
				})
			}
			for _, c := range dist.Overall {
				if err := writeCell(c); err != nil {
					return err
				}
			}
			for _, c := range dist.Perspective {
				if err := writeCell(c); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// writeDistributionTable generates and writes the human-readable table.
func writeDistributionTable(dist *schema.Distribution, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Timeframe", "Perspective", "Tier", "Count", "Max", "Status"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	appendCell := func(c schema.DistributionCell) {
		perspective := string(c.Perspective)
		if perspective == "" {
			perspective = "-"
		}
		data = append(data, []string{
			string(c.Timeframe),
			perspective,
			strconv.Itoa(c.Tier),
			strconv.Itoa(c.Count),
			strconv.Itoa(c.Max),
			capacityLabel(cfg, c.Count, c.Max),
		})
	}
	for _, c := range dist.Overall {
		appendCell(c)
	}
	for _, c := range dist.Perspective {
		appendCell(c)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Topic %s: %d buckets checked, %d over capacity\n",
		dist.TopicID, len(dist.Overall)+len(dist.Perspective), dist.OverCount()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Report completed in %v. Graph backend: %s\n",
		duration, cfg.GraphBackend); err != nil {
		return err
	}
	return nil
}
