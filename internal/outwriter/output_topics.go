package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// WriteTopicResults outputs a topic listing, dispatching based on the output
// format configured. Topics arrive weakest first.
func WriteTopicResults(topics []schema.Topic, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeTopicsJSON(topics, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeTopicsCSV(topics, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTopicTable(topics, cfg, w)
		}, "Wrote table")
	}
	return nil
}

func writeTopicsJSON(topics []schema.Topic, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		type JSONTopic struct {
			Rank int `json:"rank"`
			schema.Topic
		}
		output := make([]JSONTopic, len(topics))
		for i, t := range topics {
			output[i] = JSONTopic{Rank: i + 1, Topic: t}
		}
		return writeJSON(w, output)
	}, "Wrote JSON")
}

func writeTopicsCSV(topics []schema.Topic, cfg *contract.Config) error {
	header := []string{"rank", "id", "name", "category", "importance", "last_updated"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for i, t := range topics {
				rec := []string{
					strconv.Itoa(i + 1),
					t.ID,
					t.Name,
					t.Category,
					strconv.Itoa(t.Importance),
					t.LastUpdated.Format("2006-01-02 15:04:05"),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

func writeTopicTable(topics []schema.Topic, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "ID", "Name", "Category", "Importance", "Last Updated"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for i, t := range topics {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			t.ID,
			contract.TruncateText(t.Name, nameWidth),
			t.Category,
			strconv.Itoa(t.Importance),
			t.LastUpdated.Format("2006-01-02"),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d topics, weakest first (ceiling: %d)\n",
		len(topics), cfg.MaxTopics); err != nil {
		return err
	}
	return nil
}
