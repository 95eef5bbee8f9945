package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// WriteEventResults outputs audit events, dispatching based on the output
// format configured. Events arrive newest first.
func WriteEventResults(events []schema.AuditEventRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeEventsJSON(events, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeEventsCSV(events, cfg); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEventTable(events, cfg, w)
		}, "Wrote table")
	}
	return nil
}

func writeEventsJSON(events []schema.AuditEventRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		type JSONEvent struct {
			EventID   int64   `json:"event_id"`
			EventTime string  `json:"event_time"`
			Event     string  `json:"event"`
			TopicID   *string `json:"topic_id,omitempty"`
			ArticleID *string `json:"article_id,omitempty"`
			Detail    *string `json:"detail,omitempty"`
		}
		output := make([]JSONEvent, len(events))
		for i, e := range events {
			output[i] = JSONEvent{
				EventID:   e.EventID,
				EventTime: e.EventTime.Format(contract.DateTimeFormat),
				Event:     e.Event,
				TopicID:   e.TopicID,
				ArticleID: e.ArticleID,
				Detail:    e.Detail,
			}
		}
		return writeJSON(w, output)
	}, "Wrote JSON")
}

func writeEventsCSV(events []schema.AuditEventRecord, cfg *contract.Config) error {
	header := []string{"event_id", "event_time", "event", "topic_id", "article_id", "detail"}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			for _, e := range events {
				rec := []string{
					fmt.Sprintf("%d", e.EventID),
					e.EventTime.Format(contract.DateTimeFormat),
					e.Event,
					derefOrEmpty(e.TopicID),
					derefOrEmpty(e.ArticleID),
					derefOrEmpty(e.Detail),
				}
				if err := csvWriter.Write(rec); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

func writeEventTable(events []schema.AuditEventRecord, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Time", "Event", "Topic", "Article", "Detail"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, e := range events {
		data = append(data, []string{
			e.EventTime.Format("2006-01-02 15:04:05"),
			e.Event,
			derefOrEmpty(e.TopicID),
			derefOrEmpty(e.ArticleID),
			contract.TruncateText(derefOrEmpty(e.Detail), 50),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d events, newest first\n", len(events)); err != nil {
		return err
	}
	return nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
