package outwriter

import (
	"fmt"
	"io"

	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// WriteIngestResult outputs a single article admission outcome.
func WriteIngestResult(result *schema.IngestResult, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "Action: %s (tier %d)\n", result.Action, result.Tier); err != nil {
			return err
		}
		if result.MakeRoom.TargetArticleID != "" {
			newTier := "-"
			if result.MakeRoom.NewImportance != nil {
				newTier = fmt.Sprintf("%d", *result.MakeRoom.NewImportance)
			}
			if _, err := fmt.Fprintf(w, "Displaced: %s -> tier %s\n", result.MakeRoom.TargetArticleID, newTier); err != nil {
				return err
			}
		}
		if result.MakeRoom.Motivation != "" {
			if _, err := fmt.Fprintf(w, "Motivation: %s\n", result.MakeRoom.Motivation); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Mutations applied: %d\n", len(result.MakeRoom.Mutations)); err != nil {
			return err
		}
		return nil
	}, "Wrote result")
}

// WriteTopicAdmissionResult outputs a single topic admission outcome.
func WriteTopicAdmissionResult(result *schema.TopicAdmissionResult, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "Action: %s\n", result.Action); err != nil {
			return err
		}
		if result.RemovedID != "" {
			if _, err := fmt.Fprintf(w, "Removed: %s\n", result.RemovedID); err != nil {
				return err
			}
		}
		if result.Motivation != "" {
			if _, err := fmt.Fprintf(w, "Motivation: %s\n", result.Motivation); err != nil {
				return err
			}
		}
		return nil
	}, "Wrote result")
}
