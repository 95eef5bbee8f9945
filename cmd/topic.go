package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marketloom/graphgate/core"
	"github.com/marketloom/graphgate/internal/contract"
	"github.com/marketloom/graphgate/schema"
)

// topicCmd groups topic lifecycle operations.
var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage topic nodes and their admission into the graph",
	Long: `Manage the persistent topic anchors of the knowledge graph.

Topics are the analytical anchors articles attach to: assets, policies,
macro drivers, geographies, companies and sectors. The graph holds a bounded
number of them; once the ceiling is reached, a new topic only enters by
replacing the weakest existing one, and the decision oracle arbitrates.

Subcommands:
  admit - Propose one topic for admission
  list  - Show current topics, weakest first
  seed  - Admit topics in bulk from a YAML interest file

Examples:
  # Propose a topic
  graphgate topic admit us-inflation --name "US Inflation" --category macro_driver --importance 9

  # See who would be evicted next
  graphgate topic list

  # Bootstrap a fresh graph
  graphgate topic seed --file interests.yaml`,
}

// topicAdmitCmd proposes a single topic for admission.
var topicAdmitCmd = &cobra.Command{
	Use:   "admit [topic-id|file.json]",
	Short: "Propose one topic for admission against the topic ceiling",
	Long: `Run the topic admission pipeline for a single candidate.

The candidate is either a topic id described by the admit flags, or a JSON
document with the id, name, category and importance fields.

Below the ceiling the topic is added outright. At the ceiling the decision
oracle weighs the candidate against the current population and answers
add, replace (naming the topic to evict) or reject.

Examples:
  # Straightforward admission
  graphgate topic admit us-inflation --name "US Inflation" --category macro_driver --importance 9

  # Admission from a candidate document
  graphgate topic admit candidate.json

  # See what the oracle would decide without changing the graph
  graphgate topic admit us-inflation --importance 9 --test`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		cand, err := buildTopicCandidate(args[0])
		if err != nil {
			contract.LogFatal("Invalid topic candidate", err)
		}

		result, err := engine.DecideTopicAdmission(rootCtx, cand, cfg.Test)
		if err != nil {
			contract.LogFatal("Topic admission failed", err)
		}
		if err := ow.WriteTopicAdmission(&result, cfg); err != nil {
			contract.LogFatal("Cannot write admission result", err)
		}
	},
}

// buildTopicCandidate resolves the admission candidate from a JSON document
// or, for a plain topic id, from the admit flags.
func buildTopicCandidate(arg string) (schema.Topic, error) {
	if strings.EqualFold(filepath.Ext(arg), ".json") {
		return core.LoadTopicCandidate(arg)
	}

	name := viper.GetString("name")
	if name == "" {
		name = cfg.TopicID
	}
	return schema.Topic{
		ID:          cfg.TopicID,
		Name:        name,
		Category:    viper.GetString("category"),
		Importance:  viper.GetInt("importance"),
		LastUpdated: time.Now().UTC(),
	}, nil
}

// topicListCmd lists all topics, weakest first.
var topicListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current topics ordered weakest first",
	Long: `List the topics currently in the graph.

Ordering is importance ascending with ties broken by oldest last_updated,
so the first row is the next eviction candidate when a replacement happens.

Examples:
  # Show the eviction order
  graphgate topic list

  # Export for downstream tooling
  graphgate topic list --output json --output-file topics.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		topics, err := store.ListTopics(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot list topics", err)
		}
		if len(topics) > cfg.ResultLimit {
			topics = topics[:cfg.ResultLimit]
		}
		if err := ow.WriteTopics(topics, cfg); err != nil {
			contract.LogFatal("Cannot write topic results", err)
		}
	},
}

// topicSeedCmd admits topics in bulk from a YAML file.
var topicSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Admit topics in bulk from a YAML interest file",
	Long: `Run topic admission for every entry of a YAML interest file, in order.

The file lists interest areas with a name, category and priority; priority
maps to topic importance. Entries past the ceiling go through the same
replace-or-reject arbitration as single admissions. One rejected entry does
not stop the rest.

File format:
  topics:
    - name: US Inflation
      category: macro_driver
      priority: 9
    - id: ecb-policy
      name: ECB Policy
      category: policy
      priority: 8

Examples:
  # Bootstrap a fresh graph
  graphgate topic seed --file interests.yaml

  # Preview the decisions only
  graphgate topic seed --file interests.yaml --test`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		path := viper.GetString("file")
		if path == "" {
			contract.LogFatal("Missing required flag", fmt.Errorf("--file is required"))
		}

		topics, err := core.LoadInterestAreas(path)
		if err != nil {
			contract.LogFatal("Cannot load interest areas", err)
		}

		results := engine.SeedTopics(rootCtx, topics, cfg.Test)
		for i := range results {
			if err := ow.WriteTopicAdmission(&results[i], cfg); err != nil {
				contract.LogFatal("Cannot write admission result", err)
			}
		}
	},
}
