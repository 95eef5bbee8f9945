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
	"github.com/marketloom/graphgate/internal/extract"
	"github.com/marketloom/graphgate/schema"
)

// ingestCmd runs the article admission pipeline for one topic.
var ingestCmd = &cobra.Command{
	Use:   "ingest [topic-id] [file...]",
	Short: "Admit articles into a topic against its capacity buckets",
	Long: `Run the full add-article pipeline for one or more classified articles.

The classification (timeframe plus the four perspective scores) places each
article into a capacity bucket. When the bucket has room the article is
added outright; when it is full the decision oracle picks between rejecting
the candidate and downgrading an existing occupant, and downgrades cascade
tier by tier until something is archived or rejected.

Articles can be given three ways: as .json documents carrying the article
and its classification, as local .html pages (title and body text are
extracted, the classification comes from the flags), or inline with
--summary or --url plus the classification flags.

Examples:
  # Admit classified article documents
  graphgate ingest us-inflation cpi-2026-08.json ppi-2026-08.json

  # Ingest a saved page, classifying it on the command line
  graphgate ingest us-inflation cpi-report.html --timeframe current --risk 3

  # Inline, no file involved
  graphgate ingest us-inflation --article-id cpi-2026-08 \
    --summary "CPI surprises to the upside" --source reuters \
    --timeframe current --risk 3 --trend 2

  # Straight from a URL
  graphgate ingest us-inflation --article-id cpi-2026-08 \
    --url https://example.com/cpi-report --timeframe current --risk 3

  # Preview the oracle's call without mutating the graph
  graphgate ingest us-inflation cpi-2026-08.json --test`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		inputs, err := collectIngestInputs(args[1:])
		if err != nil {
			contract.LogFatal("Invalid ingest input", err)
		}

		for _, in := range inputs {
			result, err := engine.AddArticle(rootCtx, cfg.TopicID, in.art, in.cls, cfg.Test)
			if err != nil {
				contract.LogFatal("Article ingest failed", err)
			}
			if err := ow.WriteIngest(&result, cfg); err != nil {
				contract.LogFatal("Cannot write ingest result", err)
			}
		}
	},
}

// ingestInput pairs one article with its classification.
type ingestInput struct {
	art schema.Article
	cls schema.Classification
}

// collectIngestInputs resolves the article batch: file paths when given,
// otherwise a single article assembled from flags.
func collectIngestInputs(paths []string) ([]ingestInput, error) {
	if len(paths) == 0 {
		art, cls, err := buildIngestInput()
		if err != nil {
			return nil, err
		}
		return []ingestInput{{art: art, cls: cls}}, nil
	}

	inputs := make([]ingestInput, 0, len(paths))
	for _, path := range paths {
		in, err := loadIngestFile(path)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// loadIngestFile reads one article input file. JSON documents carry their
// own classification; HTML pages take theirs from the classification flags.
func loadIngestFile(path string) (ingestInput, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		art, cls, err := core.LoadArticleDocument(path)
		return ingestInput{art: art, cls: cls}, err
	case ".html", ".htm":
		art, err := core.LoadArticleHTML(path)
		if err != nil {
			return ingestInput{}, err
		}
		if id := viper.GetString("article-id"); id != "" {
			art.ID = id
		}
		if source := viper.GetString("source"); source != "" {
			art.Source = source
		}
		art.PublishedAt, err = publishedFromFlags()
		if err != nil {
			return ingestInput{}, err
		}
		cls, err := classificationFromFlags()
		if err != nil {
			return ingestInput{}, err
		}
		return ingestInput{art: art, cls: cls}, nil
	default:
		return ingestInput{}, fmt.Errorf("unsupported ingest file %s (expected .json or .html)", path)
	}
}

// buildIngestInput assembles the article and classification from flags,
// fetching page content when --url is given.
func buildIngestInput() (schema.Article, schema.Classification, error) {
	art := schema.Article{
		ID:      viper.GetString("article-id"),
		Summary: viper.GetString("summary"),
		Source:  viper.GetString("source"),
	}
	if art.ID == "" {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("--article-id is required")
	}

	if pageURL := viper.GetString("url"); pageURL != "" {
		extracted, err := extract.NewExtractor(nil).Extract(rootCtx, pageURL)
		if err != nil {
			return schema.Article{}, schema.Classification{}, fmt.Errorf("extracting %s: %w", pageURL, err)
		}
		if art.Summary == "" {
			art.Summary = extracted.Text
		}
		if art.Source == "" {
			art.Source = extracted.Source
		}
	}
	if art.Summary == "" {
		return schema.Article{}, schema.Classification{}, fmt.Errorf("--summary or --url is required")
	}

	var err error
	art.PublishedAt, err = publishedFromFlags()
	if err != nil {
		return schema.Article{}, schema.Classification{}, err
	}

	cls, err := classificationFromFlags()
	if err != nil {
		return schema.Article{}, schema.Classification{}, err
	}
	return art, cls, nil
}

// publishedFromFlags parses --published, defaulting to now.
func publishedFromFlags() (time.Time, error) {
	published := viper.GetString("published")
	if published == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(contract.DateTimeFormat, published)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --published value: %w", err)
	}
	return t, nil
}

// classificationFromFlags builds the classification from the timeframe,
// perspective score and dominant flags.
func classificationFromFlags() (schema.Classification, error) {
	tf, err := schema.ParseTimeframe(viper.GetString("timeframe"))
	if err != nil {
		return schema.Classification{}, err
	}

	risk := viper.GetInt("risk")
	opportunity := viper.GetInt("opportunity")
	trend := viper.GetInt("trend")
	catalyst := viper.GetInt("catalyst")

	dominant := dominantPerspective(risk, opportunity, trend, catalyst)
	if d := viper.GetString("dominant"); d != "" {
		dominant, err = schema.ParsePerspective(d)
		if err != nil {
			return schema.Classification{}, err
		}
	}

	return schema.NewClassification(tf, dominant, risk, opportunity, trend, catalyst)
}

// dominantPerspective picks the highest-scoring perspective, ties broken by
// the canonical risk, opportunity, trend, catalyst order.
func dominantPerspective(risk, opportunity, trend, catalyst int) schema.Perspective {
	dominant := schema.RiskPerspective
	best := risk
	for _, c := range []struct {
		p     schema.Perspective
		score int
	}{
		{schema.OpportunityPerspective, opportunity},
		{schema.TrendPerspective, trend},
		{schema.CatalystPerspective, catalyst},
	} {
		if c.score > best {
			dominant = c.p
			best = c.score
		}
	}
	return dominant
}
