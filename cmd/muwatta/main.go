// Command muwatta is the CLI for the multi-madhab fiqh knowledge base:
// seeding and ingesting texts, searching across school collections, asking
// end-to-end questions, and inspecting collection state.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	muwatta "github.com/h9-tec/al-muwatta-ai"
	"github.com/h9-tec/al-muwatta-ai/common/logger"
	"github.com/h9-tec/al-muwatta-ai/config"
	"github.com/h9-tec/al-muwatta-ai/fiqh"
	"github.com/h9-tec/al-muwatta-ai/schema"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "muwatta",
		Short:         "Multi-madhab fiqh retrieval and question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML configuration")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(seedCmd(), ingestCmd(), searchCmd(), askCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newClient() (*muwatta.Client, error) {
	_ = godotenv.Load()
	logger.SetLevel(logger.ParseLevel(logLevel))

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	return muwatta.NewClient(cfg)
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the curated bootstrap corpus into the collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			count := client.Seed(cmd.Context())
			fmt.Printf("Seeded %d documents\n", count)
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	var (
		school   string
		file     string
		topic    string
		category string
		source   string
	)
	cmd := &cobra.Command{
		Use:   "ingest [text]",
		Short: "Chunk and store a text in a school's collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			switch {
			case file != "":
				raw, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				text = string(raw)
			case len(args) == 1:
				text = args[0]
			default:
				return fmt.Errorf("provide text as an argument or use --file")
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			meta := map[string]interface{}{}
			if topic != "" {
				meta[schema.MetaTopic] = topic
			}
			if category != "" {
				meta[schema.MetaCategory] = category
			}
			if source != "" {
				meta[schema.MetaSource] = source
			}

			count, err := client.IngestText(cmd.Context(), school, text, meta)
			if err != nil {
				return err
			}
			fmt.Printf("Ingested %d chunks into %s collection\n", count, school)
			return nil
		},
	}
	cmd.Flags().StringVarP(&school, "madhab", "m", "", "target school (maliki, hanafi, shafii, hanbali)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from file")
	cmd.Flags().StringVar(&topic, "topic", "", "document topic")
	cmd.Flags().StringVar(&category, "category", "", "document category")
	cmd.Flags().StringVar(&source, "source", "", "document source")
	_ = cmd.MarkFlagRequired("madhab")
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		schools   []string
		topK      int
		threshold float64
		category  string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search across school collections and print the merged results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			results, err := client.Search(cmd.Context(), args[0], &fiqh.SearchParams{
				Schools:   schools,
				TopK:      topK,
				Threshold: threshold,
				Category:  category,
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No results")
				return nil
			}
			for i, r := range results {
				fmt.Printf("%d. [%s] score=%.3f id=%s\n", i+1, r.Madhab, r.Score, r.Document.ID)
				content := r.Document.Content
				if len(content) > 200 {
					content = content[:200] + "..."
				}
				fmt.Printf("   %s\n", strings.ReplaceAll(content, "\n", " "))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&schools, "madhabs", "m", nil, "schools to search (default all)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "maximum merged results")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "minimum similarity score")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	return cmd
}

func askCmd() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question end to end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			answer, err := client.Ask(cmd.Context(), args[0], language)
			if err != nil {
				return err
			}
			fmt.Println(answer.Text)
			fmt.Printf("\n(category=%s multi_madhab=%v: %s)\n", answer.Category, answer.MultiMadhab, answer.Reason)
			for i, src := range answer.Sources {
				fmt.Printf("[%d] %s score=%.3f\n", i+1, src.Madhab, src.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "english", "response language (english, arabic)")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print per-collection statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := json.MarshalIndent(client.Statistics(cmd.Context()), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
