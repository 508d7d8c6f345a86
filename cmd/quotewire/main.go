/*
quotewire runs the news quote pipeline: scrape article links into text feeds,
parse the text into quote/speaker/location rows, or parse user-supplied
content directly.
*/
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/warta-labs/quotewire/internal/ai"
	"github.com/warta-labs/quotewire/internal/config"
	"github.com/warta-labs/quotewire/internal/feed"
	"github.com/warta-labs/quotewire/internal/notify"
	"github.com/warta-labs/quotewire/internal/pipeline"
	"github.com/warta-labs/quotewire/internal/provider"
	"github.com/warta-labs/quotewire/internal/roster"
	"github.com/warta-labs/quotewire/internal/scraper"
	"github.com/warta-labs/quotewire/internal/secrets"
	"github.com/warta-labs/quotewire/internal/store"
	"github.com/warta-labs/quotewire/internal/types"
)

var configPath string

func main() {
	// Missing .env is fine; deployed jobs configure through real env vars.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "quotewire",
		Short:         "Scrape news articles and extract quotes, speakers and locations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "quotewire.yaml", "path to the YAML config file")

	root.AddCommand(scrapeCmd(), parseCmd(), parseSelfCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the newest link feed into an article text feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			inputName, data, err := st.LatestCSV(ctx, cfg.LinkInputPrefix)
			if err != nil {
				return err
			}
			records, err := feed.ReadLinks(bytes.NewReader(data))
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no valid URLs in %s", inputName)
			}

			token := secrets.Get(ctx, cfg.ProjectID, "diffbot-key")
			if token == "" {
				token = os.Getenv("DIFFBOT_TOKEN")
			}
			if token == "" {
				log.Fatal("DIFFBOT_TOKEN not found: set secret diffbot-key or env DIFFBOT_TOKEN")
			}

			s := scraper.New(
				provider.NewDiffbot(token, cfg.ScrapeMaxRetries),
				provider.NewReadability(),
				scraper.Options{
					MaxRetries: cfg.ScrapeMaxRetries,
					RetryDelay: cfg.ScrapeRetryDelay.Std(),
					PageDelay:  cfg.PageDelay.Std(),
					MaxPages:   cfg.MaxPages,
				},
			)

			opts := pipeline.ScrapeOptions{
				Pace:            cfg.URLDelay.Std(),
				CheckpointEvery: cfg.CheckpointEvery,
			}
			if !cfg.LocalMode {
				opts.Checkpoint = func(n int, done []types.Article) {
					var buf bytes.Buffer
					if err := feed.WriteArticles(&buf, done); err != nil {
						log.Printf("checkpoint %d: %v", n, err)
						return
					}
					name := store.CheckpointName(inputName, "input_", "checkpoint_", n, time.Now())
					if err := st.Put(ctx, cfg.CheckpointExtraction, name, buf.Bytes()); err != nil {
						log.Printf("checkpoint %d: %v", n, err)
					}
				}
			}

			articles, stats := pipeline.ScrapeBatch(ctx, s, records, opts)
			if len(articles) == 0 {
				return fmt.Errorf("scrape produced no articles")
			}

			var buf bytes.Buffer
			if err := feed.WriteArticles(&buf, articles); err != nil {
				return err
			}
			outName := store.DeriveOutputName(inputName, "input_", "text_output_", time.Now())
			if err := st.Put(ctx, cfg.TextOutputPrefix, outName, buf.Bytes()); err != nil {
				return err
			}

			stats.Report()

			summary := &notify.Summary{Stage: "scrape", Finished: time.Now()}
			summary.Addf("Input: %s", inputName)
			summary.Addf("Output: %s/%s", cfg.TextOutputPrefix, outName)
			summary.Addf("Total URLs: %d", stats.Total)
			summary.Addf("Success: %d, Failed: %d", stats.Success, stats.Failed)
			summary.Addf("Pages: %d, Words: %d", stats.TotalPages, stats.TotalWords)
			sendSummary(cfg, summary)

			fmt.Printf("\n✨ Done! Output: %s/%s\n", cfg.TextOutputPrefix, outName)
			return nil
		},
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Extract quotes from the newest article text feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			inputName, data, err := st.LatestCSV(ctx, cfg.TextOutputPrefix)
			if err != nil {
				return err
			}
			articles, err := feed.ReadArticles(bytes.NewReader(data))
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				return fmt.Errorf("no articles in %s", inputName)
			}

			ros := loadRoster(ctx, st, cfg)
			ex, err := newExtractor(ctx, cfg)
			if err != nil {
				return err
			}

			opts := pipeline.ParseOptions{
				Workers:         cfg.ParsingThreads,
				Pace:            cfg.RequestDelay.Std(),
				CheckpointEvery: cfg.CheckpointEvery,
			}
			if !cfg.LocalMode {
				opts.Checkpoint = func(n int, done []types.ParseResult) {
					var buf bytes.Buffer
					if err := feed.WriteRows(&buf, pipeline.Flatten(done, ros)); err != nil {
						log.Printf("checkpoint %d: %v", n, err)
						return
					}
					name := store.CheckpointName(inputName, "output_", "checkpoint_final_", n, time.Now())
					if err := st.Put(ctx, cfg.CheckpointParsing, name, buf.Bytes()); err != nil {
						log.Printf("checkpoint %d: %v", n, err)
					}
				}
			}

			results := pipeline.ParseBatch(ctx, ex.Extract, articles, opts)
			rows := pipeline.Flatten(results, ros)

			var buf bytes.Buffer
			if err := feed.WriteRows(&buf, rows); err != nil {
				return err
			}
			outName := store.DeriveOutputName(inputName, "output_", "final_output_", time.Now())
			if err := st.Put(ctx, cfg.FinalOutputPrefix, outName, buf.Bytes()); err != nil {
				return err
			}

			stats := pipeline.Summarize(results)
			stats.Report()

			summary := &notify.Summary{Stage: "parse", Finished: time.Now()}
			summary.Addf("Input: %s", inputName)
			summary.Addf("Output: %s/%s", cfg.FinalOutputPrefix, outName)
			summary.Addf("Articles: %d, Rows: %d", stats.Total, len(rows))
			summary.Addf("With quotes: %d, Total quotes: %d", stats.WithQuotes, stats.TotalQuotes)
			sendSummary(cfg, summary)

			fmt.Printf("\n✨ Done! Output: %s/%s\n", cfg.FinalOutputPrefix, outName)
			return nil
		},
	}
}

func parseSelfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse-self",
		Short: "Extract quotes from user-supplied content, skipping the scrape",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			st, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}

			inputName, data, err := st.LatestCSV(ctx, cfg.SelfContentPrefix)
			if err != nil {
				return err
			}
			articles, err := feed.ReadArticles(bytes.NewReader(data))
			if err != nil {
				return err
			}
			if len(articles) == 0 {
				return fmt.Errorf("no articles in %s", inputName)
			}

			ros := loadRoster(ctx, st, cfg)
			ex, err := newExtractor(ctx, cfg)
			if err != nil {
				return err
			}

			// User-supplied content is parsed serially under the wall-clock
			// bound so one pathological document cannot stall the whole feed.
			results := pipeline.ParseBatch(ctx, ex.ExtractBounded, articles, pipeline.ParseOptions{
				Workers: 1,
				Pace:    cfg.RequestDelay.Std(),
			})
			rows := pipeline.Flatten(results, ros)

			var buf bytes.Buffer
			if err := feed.WriteRows(&buf, rows); err != nil {
				return err
			}
			outName := fmt.Sprintf("self_final_output_%s.csv", time.Now().Format("20060102_150405"))
			if err := st.Put(ctx, cfg.FinalOutputPrefix, outName, buf.Bytes()); err != nil {
				return err
			}

			pipeline.Summarize(results).Report()
			fmt.Printf("\n✨ Done! Output: %s/%s\n", cfg.FinalOutputPrefix, outName)
			return nil
		},
	}
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	if cfg.LocalMode {
		fmt.Printf("🏠 Local mode: using %s\n", cfg.LocalRoot)
		return store.NewDir(cfg.LocalRoot), nil
	}
	fmt.Printf("☁️  Cloud mode: using gs://%s\n", cfg.BucketName)
	return store.NewBucket(ctx, cfg.BucketName)
}

func newExtractor(ctx context.Context, cfg config.Config) (*ai.Extractor, error) {
	apiKey := secrets.Get(ctx, cfg.ProjectID, "gemini-api-key")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY not found: set secret gemini-api-key or env GEMINI_API_KEY")
	}
	return ai.NewExtractor(ctx, apiKey, ai.ExtractorOptions{
		Model:         cfg.Model,
		Temperature:   cfg.Temperature,
		MaxRetries:    cfg.AIMaxRetries,
		MaxContentLen: cfg.MaxContentLen,
		Timeout:       cfg.AITimeout.Std(),
	})
}

// loadRoster fetches the newest whitelist feed. A missing or broken whitelist
// degrades to unmatched speakers rather than failing the run.
func loadRoster(ctx context.Context, st store.Store, cfg config.Config) *roster.Roster {
	_, data, err := st.LatestCSV(ctx, cfg.WhitelistPrefix)
	if err != nil {
		log.Printf("whitelist unavailable, speakers will be unmatched: %v", err)
		return nil
	}
	ros, err := roster.Load(bytes.NewReader(data))
	if err != nil {
		log.Printf("whitelist unreadable, speakers will be unmatched: %v", err)
		return nil
	}
	fmt.Printf("✅ Loaded %d entries from whitelist\n", ros.Len())
	return ros
}

func sendSummary(cfg config.Config, summary *notify.Summary) {
	emailCfg := notify.EmailConfig{
		SMTPServer: cfg.SMTPServer,
		SMTPPort:   cfg.SMTPPort,
		SMTPUser:   cfg.SMTPUser,
		SMTPPass:   cfg.SMTPPass,
		FromEmail:  cfg.FromEmail,
		ToEmail:    cfg.ToEmail,
		Enabled:    cfg.SMTPServer != "" && cfg.ToEmail != "",
	}
	_ = notify.SendSummary(emailCfg, summary)
}
