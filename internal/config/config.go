/*
Package config loads the pipeline configuration: YAML file defaults first,
then environment variable overrides, so containerized runs tune individual
knobs without shipping a new file.
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration the YAML file can express either as a Go
// duration string ("8s") or a bare number of seconds, the unit the deployment
// env vars have always used.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if parsed, err := time.ParseDuration(value.Value); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if f, err := strconv.ParseFloat(value.Value, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration %q", value.Value)
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the explicit runtime configuration handed to each stage. Nothing
// reads configuration from anywhere else after Load returns.
type Config struct {
	// Cloud plumbing.
	ProjectID  string `yaml:"project_id"`
	BucketName string `yaml:"bucket_name"`
	LocalMode  bool   `yaml:"local_mode"`
	LocalRoot  string `yaml:"local_root"`

	// Feed prefixes (GCS folders, or subdirectories of LocalRoot).
	LinkInputPrefix      string `yaml:"link_input_prefix"`
	TextOutputPrefix     string `yaml:"text_output_prefix"`
	FinalOutputPrefix    string `yaml:"final_output_prefix"`
	WhitelistPrefix      string `yaml:"whitelist_prefix"`
	SelfContentPrefix    string `yaml:"self_content_prefix"`
	CheckpointExtraction string `yaml:"checkpoint_extraction_prefix"`
	CheckpointParsing    string `yaml:"checkpoint_parsing_prefix"`

	// Scrape stage.
	ScrapeMaxRetries int      `yaml:"scrape_max_retries"`
	ScrapeRetryDelay Duration `yaml:"scrape_retry_delay"`
	PageDelay        Duration `yaml:"page_delay"`
	URLDelay         Duration `yaml:"url_delay"`
	MaxPages         int      `yaml:"max_pages"`

	// Parse stage.
	Model          string   `yaml:"model"`
	Temperature    float32  `yaml:"temperature"`
	MaxContentLen  int      `yaml:"max_content_length"`
	RequestDelay   Duration `yaml:"request_delay"`
	AITimeout      Duration `yaml:"ai_timeout"`
	AIMaxRetries   int      `yaml:"ai_max_retries"`
	ParsingThreads int      `yaml:"parsing_threads"`

	CheckpointEvery int `yaml:"checkpoint_every"`

	// Run summary email, off unless the SMTP server is set.
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user"`
	SMTPPass   string `yaml:"smtp_pass"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Default returns the configuration the pipeline ships with.
func Default() Config {
	return Config{
		ProjectID:  "robotic-pact-466314-b3",
		BucketName: "asia-southeast1-v2-news-extraction-plus-parser-data",
		LocalRoot:  ".",

		LinkInputPrefix:      "link_input",
		TextOutputPrefix:     "text_output",
		FinalOutputPrefix:    "final_output",
		WhitelistPrefix:      "whitelist_input",
		SelfContentPrefix:    "self_content_input",
		CheckpointExtraction: "checkpoint_extraction",
		CheckpointParsing:    "checkpoint_parsing",

		ScrapeMaxRetries: 3,
		ScrapeRetryDelay: Duration(5 * time.Second),
		PageDelay:        Duration(8 * time.Second),
		URLDelay:         Duration(13 * time.Second),
		MaxPages:         5,

		Model:          "gemini-2.0-flash-exp",
		Temperature:    0.1,
		MaxContentLen:  6000,
		RequestDelay:   Duration(time.Second),
		AITimeout:      Duration(60 * time.Second),
		AIMaxRetries:   3,
		ParsingThreads: 1,

		CheckpointEvery: 100,

		SMTPPort: 587,
	}
}

// Load builds the configuration: defaults, then the YAML file at path if it
// exists, then environment variables. A missing file is fine; a broken one is
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers the environment variable overrides the deployed jobs use.
func (c *Config) applyEnv() {
	envString(&c.ProjectID, "GCP_PROJECT_ID")
	envString(&c.BucketName, "GCS_BUCKET_NAME")
	envBool(&c.LocalMode, "LOCAL_MODE")
	envString(&c.LinkInputPrefix, "GCS_INPUT_PATH")
	envString(&c.FinalOutputPrefix, "GCS_OUTPUT_PATH")

	envSeconds(&c.URLDelay, "DELAY_BETWEEN_URLS")
	envSeconds(&c.PageDelay, "DELAY_BETWEEN_PAGES")

	envString(&c.Model, "GEMINI_MODEL")
	envFloat32(&c.Temperature, "AI_TEMPERATURE")
	envInt(&c.MaxContentLen, "AI_MAX_CONTENT")
	envSeconds(&c.RequestDelay, "AI_DELAY")
	envSeconds(&c.AITimeout, "AI_TIMEOUT")
	envInt(&c.AIMaxRetries, "AI_MAX_RETRIES")
	envInt(&c.ParsingThreads, "PARSING_THREADS")

	envString(&c.SMTPServer, "SMTP_SERVER")
	envInt(&c.SMTPPort, "SMTP_PORT")
	envString(&c.SMTPUser, "SMTP_USER")
	envString(&c.SMTPPass, "SMTP_PASS")
	envString(&c.FromEmail, "FROM_EMAIL")
	envString(&c.ToEmail, "TO_EMAIL")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.EqualFold(v, "true")
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat32(dst *float32, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			*dst = float32(f)
		}
	}
}

// envSeconds reads a bare number of seconds, the unit the deployment env
// vars have always used.
func envSeconds(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = Duration(time.Duration(f * float64(time.Second)))
		}
	}
}
