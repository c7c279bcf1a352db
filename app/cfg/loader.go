package cfg

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server configuration
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Completion service configuration
	DeepSeekAPIKey string  `long:"deepseek-api-key" env:"DEEPSEEK_API_KEY" description:"DeepSeek API key (required)" required:"true"`
	DeepSeekURL    string  `long:"deepseek-url" env:"DEEPSEEK_URL" default:"https://api.deepseek.com/v1/chat/completions" description:"DeepSeek chat completions endpoint"`
	Model          string  `long:"model" env:"MODEL" default:"deepseek-chat" description:"Completion model name"`
	Temperature    float64 `long:"temperature" env:"TEMPERATURE" default:"0.7" description:"Completion sampling temperature"`
	MaxTokens      int     `long:"max-tokens" env:"MAX_TOKENS" default:"2000" description:"Completion max tokens"`
	RequestTimeout int     `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"60" description:"Completion request timeout in seconds"`
	MaxRetries     int     `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"Completion retry attempts for rate limits and network errors"`
	RetryDelay     int     `long:"retry-delay" env:"RETRY_DELAY" default:"2" description:"Base retry delay in seconds, multiplied by attempt number"`

	// Problem catalog configuration
	LeetCodeURL string `long:"leetcode-url" env:"LEETCODE_URL" default:"https://leetcode.com/graphql" description:"Problem catalog GraphQL endpoint"`

	// Publishing configuration
	BlogPlatform string `long:"blog-platform" env:"BLOG_PLATFORM" default:"wordpress" description:"Publishing backend (wordpress or ghost)"`
	WPURL        string `long:"wp-url" env:"WP_URL" description:"WordPress site URL (required for wordpress)"`
	WPUsername   string `long:"wp-username" env:"WP_USERNAME" description:"WordPress username (required for wordpress)"`
	WPAppPass    string `long:"wp-app-pass" env:"WP_APP_PASS" description:"WordPress application password (required for wordpress)"`
	GhostURL     string `long:"ghost-url" env:"GHOST_URL" description:"Ghost site URL (required for ghost)"`
	GhostAPIKey  string `long:"ghost-api-key" env:"GHOST_API_KEY" description:"Ghost admin API key in id:secret format (required for ghost)"`

	// Scheduling configuration
	ScheduleTimes     string `long:"schedule-times" env:"SCHEDULE_TIMES" default:"00:00,12:00" description:"Comma-separated UTC HH:MM times for scheduled generation"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for generation tasks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler wake interval in seconds"`
	MisfireGrace      int    `long:"misfire-grace" env:"MISFIRE_GRACE" default:"3600" description:"How many seconds late a missed trigger may still fire"`

	// Prompt strategy configuration
	StrategiesDir string `long:"strategies-dir" env:"STRATEGIES_DIR" default:"./strategies" description:"Directory containing prompt strategy files"`
	Strategy      string `long:"strategy" env:"STRATEGY" default:"go" description:"Prompt strategy name to use"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Blog Forge/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	scheduleTimes, err := ParseScheduleTimes(raw.ScheduleTimes)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMES: %w", err)
	}

	cfg := &Cfg{
		Port:              raw.Port,
		DeepSeekAPIKey:    raw.DeepSeekAPIKey,
		DeepSeekURL:       raw.DeepSeekURL,
		Model:             raw.Model,
		Temperature:       raw.Temperature,
		MaxTokens:         raw.MaxTokens,
		RequestTimeout:    raw.RequestTimeout,
		MaxRetries:        raw.MaxRetries,
		RetryDelay:        raw.RetryDelay,
		LeetCodeURL:       raw.LeetCodeURL,
		BlogPlatform:      strings.ToLower(raw.BlogPlatform),
		WPURL:             raw.WPURL,
		WPUsername:        raw.WPUsername,
		WPAppPass:         raw.WPAppPass,
		GhostURL:          raw.GhostURL,
		GhostAPIKey:       raw.GhostAPIKey,
		ScheduleTimes:     scheduleTimes,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		MisfireGrace:      raw.MisfireGrace,
		StrategiesDir:     raw.StrategiesDir,
		Strategy:          raw.Strategy,
		UserAgent:         raw.UserAgent,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules that go-flags tags cannot express.
// It runs once at load and again at the start of every pipeline run, so a
// missing credential never reaches the network layer.
func (c *Cfg) Validate() error {
	if c.DeepSeekAPIKey == "" {
		return fmt.Errorf("DEEPSEEK_API_KEY is required")
	}

	switch c.BlogPlatform {
	case "wordpress":
		var missing []string
		if c.WPURL == "" {
			missing = append(missing, "WP_URL")
		}
		if c.WPUsername == "" {
			missing = append(missing, "WP_USERNAME")
		}
		if c.WPAppPass == "" {
			missing = append(missing, "WP_APP_PASS")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing required environment variables for wordpress: %s", strings.Join(missing, ", "))
		}
	case "ghost":
		if c.GhostURL == "" {
			return fmt.Errorf("missing required environment variable for ghost: GHOST_URL")
		}
		if c.GhostAPIKey == "" {
			return fmt.Errorf("missing required environment variable for ghost: GHOST_API_KEY")
		}
		if !strings.Contains(c.GhostAPIKey, ":") {
			return fmt.Errorf("GHOST_API_KEY must be in id:secret format")
		}
	default:
		return fmt.Errorf("unsupported blog platform: %s", c.BlogPlatform)
	}

	if len(c.ScheduleTimes) == 0 {
		return fmt.Errorf("at least one schedule time is required")
	}

	return nil
}

// ParseScheduleTimes parses a comma-separated list of UTC HH:MM times.
// Any malformed entry fails the whole parse.
func ParseScheduleTimes(s string) ([]ScheduleEntry, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("schedule is empty")
	}

	var entries []ScheduleEntry
	for _, part := range strings.Split(s, ",") {
		entry, err := parseScheduleEntry(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseScheduleEntry(s string) (ScheduleEntry, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return ScheduleEntry{}, fmt.Errorf("malformed schedule time %q, expected HH:MM", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return ScheduleEntry{}, fmt.Errorf("invalid hour in schedule time %q", s)
	}

	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return ScheduleEntry{}, fmt.Errorf("invalid minute in schedule time %q", s)
	}

	return ScheduleEntry{Hour: hour, Minute: minute}, nil
}
