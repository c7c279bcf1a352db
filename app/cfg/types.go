package cfg

import "fmt"

// ScheduleEntry is a single wall-clock trigger time in UTC.
type ScheduleEntry struct {
	Hour   int
	Minute int
}

func (e ScheduleEntry) String() string {
	return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute)
}

type Cfg struct {
	// HTTP server configuration
	Port string

	// Completion service configuration
	DeepSeekAPIKey string
	DeepSeekURL    string
	Model          string
	Temperature    float64
	MaxTokens      int
	RequestTimeout int // seconds
	MaxRetries     int
	RetryDelay     int // seconds

	// Problem catalog configuration
	LeetCodeURL string

	// Publishing configuration
	BlogPlatform string
	WPURL        string
	WPUsername   string
	WPAppPass    string
	GhostURL     string
	GhostAPIKey  string

	// Scheduling configuration
	ScheduleTimes     []ScheduleEntry
	WorkerCount       int
	SchedulerInterval int // seconds
	MisfireGrace      int // seconds

	// Prompt strategy configuration
	StrategiesDir string
	Strategy      string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
