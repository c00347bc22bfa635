// engine/internal/config/config.go
package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"gighunt-engine/internal/domain"
)

//go:embed default.yml
var defaultYAML []byte

type Template struct {
	Key            string   `yaml:"key"`
	Name           string   `yaml:"name"`
	Keywords       []string `yaml:"keywords"`
	Difficulty     int      `yaml:"difficulty"`
	ClientWants    string   `yaml:"client_wants"`
	OperatorTasks  []string `yaml:"operator_tasks"`
	GeneratedTasks []string `yaml:"generated_tasks"`
	Prompt         string   `yaml:"prompt"`
	OutputType     string   `yaml:"output_type"`
	Delivery       string   `yaml:"delivery"`
	PriceRange     string   `yaml:"price_range"`
	TimeEstimate   string   `yaml:"time_estimate"`
}

type BudgetTier struct {
	Any   []string `yaml:"any"`
	Bonus float64  `yaml:"bonus"`
}

type Source struct {
	Enabled      bool     `yaml:"enabled"`
	Keywords     []string `yaml:"keywords"`      // overrides polling.keywords when set
	KeywordLimit int      `yaml:"keyword_limit"` // 0 = all keywords
	ItemLimit    int      `yaml:"item_limit"`
	URL          string   `yaml:"url"`
}

// HTMLBoard describes a selector-driven scraping source. URL may contain
// {keyword}, which is replaced with the query-escaped keyword.
type HTMLBoard struct {
	Name         string   `yaml:"name"`
	Enabled      bool     `yaml:"enabled"`
	URL          string   `yaml:"url"`
	Keywords     []string `yaml:"keywords"`
	ItemLimit    int      `yaml:"item_limit"`
	Item         string   `yaml:"item"`
	Title        string   `yaml:"title"`
	Link         string   `yaml:"link"`
	Description  string   `yaml:"description"`
	Budget       string   `yaml:"budget"`
	BaseURL      string   `yaml:"base_url"`
	SourceMarker string   `yaml:"source"`
}

type Config struct {
	App struct {
		Port     int    `yaml:"port"`
		DataDir  string `yaml:"data_dir"`
		LogLevel string `yaml:"log_level"`
		// Browser origins allowed to call the API. Empty allows none.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"app"`

	Polling struct {
		Schedule       string   `yaml:"schedule"`
		Keywords       []string `yaml:"keywords"`
		RequestsPerSec float64  `yaml:"requests_per_sec"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
	} `yaml:"polling"`

	Sources struct {
		Upwork     Source      `yaml:"upwork"`
		Freelancer Source      `yaml:"freelancer"`
		Boards     []HTMLBoard `yaml:"boards"`
	} `yaml:"sources"`

	Dedup struct {
		Backend  string `yaml:"backend"` // file | redis
		Path     string `yaml:"path"`
		Capacity int    `yaml:"capacity"`
		RedisURL string `yaml:"redis_url"`
		RedisKey string `yaml:"redis_key"`
	} `yaml:"dedup"`

	Templates []Template `yaml:"templates"`

	Lexicon struct {
		Hard []string `yaml:"hard"`
		Easy []string `yaml:"easy"`
		Hot  []string `yaml:"hot"`
	} `yaml:"lexicon"`

	Scoring struct {
		EasyMaxDifficulty  int          `yaml:"easy_max_difficulty"`
		DefaultDifficulty  int          `yaml:"default_difficulty"`
		HardHitsForBump    int          `yaml:"hard_hits_for_bump"`
		BaseRecommendation float64      `yaml:"base_recommendation"`
		BudgetTiers        []BudgetTier `yaml:"budget_tiers"`
		HotBonus           float64      `yaml:"hot_bonus"`
		VeryHardPenalty    float64      `yaml:"very_hard_penalty"`
		HardPenalty        float64      `yaml:"hard_penalty"`
		EasyBonus          float64      `yaml:"easy_bonus"`
	} `yaml:"scoring"`

	Selection struct {
		AlertBudget       int `yaml:"alert_budget"`
		MinRecommendation int `yaml:"min_recommendation"`
		MaxDifficulty     int `yaml:"max_difficulty"`
	} `yaml:"selection"`

	LLM struct {
		Mode             string  `yaml:"mode"` // off | primary | override
		Model            string  `yaml:"model"`
		BaseURL          string  `yaml:"base_url"`
		StructuredOutput bool    `yaml:"structured_output"`
		MinConfidence    float64 `yaml:"min_confidence"`
		MaxCallsPerRun   int     `yaml:"max_calls_per_run"`
		MinSpacingMillis int     `yaml:"min_spacing_ms"`
		TimeoutSeconds   int     `yaml:"timeout_seconds"`
		KeyringAccount   string  `yaml:"keyring_account"`
	} `yaml:"llm"`

	Notify struct {
		Telegram struct {
			Enabled        bool   `yaml:"enabled"`
			ChatID         int64  `yaml:"chat_id"`
			KeyringAccount string `yaml:"keyring_account"`
			SpacingMillis  int    `yaml:"spacing_ms"`
			SendSummary    bool   `yaml:"send_summary"`
		} `yaml:"telegram"`
	} `yaml:"notify"`

	Store struct {
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"store"`
}

// Default returns the embedded default configuration.
func Default() Config {
	cfg, err := Parse(defaultYAML)
	if err != nil {
		panic("config: embedded default.yml is invalid: " + err.Error())
	}
	return cfg
}

func Parse(b []byte) (Config, error) {
	var cfg Config
	err := yaml.Unmarshal(b, &cfg)
	return cfg, err
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	cfg, err = Parse(b)
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Notify.Telegram.ChatID = id
		}
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.Dedup.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_BASE_URL")); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODE")); v != "" {
		cfg.LLM.Mode = v
	}
}

// DomainTemplates converts the template section, preserving registration order.
func (c Config) DomainTemplates() []domain.Template {
	out := make([]domain.Template, 0, len(c.Templates))
	for _, t := range c.Templates {
		out = append(out, domain.Template{
			Key:            t.Key,
			Name:           t.Name,
			Keywords:       append([]string(nil), t.Keywords...),
			BaseDifficulty: t.Difficulty,
			Guidance: domain.Guidance{
				ClientWants:    t.ClientWants,
				OperatorTasks:  append([]string(nil), t.OperatorTasks...),
				GeneratedTasks: append([]string(nil), t.GeneratedTasks...),
				Prompt:         t.Prompt,
				OutputType:     t.OutputType,
				Delivery:       t.Delivery,
				PriceRange:     t.PriceRange,
				TimeEstimate:   t.TimeEstimate,
			},
		})
	}
	return out
}
