package recipebox

import "time"

type StoreConfig struct {
	Backend  string `env:"RECIPEBOX_STORE,default=file"`
	Dir      string `env:"RECIPEBOX_STORE_DIR,default=.recipebox"`
	S3Bucket string `env:"RECIPEBOX_S3_BUCKET"`
	S3Prefix string `env:"RECIPEBOX_S3_PREFIX,default=recipebox/"`
}

type SourceConfig struct {
	Kind          string        `env:"RECIPEBOX_SOURCE,default=fixture"`
	BaseURL       string        `env:"EDAMAM_BASE_URL,default=https://api.edamam.com/api/recipes/v2"`
	AppID         string        `env:"EDAMAM_APP_ID"`
	AppKey        string        `env:"EDAMAM_APP_KEY"`
	FixturePath   string        `env:"RECIPEBOX_FIXTURE_PATH,default=artifacts/recipes.json"`
	FixtureURL    string        `env:"RECIPEBOX_FIXTURE_URL"`
	FixtureS3Key  string        `env:"RECIPEBOX_FIXTURE_S3_KEY"`
	TrendingQuery string        `env:"RECIPEBOX_TRENDING_QUERY,default=popular"`
	HTTPTimeout   time.Duration `env:"SOURCE_HTTP_TIMEOUT,default=30s"`
}

type AppConfig struct {
	Debug           bool   `env:"RECIPEBOX_DEBUG,default=false"`
	OtelEnabled     bool   `env:"RECIPEBOX_OTEL_ENABLED,default=false"`
	EventLogDir     string `env:"RECIPEBOX_EVENT_LOG_DIR,default=./logs"`
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#recipes"`
}
