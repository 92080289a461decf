package models

type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Api struct {
		Port int `envconfig:"PORT" default:"3000"`
	}

	ClickHouse struct {
		Url      string `envconfig:"CLICKHOUSE_URL" default:"http://localhost:8123"`
		Database string `envconfig:"CLICKHOUSE_DATABASE" default:"default"`
	}

	Assets struct {
		Bucket     string `envconfig:"ASSETS_BUCKET" default:"aou_results"`
		BasePrefix string `envconfig:"ASSETS_BASE_PREFIX" default:"414k/ht_results"`
		// Optional JSON snapshot of the discovered inventory. Loaded at
		// boot when present, rewritten after every discovery.
		File string `envconfig:"ASSETS_FILE"`
		// 0 disables the scheduled refresh.
		RefreshHours int `envconfig:"ASSETS_REFRESH_HOURS" default:"0"`
	}
}
