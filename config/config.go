package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/icodeforyou/nordpool-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16 `validate:"gte=0"`
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Secret used to sign the preferences cookie
	SessionKey *string `mapstructure:"session_key"`
	// Absolute url used in the feed and manifest, e.g. "https://nordpool.didnt.work"
	BaseUrl *string `mapstructure:"base_url"`
}

func (a AppConfigApi) GetSessionKey() string {
	if a.SessionKey == nil || *a.SessionKey == "" {
		return "nordpool-go-insecure-session-key"
	}
	return *a.SessionKey
}

func (a AppConfigApi) GetBaseUrl() string {
	if a.BaseUrl == nil {
		return "https://nordpool.didnt.work"
	}
	return strings.TrimRight(*a.BaseUrl, "/")
}

type AppConfigDatabase struct {
	Path string `validate:"required"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 14
	}
	return *d.BackupRetentionDays
}

type AppConfigGui struct {
	// Country shown on "/", default: LV
	DefaultCountry *string `mapstructure:"default_country"`
	// Timezone used to interpret the "now" query parameter, default: Europe/Riga
	Timezone *string `mapstructure:"timezone"`
	// Optional yaml file overriding the embedded translations
	TranslationsFile *string `mapstructure:"translations_file"`
}

func (g AppConfigGui) GetDefaultCountry() string {
	if g.DefaultCountry == nil {
		return "LV"
	}
	return strings.ToUpper(*g.DefaultCountry)
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "Europe/Riga"
	}
	return *g.Timezone
}

func (g AppConfigGui) GetTranslationsFile() string {
	if g.TranslationsFile == nil {
		return ""
	}
	return *g.TranslationsFile
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat == nil {
		return logging.LogAttrFormatJSON
	}
	if strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type Country struct {
	Code     string  `mapstructure:"code" validate:"required,len=2,uppercase"`
	CodeLC   string  `mapstructure:"code_lc" validate:"required,len=2,lowercase"`
	Name     string  `mapstructure:"name" validate:"required"`
	Flag     string  `mapstructure:"flag"`
	Locale   string  `mapstructure:"locale" validate:"required"`
	Timezone string  `mapstructure:"timezone" validate:"required,timezone"`
	VAT      float64 `mapstructure:"vat" validate:"gte=0,lte=1"`
}

var DefaultCountries = []Country{
	{Code: "LV", CodeLC: "lv", Name: "Latvija", Flag: "🇱🇻", Locale: "lv_LV", Timezone: "Europe/Riga", VAT: 0.21},
	{Code: "LT", CodeLC: "lt", Name: "Lietuva", Flag: "🇱🇹", Locale: "lt_LT", Timezone: "Europe/Vilnius", VAT: 0.21},
	{Code: "EE", CodeLC: "ee", Name: "Eesti", Flag: "🇪🇪", Locale: "et_EE", Timezone: "Europe/Tallinn", VAT: 0.24},
}

type AppConfigRedis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

type AppConfigCache struct {
	// "memory" or "redis", default: "memory"
	Backend *string `mapstructure:"backend" validate:"omitempty,oneof=memory redis"`
	// Entries kept by the memory backend, default: 256
	MaxEntries *int `mapstructure:"max_entries" validate:"omitempty,gt=0"`
	// Life time of a rendered page, default: 1h
	Ttl   *time.Duration `mapstructure:"ttl"`
	Redis AppConfigRedis `mapstructure:"redis"`
}

func (c AppConfigCache) GetBackend() string {
	if c.Backend == nil {
		return "memory"
	}
	return *c.Backend
}

func (c AppConfigCache) GetMaxEntries() int {
	if c.MaxEntries == nil {
		return 256
	}
	return *c.MaxEntries
}

func (c AppConfigCache) GetTtl() time.Duration {
	if c.Ttl == nil {
		return time.Hour
	}
	return *c.Ttl
}

func (c AppConfigCache) GetRedisPrefix() string {
	if c.Redis.Prefix == "" {
		return "nordpool:"
	}
	return c.Redis.Prefix
}

type AppConfigTasks struct {
	// Cron spec for the change detection, default: every minute
	RefreshRunAt *string `mapstructure:"refresh_run_at"`
	// Cron spec for backups and log purging, default: 02:30 every day
	MaintenanceRunAt *string `mapstructure:"maintenance_run_at"`
}

func (t AppConfigTasks) GetRefreshRunAt() string {
	if t.RefreshRunAt == nil {
		return "* * * * *"
	}
	return *t.RefreshRunAt
}

func (t AppConfigTasks) GetMaintenanceRunAt() string {
	if t.MaintenanceRunAt == nil {
		return "30 2 * * *"
	}
	return *t.MaintenanceRunAt
}

type AppConfigMqtt struct {
	Enabled  bool
	Host     string `validate:"required_if=Enabled true"`
	Port     int16
	Username string
	Password string
	// Topic prefix, the country code is appended, default: "nordpool"
	Topic *string
}

func (m AppConfigMqtt) GetPort() int16 {
	if m.Port == 0 {
		return 1883
	}
	return m.Port
}

func (m AppConfigMqtt) GetTopic() string {
	if m.Topic == nil {
		return "nordpool"
	}
	return strings.TrimRight(*m.Topic, "/")
}

type AppConfig struct {
	Api       AppConfigApi
	Database  AppConfigDatabase
	Logging   AppConfigLogging `mapstructure:"logging"`
	Gui       AppConfigGui     `mapstructure:"gui"`
	Countries []Country        `mapstructure:"countries" validate:"dive"`
	Cache     AppConfigCache   `mapstructure:"cache"`
	Tasks     AppConfigTasks   `mapstructure:"tasks"`
	Mqtt      AppConfigMqtt    `mapstructure:"mqtt"`
}

// GetCountries returns the configured countries or the built in LV, LT, EE.
func (c *AppConfig) GetCountries() []Country {
	if len(c.Countries) == 0 {
		return DefaultCountries
	}
	return c.Countries
}

// Country looks up a country by code and falls back to the default country.
func (c *AppConfig) Country(code string) (Country, bool) {
	code = strings.ToUpper(code)
	countries := c.GetCountries()
	for _, country := range countries {
		if country.Code == code {
			return country, true
		}
	}
	def := c.Gui.GetDefaultCountry()
	for _, country := range countries {
		if country.Code == def {
			return country, false
		}
	}
	return countries[0], false
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := c.Country(c.Gui.GetDefaultCountry()); !ok {
		return fmt.Errorf("invalid config: default country %s is not configured", c.Gui.GetDefaultCountry())
	}
	if _, err := time.LoadLocation(c.Gui.GetTimezone()); err != nil {
		return fmt.Errorf("invalid config: gui timezone: %w", err)
	}
	return nil
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}
