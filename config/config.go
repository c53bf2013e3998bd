package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	JwtSecret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type ScanConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	ApiKey   string `yaml:"api_key" json:"api_key"`
	Timeout  int    `yaml:"timeout" json:"timeout"`
}

type AppConfig struct {
	System   SystemConfig `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
	Scan     ScanConfig   `yaml:"scan" json:"scan"`
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "agrimarket",
		Location: "Asia/Kolkata",
		Workdir:  "/var/agrimarket",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		JwtSecret: "9b6de5cc-agrimarket-0f7ddf13",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "agrimarket",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/agrimarket/agrimarket.log",
	},
	Scan: ScanConfig{
		Timeout: 30,
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// variable overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	appconfig := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			appconfig = new(AppConfig)
			if err := yaml.Unmarshal(data, appconfig); err != nil {
				fmt.Fprintf(os.Stderr, "config parse error: %v\n", err)
				appconfig = DefaultAppConfig
			}
		}
	}

	setEnvValue("AGRIMARKET_WORKDIR", func(v string) { appconfig.System.Workdir = v })
	setEnvValue("AGRIMARKET_WEB_SECRET", func(v string) { appconfig.Web.JwtSecret = v })
	setEnvValue("AGRIMARKET_DB_HOST", func(v string) { appconfig.Database.Host = v })
	setEnvValue("AGRIMARKET_DB_NAME", func(v string) { appconfig.Database.Name = v })
	setEnvValue("AGRIMARKET_DB_USER", func(v string) { appconfig.Database.User = v })
	setEnvValue("AGRIMARKET_DB_PWD", func(v string) { appconfig.Database.Passwd = v })
	setEnvValue("AGRIMARKET_SCAN_ENDPOINT", func(v string) { appconfig.Scan.Endpoint = v })
	setEnvValue("AGRIMARKET_SCAN_APIKEY", func(v string) { appconfig.Scan.ApiKey = v })

	return appconfig
}

// DSN renders a database connection string for the configured engine.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Kolkata",
		c.Host, c.Port, c.User, c.Passwd, c.Name)
}
