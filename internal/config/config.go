package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"8000"`
	SocketPort string `yaml:"socket-port" env-default:"8001"`
	StaticDir  string `yaml:"static-dir" env-default:"./public"`
	Redis      Redis  `yaml:"redis"`
	Status     Status `yaml:"status"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Status struct {
	LineName   string `yaml:"line-name" env-default:"鹿児島本線"`
	TransitURL string `yaml:"transit-url" env-default:"https://transit.yahoo.co.jp/diainfo/386/386"`
	WeatherURL string `yaml:"weather-url" env-default:"https://api.open-meteo.com/v1/forecast?latitude=33.81&longitude=130.54&current=temperature_2m,weather_code&hourly=precipitation_probability&timezone=Asia/Tokyo&forecast_hours=1"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
