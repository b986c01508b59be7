package config

type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`

	// AdminToken guards the /internal endpoints. Empty disables them.
	AdminToken string `yaml:"admin_token"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Output      string `yaml:"output"`
	Development bool   `yaml:"development"`
}
