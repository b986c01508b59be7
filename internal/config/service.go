package config

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	// BillingKeyCipherKey is the AES-256 key (64 hex chars) protecting
	// stored billing-key tokens.
	BillingKeyCipherKey string `yaml:"billing_key_cipher_key" validate:"required,len=64"`
}

// InicisConfig holds the INICIS v2 billing API credentials. Test and
// production deployments differ only in these values, never in code paths.
type InicisConfig struct {
	MID    string `yaml:"mid" validate:"required"`
	APIKey string `yaml:"api_key" validate:"required"`
	APIURL string `yaml:"api_url" validate:"required,url"`

	// SiteURL is sent as the merchant site field of the billing detail
	SiteURL string `yaml:"site_url" validate:"required"`
}

// EmailConfig holds the EmailJS dispatch settings
type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIURL     string `yaml:"api_url"`
	ServiceID  string `yaml:"service_id"`
	TemplateID string `yaml:"template_id"`
	UserID     string `yaml:"user_id"`
}

// RedisConfig holds the billing-event publisher settings
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}
