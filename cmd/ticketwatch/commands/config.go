package commands

import (
	"os"

	"ticketwatch-backend/internal/notifier"
	"ticketwatch-backend/lib/configutil"
)

type Config struct {
	TicketURL string `json:"ticket_url"`
	// when set, the seat-calendar feed replaces the rendered page as
	// the availability source
	CalendarURL string              `json:"calendar_url"`
	NotifyTo    string              `json:"notify_to"`
	StateDB     string              `json:"state_db"`
	Smtp        notifier.SmtpConfig `json:"smtp"`
}

// loadConfig merges config.json5 (plus its .local override) with the
// environment, environment winning. Credentials are expected from the
// environment only; the json5 file exists for the boring knobs.
func loadConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	if cfg.StateDB == "" {
		cfg.StateDB = "ticketwatch.db"
	}
	if cfg.Smtp.Server == "" {
		cfg.Smtp.Server = "smtp.gmail.com"
	}
	if cfg.Smtp.Port == 0 {
		cfg.Smtp.Port = 465
	}

	configutil.EnvOverride(&cfg.TicketURL, "TICKET_URL")
	configutil.EnvOverride(&cfg.CalendarURL, "CALENDAR_URL")
	configutil.EnvOverride(&cfg.StateDB, "TICKETWATCH_DB")
	configutil.EnvOverride(&cfg.Smtp.Address, "GMAIL_USER")
	configutil.EnvOverride(&cfg.Smtp.Password, "GMAIL_APP_PASSWORD")
	configutil.EnvOverride(&cfg.NotifyTo, "NOTIFY_TO")

	return cfg, nil
}

// loadCheckConfig is loadConfig plus the fail-fast check for everything
// a full run needs, before any network access happens.
func loadCheckConfig() (Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return Config{}, err
	}

	err = configutil.Require(map[string]string{
		"TICKET_URL":         cfg.TicketURL,
		"GMAIL_USER":         cfg.Smtp.Address,
		"GMAIL_APP_PASSWORD": cfg.Smtp.Password,
		"NOTIFY_TO":          cfg.NotifyTo,
	})
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}
