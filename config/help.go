package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Fleet tracking engine

Usage:
  tracking [flags]

Flags:
  -config-path   path to the config yaml file (default "config.yaml")
  -help          show this message

Configuration is read from the environment after the optional yaml file
is loaded; see config.Config for the variable names and defaults.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig dumps the effective configuration with secrets masked.
func PrintConfig(cfg *Config) {
	fmt.Printf("HTTP port:        %s\n", cfg.HTTP.Port)
	fmt.Printf("Database:         %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("RabbitMQ:         %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("ETA provider:     %v\n", cfg.ETA.LocationIQAPIKey != "")
	fmt.Printf("FCM enabled:      %v\n", cfg.FCM.CredentialsFile != "" || cfg.FCM.CredentialsBase64 != "")
	fmt.Printf("Log level:        %s\n", cfg.Log.Level)
}
