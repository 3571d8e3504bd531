package config

import (
	"time"

	"sheet_image_gen/internal/retry"
)

type ResilienceConfig struct {
	SheetRead     retry.Config
	BrowserAttach retry.Config
}

var DefaultResilienceConfig = ResilienceConfig{
	SheetRead: retry.Config{
		Name:       "sheet read",
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
		Timeout:    15 * time.Second,
	},
	BrowserAttach: retry.Config{
		Name:       "browser attach",
		MaxRetries: 2,
		BaseDelay:  1 * time.Second,
		MaxDelay:   5 * time.Second,
		Timeout:    10 * time.Second,
	},
}
