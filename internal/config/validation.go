package config

import "fmt"

func validate(c *Config) error {
	switch c.Visibility {
	case "headless", "hidden", "visible":
	default:
		return fmt.Errorf("visibility must be headless, hidden, or visible")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("nav timeout must be > 0")
	}
	if c.SelectorBudget <= 0 {
		return fmt.Errorf("selector budget must be > 0")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be > 0")
	}
	if c.PaceRPS <= 0 {
		return fmt.Errorf("pace rps must be > 0")
	}
	if c.PaceBurst <= 0 {
		return fmt.Errorf("pace burst must be > 0")
	}
	return nil
}
