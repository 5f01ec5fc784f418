package config

import (
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/option"
)

// InitLogger builds the global logger from c.
func InitLogger(c LogConfig) error {
	opt := option.DefaultLogOption()
	opt.Engine = c.Engine
	opt.Level = c.Level
	opt.Format = c.Format
	opt.OutputPaths = []string{"stdout"}
	opt.Development = c.Development
	opt.AddInitialField("service.name", "supportbot")

	log, err := logger.New(opt)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)
	return nil
}
