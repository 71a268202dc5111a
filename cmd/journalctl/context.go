package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mx-space/journal/internal/config"
	"github.com/mx-space/journal/internal/database"
	"github.com/mx-space/journal/internal/models"
	"github.com/mx-space/journal/internal/modules/auth/user"
	"github.com/mx-space/journal/internal/modules/journal/entry"
	"github.com/mx-space/journal/internal/modules/processing/ai"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.AppConfig
	configErr  error

	loggerOnce sync.Once
	log        *zap.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *zap.Logger {
	c.loggerOnce.Do(func() {
		c.log = zap.NewNop()
		if c.verbose != nil && *c.verbose {
			if l, err := zap.NewDevelopment(); err == nil {
				c.log = l
			}
		}
	})
	return c.log
}

// withDB opens the configured database for the duration of fn.
func (c *commandContext) withDB(fn func(cfg *config.AppConfig, db *gorm.DB) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg, cfg.Database.AutoMigrate)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(cfg, db)
}

// entryService builds the entry service with the configured analysis model.
func (c *commandContext) entryService(ctx context.Context, cfg *config.AppConfig, db *gorm.DB) (*entry.Service, error) {
	completer, err := ai.NewProviderCompleter(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("analysis model: %w", err)
	}
	log := c.logger()
	model := ai.NewLimitedCompleter(completer, cfg.AI.Timeout, cfg.AI.MaxInFlight)
	return entry.NewService(db, ai.NewAnalyzer(model, log.Named("ai")), log.Named("entry")), nil
}

func lookupUser(ctx context.Context, db *gorm.DB, externalID string) (*models.UserModel, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("--user is required")
	}
	u, err := user.NewService(db).GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s not found", externalID)
	}
	return u, nil
}
