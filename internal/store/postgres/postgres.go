package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pixelslots/crypto-backend/internal/utils/config"
	"github.com/pixelslots/crypto-backend/internal/utils/logger"
)

// New opens a postgres-backed gorm connection from app config.
func New(appConfig *config.AppConfig, logger *logger.Logger) (*gorm.DB, error) {
	ds := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		appConfig.Postgres.Host,
		appConfig.Postgres.User,
		appConfig.Postgres.Pass,
		appConfig.Postgres.Name,
		appConfig.Postgres.Port,
		appConfig.Postgres.SSLMode,
	)

	conn, err := gorm.Open(postgres.Open(ds), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Error("[New] failed to open database connection", map[string]string{
			"host": appConfig.Postgres.Host,
			"db":   appConfig.Postgres.Name,
		})
		return nil, err
	}

	return conn, nil
}
