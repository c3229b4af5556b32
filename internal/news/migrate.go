package news

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate applies the news schema using Gorm's AutoMigrate and logs progress.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "news.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying news schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Article{}, &TrendingKeyword{}, &ContactSubmission{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("news schema migration failed")
		}
		return eris.Wrap(err, "auto migrating news schema")
	}

	if logger != nil {
		logger.WithFields(logFields).Info("news schema migration complete")
	}

	return nil
}
