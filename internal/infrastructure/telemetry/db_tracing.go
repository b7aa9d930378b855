package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query emits a span
// under the active request trace. Query variables stay out of the spans.
func RegisterDBTracing(db *gorm.DB, dbName string, log *zap.Logger) error {
	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}
	log.Info("Database tracing enabled", zap.String("db_name", dbName))
	return nil
}
