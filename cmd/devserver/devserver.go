// Package devserver provides the command running the stand-in backend.
package devserver

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/devserver"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/observability"
)

// Command creates the devserver command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run the in-memory development backend",
		Long:  "Serve the screening API with SQLite-backed accounts (in-memory unless --database is set) and a deterministic stub classifier. Not for production use.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := observability.NewMetrics()
			if err != nil {
				return err
			}
			srv, err := devserver.New(devserver.Config{
				SessionKey:     settings.DevServer.SessionKey,
				Database:       settings.DevServer.Database,
				Metrics:        m.DevServer,
				MetricsHandler: m.Handler(),
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					devserver.GetLogger().Warn("failed to close devserver store", logger.Error(err))
				}
			}()
			return srv.ListenAndServe(cmd.Context(), settings.DevServer.Listen)
		},
	}

	cmd.Flags().StringVar(&settings.DevServer.Listen, "listen", viper.GetString("devserver.listen"), "Listen address")
	cmd.Flags().StringVar(&settings.DevServer.Database, "database", viper.GetString("devserver.database"), "SQLite file for accounts and history (in-memory when empty)")
	return cmd
}
