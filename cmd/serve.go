package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardoracle/internal/httpapi"
	"github.com/arcanaland/cardoracle/internal/mailer"
	"github.com/arcanaland/cardoracle/internal/render"
	"github.com/arcanaland/cardoracle/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve readings over HTTP",
	Long: `Serve starts the web server. Readings are available at /readings/{id},
with the daily card at /readings/{id}/card-of-day and a random card at
/readings/{id}/random.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Log.Mode == "prod" || a.cfg.Log.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		renderer, err := render.New(render.Settings{
			PoweredBy:        a.cfg.Display.PoweredBy,
			DefaultBackImage: a.cfg.Display.DefaultBackImage,
			AllowEmail:       a.cfg.Email.Allow,
			EmailFormText:    a.cfg.Email.FormText,
			SubscribeText:    a.cfg.Email.SubscribeText,
			EmailEndpoint:    "/api/reading-email",
		})
		if err != nil {
			return err
		}

		emails := mailer.NewService(
			mailer.NewSMTPSender(a.cfg.Email, a.log.With("service", "SMTPSender")),
			mailer.Settings{
				Allow:       a.cfg.Email.Allow,
				Subject:     a.cfg.Email.Subject,
				SuccessText: a.cfg.Email.SuccessText,
				Stylesheet:  render.EmailStylesheet(),
			},
			a.log.With("service", "EmailService"),
		)

		router := httpapi.NewRouter(httpapi.RouterConfig{
			Log:            a.log,
			AllowedOrigins: a.cfg.Server.AllowedOrigins,
			ReadingHandler: httpapi.NewReadingHandler(a.log, session.NewBuilder(a.catalog), renderer),
			EmailHandler:   httpapi.NewEmailHandler(a.log, emails, a.cfg.Email.Timeout),
			MediaHandler:   httpapi.NewMediaHandler(a.log, a.catalog),
			HealthHandler:  httpapi.NewHealthHandler(a.store),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return httpapi.NewServer(a.cfg.Server, router, a.log).Run(ctx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
