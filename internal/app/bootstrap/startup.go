// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/mailer"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Built during Startup and shared with BuildHandler and Shutdown.
var (
	digestRunner *digest.Runner
	digestWorker *digest.Worker
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// Boat Finder uses it to assemble the digest pipeline and, when enabled,
// start the daily worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	loc, err := time.LoadLocation(appCfg.DigestTimezone)
	if err != nil {
		return err
	}

	sender := &mailer.SMTPSender{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}

	digestRunner = &digest.Runner{
		Avail:      availabilitystore.New(deps.MongoDatabase),
		Users:      userstore.New(deps.MongoDatabase),
		Mail:       sender,
		Log:        logger,
		BaseURL:    appCfg.BaseURL,
		WindowDays: appCfg.DigestWindowDays,
		Loc:        loc,
	}

	if appCfg.DigestEnabled {
		digestWorker = digest.NewWorker(digestRunner, logger, appCfg.DigestHour, loc)
		digestWorker.Start()
	} else {
		logger.Info("digest worker disabled")
	}

	return nil
}
