// Command boatfinderctl is the Boat Finder operations CLI.
//
// Usage:
//
//	boatfinderctl seed-sites sites.csv
//	boatfinderctl digest --email ops@example.com --threshold 3
//	boatfinderctl users --search smith
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	sitestore "github.com/dalemusser/boatfinder/internal/app/store/sites"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/mailer"
	"github.com/dalemusser/boatfinder/internal/app/system/normalize"
	"github.com/dalemusser/boatfinder/internal/app/system/validate"
	"github.com/dalemusser/boatfinder/internal/domain/models"
)

func main() {
	// Load .env from repo root if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "boatfinderctl",
		Short:        "Boat Finder operations CLI",
		SilenceUsage: true,
	}

	root.AddCommand(seedSitesCmd())
	root.AddCommand(digestCmd())
	root.AddCommand(usersCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// seed-sites command
// --------------------------------------------------------------------------

func seedSitesCmd() *cobra.Command {
	var createdBy string
	cmd := &cobra.Command{
		Use:   "seed-sites <csv-file>",
		Short: "Load dive sites from a CSV file (name,depth,lat,lon)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				store := sitestore.New(db)
				added, skipped := 0, 0
				rd := csv.NewReader(f)
				for {
					row, err := rd.Read()
					if err == io.EOF {
						break
					}
					if err != nil {
						return fmt.Errorf("read csv: %w", err)
					}
					site, err := parseSiteRow(row, createdBy)
					if err != nil {
						logger.Warn("skipping row", zap.Strings("row", row), zap.Error(err))
						skipped++
						continue
					}
					if _, err := store.Create(ctx, site); err != nil {
						if errors.Is(err, sitestore.ErrDuplicateName) {
							skipped++
							continue
						}
						return fmt.Errorf("create site %q: %w", site.Name, err)
					}
					added++
				}
				logger.Info("seed complete", zap.Int("added", added), zap.Int("skipped", skipped))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&createdBy, "created-by", "seed", "User ID recorded as the creator")
	return cmd
}

func parseSiteRow(row []string, createdBy string) (models.DiveSite, error) {
	if len(row) < 2 {
		return models.DiveSite{}, fmt.Errorf("need at least name and depth")
	}
	name := normalize.Name(row[0])
	if err := validate.SiteName(name); err != nil {
		return models.DiveSite{}, err
	}
	depth, err := strconv.Atoi(row[1])
	if err != nil {
		return models.DiveSite{}, fmt.Errorf("bad depth %q", row[1])
	}
	if err := validate.SiteDepth(depth); err != nil {
		return models.DiveSite{}, err
	}

	site := models.DiveSite{Name: name, Depth: depth, CreatedBy: createdBy}
	if len(row) >= 4 && row[2] != "" && row[3] != "" {
		lat, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return models.DiveSite{}, fmt.Errorf("bad latitude %q", row[2])
		}
		lon, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return models.DiveSite{}, fmt.Errorf("bad longitude %q", row[3])
		}
		if err := validate.Coordinates(&lat, &lon); err != nil {
			return models.DiveSite{}, err
		}
		site.Latitude, site.Longitude = &lat, &lon
	}
	return site, nil
}

// --------------------------------------------------------------------------
// digest command
// --------------------------------------------------------------------------

func digestCmd() *cobra.Command {
	var email string
	var threshold int
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Compute the availability digest and email it to one address",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
				email = normalize.Email(email)
				if email == "" {
					return fmt.Errorf("--email is required")
				}
				if err := validate.Threshold(threshold); err != nil {
					return err
				}

				runner := &digest.Runner{
					Avail:   availabilitystore.New(db),
					Users:   userstore.New(db),
					Mail:    smtpSenderFromEnv(),
					Log:     logger,
					BaseURL: envOr("BOATFINDER_BASE_URL", "http://localhost:3000"),
				}
				start := time.Now()
				if err := runner.RunWithOverride(ctx, email, threshold); err != nil {
					return err
				}
				logger.Info("digest sent",
					zap.String("email", email),
					zap.Int("threshold", threshold),
					zap.Duration("duration", time.Since(start).Round(time.Millisecond)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Recipient address")
	cmd.Flags().IntVar(&threshold, "threshold", 3, "Minimum diver count per date")
	return cmd
}

// --------------------------------------------------------------------------
// users command
// --------------------------------------------------------------------------

func usersCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCtl(func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
				users, err := userstore.New(db).Search(ctx, search)
				if err != nil {
					return err
				}
				for _, u := range users {
					role := "diver"
					if u.IsOperator {
						role = "operator"
					}
					fmt.Printf("%-38s %-30s %-8s %s\n", u.ID, u.Email, role, u.FullName())
				}
				logger.Info("done", zap.Int("count", len(users)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runCtl handles logger setup, DB connection, and context cancellation.
func runCtl(fn func(ctx context.Context, db *mongo.Database, logger *zap.Logger) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	uri := envOr("BOATFINDER_MONGO_URI", "mongodb://localhost:27017")
	dbName := envOr("BOATFINDER_MONGO_DATABASE", "boatfinder")

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	defer connectCancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}

	return fn(ctx, client.Database(dbName), logger)
}

func smtpSenderFromEnv() *mailer.SMTPSender {
	port, _ := strconv.Atoi(envOr("BOATFINDER_MAIL_SMTP_PORT", "1025"))
	return &mailer.SMTPSender{
		Host:     envOr("BOATFINDER_MAIL_SMTP_HOST", "localhost"),
		Port:     port,
		User:     os.Getenv("BOATFINDER_MAIL_SMTP_USER"),
		Pass:     os.Getenv("BOATFINDER_MAIL_SMTP_PASS"),
		From:     envOr("BOATFINDER_MAIL_FROM", "noreply@boatfinder.local"),
		FromName: envOr("BOATFINDER_MAIL_FROM_NAME", "Boat Finder"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
