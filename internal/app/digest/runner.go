// internal/app/digest/runner.go
package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/mailer"
	"go.uber.org/zap"
)

// Runner loads the availability window, computes per-operator digests
// and dispatches the emails. The scheduled worker and the on-demand
// test trigger both go through Run/RunWithOverride so the tested path
// is the shipped path.
type Runner struct {
	Avail      *availabilitystore.Store
	Users      *userstore.Store
	Mail       mailer.Sender
	Log        *zap.Logger
	BaseURL    string
	WindowDays int
	Loc        *time.Location
}

// Run executes one scheduled digest pass for every operator.
func (r *Runner) Run(ctx context.Context) error {
	return r.run(ctx, nil)
}

// RunWithOverride executes the same pass for a single synthetic
// recipient, used by the on-demand test trigger.
func (r *Runner) RunWithOverride(ctx context.Context, email string, threshold int) error {
	return r.run(ctx, &Operator{Email: email, Threshold: threshold})
}

func (r *Runner) run(ctx context.Context, override *Operator) error {
	now := time.Now().In(r.loc())
	start, end := Window(now, r.WindowDays)

	records, err := r.Avail.InRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("digest: load availability %s..%s: %w", start, end, err)
	}
	r.Log.Info("digest window loaded",
		zap.String("start", start), zap.String("end", end), zap.Int("records", len(records)))

	userIDs := make([]string, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.UserID]; ok {
			continue
		}
		seen[rec.UserID] = struct{}{}
		userIDs = append(userIDs, rec.UserID)
	}
	users, err := r.Users.ByIDs(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("digest: load divers: %w", err)
	}

	var operators []Operator
	if override != nil {
		operators = []Operator{*override}
	} else {
		ops, err := r.Users.Operators(ctx)
		if err != nil {
			return fmt.Errorf("digest: load operators: %w", err)
		}
		for _, u := range ops {
			if u.OperatorNotificationThreshold == nil {
				// Operator flag without a threshold means the admin
				// bootstrap never finished; skip rather than guess.
				r.Log.Warn("operator without threshold skipped", zap.String("user_id", u.ID))
				continue
			}
			operators = append(operators, Operator{
				Email:     u.Email,
				FirstName: u.FirstName,
				Threshold: *u.OperatorNotificationThreshold,
			})
		}
	}

	digests := Compute(records, users, operators, now)
	r.Log.Info("digest computed",
		zap.Int("operators", len(operators)), zap.Int("notifications", len(digests)))

	// One dispatch per operator, concurrently. A failed send is logged
	// and swallowed so siblings still go out; only dataset failures
	// above abort the run.
	var wg sync.WaitGroup
	for _, d := range digests {
		wg.Add(1)
		go func(d OperatorDigest) {
			defer wg.Done()
			email := Render(d, r.BaseURL)
			if err := r.Mail.Send(ctx, email); err != nil {
				r.Log.Error("digest send failed",
					zap.String("to", d.Operator.Email), zap.Error(err))
				return
			}
			r.Log.Info("digest sent",
				zap.String("to", d.Operator.Email),
				zap.Int("dates", len(d.All)), zap.Int("new", len(d.NewToday)))
		}(d)
	}
	wg.Wait()
	return nil
}

func (r *Runner) loc() *time.Location {
	if r.Loc != nil {
		return r.Loc
	}
	return time.UTC
}
