package digest_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	availabilitystore "github.com/dalemusser/boatfinder/internal/app/store/availability"
	userstore "github.com/dalemusser/boatfinder/internal/app/store/users"
	"github.com/dalemusser/boatfinder/internal/app/system/mailer"
	"github.com/dalemusser/boatfinder/internal/testutil"
	"go.uber.org/zap"
)

// captureSender records sent emails and can fail specific recipients.
type captureSender struct {
	mu     sync.Mutex
	sent   []mailer.Email
	failTo string
}

func (c *captureSender) Send(ctx context.Context, e mailer.Email) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failTo != "" && e.To == c.failTo {
		return errors.New("smtp unavailable")
	}
	c.sent = append(c.sent, e)
	return nil
}

func (c *captureSender) emails() []mailer.Email {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mailer.Email, len(c.sent))
	copy(out, c.sent)
	return out
}

func newRunner(t *testing.T, sender mailer.Sender) (*digest.Runner, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	return &digest.Runner{
		Avail:   availabilitystore.New(db),
		Users:   userstore.New(db),
		Mail:    sender,
		Log:     zap.NewNop(),
		BaseURL: "http://localhost:3000",
	}, fx
}

func TestRunner_SendsToQualifyingOperators(t *testing.T) {
	sender := &captureSender{}
	runner, fx := newRunner(t, sender)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d1 := fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 40)
	d2 := fx.CreateDiver(ctx, "Bob", "Reed", "bob@example.com", 18)
	fx.CreateOperator(ctx, "Olive", "Marsh", "olive@example.com", 2)
	fx.CreateOperator(ctx, "Pete", "Vance", "pete@example.com", 5)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	fx.CreateAvailability(ctx, d1.ID, date, time.Now().UTC())
	fx.CreateAvailability(ctx, d2.ID, date, time.Now().UTC())

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 1 {
		t.Fatalf("expected exactly 1 email, got %d", len(sent))
	}
	if sent[0].To != "olive@example.com" {
		t.Errorf("recipient: got %q, want olive@example.com", sent[0].To)
	}
	if !strings.Contains(sent[0].TextBody, "Alice Chen") {
		t.Errorf("email missing diver name:\n%s", sent[0].TextBody)
	}
}

func TestRunner_SendFailureDoesNotAbortSiblings(t *testing.T) {
	sender := &captureSender{failTo: "olive@example.com"}
	runner, fx := newRunner(t, sender)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d1 := fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 40)
	fx.CreateOperator(ctx, "Olive", "Marsh", "olive@example.com", 1)
	fx.CreateOperator(ctx, "Pete", "Vance", "pete@example.com", 1)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	fx.CreateAvailability(ctx, d1.ID, date, time.Now().UTC())

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("a per-recipient send failure must not fail the run: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 1 || sent[0].To != "pete@example.com" {
		t.Fatalf("expected delivery to pete only, got %+v", sent)
	}
}

func TestRunner_OverrideIgnoresRegisteredOperators(t *testing.T) {
	sender := &captureSender{}
	runner, fx := newRunner(t, sender)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	d1 := fx.CreateDiver(ctx, "Alice", "Chen", "alice@example.com", 40)
	fx.CreateOperator(ctx, "Olive", "Marsh", "olive@example.com", 1)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	fx.CreateAvailability(ctx, d1.ID, date, time.Now().UTC())

	if err := runner.RunWithOverride(ctx, "preview@example.com", 1); err != nil {
		t.Fatalf("run: %v", err)
	}

	sent := sender.emails()
	if len(sent) != 1 || sent[0].To != "preview@example.com" {
		t.Fatalf("override must send only to the given address, got %+v", sent)
	}
}

func TestRunner_NoDiversNoEmail(t *testing.T) {
	sender := &captureSender{}
	runner, fx := newRunner(t, sender)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateOperator(ctx, "Olive", "Marsh", "olive@example.com", 1)

	if err := runner.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.emails()) != 0 {
		t.Fatalf("no availability means no email")
	}
}
