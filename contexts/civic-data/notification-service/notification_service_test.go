package notificationservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	notificationservice "openknesset/contexts/civic-data/notification-service"
	"openknesset/contexts/civic-data/notification-service/domain/entities"
)

var digestNow = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newModule(t *testing.T) notificationservice.Module {
	t.Helper()
	module := notificationservice.NewInMemoryModule(nil)
	module.Store.SetNow(digestNow)
	return module
}

func TestDigestMemberWithTwoActions(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeAgenda, EntityID: "agenda-1", EntityName: "Transit"})
	for i, hours := range []time.Duration{3, 5} {
		module.Store.AddAction(entities.Action{
			ActionID:    []string{"action-1", "action-2"}[i],
			ActorType:   entities.EntityTypeMember,
			ActorID:     "mk-7",
			ActorName:   "MK Seven",
			Verb:        "voted",
			Description: "the budget bill",
			TargetURL:   "/votes/42",
			Timestamp:   digestNow.Add(-hours * time.Hour),
		})
	}

	queued, err := module.Digest.Run(context.Background())
	if err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	if queued != 1 {
		t.Fatalf("expected 1 queued email, got %d", queued)
	}

	sent := module.Store.SentEmails()
	if len(sent) != 1 {
		t.Fatalf("expected 1 captured email, got %d", len(sent))
	}
	email := sent[0]
	if email.To != "dana@example.com" {
		t.Fatalf("unexpected recipient %q", email.To)
	}
	if email.Subject != "Open Knesset Updates" {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.TextBody, "Followed MKs") {
		t.Fatalf("missing member section title in body:\n%s", email.TextBody)
	}
	// The agenda the user follows had no activity, so its section is absent.
	if strings.Contains(email.TextBody, "Followed Agendas") {
		t.Fatalf("unexpected agenda section in body:\n%s", email.TextBody)
	}
	if got := strings.Count(email.TextBody, "MK Seven voted on"); got != 2 {
		t.Fatalf("expected 2 action fragments, got %d in body:\n%s", got, email.TextBody)
	}
	if !strings.Contains(email.HTMLBody, "<h2>Followed MKs</h2>") {
		t.Fatalf("missing member section heading in HTML body:\n%s", email.HTMLBody)
	}
}

func TestDigestNoActivityQueuesNothing(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})

	queued, err := module.Digest.Run(context.Background())
	if err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	if queued != 0 {
		t.Fatalf("expected no emails, got %d", queued)
	}
	if len(module.Store.SentEmails()) != 0 {
		t.Fatalf("expected no captured emails")
	}
	// The watermark is still created so the next run has a baseline.
	if _, ok := module.Store.LastSentFor("user-1", entities.EntityTypeMember, "mk-7"); !ok {
		t.Fatalf("expected watermark to be created on a no-activity run")
	}
}

func TestDigestWatermarkCreationUsesTrailingWindow(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	// Inside the default 10-day window.
	module.Store.AddAction(entities.Action{
		ActionID:  "recent",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "a recent bill",
		Timestamp: digestNow.Add(-9 * 24 * time.Hour),
	})
	// Older than the window; must not appear even on the first run.
	module.Store.AddAction(entities.Action{
		ActionID:  "ancient",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "an ancient bill",
		Timestamp: digestNow.Add(-30 * 24 * time.Hour),
	})

	queued, err := module.Digest.Run(context.Background())
	if err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	if queued != 1 {
		t.Fatalf("expected 1 queued email, got %d", queued)
	}
	body := module.Store.SentEmails()[0].TextBody
	if !strings.Contains(body, "a recent bill") || strings.Contains(body, "an ancient bill") {
		t.Fatalf("trailing window not applied:\n%s", body)
	}

	lastSent, ok := module.Store.LastSentFor("user-1", entities.EntityTypeMember, "mk-7")
	if !ok {
		t.Fatalf("expected watermark after first run")
	}
	if !lastSent.Time.Equal(digestNow) {
		t.Fatalf("expected watermark at run time, got %v", lastSent.Time)
	}
}

func TestDigestWatermarkIsMonotonicAcrossRuns(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	module.Store.AddAction(entities.Action{
		ActionID:  "action-1",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the budget bill",
		Timestamp: digestNow.Add(-1 * time.Hour),
	})

	if _, err := module.Digest.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first, _ := module.Store.LastSentFor("user-1", entities.EntityTypeMember, "mk-7")

	// Second run, later, with no new activity: nothing is re-sent and the
	// watermark still advances.
	later := digestNow.Add(2 * time.Hour)
	module.Store.SetNow(later)
	queued, err := module.Digest.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if queued != 0 {
		t.Fatalf("already reported action re-sent")
	}
	second, _ := module.Store.LastSentFor("user-1", entities.EntityTypeMember, "mk-7")
	if !second.Time.After(first.Time) {
		t.Fatalf("watermark did not advance: %v -> %v", first.Time, second.Time)
	}
}

func TestDigestBucketOrderAndEmptyBucketSkipping(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeAgenda, EntityID: "agenda-1", EntityName: "Transit"})
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: "committee", EntityID: "committee-3", EntityName: "Finance Committee"})
	for _, seed := range []struct {
		id         string
		actorType  entities.EntityType
		actorID    string
		actorName  string
		desc       string
	}{
		{"a1", entities.EntityTypeAgenda, "agenda-1", "Transit", "agenda activity"},
		{"a2", entities.EntityTypeMember, "mk-7", "MK Seven", "member activity"},
		{"a3", "committee", "committee-3", "Finance Committee", "committee activity"},
	} {
		module.Store.AddAction(entities.Action{
			ActionID:    seed.id,
			ActorType:   seed.actorType,
			ActorID:     seed.actorID,
			ActorName:   seed.actorName,
			Verb:        "discussed",
			Description: seed.desc,
			Timestamp:   digestNow.Add(-time.Hour),
		})
	}

	if _, err := module.Digest.Run(context.Background()); err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	body := module.Store.SentEmails()[0].TextBody

	members := strings.Index(body, "Followed MKs")
	agendas := strings.Index(body, "Followed Agendas")
	other := strings.Index(body, "Other Updates")
	if members < 0 || agendas < 0 || other < 0 {
		t.Fatalf("missing section in body:\n%s", body)
	}
	if !(members < agendas && agendas < other) {
		t.Fatalf("sections out of order:\n%s", body)
	}
	if !strings.Contains(body, "committee activity") {
		t.Fatalf("catch-all bucket lost the committee action:\n%s", body)
	}
}

func TestDigestCollapsesDuplicateFollows(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	for i := 0; i < 3; i++ {
		module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	}
	module.Store.AddAction(entities.Action{
		ActionID:  "action-1",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the budget bill",
		Timestamp: digestNow.Add(-time.Hour),
	})

	if _, err := module.Digest.Run(context.Background()); err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	body := module.Store.SentEmails()[0].TextBody
	if got := strings.Count(body, "MK Seven voted on"); got != 1 {
		t.Fatalf("duplicate follow produced %d fragments:\n%s", got, body)
	}
}

func TestDigestSkipsUsersWithoutProfile(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "ghost", Email: "ghost@example.com"}, false)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	module.Store.AddAction(entities.Action{
		ActionID:  "action-1",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the budget bill",
		Timestamp: digestNow.Add(-time.Hour),
	})

	queued, err := module.Digest.Run(context.Background())
	if err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	if queued != 0 || len(module.Store.SentEmails()) != 0 {
		t.Fatalf("profile-less user received an email")
	}
	// Skipped users do not get watermarks either.
	if _, ok := module.Store.LastSentFor("user-1", entities.EntityTypeMember, "mk-7"); ok {
		t.Fatalf("unexpected watermark for skipped user")
	}
}

func TestDigestMailerErrorAbortsRun(t *testing.T) {
	module := newModule(t)
	for _, userID := range []string{"user-1", "user-2"} {
		module.Store.AddRecipient(entities.Recipient{UserID: userID, Username: userID, Email: userID + "@example.com"}, true)
		module.Store.AddFollow(entities.Follow{UserID: userID, EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	}
	module.Store.AddAction(entities.Action{
		ActionID:  "action-1",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the budget bill",
		Timestamp: digestNow.Add(-time.Hour),
	})
	sendErr := errors.New("smtp unavailable")
	module.Store.FailSends(sendErr)

	queued, err := module.Digest.Run(context.Background())
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected mailer error to propagate, got %v", err)
	}
	if queued != 0 {
		t.Fatalf("expected no queued emails before the failure, got %d", queued)
	}
}

func TestDigestActionsNewestFirst(t *testing.T) {
	module := newModule(t)
	module.Store.AddRecipient(entities.Recipient{UserID: "user-1", Username: "dana", Email: "dana@example.com"}, true)
	module.Store.AddFollow(entities.Follow{UserID: "user-1", EntityType: entities.EntityTypeMember, EntityID: "mk-7", EntityName: "MK Seven"})
	module.Store.AddAction(entities.Action{
		ActionID:  "older",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the older bill",
		Timestamp: digestNow.Add(-4 * time.Hour),
	})
	module.Store.AddAction(entities.Action{
		ActionID:  "newer",
		ActorType: entities.EntityTypeMember,
		ActorID:   "mk-7",
		ActorName: "MK Seven",
		Verb:      "voted", Description: "the newer bill",
		Timestamp: digestNow.Add(-1 * time.Hour),
	})

	if _, err := module.Digest.Run(context.Background()); err != nil {
		t.Fatalf("digest run failed: %v", err)
	}
	body := module.Store.SentEmails()[0].TextBody
	if strings.Index(body, "the newer bill") > strings.Index(body, "the older bill") {
		t.Fatalf("actions not newest first:\n%s", body)
	}
}
