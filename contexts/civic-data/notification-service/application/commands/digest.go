package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "openknesset/contexts/civic-data/notification-service/application"
	"openknesset/contexts/civic-data/notification-service/domain/entities"
	"openknesset/contexts/civic-data/notification-service/ports"
)

const (
	defaultDaysBack = 10
	defaultSubject  = "Open Knesset Updates"
)

// DigestUseCase assembles and queues one notification email per user with
// pending updates. Runs are sequential and synchronous; they are meant to be
// driven by an external scheduler (cron) through cmd/notify.
type DigestUseCase struct {
	Users    ports.UserDirectory
	Profiles ports.ProfileChecker
	Follows  ports.FollowRepository
	Actions  ports.ActionRepository
	LastSent ports.LastSentRepository
	Renderer ports.DigestRenderer
	Mailer   ports.Mailer

	Clock ports.Clock

	// DaysBack bounds the trailing window used the first time a (user,
	// entity) pair is seen; zero means the default of 10 days.
	DaysBack int
	// Subject overrides the email subject; empty means the default.
	Subject string

	Logger *slog.Logger
}

// Run walks every user, collects the activity of their followed entities
// since each watermark, and queues one email per user with a non-empty
// digest. It returns the number of emails queued.
//
// Watermarks advance before the email is handed to the mailer, so delivery
// is at-most-once: a failed dispatch is not retried with the same window.
// Mail transport errors abort the run.
func (uc DigestUseCase) Run(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(uc.Logger)

	recipients, err := uc.Users.ListRecipients(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, recipient := range recipients {
		hasProfile, err := uc.Profiles.HasProfile(ctx, recipient.UserID)
		if err != nil {
			return queued, err
		}
		if !hasProfile {
			continue
		}

		sent, err := uc.digestForUser(ctx, logger, recipient)
		if err != nil {
			return queued, err
		}
		if sent {
			queued++
		}
	}

	logger.Info("notification digest run finished",
		"event", "notification_digest_completed",
		"module", "civic-data/notification-service",
		"layer", "application",
		"queued", queued,
	)
	return queued, nil
}

func (uc DigestUseCase) digestForUser(
	ctx context.Context,
	logger *slog.Logger,
	recipient entities.Recipient,
) (bool, error) {
	follows, err := uc.Follows.ListFollows(ctx, recipient.UserID)
	if err != nil {
		return false, err
	}

	updates := make(map[entities.EntityType][]string)
	updatesHTML := make(map[entities.EntityType][]string)
	for _, follow := range collapseFollows(follows) {
		bucket := entities.BucketFor(follow.EntityType)

		since, err := uc.advanceWatermark(ctx, recipient.UserID, follow)
		if err != nil {
			return false, err
		}
		stream, err := uc.Actions.ListActorActionsSince(ctx, follow.EntityType, follow.EntityID, since)
		if err != nil {
			return false, err
		}
		if len(stream) == 0 {
			continue
		}

		headerText, headerHTML, err := uc.Renderer.EntityHeader(follow.Entity())
		if err != nil {
			return false, err
		}
		updates[bucket] = append(updates[bucket], headerText)
		updatesHTML[bucket] = append(updatesHTML[bucket], headerHTML)

		for _, action := range stream {
			fragmentText, fragmentHTML, err := uc.Renderer.ActionFragment(action)
			if err != nil {
				return false, err
			}
			updates[bucket] = append(updates[bucket], fragmentText)
			updatesHTML[bucket] = append(updatesHTML[bucket], fragmentHTML)
		}
	}

	var body []string
	var bodyHTML []string
	for _, bucket := range entities.BucketOrder() {
		if len(updates[bucket]) == 0 {
			continue
		}
		title, titleHTML := uc.Renderer.SectionTitle(bucket)
		body = append(body, title, strings.Join(updates[bucket], "\n"))
		bodyHTML = append(bodyHTML, titleHTML, strings.Join(updatesHTML[bucket], ""))
	}
	if len(body) == 0 {
		return false, nil
	}

	headerText, headerHTML, err := uc.Renderer.Header(recipient)
	if err != nil {
		return false, err
	}
	footerText, footerHTML, err := uc.Renderer.Footer(recipient)
	if err != nil {
		return false, err
	}

	email := entities.DigestEmail{
		To:       recipient.Email,
		Subject:  uc.subject(),
		TextBody: headerText + "\n" + strings.Join(body, "\n") + "\n" + footerText,
		HTMLBody: headerHTML + "\n" + strings.Join(bodyHTML, "") + "\n" + footerHTML,
	}
	if err := uc.Mailer.Send(ctx, email); err != nil {
		return false, err
	}
	logger.Info("notification email queued",
		"event", "notification_email_queued",
		"module", "civic-data/notification-service",
		"layer", "application",
		"user_id", recipient.UserID,
	)
	return true, nil
}

// advanceWatermark resolves the reporting window for one (user, entity) pair
// and moves the watermark to now. An existing watermark yields its stored
// time; a missing one yields a trailing window of DaysBack days and gets
// created, so a newly followed entity never triggers its full history.
func (uc DigestUseCase) advanceWatermark(ctx context.Context, userID string, follow entities.Follow) (time.Time, error) {
	now := uc.now()
	lastSent, found, err := uc.LastSent.GetLastSent(ctx, userID, follow.EntityType, follow.EntityID)
	if err != nil {
		return time.Time{}, err
	}
	since := now.Add(-time.Duration(uc.daysBack()) * 24 * time.Hour)
	if found {
		since = lastSent.Time
	}
	err = uc.LastSent.SaveLastSent(ctx, entities.LastSent{
		UserID:     userID,
		EntityType: follow.EntityType,
		EntityID:   follow.EntityID,
		Time:       now,
	})
	if err != nil {
		return time.Time{}, err
	}
	return since, nil
}

func (uc DigestUseCase) daysBack() int {
	if uc.DaysBack > 0 {
		return uc.DaysBack
	}
	return defaultDaysBack
}

func (uc DigestUseCase) subject() string {
	if strings.TrimSpace(uc.Subject) != "" {
		return uc.Subject
	}
	return defaultSubject
}

func (uc DigestUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// collapseFollows drops duplicate follow edges to the same entity and fixes
// the iteration order, so digests are deterministic for a given stream.
func collapseFollows(follows []entities.Follow) []entities.Follow {
	seen := make(map[string]bool, len(follows))
	collapsed := make([]entities.Follow, 0, len(follows))
	for _, follow := range follows {
		key := string(follow.EntityType) + "\x00" + strings.TrimSpace(follow.EntityID)
		if seen[key] {
			continue
		}
		seen[key] = true
		collapsed = append(collapsed, follow)
	}
	sort.SliceStable(collapsed, func(i, j int) bool {
		if collapsed[i].EntityType != collapsed[j].EntityType {
			return collapsed[i].EntityType < collapsed[j].EntityType
		}
		return collapsed[i].EntityID < collapsed[j].EntityID
	})
	return collapsed
}
