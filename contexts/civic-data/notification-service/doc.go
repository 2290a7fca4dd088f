// Package notificationservice implements the email notification digest
// inside the civic-data context.
//
// The module walks every user's followed entities, collects the activity
// that happened since each per-entity watermark, and queues one digest email
// per user with pending updates. The run is batch-oriented: cmd/notify
// invokes it once and exits, leaving scheduling to cron. Template rendering,
// SMTP delivery and the watermark table sit behind ports and adapters.
package notificationservice
