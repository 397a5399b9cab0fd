package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campaign-webhooks/pkg/logger"
)

// Service runs the ingestion pipeline for one normalized payload:
// classify, append to the audit store, then derive per-event actions.
//
// Invariants:
// - Every accepted webhook produces exactly one audit record, written
//   before any event-specific side effect runs.
// - A missing principal is a warning, never an error; the event is
//   still recorded for forensics.
// - Append failures are fatal for the request; nothing after the
//   write is attempted.
type Service struct {
	store Store
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

const missingPrincipalMessage = "No email address or contact ID found in webhook data"

func (s *Service) Process(ctx context.Context, p Payload) (Result, error) {
	cls := Classify(p)
	now := s.clock().UTC()

	res := Result{
		Status:    "success",
		EventType: cls.EventType,
		Timestamp: now.Format(time.RFC3339),
	}

	logID, err := s.store.Append(ctx, NewLogEntry{
		EventType:    cls.EventType,
		ContactEmail: cls.ContactEmail,
		ContactID:    cls.ContactID,
		Payload:      p,
	})
	if err != nil {
		return Result{}, fmt.Errorf("append webhook log: %w", err)
	}
	res.LogID = logID

	if cls.HasPrincipal() {
		res.ContactEmail = cls.ContactEmail
		res.ContactID = cls.ContactID
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("Logged %s for %s (ID: %d)", cls.EventType, principalOf(cls), logID))
	} else {
		logger.From(ctx).Warn("no email or contact id in webhook data", "event_type", cls.EventType, "log_id", logID)
		res.Status = "warning"
		res.Message = missingPrincipalMessage
		res.ActionsTaken = append(res.ActionsTaken,
			fmt.Sprintf("Logged %s (ID: %d)", cls.EventType, logID))
	}

	switch cls.EventType {
	case EventContactUpdate:
		s.onContactUpdate(ctx, cls.ContactEmail, cls.ContactID, mapAt(p, "contact"))
		res.ActionsTaken = append(res.ActionsTaken, "Processed contact update")
	case EventContactAdd:
		res.ActionsTaken = append(res.ActionsTaken, "New contact added")
	case EventTagAdded, EventTagRemoved:
		tag := stringAt(mapAt(p, "tag"), "tag")
		if tag == "" {
			tag = "unknown"
		}
		// "contact_tag_added" -> "added", "contact_tag_removed" -> "removed"
		verb := cls.EventType[strings.LastIndex(cls.EventType, "_")+1:]
		res.ActionsTaken = append(res.ActionsTaken, fmt.Sprintf("Tag %s: %s", verb, tag))
	case EventSubscriberNote:
		note := stringAt(p, "note")
		if note == "" {
			note = "No note content"
		}
		res.ActionsTaken = append(res.ActionsTaken, fmt.Sprintf("Note added: %s...", truncate(note, 50)))
	}

	return res, nil
}

// onContactUpdate is the reserved extension point for diffing contact
// fields into the contact_updates table. Until that exists it only
// records that an update arrived. It must never fail the pipeline.
func (s *Service) onContactUpdate(ctx context.Context, email, contactID string, contact map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			logger.From(ctx).Error("contact update hook panicked", "panic", r)
		}
	}()
	logger.From(ctx).Info("contact update received",
		"email", email, "contact_id", contactID, "fields", len(contact))
}

func principalOf(c Classification) string {
	if c.ContactEmail != "" {
		return c.ContactEmail
	}
	return c.ContactID
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
