// Package ingest turns mail from an external mailbox into demo messages.
package ingest

import (
	"context"
	"strings"
	"time"

	"msgagent/models"
	"msgagent/utils"
)

// Source yields fetched mail.
type Source interface {
	Fetch(ctx context.Context, limit int) ([]Mail, error)
}

// Sink stores imported messages.
type Sink interface {
	AddMessageAt(text, senderID, senderName string, at time.Time) (*models.DemoMessage, error)
}

// Report summarizes one import run.
type Report struct {
	Fetched  int                  `json:"fetched"`
	Imported []models.DemoMessage `json:"imported"`
	Skipped  int                  `json:"skipped"`
}

// Importer copies mail from a Source into a Sink.
type Importer struct {
	source    Source
	sink      Sink
	maxLength int
}

// NewImporter builds an importer. Message text is cut to maxLength runes.
func NewImporter(source Source, sink Sink, maxLength int) *Importer {
	return &Importer{source: source, sink: sink, maxLength: maxLength}
}

// Import fetches up to limit messages and stores each non-empty one.
func (im *Importer) Import(ctx context.Context, limit int) (*Report, error) {
	mails, err := im.source.Fetch(ctx, limit)
	report := &Report{Fetched: len(mails), Imported: []models.DemoMessage{}}
	if err != nil && len(mails) == 0 {
		return report, err
	}
	if err != nil {
		utils.Log.Warn("Mail fetch ended early, importing %d messages: %v", len(mails), err)
	}

	for _, m := range mails {
		text := MessageText(m)
		text, truncated := utils.CleanMessageText(text, im.maxLength)
		if text == "" {
			report.Skipped++
			continue
		}
		if truncated {
			utils.Log.Debug("Truncated imported message from %s", m.From)
		}

		name := m.FromName
		if name == "" {
			name = m.From
		}
		at := m.Date
		if at.IsZero() {
			at = time.Now()
		}

		msg, err := im.sink.AddMessageAt(text, m.From, name, at)
		if err != nil {
			return report, err
		}
		report.Imported = append(report.Imported, *msg)
	}

	utils.Log.Info("Imported %d of %d fetched messages", len(report.Imported), report.Fetched)
	return report, nil
}

// MessageText joins subject and body the way they are shown to the
// organizer.
func MessageText(m Mail) string {
	subject := strings.TrimSpace(m.Subject)
	body := strings.TrimSpace(m.Body)
	switch {
	case subject == "":
		return body
	case body == "":
		return subject
	}
	return subject + "\n" + body
}
