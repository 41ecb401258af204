package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"msgagent/utils"
)

// IMAPConfig addresses one mailbox.
type IMAPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	Mailbox  string
}

// IMAPSource fetches unseen messages over IMAPS without marking them read.
type IMAPSource struct {
	cfg IMAPConfig
}

// NewIMAPSource returns a source for cfg
func NewIMAPSource(cfg IMAPConfig) *IMAPSource {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	return &IMAPSource{cfg: cfg}
}

// Fetch returns up to limit of the newest unseen messages
func (s *IMAPSource) Fetch(ctx context.Context, limit int) ([]Mail, error) {
	if s.cfg.Server == "" {
		return nil, fmt.Errorf("imap server is not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)
	c, err := client.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connection error: %w", err)
	}
	defer c.Logout()

	// Logout unblocks any in-flight command when ctx ends first.
	stop := context.AfterFunc(ctx, func() { _ = c.Logout() })
	defer stop()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if _, err := c.Select(s.cfg.Mailbox, true); err != nil {
		return nil, fmt.Errorf("error selecting folder %s: %w", s.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	if len(uids) == 0 {
		return []Mail{}, nil
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, imap.FetchInternalDate, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	mails := []Mail{}
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			utils.Log.Warn("IMAP message %d has no body", msg.Uid)
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			utils.Log.Warn("Reading IMAP message %d failed: %v", msg.Uid, err)
			continue
		}
		m, err := ParseMessage(raw)
		if err != nil {
			utils.Log.Warn("Parsing IMAP message %d failed: %v", msg.Uid, err)
			continue
		}
		m.UID = msg.Uid
		if m.Date.IsZero() {
			m.Date = msg.InternalDate
		}
		mails = append(mails, m)
	}

	if err := <-done; err != nil {
		return mails, fmt.Errorf("error during fetch: %w", err)
	}
	return mails, nil
}
