package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgagent/models"
)

func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParsePlainMessage(t *testing.T) {
	m, err := ParseMessage(crlf(`From: =?UTF-8?B?546L57aT55CG?= <boss@example.com>
Subject: =?UTF-8?B?5piO5aSp5pyD6K2w?=
Date: Mon, 03 Mar 2025 09:30:00 +0800
Content-Type: text/plain; charset=UTF-8

記得帶提案書
`))
	require.NoError(t, err)
	assert.Equal(t, "boss@example.com", m.From)
	assert.Equal(t, "王經理", m.FromName)
	assert.Equal(t, "明天會議", m.Subject)
	assert.Equal(t, "記得帶提案書", m.Body)
	assert.Equal(t, 2025, m.Date.Year())
}

func TestParseMultipartPrefersPlain(t *testing.T) {
	m, err := ParseMessage(crlf(`From: shop@example.com
Subject: Sale
Content-Type: multipart/alternative; boundary="b1"

--b1
Content-Type: text/plain; charset=UTF-8
Content-Transfer-Encoding: quoted-printable

Half price =E5=84=AA=E6=83=A0
--b1
Content-Type: text/html; charset=UTF-8

<p>Half price <b>sale</b></p>
--b1--
`))
	require.NoError(t, err)
	assert.Equal(t, "Half price 優惠", m.Body)
}

func TestParseHTMLOnly(t *testing.T) {
	m, err := ParseMessage(crlf(`From: news@example.com
Subject: News
Content-Type: text/html; charset=UTF-8

<html><head><style>p{}</style></head><body><p>Hello</p><script>x()</script><p>world</p></body></html>
`))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", m.Body)
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "S\nB", MessageText(Mail{Subject: " S ", Body: "B"}))
	assert.Equal(t, "B", MessageText(Mail{Body: "B"}))
	assert.Equal(t, "S", MessageText(Mail{Subject: "S"}))
}

type fakeSource struct {
	mails []Mail
	err   error
}

func (f fakeSource) Fetch(_ context.Context, limit int) ([]Mail, error) {
	if limit > 0 && len(f.mails) > limit {
		return f.mails[:limit], f.err
	}
	return f.mails, f.err
}

type fakeSink struct {
	added []models.DemoMessage
}

func (f *fakeSink) AddMessageAt(text, senderID, senderName string, at time.Time) (*models.DemoMessage, error) {
	msg := models.DemoMessage{ID: len(f.added) + 1, Text: text, SenderID: senderID, SenderName: senderName,
		Timestamp: at.Format(time.RFC3339)}
	f.added = append(f.added, msg)
	return &msg, nil
}

func TestImporter(t *testing.T) {
	at := time.Date(2025, 3, 3, 1, 30, 0, 0, time.UTC)
	sink := &fakeSink{}
	src := fakeSource{mails: []Mail{
		{From: "boss@example.com", FromName: "王經理", Subject: "會議", Body: "<b>明天</b>", Date: at},
		{From: "empty@example.com"},
		{From: "long@example.com", Body: strings.Repeat("字", 20)},
	}}

	report, err := NewImporter(src, sink, 10).Import(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Imported, 2)

	assert.Equal(t, "會議\n明天", sink.added[0].Text)
	assert.Equal(t, "王經理", sink.added[0].SenderName)
	assert.Equal(t, "2025-03-03T01:30:00Z", sink.added[0].Timestamp)
	assert.Equal(t, "long@example.com", sink.added[1].SenderName)
	assert.Equal(t, 10, len([]rune(sink.added[1].Text)))
}

func TestImporterFetchError(t *testing.T) {
	_, err := NewImporter(fakeSource{err: errors.New("dial failed")}, &fakeSink{}, 0).Import(context.Background(), 5)
	assert.Error(t, err)

	sink := &fakeSink{}
	report, err := NewImporter(fakeSource{mails: []Mail{{From: "a", Body: "hi"}}, err: errors.New("cut")}, sink, 0).
		Import(context.Background(), 5)
	require.NoError(t, err)
	assert.Len(t, report.Imported, 1)
}
