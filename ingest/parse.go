package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Mail is one fetched message reduced to what the organizer needs.
type Mail struct {
	UID      uint32
	From     string
	FromName string
	Subject  string
	Body     string
	Date     time.Time
}

var wordDecoder = new(mime.WordDecoder)

// ParseMessage reads a raw RFC 5322 message. Plain text parts win over
// HTML; HTML is reduced to its visible text.
func ParseMessage(raw []byte) (Mail, error) {
	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return Mail{}, fmt.Errorf("error parsing message: %w", err)
	}

	var out Mail
	if subject, err := wordDecoder.DecodeHeader(m.Header.Get("Subject")); err == nil {
		out.Subject = strings.TrimSpace(subject)
	} else {
		out.Subject = strings.TrimSpace(m.Header.Get("Subject"))
	}
	if addrs, err := m.Header.AddressList("From"); err == nil && len(addrs) > 0 {
		out.From = addrs[0].Address
		out.FromName = addrs[0].Name
	}
	if date, err := m.Header.Date(); err == nil {
		out.Date = date
	}

	plain, htmlBody, err := readBody(m.Header.Get("Content-Type"), m.Header.Get("Content-Transfer-Encoding"), m.Body)
	if err != nil {
		return out, err
	}
	switch {
	case strings.TrimSpace(plain) != "":
		out.Body = strings.TrimSpace(plain)
	case htmlBody != "":
		out.Body = HTMLToText(htmlBody)
	}
	return out, nil
}

func readBody(contentType, encoding string, r io.Reader) (plain, htmlBody string, err error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(r, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return plain, htmlBody, fmt.Errorf("error reading part: %w", err)
			}
			if strings.EqualFold(p.Header.Get("Content-Disposition"), "attachment") ||
				strings.HasPrefix(strings.ToLower(p.Header.Get("Content-Disposition")), "attachment;") {
				continue
			}
			pp, ph, err := readBody(p.Header.Get("Content-Type"), p.Header.Get("Content-Transfer-Encoding"), p)
			if err != nil {
				return plain, htmlBody, err
			}
			if plain == "" {
				plain = pp
			}
			if htmlBody == "" {
				htmlBody = ph
			}
		}
		return plain, htmlBody, nil
	}

	body, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", "", fmt.Errorf("error reading body: %w", err)
	}
	switch mediaType {
	case "text/plain":
		return string(body), "", nil
	case "text/html":
		return "", string(body), nil
	}
	return "", "", nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	}
	return r
}

// HTMLToText returns the visible text of an HTML document with runs of
// whitespace collapsed.
func HTMLToText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return strings.Join(strings.Fields(src), " ")
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " ")
}
