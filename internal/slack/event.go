package slack

import (
	"strconv"
	"strings"
	"time"
)

// Envelope is the outer Slack Events API payload. Type is either
// "url_verification" (challenge handshake) or "event_callback".
type Envelope struct {
	Type      string       `json:"type"`
	Challenge string       `json:"challenge"`
	Event     MessageEvent `json:"event"`
}

// MessageEvent is the inner message payload of an event_callback.
type MessageEvent struct {
	Type        string `json:"type"`
	SubType     string `json:"subtype"`
	Text        string `json:"text"`
	User        string `json:"user"`
	BotID       string `json:"bot_id"`
	Ts          string `json:"ts"`
	EventTs     string `json:"event_ts"`
	ClientMsgID string `json:"client_msg_id"`
	Files       []File `json:"files"`
}

// File is one attached file as reported by Slack.
type File struct {
	Name               string `json:"name"`
	Mimetype           string `json:"mimetype"`
	URLPrivate         string `json:"url_private"`
	URLPrivateDownload string `json:"url_private_download"`
}

// Attachment is a file reference as the pipeline sees it.
type Attachment struct {
	DownloadURL string
	Name        string
	Mimetype    string
}

// InboundEvent is one message delivery, read-only once constructed.
type InboundEvent struct {
	EventID     string // empty when no idempotent identifier was on the wire
	Author      string
	RawText     string
	OccurredAt  time.Time
	Attachments []Attachment
}

// ToInbound converts the wire message into an InboundEvent. The identity key
// is chosen in order client_msg_id, ts, event_ts; with none present dedup is
// skipped downstream. The message timestamp is interpreted in loc and falls
// back to now when absent or malformed.
func (m MessageEvent) ToInbound(loc *time.Location, now time.Time) InboundEvent {
	eventID := m.ClientMsgID
	if eventID == "" {
		eventID = m.Ts
	}
	if eventID == "" {
		eventID = m.EventTs
	}

	occurred := now
	if ts, ok := parseTimestamp(m.Ts, loc); ok {
		occurred = ts
	} else if ts, ok := parseTimestamp(m.EventTs, loc); ok {
		occurred = ts
	}

	attachments := make([]Attachment, 0, len(m.Files))
	for _, f := range m.Files {
		url := f.URLPrivateDownload
		if url == "" {
			url = f.URLPrivate
		}
		if url == "" {
			continue
		}
		attachments = append(attachments, Attachment{
			DownloadURL: url,
			Name:        f.Name,
			Mimetype:    f.Mimetype,
		})
	}

	return InboundEvent{
		EventID:     eventID,
		Author:      m.User,
		RawText:     m.Text,
		OccurredAt:  occurred,
		Attachments: attachments,
	}
}

// parseTimestamp parses a Slack "seconds.fraction" timestamp.
func parseTimestamp(ts string, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(ts) == "" {
		return time.Time{}, false
	}
	seconds, err := strconv.ParseFloat(ts, 64)
	if err != nil {
		return time.Time{}, false
	}
	whole := int64(seconds)
	nanos := int64((seconds - float64(whole)) * float64(time.Second))
	return time.Unix(whole, nanos).In(loc), true
}
