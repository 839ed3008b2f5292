package email

import (
	"context"
	"errors"
	"strings"
)

// Attachment is a file sent with a message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

//go:generate mockgen -destination=mock/provider_mock.go -package=mock . Provider

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

var (
	ErrNoRecipients = errors.New("email_no_recipients")
	ErrEmptySubject = errors.New("email_empty_subject")
)

// Validate rejects messages that no provider could deliver.
func (m Message) Validate() error {
	hasRecipient := false
	for _, to := range m.To {
		if strings.TrimSpace(to) != "" {
			hasRecipient = true
			break
		}
	}
	if !hasRecipient {
		return ErrNoRecipients
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	return nil
}

type NoOpProvider struct{}

func (p *NoOpProvider) Name() string { return "noop" }

func (p *NoOpProvider) Send(_ context.Context, msg Message) error {
	return msg.Validate()
}
