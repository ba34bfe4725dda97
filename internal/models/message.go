package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// MessageStatus tracks admin handling of a contact message.
type MessageStatus string

const (
	MessageNew     MessageStatus = "new"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

// ValidMessageStatus reports whether s is a known status.
func ValidMessageStatus(s string) bool {
	switch MessageStatus(s) {
	case MessageNew, MessageRead, MessageReplied:
		return true
	}
	return false
}

// Message is a contact-form submission.
type Message struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Prepare trims input and forces the initial status.
func (m *Message) Prepare() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Phone = strings.TrimSpace(m.Phone)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	m.Status = MessageNew
}

func (m *Message) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Phone, validation.Length(0, 40)),
		validation.Field(&m.Subject, validation.Required, validation.Length(1, 200)),
		validation.Field(&m.Message, validation.Required, validation.Length(1, 5000)),
	)
}
