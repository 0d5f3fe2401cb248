package entity

import "strings"

type Message struct {
	ID          int64     `json:"id"`
	SenderEmail string    `json:"senderEmail"`
	Content     string    `json:"content"`
	Response    *string   `json:"response"` // nil until the owner answers
	CreatedAt   Timestamp `json:"createdAt"`
	Item        *Listing  `json:"item"`
}

func (m *Message) Answered() bool {
	return m != nil && m.Response != nil && strings.TrimSpace(*m.Response) != ""
}

func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	c.Response = cloneString(m.Response)
	c.Item = m.Item.Clone()
	return &c
}

// UserTopic is the push destination carrying message notifications for email.
func UserTopic(email string) string {
	safe := strings.ReplaceAll(email, "@", "_at_")
	safe = strings.ReplaceAll(safe, ".", "_")
	return "/topic/messages/" + safe
}
