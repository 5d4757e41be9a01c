package models

import "time"

// MessageText is the plaintext body of a message.
type MessageText string

// Message is the stored, encrypted form of a message. Messages of a
// conversation form a backward-linked chain through PreviousMessageID.
type Message struct {
	ID                MessageID      `json:"id" gorm:"primaryKey;autoIncrement"`
	ConversationID    ConversationID `json:"conversationId" gorm:"not null;index"`
	SenderID          UserID         `json:"senderId" gorm:"not null"`
	Content           []byte         `json:"-" gorm:"not null"`
	Nonce             []byte         `json:"-" gorm:"not null"`
	PreviousMessageID *MessageID     `json:"previousMessageId"`
	CreatedAt         time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}

// Entry is a decrypted message as handed to callers.
type Entry struct {
	ID       MessageID
	Sender   UserID
	Text     MessageText
	Previous *MessageID
	SentAt   time.Time
}

// Page is a window of a conversation in ascending order. Cursor is the
// previous-message link of the oldest entry; nil when the page reaches the
// start of the conversation.
type Page struct {
	Entries []Entry
	Cursor  *MessageID
}
