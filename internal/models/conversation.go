package models

import "time"

// Conversation links two users over one product. Participants are stored
// ordered (ParticipantA < ParticipantB) so the unique index covers the
// unordered pair.
type Conversation struct {
	ID            ConversationID `json:"id" gorm:"primaryKey;autoIncrement"`
	ParticipantA  UserID         `json:"participantA" gorm:"not null;uniqueIndex:idx_conversation_pair_product,priority:1;index"`
	ParticipantB  UserID         `json:"participantB" gorm:"not null;uniqueIndex:idx_conversation_pair_product,priority:2;index"`
	ProductID     ProductID      `json:"productId" gorm:"not null;uniqueIndex:idx_conversation_pair_product,priority:3"`
	LastMessageID *MessageID     `json:"lastMessageId"` // head of the message chain
	CreatedAt     time.Time      `json:"createdAt" gorm:"autoCreateTime"`
}

// OrderedPair returns a and b in storage order.
func OrderedPair(a, b UserID) (UserID, UserID) {
	if b < a {
		return b, a
	}
	return a, b
}

// Has reports whether u is one of the two participants.
func (c *Conversation) Has(u UserID) bool {
	return c.ParticipantA == u || c.ParticipantB == u
}

// Peer returns the participant that is not u.
func (c *Conversation) Peer(u UserID) UserID {
	if c.ParticipantA == u {
		return c.ParticipantB
	}
	return c.ParticipantA
}
