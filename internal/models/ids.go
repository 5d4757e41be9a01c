package models

import "strconv"

// Identifiers are distinct named types so a user id can never be passed where
// a conversation or message id is expected.
type (
	UserID         int64
	ConversationID int64
	MessageID      int64
	ProductID      int64
)

func (id UserID) String() string         { return strconv.FormatInt(int64(id), 10) }
func (id ConversationID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id MessageID) String() string      { return strconv.FormatInt(int64(id), 10) }
func (id ProductID) String() string      { return strconv.FormatInt(int64(id), 10) }
