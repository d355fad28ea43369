package bot

import "time"

// Activity types.
const (
	ActivityTypeMessage            = "message"
	ActivityTypeConversationUpdate = "conversationUpdate"
	ActivityTypeTyping             = "typing"
)

// ChannelAccount identifies a user or bot on a channel.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// ConversationAccount identifies a conversation.
type ConversationAccount struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	IsGroup bool   `json:"isGroup,omitempty"`
}

// Activity is the subset of a Bot Framework activity the bot reads and writes.
type Activity struct {
	Type          string              `json:"type"`
	ID            string              `json:"id,omitempty"`
	Timestamp     time.Time           `json:"timestamp,omitzero"`
	ChannelID     string              `json:"channelId,omitempty"`
	ServiceURL    string              `json:"serviceUrl,omitempty"`
	From          ChannelAccount      `json:"from"`
	Recipient     ChannelAccount      `json:"recipient"`
	Conversation  ConversationAccount `json:"conversation"`
	Text          string              `json:"text,omitempty"`
	Locale        string              `json:"locale,omitempty"`
	// LocalTimezone is the IANA zone of the sender, when the channel knows it.
	LocalTimezone string              `json:"localTimezone,omitempty"`
	ReplyToID     string              `json:"replyToId,omitempty"`
	MembersAdded  []ChannelAccount    `json:"membersAdded,omitempty"`
}
