package entity

import "time"

// Chat is a conversation scoped to exactly one flat and exactly two
// participants. At most one chat exists per (flat, unordered participant
// pair); the directory enforces this with a symmetric lookup before create.
type Chat struct {
	ID            string    `json:"id" firestore:"id"`
	FlatID        string    `json:"flat_id" firestore:"flatId"`
	Participants  []string  `json:"participants" firestore:"participantsUIDs"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt,serverTimestamp"`
}

// OtherParticipant returns the member of the pair that is not uid.
func (c *Chat) OtherParticipant(uid string) string {
	for _, p := range c.Participants {
		if p != uid {
			return p
		}
	}
	return ""
}

func (c *Chat) HasParticipant(uid string) bool {
	for _, p := range c.Participants {
		if p == uid {
			return true
		}
	}
	return false
}

// ReadCursor is a participant's read state within a chat. A nil LastReadAt
// means the participant has never read the thread, so every counterpart
// message counts as unread.
type ReadCursor struct {
	LastReadAt *time.Time `json:"last_read_at" firestore:"lastReadAt"`
}
