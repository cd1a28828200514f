package entity

import "time"

// Message is append-only and immutable. Sender name and email are copied in
// at send time; a later profile change does not rewrite history.
type Message struct {
	ID          string    `json:"id" firestore:"id"`
	ChatID      string    `json:"chat_id" firestore:"chatId"`
	SenderUID   string    `json:"sender_uid" firestore:"senderUID"`
	SenderName  string    `json:"sender_name" firestore:"senderName"`
	SenderEmail string    `json:"sender_email" firestore:"senderEmail"`
	Content     string    `json:"content" firestore:"content"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
