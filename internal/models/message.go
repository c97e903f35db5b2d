package models

import "time"

type Message struct {
	ID        string    `bson:"_id" json:"id"`
	ChatID    string    `bson:"chatId" json:"chat_id"`
	SenderID  string    `bson:"senderId" json:"sender_id"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	Read      bool      `bson:"read" json:"read"`
}
