package models

import "time"

// Broadcast event types carried over the WebSocket channel.
const (
	EventTypeProductAdded     = "product_added"
	EventTypeJoinFAQRoom      = "join_faq_room"
	EventTypeFAQQuestion      = "faq_question"
	EventTypeNewQuestion      = "new_question"
	EventTypeFAQAnswer        = "faq_answer"
	EventTypeQuestionAnswered = "question_answered"
)

// AdminRoom is the group the admin inbox joins to receive shopper questions.
const AdminRoom = "admin_room"

// ProductAddedEvent is fanned out to every connected storefront session
// after a product is persisted. Subscribers append it to their locally
// cached catalog without re-fetching.
type ProductAddedEvent struct {
	Product Product `json:"product"`
}

// NewQuestionEvent is relayed to the admin room when a shopper asks a
// question. UserID is the asking session's identity, used to route the
// answer back.
type NewQuestionEvent struct {
	UserID    string    `json:"userId"`
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`
}

// QuestionAnsweredEvent is sent only to the session that asked.
type QuestionAnsweredEvent struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
