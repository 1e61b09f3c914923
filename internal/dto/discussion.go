package dto

// AskQueryRequest is the payload of POST /student/posts/:id/query.
type AskQueryRequest struct {
	QueryText string `json:"queryText"`
}

// ReplyRequest is the payload of POST /placement-team/posts/query/:queryId/reply.
type ReplyRequest struct {
	ReplyText string `json:"replyText"`
}
