package dto

import "github.com/hongminglow/social-api/internal/models"

type CreateThoughtRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type UpdateThoughtRequest struct {
	Text   *string `json:"text"`
	Author *string `json:"author"`
}

type CreateReactionRequest struct {
	ReactionText string `json:"reactionText"`
	Author       string `json:"author"`
}

type DeleteThoughtResponse struct {
	Message        string         `json:"message"`
	ThoughtDeleted models.Thought `json:"thoughtDeleted"`
}
