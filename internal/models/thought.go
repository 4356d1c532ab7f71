package models

import "time"

// Thought is a short post. Author is the username of the owner, copied by value.
type Thought struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
	Reactions []Reaction `json:"reactions"`
	Version   *int64     `json:"__v,omitempty"`
}

// Reaction is embedded in a Thought and identified by its own id.
type Reaction struct {
	ID           string    `json:"id"`
	ReactionText string    `json:"reactionText"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ThoughtPatch carries the fields of a partial thought update.
type ThoughtPatch struct {
	Text   *string
	Author *string
}

// NewThought validates the payload and stamps the creation time.
func NewThought(text, author string, now time.Time) (Thought, error) {
	body, err := requiredText("text", text)
	if err != nil {
		return Thought{}, err
	}
	owner, err := required("author", author)
	if err != nil {
		return Thought{}, err
	}
	return Thought{Text: body, Author: owner, CreatedAt: now.UTC(), Reactions: []Reaction{}}, nil
}

// NewReaction validates a reaction payload.
func NewReaction(text, author string, now time.Time) (Reaction, error) {
	body, err := requiredText("reactionText", text)
	if err != nil {
		return Reaction{}, err
	}
	owner, err := required("author", author)
	if err != nil {
		return Reaction{}, err
	}
	return Reaction{ReactionText: body, Author: owner, CreatedAt: now.UTC()}, nil
}

// Validate re-runs the thought constraints on the fields present in the patch.
func (p ThoughtPatch) Validate() (ThoughtPatch, error) {
	var out ThoughtPatch
	if p.Text != nil {
		body, err := requiredText("text", *p.Text)
		if err != nil {
			return ThoughtPatch{}, err
		}
		out.Text = &body
	}
	if p.Author != nil {
		owner, err := required("author", *p.Author)
		if err != nil {
			return ThoughtPatch{}, err
		}
		out.Author = &owner
	}
	return out, nil
}

// HasReaction reports whether a reaction with the same text and author is present.
func (t Thought) HasReaction(text, author string) bool {
	for _, r := range t.Reactions {
		if r.ReactionText == text && r.Author == author {
			return true
		}
	}
	return false
}

// Normalize replaces a nil reaction list with an empty one.
func (t *Thought) Normalize() {
	if t.Reactions == nil {
		t.Reactions = []Reaction{}
	}
}

// WithoutVersion returns a copy of t with the version field projected away.
func (t Thought) WithoutVersion() Thought {
	t.Version = nil
	return t
}
