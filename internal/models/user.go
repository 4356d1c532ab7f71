package models

// User owns a set of thought references and a set of friend references.
// Version is the internal write counter; it is nil when projected away.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Thoughts []string `json:"thoughts"`
	Friends  []string `json:"friends"`
	Version  *int64   `json:"__v,omitempty"`
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username *string
}

// NewUser validates the payload and returns a user ready to be inserted.
func NewUser(username string) (User, error) {
	name, err := required("username", username)
	if err != nil {
		return User{}, err
	}
	return User{Username: name, Thoughts: []string{}, Friends: []string{}}, nil
}

// Validate re-runs the user constraints on the fields present in the patch.
func (p UserPatch) Validate() (UserPatch, error) {
	if p.Username == nil {
		return p, nil
	}
	name, err := required("username", *p.Username)
	if err != nil {
		return UserPatch{}, err
	}
	return UserPatch{Username: &name}, nil
}

// Normalize replaces nil reference sets with empty ones so they encode as [].
func (u *User) Normalize() {
	if u.Thoughts == nil {
		u.Thoughts = []string{}
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
}

// WithoutVersion returns a copy of u with the version field projected away.
func (u User) WithoutVersion() User {
	u.Version = nil
	return u
}
