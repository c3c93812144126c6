package session

// User is the authenticated identity returned by the login endpoint.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an immutable view of the credential and identity held by the
// client. Token and User are either both present or both absent.
type Session struct {
	Token string
	User  *User
}

// IsAuthenticated reports whether a token is present.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Equal reports whether two sessions carry the same token and identity.
func (s Session) Equal(o Session) bool {
	if s.Token != o.Token {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == nil && o.User == nil
	}
	return *s.User == *o.User
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
