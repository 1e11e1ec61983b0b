// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// SessionContext is the per-request view of the caller, built once at request
// entry by the authentication middleware.
//
// BrowserSessionID and CSRFToken are always present once the browser session
// middleware ran. UserID is empty for anonymous visitors.
type SessionContext struct {
	BrowserSessionID string `json:"-"`
	CSRFToken        string `json:"-"`

	UserID    string   `json:"id,omitempty"`
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email,omitempty"`
	FullName  string   `json:"full_name,omitempty"`
	Role      UserRole `json:"role,omitempty"`
	SessionID string   `json:"-"`
}

// IsAuthenticated reports whether a validated login session is bound.
func (s *SessionContext) IsAuthenticated() bool {
	return s != nil && s.UserID != ""
}

// Resolution is the outcome of resolving a request's cookies to a session.
type Resolution struct {
	// Session is never nil. It may be anonymous.
	Session *SessionContext

	// IssueBrowserCookie is set when a new browser session was created and the
	// sid cookie must be (re)sent.
	IssueBrowserCookie bool

	// ClearRememberCookie is set when the presented remember-me token was invalid.
	ClearRememberCookie bool

	// Path names the validation path taken: "marker", "remember" or "anonymous".
	Path string
}
