package domain

// Credential is a stored username and password hash pair
type Credential struct {
	Username     string
	PasswordHash string
}

// Session holds the signed-in user for the running process
type Session struct {
	Username string
	SignedIn bool
	JoinDate string // empty when absent
}

// JoinDateLayout is the format of Session.JoinDate
const JoinDateLayout = "Jan 2, 2006"

// Active reports whether the session carries a signed-in user.
func (s Session) Active() bool {
	return s.SignedIn && s.Username != ""
}
