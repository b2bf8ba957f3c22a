package security

const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleCreator = "creator"
)

// Identity is the resolved bearer-token principal.
type Identity struct {
	UserID         string
	Role           string
	Email          string
	TelegramChatID int64
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleAdmin || i.Role == RoleCreator
}
