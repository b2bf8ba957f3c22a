package security

// In-memory account registry for the token endpoint (replace with DB/config later)
type Account struct {
	ID             string
	Login          string
	Secret         string
	Role           string
	Email          string
	TelegramChatID int64
	Enabled        bool
}

var Accounts = map[string]Account{
	"demo-user": {
		ID: "u-1001", Login: "demo-user", Secret: "demo-user-secret",
		Role: RoleUser, Email: "user@example.com", Enabled: true,
	},
	"demo-admin": {
		ID: "u-1", Login: "demo-admin", Secret: "demo-admin-secret",
		Role: RoleAdmin, Email: "admin@shispare.ru", Enabled: true,
	},
	"demo-creator": {
		ID: "u-0", Login: "demo-creator", Secret: "demo-creator-secret",
		Role: RoleCreator, Email: "creator@shispare.ru", Enabled: true,
	},
}
