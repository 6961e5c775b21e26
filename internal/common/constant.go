package common

// Metadata keys persisted in the metadata table.
const (
	MetaSessionToken = "session_token"
	MetaLastUsername = "last_username"
)

// AppName is used for default file names and log attributes.
const AppName = "todokeeper"
