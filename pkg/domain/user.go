package domain

// UserRecord is a registration entry owned by the registration collaborator.
type UserRecord struct {
	ChannelID string `json:"channel_id" yaml:"channel_id"`
	UserID    string `json:"user_id" yaml:"user_id"`
	Name      string `json:"name" yaml:"name"`
	CallName  string `json:"call_name" yaml:"call_name"`
}

// Key returns the directory key for the record.
func (u UserRecord) Key() string {
	return UserKey(u.ChannelID, u.UserID)
}

// UserKey builds the (channel, user) directory key with both parts escaped.
func UserKey(channelID, userID string) string {
	return joinKey(channelID, userID)
}
