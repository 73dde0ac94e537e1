package models

// ModelsToAutoMigrate returns the models the connector persists.
func ModelsToAutoMigrate() []interface{} {
	return []interface{}{
		&NodeSubscription{},
		&OAuthToken{},
	}
}
