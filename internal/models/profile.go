package models

// Profile is an entry of the read-only profile list
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
