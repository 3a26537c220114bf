package client

// Client owns zero or more licenses.
type Client struct {
	ClientID    int64  `db:"client_id" json:"clientId"`
	ClientName  string `db:"client_name" json:"clientName"`
	ContactName string `db:"contact_name" json:"contactName"`
	Email       string `db:"email" json:"email"`
	Notes       string `db:"notes" json:"notes"`
}
