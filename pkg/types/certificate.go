package types

// Certificate is a certificate image row. Read-only, like Project.
type Certificate struct {
	ID  int64  `json:"id"`
	Img string `json:"Img"`
}
