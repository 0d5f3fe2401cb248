package entity

// Review is a buyer rating attached to a listing.
type Review struct {
	ID          int64  `json:"id"`
	AuthorEmail string `json:"authorEmail"`
	Rating      int    `json:"rating"` // 1-5
	Comment     string `json:"comment"`
}
