package entity

type Favorite struct {
	ID        int64    `json:"id"`
	UserEmail string   `json:"userEmail"`
	Item      *Listing `json:"item"`
}

func (f *Favorite) Clone() *Favorite {
	if f == nil {
		return nil
	}
	c := *f
	c.Item = f.Item.Clone()
	return &c
}

// ItemID returns the listing id of the favorite, 0 when the snapshot is missing.
func (f *Favorite) ItemID() int64 {
	if f == nil || f.Item == nil {
		return 0
	}
	return f.Item.ID
}
