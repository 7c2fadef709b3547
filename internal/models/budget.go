package models

// Budget tracks one department's allocation and consumption. Used is
// incremented exactly once per requisition, at final approval. There is no
// enforced ceiling; remaining may go negative if over-approved.
type Budget struct {
	ID         int64   `json:"id"`
	Department string  `json:"department"`
	Total      float64 `json:"total"`
	Used       float64 `json:"used"`
}

// Remaining returns the derived remaining allocation.
func (b *Budget) Remaining() float64 {
	return b.Total - b.Used
}
