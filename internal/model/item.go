package model

// Item is one entry on the grocery list, in the shape the items API speaks.
type Item struct {
	ID      string `json:"id"`
	Item    string `json:"item"`
	Checked bool   `json:"checked"`
}

// Stats counts checked and pending items.
func Stats(items []Item) (checked, pending int) {
	for _, it := range items {
		if it.Checked {
			checked++
		} else {
			pending++
		}
	}
	return
}
