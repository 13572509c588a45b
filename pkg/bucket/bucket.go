package bucket

// Bucket groups expense transactions, e.g. "Groceries" or "Rent".
type Bucket struct {
	ID       int
	Name     string
	Icon     string
	Position int
}
