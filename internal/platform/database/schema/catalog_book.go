package schema

// CatalogBookTable represents the 'catalog.book' table
type CatalogBookTable struct {
	Table           string
	ID              string
	Title           string
	ISBN            string
	AuthorID        string
	CategoryID      string
	Publisher       string
	PublishedYear   string
	Description     string
	CoverImage      string
	TotalCopies     string
	AvailableCopies string
	CreatedAt       string
	UpdatedAt       string

	// ISBNKey is the unique constraint reported on duplicate inserts.
	ISBNKey string
}

// CatalogBook is the schema definition for catalog.book
var CatalogBook = CatalogBookTable{
	Table:           "catalog.book",
	ID:              "id",
	Title:           "title",
	ISBN:            "isbn",
	AuthorID:        "authorid",
	CategoryID:      "categoryid",
	Publisher:       "publisher",
	PublishedYear:   "publishedyear",
	Description:     "description",
	CoverImage:      "coverimage",
	TotalCopies:     "totalcopies",
	AvailableCopies: "availablecopies",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	ISBNKey:         "book_isbn_key",
}

// Columns returns all standard column names
func (t CatalogBookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.ISBN, t.AuthorID, t.CategoryID, t.Publisher, t.PublishedYear,
		t.Description, t.CoverImage, t.TotalCopies, t.AvailableCopies, t.CreatedAt, t.UpdatedAt,
	}
}
