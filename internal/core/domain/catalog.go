package domain

// Product is a catalog entry. Read-only in this application; all catalog
// data is owned by the commerce API.
type Product struct {
	ID                 string
	Title              string
	Description        string
	Price              float64
	PriceAfterDiscount float64
	ImageCover         string
	RatingsAverage     float64
	RatingsQuantity    int
	Sold               int
	Category           Category
	Brand              Brand
}

// Category is a product category or subcategory.
type Category struct {
	ID    string
	Name  string
	Slug  string
	Image string
}

// Brand is a product brand.
type Brand struct {
	ID    string
	Name  string
	Slug  string
	Image string
}

// ProductQuery narrows a catalog listing. Zero values are omitted from the
// upstream request.
type ProductQuery struct {
	Page       int
	Limit      int
	Sort       string
	Keyword    string
	CategoryID string
	BrandID    string
}

// Page describes the pagination metadata of a catalog listing.
type Page struct {
	Current  int
	PageSize int
	Pages    int
	Results  int
}
