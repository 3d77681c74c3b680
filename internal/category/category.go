package category

// Category is a catalog grouping derived from the food items that name it.
type Category struct {
	Name      string `json:"categoryName"`
	Image     string `json:"categoryImg,omitempty"`
	ItemCount int    `json:"itemCount"`
}
