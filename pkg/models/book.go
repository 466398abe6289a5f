package models

// Book is a catalogue entry. Optional attributes are nil when unknown.
type Book struct {
	ID              int64    `json:"id" db:"id"`
	Title           string   `json:"title" db:"title"`
	ISBN            *string  `json:"isbn,omitempty" db:"isbn"`
	PublicationYear *int     `json:"publication_year,omitempty" db:"publication_year"`
	Description     *string  `json:"description,omitempty" db:"description"`
	PageCount       *int     `json:"page_count,omitempty" db:"page_count"`
	AverageRating   *float64 `json:"average_rating,omitempty" db:"average_rating"`
	RatingsCount    *int     `json:"ratings_count,omitempty" db:"ratings_count"`
	Language        *string  `json:"language,omitempty" db:"language"`
	Publisher       *string  `json:"publisher,omitempty" db:"publisher"`
	Authors         []string `json:"authors"`
	Genres          []string `json:"genres"`
}

type Author struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name" validate:"required,min=1,max=255"`
}

type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name" validate:"required,min=1,max=100"`
}

type CreateBookRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=500"`
	ISBN            *string  `json:"isbn,omitempty" validate:"omitempty,min=10,max=17"`
	PublicationYear *int     `json:"publication_year,omitempty"`
	Description     *string  `json:"description,omitempty"`
	PageCount       *int     `json:"page_count,omitempty" validate:"omitempty,min=1"`
	AverageRating   *float64 `json:"average_rating,omitempty" validate:"omitempty,min=0,max=5"`
	RatingsCount    *int     `json:"ratings_count,omitempty" validate:"omitempty,min=0"`
	Language        *string  `json:"language,omitempty"`
	Publisher       *string  `json:"publisher,omitempty"`
	AuthorIDs       []int64  `json:"author_ids,omitempty"`
	GenreIDs        []int64  `json:"genre_ids,omitempty"`
}

// BookQuery filters the catalogue listing.
type BookQuery struct {
	Search       string
	Genre        string
	Author       string
	MinRating    *float64
	MaxPageCount *int
	Skip         int
	Limit        int
}

// CandidateFilter constrains the personalized candidate pool.
type CandidateFilter struct {
	UserID       int64
	ExcludeRead  bool
	MinRating    *float64
	MaxPageCount *int
	Genres       []string
}

// PopularFilter constrains the cold-start pool. Results are ordered by
// average rating, highest first.
type PopularFilter struct {
	MinRating       float64
	MinRatingsCount int
	Genres          []string
	Limit           int
}
