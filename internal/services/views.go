package services

import "digiread/internal/models"

// BookSummary is the public card used in author pages, genre lists and carts.
type BookSummary struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Slug   string            `json:"slug"`
	Genre  string            `json:"genre"`
	Price  map[string]string `json:"price"`
	Cover  string            `json:"cover,omitempty"`
	Rating string            `json:"rating,omitempty"`
}

func summarize(b *models.Book) BookSummary {
	return BookSummary{
		ID:     b.ID.Hex(),
		Title:  b.Title,
		Slug:   b.Slug,
		Genre:  b.Genre,
		Price:  b.Price.Display(),
		Cover:  b.CoverURL(),
		Rating: b.Rating(),
	}
}

func summarizeAll(books []*models.Book) []BookSummary {
	out := make([]BookSummary, 0, len(books))
	for _, b := range books {
		out = append(out, summarize(b))
	}
	return out
}
