package services

import (
	"context"
	"errors"

	"digiread/internal/models"
	"digiread/internal/repositories"
)

type HistoryInput struct {
	BookID       string
	LastLocation string
	Highlights   []models.Highlight
	// Remove drops highlights whose selection matches instead of appending them.
	Remove bool
}

type HistoryService interface {
	Update(ctx context.Context, userID string, in HistoryInput) error
}

type historyService struct {
	histories repositories.HistoryRepository
}

func NewHistoryService(histories repositories.HistoryRepository) HistoryService {
	return &historyService{histories: histories}
}

func (s *historyService) Update(ctx context.Context, userID string, in HistoryInput) error {
	reader, book, err := parseIDs(userID, in.BookID)
	if err != nil {
		return err
	}

	history, err := s.histories.Get(ctx, reader, book)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		history = &models.History{Reader: reader, Book: book}
	case err != nil:
		return err
	}

	if in.LastLocation != "" {
		history.LastLocation = in.LastLocation
	}
	if in.Remove {
		history.Highlights = removeHighlights(history.Highlights, in.Highlights)
	} else {
		history.Highlights = append(history.Highlights, in.Highlights...)
	}
	return s.histories.Save(ctx, history)
}

func removeHighlights(have, drop []models.Highlight) []models.Highlight {
	if len(drop) == 0 {
		return have
	}
	selections := make(map[string]struct{}, len(drop))
	for _, h := range drop {
		selections[h.Selection] = struct{}{}
	}
	kept := have[:0]
	for _, h := range have {
		if _, ok := selections[h.Selection]; !ok {
			kept = append(kept, h)
		}
	}
	return kept
}
