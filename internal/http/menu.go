package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Khaeshi/cafe-api/internal/model"
	"github.com/Khaeshi/cafe-api/internal/repository"
)

func (s *Server) handleListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListMenuItems(r.Context())
	if err != nil {
		s.serverError(w, r, err, "Server error fetching menu items")
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   items,
	})
}

type menuItemRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	IsAvailable *bool    `json:"isAvailable"`
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price == nil || *req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Name and a positive price are required")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	now := time.Now().UTC()
	item := model.MenuItem{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Price:       *req.Price,
		Image:       strings.TrimSpace(req.Image),
		Description: strings.TrimSpace(req.Description),
		IsAvailable: available,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateMenuItem(r.Context(), item); err != nil {
		s.serverError(w, r, err, "Server error adding menu item")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Menu item added successfully",
		"item":    item,
	})
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if _, err := uuid.Parse(itemID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	var req menuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Price == nil || *req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Name and a positive price are required")
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := s.store.UpdateMenuItem(r.Context(), model.MenuItem{
		ID:          itemID,
		Name:        req.Name,
		Price:       *req.Price,
		Image:       strings.TrimSpace(req.Image),
		Description: strings.TrimSpace(req.Description),
		IsAvailable: available,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Menu item not found")
			return
		}
		s.serverError(w, r, err, "Server error updating menu item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	if _, err := uuid.Parse(itemID); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	deleted, err := s.store.DeleteMenuItem(r.Context(), itemID)
	if err != nil {
		s.serverError(w, r, err, "Server error deleting menu item")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Menu item deleted successfully",
	})
}
