package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meur/stadiumforge/internal/catalog"
	"github.com/meur/stadiumforge/internal/models"
)

// handleGetItems returns the catalog's items. ?hero=<slug> narrows to what
// that hero can buy; ?general=true drops hero-specific items.
func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot()
	q := r.URL.Query()

	var items []models.Item
	switch {
	case q.Get("hero") != "":
		var err error
		items, err = snap.ItemsForHero(q.Get("hero"))
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Hero not found")
			return
		}
	case isTrue(q.Get("general")):
		items = snap.GeneralItems()
	default:
		items = snap.Items()
	}

	respondJSON(w, http.StatusOK, models.ItemList{
		Items:      items,
		TotalCount: len(items),
	})
}

// handleGetItem returns a single item by slug
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.catalog.Snapshot().Item(chi.URLParam(r, "slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// handleGetHeroes returns hero summaries
func (s *Server) handleGetHeroes(w http.ResponseWriter, r *http.Request) {
	heroes := s.catalog.Snapshot().Heroes()
	summaries := make([]models.HeroSummary, 0, len(heroes))
	for _, h := range heroes {
		summaries = append(summaries, h.Summary())
	}
	respondJSON(w, http.StatusOK, summaries)
}

// handleGetHero returns a full hero record
func (s *Server) handleGetHero(w http.ResponseWriter, r *http.Request) {
	hero, err := s.catalog.Snapshot().Hero(chi.URLParam(r, "slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Hero not found")
		return
	}
	respondJSON(w, http.StatusOK, hero)
}

// handleGetHeroItems returns general items plus the hero's own
func (s *Server) handleGetHeroItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.Snapshot().ItemsForHero(chi.URLParam(r, "slug"))
	if errors.Is(err, catalog.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Hero not found")
		return
	}
	respondJSON(w, http.StatusOK, models.ItemList{
		Items:      items,
		TotalCount: len(items),
	})
}

// handleGetMeta returns the build manifest
func (s *Server) handleGetMeta(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.catalog.Snapshot().Manifest())
}

func isTrue(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
