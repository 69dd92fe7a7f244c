package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/pouch.works/internal/catalog"
)

func (s *server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.clearCaches()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// clearCaches drops memoized prices after reference data changes.
func (s *server) clearCaches() {
	s.engine.ClearCache()
	s.quotes.ClearCache()
}

// editableCatalog writes 404 and returns false when the catalog is read-only.
func (s *server) editableCatalog(w http.ResponseWriter) bool {
	if s.catalog == nil {
		writeError(w, http.StatusNotFound, "catalog is read-only; set CATALOG_SOURCE=sqlite")
		return false
	}
	return true
}

func (s *server) handleListBagTypes(w http.ResponseWriter, r *http.Request) {
	if !s.editableCatalog(w) {
		return
	}
	bagTypes, err := s.catalog.ListBagTypes(r.Context())
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("list bag types")
		writeError(w, http.StatusInternalServerError, "failed to load bag types")
		return
	}
	writeJSON(w, http.StatusOK, bagTypes)
}

func (s *server) handleUpsertBagType(w http.ResponseWriter, r *http.Request) {
	if !s.editableCatalog(w) {
		return
	}

	var b catalog.BagType
	if !decodeJSON(w, r, &b) {
		return
	}
	b.ID = strings.TrimSpace(chi.URLParam(r, "id"))
	if err := validateBagType(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.catalog.UpsertBagType(r.Context(), b); err != nil {
		s.requestLogger(r).Error().Err(err).Str("bag_type", b.ID).Msg("upsert bag type")
		writeError(w, http.StatusInternalServerError, "failed to save bag type")
		return
	}
	s.clearCaches()
	writeJSON(w, http.StatusOK, b)
}

func (s *server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	if !s.editableCatalog(w) {
		return
	}
	materials, err := s.catalog.ListMaterials(r.Context())
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("list materials")
		writeError(w, http.StatusInternalServerError, "failed to load materials")
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleUpsertMaterial(w http.ResponseWriter, r *http.Request) {
	if !s.editableCatalog(w) {
		return
	}

	var m catalog.Material
	if !decodeJSON(w, r, &m) {
		return
	}
	m.ID = strings.TrimSpace(chi.URLParam(r, "id"))
	if err := validateMaterial(m); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.catalog.UpsertMaterial(r.Context(), m); err != nil {
		s.requestLogger(r).Error().Err(err).Str("material", m.ID).Msg("upsert material")
		writeError(w, http.StatusInternalServerError, "failed to save material")
		return
	}
	s.clearCaches()
	writeJSON(w, http.StatusOK, m)
}

func (s *server) handleListVolumeTiers(w http.ResponseWriter, r *http.Request) {
	if !s.editableCatalog(w) {
		return
	}
	tiers, err := s.catalog.ListVolumeTiers(r.Context())
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("list volume tiers")
		writeError(w, http.StatusInternalServerError, "failed to load volume tiers")
		return
	}
	writeJSON(w, http.StatusOK, tiers)
}

func validateBagType(b catalog.BagType) error {
	switch {
	case b.ID == "":
		return fmt.Errorf("id is required")
	case b.BasePrice < 0:
		return fmt.Errorf("basePrice must be >= 0")
	case b.MinQuantity < 0:
		return fmt.Errorf("minQuantity must be >= 0")
	case b.SetupCost < 0:
		return fmt.Errorf("setupCost must be >= 0")
	}
	return nil
}

func validateMaterial(m catalog.Material) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("id is required")
	case m.PriceMultiplier <= 0:
		return fmt.Errorf("priceMultiplier must be > 0")
	case m.BasePrice < 0:
		return fmt.Errorf("basePrice must be >= 0")
	}
	return nil
}
