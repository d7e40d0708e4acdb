package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/mufti/internal/core/domain"
	"github.com/custodia-labs/mufti/internal/core/ports/driving"
)

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status string `json:"status"`
}

// descendantsResponse is the body of GET /categories/{id}/descendants.
type descendantsResponse struct {
	CategoryID  int64   `json:"categoryId"`
	Descendants []int64 `json:"descendants"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := s.pageRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	lang, err := domain.ParseLanguage(q.Get("lang"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	opts := domain.SearchOptions{
		Language: lang,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	if raw := q.Get("category"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		opts.CategoryID = &id
	}

	result, err := s.services.Search.Search(r.Context(), q.Get("q"), opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListFatwas(w http.ResponseWriter, r *http.Request) {
	page, err := s.pageRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := s.services.Fatwas.List(r.Context(), r.URL.Query().Get("category"), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateFatwa(w http.ResponseWriter, r *http.Request) {
	var fatwa domain.Fatwa
	if err := decodeJSON(w, r, &fatwa); err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := s.services.Fatwas.Create(r.Context(), &fatwa, writeOptions(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/fatwas/%d", created.ID))
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetFatwa(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	fatwa, err := s.services.Fatwas.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fatwa)
}

func (s *Server) handleUpdateFatwa(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var fatwa domain.Fatwa
	if err := decodeJSON(w, r, &fatwa); err != nil {
		writeServiceError(w, err)
		return
	}
	if fatwa.ID != 0 && fatwa.ID != id {
		writeError(w, http.StatusBadRequest, "body id does not match path id")
		return
	}
	fatwa.ID = id

	updated, err := s.services.Fatwas.Update(r.Context(), &fatwa, writeOptions(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteFatwa removes a fatwa; ?soft=true deactivates it instead.
func (s *Server) handleDeleteFatwa(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if boolParam(r, "soft") {
		err = s.services.Fatwas.Deactivate(r.Context(), id)
	} else {
		err = s.services.Fatwas.Delete(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.services.Categories.Tree(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, err := s.services.Categories.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var category domain.Category
	if err := decodeJSON(w, r, &category); err != nil {
		writeServiceError(w, err)
		return
	}
	if category.ID != 0 && category.ID != id {
		writeError(w, http.StatusBadRequest, "body id does not match path id")
		return
	}
	category.ID = id

	if err := s.services.Categories.Save(r.Context(), &category); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page, err := s.pageRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	listing, err := s.services.Categories.ListByCategory(r.Context(), id, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleDescendants(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ids, err := s.services.Categories.Descendants(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, descendantsResponse{CategoryID: id, Descendants: ids})
}

// pageRequest reads page and page_size, defaulting to page 1 and the
// configured page size. Range checks are left to the services.
func (s *Server) pageRequest(r *http.Request) (domain.PageRequest, error) {
	page := domain.PageRequest{Page: 1, PageSize: s.config.DefaultPageSize}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("%w: page must be a number", domain.ErrInvalidInput)
		}
		page.Page = n
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("%w: page_size must be a number", domain.ErrInvalidInput)
		}
		page.PageSize = n
	}
	return page, nil
}

func pathID(r *http.Request) (int64, error) {
	return parseID(mux.Vars(r)["id"])
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, raw)
	}
	return id, nil
}

func boolParam(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && v
}

func writeOptions(r *http.Request) driving.WriteOptions {
	return driving.WriteOptions{Translate: boolParam(r, "translate")}
}
