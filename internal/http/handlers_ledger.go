package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// writeError answers with the mapped status. Store failures were already
// logged by the ledger.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) || errors.Is(err, services.ErrValidation) {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Rejected request",
			log.FieldPath, r.URL.Path, "error", err)
	}
	ErrorFor(err).Write(w)
}

func (s *Server) loadFailed(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "View load failed",
		log.FieldPath, r.URL.Path, "error", err)
	LoadFailedError().Write(w)
}

// handleListTransactions returns the raw month groups, newest first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	groups, err := s.ledger.MonthGroups(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	if groups == nil {
		groups = []core.MonthGroup{}
	}
	NewJSONResponse().Body(groups).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.TransactionInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.ledger.UpdateTransaction(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	t, err := ParseTxType(r.URL.Query(), "type", "")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cats, err := s.ledger.Categories(r.Context())
	if err != nil {
		s.loadFailed(w, r, err)
		return
	}
	if t != "" {
		cats = categoriesOfType(cats, t)
	}
	if cats == nil {
		cats = []core.Category{}
	}
	NewJSONResponse().Body(cats).Write(w)
}

func categoriesOfType(cats []core.Category, t core.TxType) []core.Category {
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in core.CategoryInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.ledger.AddCategory(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in core.CategoryInput
	if err := DecodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
