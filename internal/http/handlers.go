package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

type transactionListResponse struct {
	Transactions []core.TransactionRecord `json:"transactions"`
	Page         int                      `json:"page"`
	PageSize     int                      `json:"page_size"`
	TotalPages   int                      `json:"total_pages"`
	Total        int                      `json:"total"`
	Archived     bool                     `json:"archived"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	values, err := bodyValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tpl, start, rule, err := parseCreateSubmission(owner, values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.transactions.Create(r.Context(), tpl, start, rule)
	if err != nil {
		if errors.Is(err, core.ErrEndBeforeStart) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to create transaction",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.invalidateOwner(owner)

	writeJSON(w, http.StatusCreated, map[string]any{
		"transactions": saved,
		"count":        len(saved),
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var records []core.TransactionRecord
	monthKey, fromArchive := query.archivedMonth(s.now())
	if fromArchive {
		records, err = s.transactions.ListArchived(r.Context(), owner, monthKey)
	} else {
		records, err = s.activeRecords(r, owner)
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list transactions",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	filtered := core.Filter(records, query.Filter)
	core.SortRecords(filtered, query.SortBy, query.Descending)
	page, totalPages := core.Paginate(filtered, query.Page, query.PageSize)

	writeJSON(w, http.StatusOK, transactionListResponse{
		Transactions: page,
		Page:         query.Page,
		PageSize:     query.PageSize,
		TotalPages:   totalPages,
		Total:        len(filtered),
		Archived:     fromArchive,
	})
}

// activeRecords returns the owner's active transactions, served from the
// list cache when possible.
func (s *Server) activeRecords(r *http.Request, owner string) ([]core.TransactionRecord, error) {
	key := owner + "|active"
	if cached, ok := s.listCache.Get(key); ok {
		return cached, nil
	}
	records, err := s.transactions.List(r.Context(), owner)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(key, records)
	return records, nil
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.transactions.Delete(r.Context(), owner, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to delete transaction",
			log.FieldOwnerID, owner, log.FieldRecordID, id, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateOwner(owner)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := s.now()
	key := owner + "|" + core.MonthKeyOf(now)
	if cached, ok := s.dashboardCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	dash, err := s.transactions.Overview(r.Context(), owner, now)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to build dashboard",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	s.dashboardCache.Set(key, dash)
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleRollover(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.rollover.MaybeRollover(r.Context(), owner, s.now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Rollover failed",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "rollover failed")
		return
	}

	if res.RolledOver {
		s.invalidateOwner(owner)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	names, err := s.transactions.Categories(r.Context(), owner)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list categories",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": names})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	values, err := bodyValues(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := sanitizeInput(values.Get("name"))
	if err := s.transactions.AddCategory(r.Context(), owner, name); err != nil {
		if errors.Is(err, core.ErrEmptyCategory) {
			writeError(w, http.StatusBadRequest, "category name is required")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to add category",
			log.FieldOwnerID, owner, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to add category")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"category": name})
}
