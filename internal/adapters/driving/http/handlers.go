package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			checks["queue"] = err.Error()
			healthy = false
		} else {
			checks["queue"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, checks)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token != "" {
		_ = s.authService.Logout(r.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, authCtx)
}

// User management endpoints

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.authService.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// CreateUserRequest is the payload for creating an operator account
type CreateUserRequest struct {
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authService.CreateUser(r.Context(), req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToSummary())
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.authService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Bucket endpoints

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.catalogService.ListBuckets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list buckets")
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var bucket domain.Bucket
	if err := json.NewDecoder(r.Body).Decode(&bucket); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.catalogService.CreateBucket(r.Context(), &bucket); err != nil {
		writeServiceError(w, err, "failed to create bucket")
		return
	}
	writeJSON(w, http.StatusCreated, bucket)
}

func (s *Server) handleGetBucket(w http.ResponseWriter, r *http.Request) {
	bucket, err := s.catalogService.GetBucket(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "failed to get bucket")
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

func (s *Server) handleUpdateBucket(w http.ResponseWriter, r *http.Request) {
	var bucket domain.Bucket
	if err := json.NewDecoder(r.Body).Decode(&bucket); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bucket.ID = r.PathValue("id")

	if err := s.catalogService.UpdateBucket(r.Context(), &bucket); err != nil {
		writeServiceError(w, err, "failed to update bucket")
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogService.DeleteBucket(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrBucketInUse) {
			writeError(w, http.StatusConflict, "bucket is in use")
			return
		}
		writeServiceError(w, err, "failed to delete bucket")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Document type endpoints

func (s *Server) handleListDocumentTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.catalogService.ListDocumentTypes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list document types")
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleCreateDocumentType(w http.ResponseWriter, r *http.Request) {
	var dt domain.DocumentType
	if err := json.NewDecoder(r.Body).Decode(&dt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.catalogService.CreateDocumentType(r.Context(), &dt); err != nil {
		writeServiceError(w, err, "failed to create document type")
		return
	}
	writeJSON(w, http.StatusCreated, dt)
}

func (s *Server) handleUpdateDocumentType(w http.ResponseWriter, r *http.Request) {
	var dt domain.DocumentType
	if err := json.NewDecoder(r.Body).Decode(&dt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dt.ID = r.PathValue("id")

	if err := s.catalogService.UpdateDocumentType(r.Context(), &dt); err != nil {
		writeServiceError(w, err, "failed to update document type")
		return
	}
	writeJSON(w, http.StatusOK, dt)
}

func (s *Server) handleDeleteDocumentType(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogService.DeleteDocumentType(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrDocumentTypeInUse) {
			writeError(w, http.StatusConflict, "document type is in use")
			return
		}
		writeServiceError(w, err, "failed to delete document type")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Barcode pattern endpoints

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.catalogService.ListPatterns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list patterns")
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}

func (s *Server) handleCreatePattern(w http.ResponseWriter, r *http.Request) {
	var p domain.BarcodePattern
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.catalogService.CreatePattern(r.Context(), &p); err != nil {
		writeServiceError(w, err, "failed to create pattern")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePattern(w http.ResponseWriter, r *http.Request) {
	var p domain.BarcodePattern
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = r.PathValue("id")

	if err := s.catalogService.UpdatePattern(r.Context(), &p); err != nil {
		writeServiceError(w, err, "failed to update pattern")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogService.DeletePattern(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err, "failed to delete pattern")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Document catalog endpoints

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	bucketID := r.URL.Query().Get("bucket_id")
	if bucketID == "" {
		writeError(w, http.StatusBadRequest, "bucket_id is required")
		return
	}
	limit, offset := parsePagination(r, 50)

	docs, err := s.catalogService.ListDocuments(r.Context(), bucketID, limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.catalogService.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Review queue endpoints

func (s *Server) handleListReviewQueue(w http.ResponseWriter, r *http.Request) {
	bucketID := r.URL.Query().Get("bucket_id")
	status := domain.UnindexedStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.UnindexedStatusPending
	}
	limit, offset := parsePagination(r, 50)

	items, err := s.reviewService.ListQueue(r.Context(), bucketID, status, limit, offset)
	if err != nil {
		writeServiceError(w, err, "failed to list review queue")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.reviewService.PendingCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count pending items")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pending": count})
}

func (s *Server) handleGetReviewItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.reviewService.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "failed to get review item")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleResolveReviewItem(w http.ResponseWriter, r *http.Request) {
	var res domain.Resolution
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	authCtx := GetAuthContext(r.Context())
	doc, err := s.reviewService.Resolve(r.Context(), r.PathValue("id"), res, authCtx.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemResolved):
			writeError(w, http.StatusConflict, "item already resolved")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "review item not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve item")
		}
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDiscardReviewItem(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	err := s.reviewService.Discard(r.Context(), r.PathValue("id"), authCtx.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrItemResolved):
			writeError(w, http.StatusConflict, "item already resolved")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "review item not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to discard item")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

// Monitor config endpoints

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.monitorService.ListConfigs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list configs")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.MonitorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.monitorService.CreateConfig(r.Context(), &cfg); err != nil {
		writeServiceError(w, err, "failed to create config")
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.monitorService.GetConfig(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "failed to get config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg domain.MonitorConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg.ID = r.PathValue("id")

	if err := s.monitorService.UpdateConfig(r.Context(), &cfg); err != nil {
		writeServiceError(w, err, "failed to update config")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.monitorService.DeleteConfig(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err, "failed to delete config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Poll run endpoints

func (s *Server) handleTriggerPoll(w http.ResponseWriter, r *http.Request) {
	task, err := s.pollService.TriggerPoll(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrPollInProgress) {
			writeError(w, http.StatusConflict, "poll already in progress")
			return
		}
		writeServiceError(w, err, "failed to trigger poll")
		return
	}
	writeJSON(w, http.StatusAccepted, task)
}

func (s *Server) handleListConfigRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)
	runs, err := s.pollService.ListRunLogs(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.pollService.LatestRun(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "failed to get latest run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)
	runs, err := s.pollService.ListRunLogs(r.Context(), "", limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// Admin endpoints

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{}

	if s.taskQueue != nil {
		if queueStats, err := s.taskQueue.Stats(r.Context()); err == nil {
			stats["queue"] = queueStats
		}
	}
	if pending, err := s.reviewService.PendingCount(r.Context()); err == nil {
		stats["review_pending"] = pending
	}

	writeJSON(w, http.StatusOK, stats)
}

// Helpers

func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// writeServiceError maps common service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
