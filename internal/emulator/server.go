// Package emulator serves a local, sqlite-backed imitation of the subset of
// the Notion API used by the registry: page creation, database queries and
// page updates.
package emulator

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erazemk/carregistry/internal/notion"
	"github.com/erazemk/carregistry/internal/store"
)

// MaxPageSize is the largest number of results a query returns at once.
const MaxPageSize = 100

// Server handles emulated API requests.
type Server struct {
	DB     *sql.DB
	Token  string
	Logger *zap.Logger
	Now    func() time.Time
}

// NewServer creates an emulator. An empty token accepts any bearer token.
func NewServer(db *sql.DB, token string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{DB: db, Token: token, Logger: logger, Now: time.Now}
}

// Handler returns the HTTP handler with all endpoints registered under /v1.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/pages", s.createPage)
	mux.HandleFunc("PATCH /v1/pages/{id}", s.updatePage)
	mux.HandleFunc("POST /v1/databases/{id}/query", s.queryDatabase)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notion.NewAPIError(http.StatusBadRequest, "invalid_request_url", "Invalid request URL."))
	})
	return s.authenticate(mux)
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" || (s.Token != "" && token != s.Token) {
			writeError(w, notion.NewAPIError(http.StatusUnauthorized, notion.CodeUnauthorized, "API token is invalid."))
			return
		}
		if r.Header.Get("Notion-Version") == "" {
			writeError(w, notion.NewAPIError(http.StatusBadRequest, notion.CodeMissingVersion,
				"Notion-Version header failed validation: Notion-Version header should be defined, instead was `undefined`."))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createPage(w http.ResponseWriter, r *http.Request) {
	var req notion.CreatePageRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, apiErr)
		return
	}
	if req.Parent.DatabaseID == "" {
		writeError(w, validationError("body failed validation: body.parent.database_id should be defined, instead was `undefined`."))
		return
	}

	database, apiErr := s.database(r, req.Parent.DatabaseID)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	props, apiErr := normalize(database.Properties, req.Properties)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	page, err := store.CreatePage(r.Context(), s.DB, database.ID, props, s.Now())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req notion.UpdatePageRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	page, err := store.GetPage(r.Context(), s.DB, id)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if page == nil {
		writeError(w, pageNotFound(id))
		return
	}

	unarchiving := req.Archived != nil && !*req.Archived
	if page.Archived && len(req.Properties) > 0 && !unarchiving {
		writeError(w, validationError("Can't edit block that is archived. You must unarchive the block before editing."))
		return
	}

	database, apiErr := s.database(r, page.Parent.DatabaseID)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	props, apiErr := normalize(database.Properties, req.Properties)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	updated, err := store.UpdatePage(r.Context(), s.DB, id, props, req.Archived, s.Now())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if updated == nil {
		writeError(w, pageNotFound(id))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) queryDatabase(w http.ResponseWriter, r *http.Request) {
	var req notion.QueryRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		writeError(w, apiErr)
		return
	}

	database, apiErr := s.database(r, r.PathValue("id"))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	if req.Filter != nil {
		if apiErr := checkFilter(database.Properties, req.Filter); apiErr != nil {
			writeError(w, apiErr)
			return
		}
	}

	limit := req.PageSize
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := 0
	if req.StartCursor != "" {
		n, err := strconv.Atoi(req.StartCursor)
		if err != nil || n < 0 {
			writeError(w, validationError("body failed validation: body.start_cursor should be a valid cursor."))
			return
		}
		offset = n
	}

	pages, hasMore, err := store.QueryPages(r.Context(), s.DB, database.ID, store.PageQuery{
		Filter: req.Filter,
		Sorts:  req.Sorts,
		Offset: offset,
		Limit:  limit,
	})
	if errors.Is(err, store.ErrUnsupportedQuery) {
		writeError(w, validationError("%v", err))
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	resp := notion.QueryResponse{Object: "list", Results: pages, HasMore: hasMore}
	if resp.Results == nil {
		resp.Results = []notion.Page{}
	}
	if hasMore {
		next := strconv.Itoa(offset + len(pages))
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) database(r *http.Request, id string) (*store.Database, *notion.APIError) {
	database, err := store.GetDatabase(r.Context(), s.DB, id)
	if err != nil {
		s.Logger.Error("loading database", zap.String("database_id", id), zap.Error(err))
		return nil, notion.NewAPIError(http.StatusInternalServerError, notion.CodeInternalError, "Unexpected error occurred.")
	}
	if database == nil {
		return nil, notion.NewAPIError(http.StatusNotFound, notion.CodeObjectNotFound,
			"Could not find database with ID: "+id+". Make sure the relevant pages and databases are shared with your integration.")
	}
	return database, nil
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.Logger.Error("emulator request failed", zap.Error(err))
	writeError(w, notion.NewAPIError(http.StatusInternalServerError, notion.CodeInternalError, "Unexpected error occurred."))
}

func pageNotFound(id string) *notion.APIError {
	return notion.NewAPIError(http.StatusNotFound, notion.CodeObjectNotFound,
		"Could not find page with ID: "+id+". Make sure the relevant pages and databases are shared with your integration.")
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero
// value.
func decodeBody(r *http.Request, target any) *notion.APIError {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return notion.NewAPIError(http.StatusBadRequest, notion.CodeInvalidJSON, "Error parsing JSON body.")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, apiErr *notion.APIError) {
	apiErr.RequestID = uuid.NewString()
	writeJSON(w, apiErr.Status, apiErr)
}
