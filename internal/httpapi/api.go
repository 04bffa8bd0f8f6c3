// Package httpapi serves the CRM over REST. Every /api route except the
// health and metrics endpoints is scoped to the tenant named by the X-User-ID
// header.
package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wagnerlima/tenant-crm/internal/apperr"
	"github.com/wagnerlima/tenant-crm/internal/storage"
)

// TenantHeader carries the tenant id of a request.
const TenantHeader = "X-User-ID"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// API holds the dependencies of the REST handlers.
type API struct {
	reg *storage.Registry
	log *zap.Logger
}

func New(reg *storage.Registry, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{reg: reg, log: log}
}

// Register adds every REST route to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.health)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/user/init", a.initTenant)
	mux.HandleFunc("GET /api/user/database/info", a.databaseInfo)
	mux.HandleFunc("GET /api/user/database/download", a.downloadDatabase)
	mux.HandleFunc("POST /api/user/database/upload", a.uploadDatabase)
	mux.HandleFunc("DELETE /api/user/database", a.deleteDatabase)

	mux.HandleFunc("GET /api/contacts", a.listContacts)
	mux.HandleFunc("POST /api/contacts", a.createContact)
	mux.HandleFunc("GET /api/contacts/{id}", a.getContact)
	mux.HandleFunc("PUT /api/contacts/{id}", a.updateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", a.deleteContact)
	mux.HandleFunc("GET /api/contacts/export/{format}", a.exportContacts)

	mux.HandleFunc("GET /api/companies", a.listCompanies)
	mux.HandleFunc("POST /api/companies", a.createCompany)
	mux.HandleFunc("GET /api/companies/{id}", a.getCompany)
	mux.HandleFunc("PUT /api/companies/{id}", a.updateCompany)
	mux.HandleFunc("DELETE /api/companies/{id}", a.deleteCompany)
	mux.HandleFunc("GET /api/companies/export/{format}", a.exportCompanies)

	mux.HandleFunc("GET /api/deals", a.listDeals)
	mux.HandleFunc("POST /api/deals", a.createDeal)
	mux.HandleFunc("GET /api/deals/pipeline", a.pipeline)
	mux.HandleFunc("GET /api/deals/{id}", a.getDeal)
	mux.HandleFunc("PUT /api/deals/{id}", a.updateDeal)
	mux.HandleFunc("DELETE /api/deals/{id}", a.deleteDeal)
	mux.HandleFunc("GET /api/deals/export/{format}", a.exportDeals)

	mux.HandleFunc("GET /api/activities", a.listActivities)
	mux.HandleFunc("POST /api/activities", a.createActivity)
	mux.HandleFunc("GET /api/activities/{id}", a.getActivity)
	mux.HandleFunc("PUT /api/activities/{id}", a.updateActivity)
	mux.HandleFunc("DELETE /api/activities/{id}", a.deleteActivity)
	mux.HandleFunc("GET /api/activities/export/{format}", a.exportActivities)

	mux.HandleFunc("GET /api/notes", a.listNotes)
	mux.HandleFunc("POST /api/notes", a.createNote)
	mux.HandleFunc("DELETE /api/notes/{id}", a.deleteNote)

	mux.HandleFunc("GET /api/search", a.search)
	mux.HandleFunc("GET /api/dashboard/stats", a.dashboard)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "open_handles": a.reg.Len()})
}

// tenantID reads and validates the tenant header.
func tenantID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get(TenantHeader))
	if raw == "" {
		return "", apperr.Validation("missing %s header", TenantHeader)
	}
	return storage.ParseTenantID(raw)
}

// withStore runs fn against the request's tenant store and writes its result
// with the given status. A nil result writes no body.
func (a *API) withStore(w http.ResponseWriter, r *http.Request, op string, status int, fn func(*storage.TenantStore) (any, error)) {
	id, err := tenantID(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var out any
	err = a.reg.With(r.Context(), id, op, func(s *storage.TenantStore) error {
		var err error
		out, err = fn(s)
		return err
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if out == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as {"error": msg} with the status of its kind.
// Internal failures are logged and their detail withheld.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		a.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes the request body into v. Fields absent from the body
// keep their current value in v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshalStrict(data, v)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("read request body: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperr.Validation("request body is empty")
	}
	return data, nil
}

func unmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id %q", raw)
	}
	return id, nil
}
