// Package httptransport is the thin HTTP layer over the registration engine.
// It parses requests, manages the session cookie, and translates engine
// results; every policy decision lives in the engine.
package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"regflow/internal/engine"
	"regflow/internal/files"
	"regflow/internal/registration"
	"regflow/internal/session"
	"regflow/internal/steps"
	"regflow/pkg/apperrors"
)

const sessionCookie = "regflow_session"

// maxUploadBytes bounds multipart uploads; attachments are identity documents,
// not videos.
const maxUploadBytes = 10 << 20

type Handler struct {
	engine   *engine.Engine
	sessions session.Manager
	logger   *slog.Logger
}

func NewHandler(eng *engine.Engine, sessions session.Manager, logger *slog.Logger) *Handler {
	return &Handler{engine: eng, sessions: sessions, logger: logger}
}

// sessionID returns the request's session identity, minting one (and setting
// the cookie) on first contact.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		_ = h.sessions.Touch(r.Context(), cookie.Value)
		return cookie.Value
	}
	id := session.NewID()
	_ = h.sessions.Touch(r.Context(), id)
	h.setSessionCookie(w, id)
	return id
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// engineRequest extracts the per-request material the engine needs: page URL,
// visitor profile, and entry-URL creation hints.
func engineRequest(r *http.Request) engine.Request {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	q := r.URL.Query()
	hints := registration.CreationHints{
		ProductID: q.Get("product_id"),
		RefID:     q.Get("ref_id"),
	}
	if raw := q.Get("sum"); raw != "" {
		if sum, err := strconv.ParseInt(raw, 10, 64); err == nil {
			hints.Sum = &sum
		}
	}
	if raw := q.Get("term"); raw != "" {
		if term, err := strconv.Atoi(raw); err == nil {
			hints.Term = &term
		}
	}

	return engine.Request{
		PageURL: scheme + "://" + r.Host + r.URL.RequestURI(),
		Profile: visitorProfile(r, ip),
		Hints:   hints,
	}
}

// handleInit runs order-id reconciliation and, unless it redirects, returns
// the full init view.
func (h *Handler) handleInit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessionID(w, r)
	req := engineRequest(r)

	decision, err := h.engine.ControlOrderID(ctx, sid, req, r.URL.Query().Get("order_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if decision.Kind == steps.DecisionRedirect {
		if decision.NewSessionID != "" {
			h.setSessionCookie(w, decision.NewSessionID)
		}
		http.Redirect(w, r, decision.RedirectURL, http.StatusFound)
		return
	}

	view, err := h.engine.InitView(ctx, sid, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

type fieldUpdateRequest struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (h *Handler) handleField(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessionID(w, r)

	var update fieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil || update.Name == "" {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest, "invalid field update body"))
		return
	}
	if err := h.engine.UpdateField(ctx, sid, engineRequest(r), update.Name, update.Value); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessionID(w, r)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest, "invalid multipart body"))
		return
	}
	fileType := r.FormValue("type")
	file, header, err := r.FormFile("file")
	if fileType == "" || err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest, "type and file are required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, apperrors.Wrap(apperrors.CodeBadRequest, "read upload", err))
		return
	}

	upload := files.Upload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	}
	if err := h.engine.UpdateFile(ctx, sid, engineRequest(r), fileType, upload); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessionID(w, r)

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest, "invalid update body"))
		return
	}
	if err := h.engine.BulkUpdate(ctx, sid, engineRequest(r), updates); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := h.sessionID(w, r)

	if err := h.engine.Delete(ctx, sid); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response encode failed", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := apperrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": string(code)})
}
