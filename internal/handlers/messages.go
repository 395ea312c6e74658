package handlers

import (
	"net/http"
	"strings"

	"ttconnect/db"

	"github.com/go-chi/chi/v5"
)

// GetMessagesHandler handles GET /api/workspace/{workspaceId}/messages for
// either role. Messages come back in timestamp order with sender summaries.
func (h *Handler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	if _, ok := h.resolveWorkspace(w, r, workspaceID); !ok {
		return
	}

	messages, err := h.Store.GetWorkspaceMessages(r.Context(), workspaceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// PostMessageHandler handles POST /api/workspace/{workspaceId}/messages. The
// sender is the authenticated user, not the business entity.
func (h *Handler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		writeError(w, http.StatusBadRequest, "Workspace ID is required")
		return
	}

	var input struct {
		Content string `json:"content"`
	}
	if !readJSON(w, r, &input) {
		return
	}

	if strings.TrimSpace(input.Content) == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	claims, ok := h.resolveWorkspace(w, r, workspaceID)
	if !ok {
		return
	}

	msg := &db.Message{
		WorkspaceID: workspaceID,
		SenderID:    claims.UserID,
		Content:     input.Content,
	}
	if err := h.Store.CreateMessage(r.Context(), msg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Message sent successfully",
		"data":    msg,
	})
}
