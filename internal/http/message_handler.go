package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"civic-registry/internal/service"
)

// MessageHandler serves /api/messages.
type MessageHandler struct {
	messageService service.MessageService
	maxBody        int64
	logger         *zap.Logger
}

func NewMessageHandler(messageService service.MessageService, maxBody int64, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, maxBody: maxBody, logger: logger}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	var req service.SendMessageRequest
	if err := readBodyJSON(r, h.maxBody, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	msg, err := h.messageService.SendMessage(r.Context(), caller, req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkData("Message sent and saved successfully", msg, -1))
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	list, err := h.messageService.ListMessages(r.Context(), caller)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", list, len(list)))
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := mustCaller(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "Invalid message ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	msg, err := h.messageService.GetMessage(r.Context(), caller, id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, OkData("", msg, -1))
}
