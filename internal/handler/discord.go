package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/AwwCookies/Chatterbox-sub002/internal/errors"
	"github.com/AwwCookies/Chatterbox-sub002/internal/middleware"
	"github.com/AwwCookies/Chatterbox-sub002/internal/model"
	"github.com/AwwCookies/Chatterbox-sub002/internal/service"
)

type DiscordHandler struct {
	connections *service.ConnectionService
	directory   *service.DirectoryService
	webhooks    *service.WebhookService
	settingsURL string
}

func NewDiscordHandler(
	connections *service.ConnectionService,
	directory *service.DirectoryService,
	webhooks *service.WebhookService,
	settingsURL string,
) *DiscordHandler {
	if settingsURL == "" {
		settingsURL = "/settings/integrations"
	}
	return &DiscordHandler{
		connections: connections,
		directory:   directory,
		webhooks:    webhooks,
		settingsURL: settingsURL,
	}
}

// Routes returns the account-authenticated integration endpoints. The OAuth
// callback is separate (see Callback) because Discord redirects the browser
// there without our bearer token.
func (h *DiscordHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/connect", h.Connect)
	r.Get("/status", h.Status)
	r.Get("/guilds", h.Guilds)
	r.Get("/guilds/{guildID}/channels", h.Channels)
	r.Get("/webhooks", h.ListWebhooks)
	r.Post("/webhooks", h.CreateWebhook)
	r.Patch("/webhooks/{webhookID}", h.UpdateWebhook)
	r.Delete("/webhooks/{webhookID}", h.DeleteWebhook)
	r.Post("/disconnect", h.Disconnect)

	return r
}

func (h *DiscordHandler) Connect(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	authURL, err := h.connections.AuthURL(r.Context(), account.ID)
	if err != nil {
		log.Error().Err(err).Str("accountId", account.ID).Msg("failed to build Discord auth URL")
		writeError(w, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles the browser redirect from Discord's consent screen.
func (h *DiscordHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Warn().Str("error", errMsg).Msg("Discord OAuth denied by user or provider")
		http.Redirect(w, r, h.settingsURL+"?discord=denied", http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Redirect(w, r, h.settingsURL+"?discord=missing_params", http.StatusTemporaryRedirect)
		return
	}

	conn, err := h.connections.CompleteLink(r.Context(), code, state)
	if err != nil {
		log.Error().Err(err).Msg("Discord OAuth callback failed")
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidOAuthState {
			http.Redirect(w, r, h.settingsURL+"?discord=invalid_state", http.StatusTemporaryRedirect)
			return
		}
		http.Redirect(w, r, h.settingsURL+"?discord=failed", http.StatusTemporaryRedirect)
		return
	}

	log.Info().Str("accountId", conn.AccountID).Msg("Discord account linked")

	http.Redirect(w, r, h.settingsURL+"?discord=connected", http.StatusTemporaryRedirect)
}

func (h *DiscordHandler) Status(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	status, err := h.connections.Status(r.Context(), account.ID)
	if err != nil {
		log.Error().Err(err).Str("accountId", account.ID).Msg("failed to load Discord status")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (h *DiscordHandler) Guilds(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	force := r.URL.Query().Get("refresh") == "true"

	guilds, err := h.directory.Guilds(r.Context(), account.ID, force)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"guilds": guilds})
}

func (h *DiscordHandler) Channels(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	guildID := chi.URLParam(r, "guildID")
	force := r.URL.Query().Get("refresh") == "true"

	channels, err := h.directory.Channels(r.Context(), account.ID, guildID, force)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

type createWebhookRequest struct {
	GuildID   string            `json:"guildId"`
	ChannelID string            `json:"channelId"`
	Spec      model.WebhookSpec `json:"spec"`
}

func (h *DiscordHandler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req createWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if req.GuildID == "" {
		writeError(w, apperrors.MissingRequired("guildId"))
		return
	}
	if req.ChannelID == "" {
		writeError(w, apperrors.MissingRequired("channelId"))
		return
	}

	webhook, err := h.webhooks.Create(r.Context(), account.ID, req.GuildID, req.ChannelID, req.Spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, webhook)
}

func (h *DiscordHandler) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	webhooks, err := h.webhooks.List(r.Context(), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"webhooks": webhooks})
}

type updateWebhookRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	Muted       *bool   `json:"muted,omitempty"`
}

func (h *DiscordHandler) UpdateWebhook(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	webhookID := chi.URLParam(r, "webhookID")

	var req updateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	webhook, err := h.webhooks.Update(r.Context(), account.ID, webhookID, model.UpdateWebhookParams{
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
		Enabled:     req.Enabled,
		Muted:       req.Muted,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, webhook)
}

func (h *DiscordHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())
	webhookID := chi.URLParam(r, "webhookID")

	if err := h.webhooks.Delete(r.Context(), account.ID, webhookID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type disconnectRequest struct {
	DeleteWebhooks bool `json:"deleteWebhooks"`
}

func (h *DiscordHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	account := middleware.GetAccount(r.Context())

	var req disconnectRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
			return
		}
	}

	result, err := h.connections.Disconnect(r.Context(), account.ID, req.DeleteWebhooks)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"remoteFailures": result.RemoteFailures,
	})
}
