package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"

	"gighunt-engine/internal/config"
	"gighunt-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setSecretReq struct {
	Value string `json:"value"`
}

// account maps /secrets/{name} to the keychain account configured for it.
func (h SecretsHandler) account(r *http.Request) (name, account string, ok bool) {
	name = strings.TrimPrefix(r.URL.Path, "/secrets/")
	cfg := h.CfgVal.Load().(config.Config)
	switch name {
	case "telegram":
		return name, cfg.Notify.Telegram.KeyringAccount, true
	case "llm":
		return name, cfg.LLM.KeyringAccount, true
	}
	return name, "", false
}

func (h SecretsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, acct, ok := h.account(r)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret "+name)
		return
	}
	writeJSON(w, map[string]any{"name": name, "set": secrets.Has(acct)})
}

func (h SecretsHandler) Set(w http.ResponseWriter, r *http.Request) {
	name, acct, ok := h.account(r)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret "+name)
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := secrets.Set(acct, req.Value); err != nil {
		WriteError(w, r, http.StatusBadRequest, "store_failed", "failed to store secret: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, acct, ok := h.account(r)
	if !ok {
		WriteError(w, r, http.StatusNotFound, "unknown_secret", "unknown secret "+name)
		return
	}
	if err := secrets.Delete(acct); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_set", name+" is not set")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
