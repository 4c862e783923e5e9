package handlers

import (
	"net/http"
	"time"
)

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

type credentialStatus struct {
	Configured bool       `json:"configured"`
	Masked     string     `json:"masked,omitempty"`
	Source     string     `json:"source,omitempty"`
	IssuedAt   *time.Time `json:"issued_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (a *App) CredentialSave(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := a.decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	cred, err := a.Credentials.Save(r.Context(), req.APIKey)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, credentialStatus{
		Configured: true,
		Masked:     cred.Masked(),
		Source:     cred.Source,
		IssuedAt:   &cred.IssuedAt,
		ExpiresAt:  &cred.ExpiresAt,
	})
}

func (a *App) CredentialGet(w http.ResponseWriter, r *http.Request) {
	cred, ok, err := a.Credentials.Resolve(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok {
		a.json(w, http.StatusOK, credentialStatus{})
		return
	}
	status := credentialStatus{Configured: true, Masked: cred.Masked(), Source: cred.Source}
	if !cred.IssuedAt.IsZero() {
		status.IssuedAt = &cred.IssuedAt
		status.ExpiresAt = &cred.ExpiresAt
	}
	a.json(w, http.StatusOK, status)
}

func (a *App) CredentialClear(w http.ResponseWriter, r *http.Request) {
	if err := a.Credentials.Clear(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
