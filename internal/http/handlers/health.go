package handlers

import (
	"net/http"
)

const banner = "🤖 Bot Jurídico Online - Sistema Operacional"

func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(banner))
}

type healthResponse struct {
	Status        string   `json:"status"`
	ModulesLoaded int      `json:"modules_loaded"`
	Modules       []string `json:"modules"`
	Store         string   `json:"store"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	modules := a.Updates.Modules()
	a.json(w, http.StatusOK, healthResponse{
		Status:        "online",
		ModulesLoaded: len(modules),
		Modules:       modules,
		Store:         a.StoreDriver,
	})
}
