package server

import (
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"chess-directory/internal/apierr"
	"chess-directory/internal/constants"
	"chess-directory/internal/directory"
	"chess-directory/internal/domain"
	"chess-directory/internal/format"
	"chess-directory/internal/middleware"
	"chess-directory/internal/schema"
	"chess-directory/internal/service"
)

// DirectoryServer is the JSON surface consumed by the browser UI.
type DirectoryServer struct {
	players *service.PlayerService
	logger  zerolog.Logger
}

func NewDirectoryServer(players *service.PlayerService, logger zerolog.Logger) *DirectoryServer {
	return &DirectoryServer{players: players, logger: logger}
}

func (s *DirectoryServer) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID(s.logger))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/grandmasters", s.handleListGrandmasters)
		r.Get("/grandmasters/page", s.handleGrandmastersPage)

		r.Route("/players/{username}", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Get("/data", s.handleGetPlayerData)
		})
	})

	return r
}

// PageEntry is a hydrated directory row: the profile plus the derived
// human-relative strings the list view renders.
type PageEntry struct {
	*domain.PlayerProfile
	LastOnlineText string `json:"last_online_text"`
	JoinedText     string `json:"joined_text"`
}

// PageResponse is one filtered, hydrated directory page.
type PageResponse struct {
	Players    []PageEntry `json:"players"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	Total      int         `json:"total"`
	Search     string      `json:"search,omitempty"`
}

func (s *DirectoryServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *DirectoryServer) handleListGrandmasters(w http.ResponseWriter, r *http.Request) {
	players, err := s.players.GetGrandmasters(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, domain.TitledResponse{Players: players})
}

func (s *DirectoryServer) handleGrandmastersPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	page := intQuery(query.Get("page"), 1)
	pageSize := intQuery(query.Get("page_size"), constants.DirectoryPageSize)
	if pageSize < 1 {
		pageSize = constants.DirectoryPageSize
	}
	search := query.Get("search")

	usernames, err := s.players.GetGrandmasters(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view := directory.NewView(usernames, constants.DirectoryPageSize)
	view.SetPageSize(pageSize)
	view.SetSearch(search)
	view.GoTo(page)
	current := view.Current()

	profiles := directory.HydratePage(ctx, s.players, current.Usernames, *zerolog.Ctx(ctx))

	entries := make([]PageEntry, len(profiles))
	for i, profile := range profiles {
		entries[i] = PageEntry{
			PlayerProfile:  profile,
			LastOnlineText: format.LastOnline(profile.LastOnline),
			JoinedText:     format.Date(profile.Joined),
		}
	}

	s.writeJSON(w, http.StatusOK, PageResponse{
		Players:    entries,
		Page:       current.Number,
		PageSize:   pageSize,
		TotalPages: current.TotalPages,
		Total:      current.Total,
		Search:     search,
	})
}

func (s *DirectoryServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := schema.ValidateUsername(username); err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := s.players.GetProfile(r.Context(), username)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *DirectoryServer) handleGetPlayerData(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := schema.ValidateUsername(username); err != nil {
		s.writeError(w, r, err)
		return
	}

	includeStats := false
	if raw := r.URL.Query().Get("include_stats"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err == nil {
			includeStats = parsed
		}
	}

	data, err := s.players.GetPlayerData(r.Context(), username, includeStats)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

func (s *DirectoryServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("response marshal failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *DirectoryServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, envelope := apierr.Render(err)
	zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	s.writeJSON(w, status, envelope)
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
