package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"chess-directory/internal/domain"
)

// Filter returns the usernames containing term, case-insensitively,
// preserving the original ordering. An empty term filters nothing.
func Filter(usernames []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return usernames
	}

	out := make([]string, 0, len(usernames))
	for _, username := range usernames {
		if strings.Contains(strings.ToLower(username), term) {
			out = append(out, username)
		}
	}
	return out
}

// TotalPages is ceil(total/pageSize), never less than 1: page 1
// exists even for an empty list.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces a 1-based page number into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Page is one rendered slice of the filtered directory.
type Page struct {
	Usernames  []string
	Number     int
	TotalPages int
	Total      int
}

// Paginate slices the filtered list into the requested 1-based page.
// Out-of-range page numbers are clamped, never an error.
func Paginate(filtered []string, page, pageSize int) Page {
	totalPages := TotalPages(len(filtered), pageSize)
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Usernames:  filtered[start:end],
		Number:     page,
		TotalPages: totalPages,
		Total:      len(filtered),
	}
}

// View is the paging state over the full username list. Changing the
// search term or the page size resets to page 1 so the view never
// lands on a page that no longer exists.
type View struct {
	usernames []string
	search    string
	page      int
	pageSize  int
}

func NewView(usernames []string, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &View{usernames: usernames, page: 1, pageSize: pageSize}
}

func (v *View) SetSearch(term string) {
	if term == v.search {
		return
	}
	v.search = term
	v.page = 1
}

func (v *View) SetPageSize(size int) {
	if size <= 0 || size == v.pageSize {
		return
	}
	v.pageSize = size
	v.page = 1
}

func (v *View) GoTo(page int) {
	v.page = ClampPage(page, TotalPages(len(v.filtered()), v.pageSize))
}

func (v *View) Next() { v.GoTo(v.page + 1) }
func (v *View) Prev() { v.GoTo(v.page - 1) }

func (v *View) filtered() []string {
	return Filter(v.usernames, v.search)
}

// Current renders the view's page.
func (v *View) Current() Page {
	return Paginate(v.filtered(), v.page, v.pageSize)
}

// ProfileFetcher is the slice of the player service the hydrator
// needs.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, username string) (*domain.PlayerProfile, error)
}

// HydratePage fetches the profile for every username on the page in
// parallel and waits for all of them to settle. One failed fetch
// never fails the page: the failing entry becomes a placeholder
// carrying the real username, and the failure is logged.
func HydratePage(ctx context.Context, fetcher ProfileFetcher, usernames []string, logger zerolog.Logger) []*domain.PlayerProfile {
	profiles := make([]*domain.PlayerProfile, len(usernames))

	var wg sync.WaitGroup
	wg.Add(len(usernames))
	for i, username := range usernames {
		go func(i int, username string) {
			defer wg.Done()

			profile, err := fetcher.GetProfile(ctx, username)
			if err != nil {
				logger.Warn().Err(err).Str("username", username).Msg("profile hydration failed, substituting placeholder")
				profiles[i] = domain.PlaceholderProfile(username)
				return
			}
			profiles[i] = profile
		}(i, username)
	}
	wg.Wait()

	return profiles
}
