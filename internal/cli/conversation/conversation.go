// Package conversation holds the client-side transcript: exchanges fetched
// from history plus the ones completed in this session, flattened into
// user/assistant turns for display.
package conversation

import (
	"sort"

	"github.com/MADANW/MuhsinAI/internal/cli/types"
)

// Message is one displayable turn.
type Message struct {
	ExchangeID string
	Role       string // "user" or "assistant"
	Content    string
	Schedule   *types.Schedule
	NotSaved   bool
	CreatedAt  string
}

// Conversation is an oldest-first transcript owned by a single user.
// It is not safe for concurrent use; the TUI drives it from one goroutine.
type Conversation struct {
	ownerID  string
	pageSize int
	nextPage int
	hasMore  bool
	loaded   bool

	// exchanges stays sorted oldest-first.
	exchanges []types.Exchange
}

// New creates an empty conversation for ownerID.
func New(ownerID string, pageSize int) *Conversation {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Conversation{
		ownerID:  ownerID,
		pageSize: pageSize,
		nextPage: 1,
		hasMore:  true,
	}
}

// OwnerID returns the user this transcript belongs to.
func (c *Conversation) OwnerID() string {
	return c.ownerID
}

// PageSize returns the page size history pages are fetched with.
func (c *Conversation) PageSize() int {
	return c.pageSize
}

// NextPage returns the page number to request next.
func (c *Conversation) NextPage() int {
	return c.nextPage
}

// HasMore reports whether older pages probably exist. A full page is taken
// to mean "more"; this guesses wrong exactly when the history length is a
// multiple of the page size, costing one empty fetch.
func (c *Conversation) HasMore() bool {
	return c.hasMore
}

// Loaded reports whether at least one history page arrived.
func (c *Conversation) Loaded() bool {
	return c.loaded
}

// AddPage merges one history page (newest-first, as the server sends it).
// Pages go backwards in time, so the reversed page is prepended. Items
// already present (a send that also shows up in history) are skipped.
func (c *Conversation) AddPage(page *types.HistoryData) {
	c.loaded = true
	c.hasMore = len(page.Items) == c.pageSize
	c.nextPage = page.Page + 1

	seen := make(map[string]bool, len(c.exchanges))
	for _, ex := range c.exchanges {
		seen[ex.ID] = true
	}

	// Reverse to oldest-first before prepending.
	older := make([]types.Exchange, 0, len(page.Items))
	for i := len(page.Items) - 1; i >= 0; i-- {
		if ex := page.Items[i]; !seen[ex.ID] {
			older = append(older, ex)
		}
	}
	c.exchanges = append(older, c.exchanges...)
}

// Append adds a just-completed exchange. The result is discarded when
// ownerID no longer matches the transcript owner: the user logged out (or
// switched accounts) while the request was in flight.
func (c *Conversation) Append(ownerID string, ex *types.Exchange) bool {
	if ownerID != c.ownerID || ex == nil {
		return false
	}
	c.exchanges = append(c.exchanges, *ex)
	return true
}

// Remove drops an exchange locally and returns it for a possible Restore.
// Used for optimistic deletes: remove first, put back if the server says no.
func (c *Conversation) Remove(exchangeID string) (types.Exchange, bool) {
	for i, ex := range c.exchanges {
		if ex.ID == exchangeID {
			removed := ex
			c.exchanges = append(c.exchanges[:i], c.exchanges[i+1:]...)
			return removed, true
		}
	}
	return types.Exchange{}, false
}

// Restore reinserts an exchange removed optimistically, keeping time order.
func (c *Conversation) Restore(ex types.Exchange) {
	c.exchanges = append(c.exchanges, ex)
	sort.SliceStable(c.exchanges, func(i, j int) bool {
		return c.exchanges[i].CreatedAt < c.exchanges[j].CreatedAt
	})
}

// Len returns the number of exchanges held.
func (c *Conversation) Len() int {
	return len(c.exchanges)
}

// Exchanges returns the transcript oldest-first.
func (c *Conversation) Exchanges() []types.Exchange {
	return c.exchanges
}

// Messages flattens the transcript into user/assistant turns, oldest first.
func (c *Conversation) Messages() []Message {
	msgs := make([]Message, 0, len(c.exchanges)*2)
	for _, ex := range c.exchanges {
		msgs = append(msgs, Message{
			ExchangeID: ex.ID,
			Role:       "user",
			Content:    ex.Prompt,
			CreatedAt:  ex.CreatedAt,
		})
		msgs = append(msgs, Message{
			ExchangeID: ex.ID,
			Role:       "assistant",
			Content:    ex.Message,
			Schedule:   ex.Schedule,
			NotSaved:   ex.NotSaved,
			CreatedAt:  ex.CreatedAt,
		})
	}
	return msgs
}
