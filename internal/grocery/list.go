// Package grocery holds the item list controller: the single owner of the
// grocery list state and of every call to the remote store.
package grocery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/idilsaglam/grocery/internal/api"
	"github.com/idilsaglam/grocery/internal/model"
)

// DefaultLoadDelay is the pause before the initial fetch.
const DefaultLoadDelay = time.Second

var (
	// ErrItemNotFound is returned when an operation names an id that is not
	// in the local list.
	ErrItemNotFound = errors.New("item not found")
	// ErrAlreadyLoaded is returned by a second call to Load.
	ErrAlreadyLoaded = errors.New("list already loaded")
)

// Policy decides when a remote mutation is committed to local state.
type Policy int

const (
	// PolicyDefault commits add and toggle only after the store confirms,
	// but always drops a deleted item locally, even when the store refused.
	PolicyDefault Policy = iota
	// PolicyConfirmed commits every mutation only after the store confirms.
	PolicyConfirmed
)

func (p Policy) String() string {
	switch p {
	case PolicyConfirmed:
		return "confirmed"
	default:
		return "default"
	}
}

// List is the item list controller.
//
// All exported methods are safe for concurrent use. The lock is never held
// across a store call, so overlapping mutations of one id are not ordered:
// the last local write wins.
type List struct {
	store  api.Store
	log    *slog.Logger
	now    func() time.Time
	delay  time.Duration
	policy Policy

	mu          sync.Mutex
	items       []model.Item
	draft       string
	filter      string
	loading     bool
	fetchErr    string
	loadStarted bool
}

// Option configures a List.
type Option func(*List)

// WithLoadDelay overrides DefaultLoadDelay. Zero disables the pause.
func WithLoadDelay(d time.Duration) Option {
	return func(l *List) { l.delay = d }
}

// WithClock sets the time source used to mint item ids.
func WithClock(now func() time.Time) Option {
	return func(l *List) { l.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *List) { l.log = log }
}

func WithPolicy(p Policy) Option {
	return func(l *List) { l.policy = p }
}

// New returns a controller bound to store. The list starts empty and in the
// loading state; call Load once to populate it.
func New(store api.Store, opts ...Option) *List {
	l := &List{
		store:   store,
		log:     slog.Default(),
		now:     time.Now,
		delay:   DefaultLoadDelay,
		items:   []model.Item{},
		loading: true,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load performs the one initial fetch. It waits for the configured delay,
// then replaces the list with the store's collection. A failure is kept as
// the fetch error. The loading flag is cleared however the attempt ends.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.loadStarted {
		l.mu.Unlock()
		return ErrAlreadyLoaded
	}
	l.loadStarted = true
	l.loading = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	if err := l.wait(ctx); err != nil {
		l.failLoad(err)
		return err
	}

	items, err := l.store.List(ctx)
	if err != nil {
		l.failLoad(err)
		return fmt.Errorf("fetch items: %w", err)
	}

	l.mu.Lock()
	l.items = append([]model.Item{}, items...)
	l.fetchErr = ""
	l.mu.Unlock()
	l.log.Debug("items loaded", "count", len(items))
	return nil
}

func (l *List) wait(ctx context.Context) error {
	if l.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(l.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *List) failLoad(err error) {
	l.log.Error("error fetching items", "error", err)
	l.mu.Lock()
	l.fetchErr = err.Error()
	l.mu.Unlock()
}

// Add creates an item from text and appends it once the store accepts it.
// Text is not validated. On success the draft is cleared if it still holds text.
func (l *List) Add(ctx context.Context, text string) (model.Item, error) {
	it := model.Item{
		ID:   strconv.FormatInt(l.now().UnixMilli(), 10),
		Item: text,
	}
	if err := l.store.Create(ctx, it); err != nil {
		l.log.Error("error creating new item", "item", text, "error", err)
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}

	l.mu.Lock()
	l.items = append(l.items, it)
	if l.draft == text {
		l.draft = ""
	}
	l.mu.Unlock()
	return it, nil
}

// Toggle flips the checked flag of id once the store accepts the change.
// An unknown id sends nothing and returns ErrItemNotFound.
func (l *List) Toggle(ctx context.Context, id string) error {
	l.mu.Lock()
	i := indexOf(l.items, id)
	if i < 0 {
		l.mu.Unlock()
		l.log.Warn("toggle on unknown item", "id", id)
		return fmt.Errorf("toggle %q: %w", id, ErrItemNotFound)
	}
	next := !l.items[i].Checked
	l.mu.Unlock()

	if err := l.store.SetChecked(ctx, id, next); err != nil {
		l.log.Error("error updating item", "id", id, "error", err)
		return fmt.Errorf("update item: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// the item may have been deleted while the request was in flight
	if i = indexOf(l.items, id); i < 0 {
		return nil
	}
	updated := make([]model.Item, len(l.items))
	copy(updated, l.items)
	updated[i].Checked = next
	l.items = updated
	return nil
}

// Delete removes id from the store. Under PolicyDefault the item is dropped
// locally even when the store call fails; the failure is still returned.
func (l *List) Delete(ctx context.Context, id string) error {
	err := l.store.Delete(ctx, id)
	if err != nil {
		l.log.Error("error deleting item", "id", id, "error", err)
		err = fmt.Errorf("delete item: %w", err)
		if l.policy == PolicyConfirmed {
			return err
		}
	}

	l.mu.Lock()
	l.items = without(l.items, id)
	l.mu.Unlock()
	return err
}

// SetFilter sets the search text applied by Visible.
func (l *List) SetFilter(text string) {
	l.mu.Lock()
	l.filter = text
	l.mu.Unlock()
}

func (l *List) Filter() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// SetDraft stores the pending new-item text.
func (l *List) SetDraft(text string) {
	l.mu.Lock()
	l.draft = text
	l.mu.Unlock()
}

func (l *List) Draft() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draft
}

// Items returns a copy of the authoritative list.
func (l *List) Items() []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Item{}, l.items...)
}

// Visible returns the items matching the current filter, in list order.
func (l *List) Visible() []model.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Match(l.items, l.filter)
}

// Loading reports whether the initial fetch is still pending.
func (l *List) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// FetchError is the detail of a failed initial fetch, or "".
func (l *List) FetchError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetchErr
}

// Snapshot is a consistent copy of the controller state for renderers.
type Snapshot struct {
	Visible    []model.Item
	Total      int
	Checked    int
	Filter     string
	Draft      string
	Loading    bool
	FetchError string
}

func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	checked, _ := model.Stats(l.items)
	return Snapshot{
		Visible:    Match(l.items, l.filter),
		Total:      len(l.items),
		Checked:    checked,
		Filter:     l.filter,
		Draft:      l.draft,
		Loading:    l.loading,
		FetchError: l.fetchErr,
	}
}

func indexOf(items []model.Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func without(items []model.Item, id string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
