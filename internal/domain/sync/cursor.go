package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// DefaultLivenessWindow is how recently a cursor must have advanced to be
// considered an in-progress pull. A concurrent pull attempt with the same
// fingerprint inside this window is rejected.
const DefaultLivenessWindow = 2 * time.Minute

// Fingerprint returns a deterministic, order-independent identity for a
// filter set. Semantically identical filters always collide; different
// filters almost never do.
func Fingerprint(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(filters[k])
		b.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ---------------------------------------------------------------------------
// PullCursor Entity
// ---------------------------------------------------------------------------

// PullCursor is the durable, resumable pagination state of one bulk pull,
// keyed by the fingerprint of the filters that started it. Destroyed or
// reset only by explicit operator action.
type PullCursor struct {
	Fingerprint    string
	Kind           JobKind
	NextToken      string
	TotalPulled    int
	Completed      bool
	LastActivityAt time.Time
	FiltersJSON    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPullCursor creates a fresh cursor for the given filter set.
func NewPullCursor(kind JobKind, filters map[string]string) (*PullCursor, error) {
	if !kind.IsValid() {
		return nil, ErrJobInvalidKind
	}
	if filters == nil {
		filters = make(map[string]string)
	}
	raw, err := json.Marshal(filters)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &PullCursor{
		Fingerprint:    Fingerprint(filters),
		Kind:           kind,
		FiltersJSON:    string(raw),
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// IsLive reports whether this cursor indicates an in-progress pull: not
// completed and active within the liveness window.
func (c *PullCursor) IsLive(window time.Duration, now time.Time) bool {
	if c.Completed {
		return false
	}
	if window <= 0 {
		window = DefaultLivenessWindow
	}
	return now.Sub(c.LastActivityAt) < window
}

// Advance records progress after a page. Re-advancing with the token already
// stored (a crash-replay of the same page) is a no-op and returns false.
func (c *PullCursor) Advance(nextToken string, pulled int, completed bool) bool {
	if c.Completed {
		return false
	}
	if !completed && nextToken != "" && nextToken == c.NextToken {
		// Same page persisted twice after a crash; totals already counted.
		c.touch()
		return false
	}
	c.NextToken = nextToken
	c.TotalPulled += pulled
	c.Completed = completed
	c.touch()
	return true
}

// Touch refreshes the liveness timestamp without advancing the token. Called
// once per page fetch so a slow Source keeps the cursor live.
func (c *PullCursor) Touch() {
	c.touch()
}

func (c *PullCursor) touch() {
	now := time.Now()
	c.LastActivityAt = now
	c.UpdatedAt = now
}

// Filters decodes the stored filter snapshot.
func (c *PullCursor) Filters() (map[string]string, error) {
	filters := make(map[string]string)
	if c.FiltersJSON == "" {
		return filters, nil
	}
	if err := json.Unmarshal([]byte(c.FiltersJSON), &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

// FiltersEqual compares the stored snapshot against a filter set by value.
// Used to detect fingerprint collisions across differently-ordered but equal
// filter sets.
func (c *PullCursor) FiltersEqual(filters map[string]string) bool {
	stored, err := c.Filters()
	if err != nil {
		return false
	}
	if len(stored) != len(filters) {
		return false
	}
	for k, v := range filters {
		if sv, ok := stored[k]; !ok || sv != v {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// PullCursorRepository
// ---------------------------------------------------------------------------

// PullCursorRepository persists pull cursors keyed by fingerprint.
type PullCursorRepository interface {
	// FindByFingerprint returns the cursor or ErrCursorNotFound.
	FindByFingerprint(ctx context.Context, fingerprint string) (*PullCursor, error)

	// Save creates or updates a cursor row.
	Save(ctx context.Context, cursor *PullCursor) error

	// Delete removes a cursor. Operator escape hatch and force-restart path.
	Delete(ctx context.Context, fingerprint string) error

	// DeleteByKind removes every cursor for a job kind.
	DeleteByKind(ctx context.Context, kind JobKind) error

	// FindAll lists stored cursors, most recently active first.
	FindAll(ctx context.Context) ([]PullCursor, error)
}
