package idx

import (
	"crypto/rand"
	"errors"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in its canonical 26 character form. It is used for request
// ids and for the names of uploaded objects.
type ID string

// Zero represents the zero value ID, don't use this unless its a placeholder.
const Zero ID = ""

// maxExtLen bounds the extension kept on an object name.
const maxExtLen = 8

var (
	// ErrInvalid reports a malformed ULID string.
	ErrInvalid = errors.New("idx: invalid ulid")

	// ErrInvalidName reports an object name that is not <ulid><.ext>.
	ErrInvalidName = errors.New("idx: invalid object name")
)

var (
	globalOnce sync.Once
	global     *generator
)

// generator is a tool to safely generate ULIDs concurrently using a monotonic
// source.
type generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (g *generator) NewAt(t time.Time) ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	u := ulid.MustNew(ulid.Timestamp(t), g.entropy)
	return ID(u.String())
}

func initGlobal() {
	src := ulid.Monotonic(rand.Reader, 0) // Max Monotonic Window
	global = &generator{entropy: src}
}

// New returns a new lexicographically sortable ULID-based ID using the
// current time in UTC and a monotonic entropy source.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt generates an ID at the provided time (UTC), useful for tests.
func NewAt(t time.Time) ID {
	globalOnce.Do(initGlobal)
	return global.NewAt(t)
}

// Parse parses a ULID string into an ID and validates its form.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// NewObjectName returns a fresh "<ulid><ext>" name for a stored upload. The
// extension is taken from the original filename, lower-cased, and dropped
// when it is not a short alphanumeric suffix.
func NewObjectName(originalName string) string {
	return New().String() + cleanExt(path.Ext(originalName))
}

// ParseObjectName validates a name produced by NewObjectName. Anything else,
// including path separators, is rejected.
func ParseObjectName(name string) (ID, error) {
	ext := path.Ext(name)
	if ext != "" && cleanExt(ext) != ext {
		return Zero, ErrInvalidName
	}
	id, err := Parse(strings.TrimSuffix(name, ext))
	if err != nil || id.String() != strings.TrimSuffix(name, ext) {
		return Zero, ErrInvalidName
	}
	return id, nil
}

func cleanExt(ext string) string {
	ext = strings.ToLower(ext)
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
