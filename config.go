package memfs

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/google/memoryfs/attr"
	"github.com/google/memoryfs/clock"
	"github.com/google/memoryfs/metrics"
	"github.com/google/memoryfs/principal"
)

// Transform is a pure string transform applied element-by-element to
// path names: Config.StoreTransform decides the name recorded on an
// entry, Config.LookupTransform decides the directory map key.
type Transform func(string) string

// IdentityTransform returns its argument unchanged.
func IdentityTransform(s string) string { return s }

// CaseInsensitiveTransform folds s for case-insensitive lookup, using
// Unicode case folding rather than a byte-wise ToLower.
func CaseInsensitiveTransform(s string) string {
	return cases.Fold().String(s)
}

// NFCNormalizeTransform normalizes s to Unicode NFC, suitable as a store
// transform on filesystems that canonicalize composed/decomposed forms.
func NFCNormalizeTransform(s string) string {
	return norm.NFC.String(s)
}

// Collator compares two sibling names. A Filesystem stores the configured
// Collator, but no operation consults it: Move and Copy do not order
// their lock acquisition by name and instead serialize on the
// filesystem-wide ordering lock.
type Collator interface {
	Compare(a, b string) int
}

type byteCollator struct{}

func (byteCollator) Compare(a, b string) int { return strings.Compare(a, b) }

// DefaultCollator compares names byte-wise.
var DefaultCollator Collator = byteCollator{}

// Config configures a Filesystem at construction time. Every field has a
// usable zero value except Roots, which must name at least one root.
type Config struct {
	// Roots is the set of root key strings, e.g. {"/"} or {"C:\\"}.
	Roots []string
	// Separator is the single path-element separator. Defaults to "/".
	Separator string
	// WorkingDirectory resolves relative paths; must be absolute if set.
	WorkingDirectory string

	StoreTransform  Transform
	LookupTransform Transform
	Collator        Collator

	// AdditionalViews enables attribute views beyond "basic": any of
	// "dos", "posix", "owner", "user".
	AdditionalViews []string

	// Umask masks bits out of the initial permission set given to newly
	// created files and directories.
	Umask attr.PermissionSet

	// BlockSize is the fixed byte-block size backing File content.
	// Defaults to 4096.
	BlockSize int

	ReadOnly bool

	// MaxTotalBytes caps total bytes allocated across all File blocks
	// filesystem-wide. Zero means unlimited.
	MaxTotalBytes int64

	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	DefaultOwner principal.Principal
	DefaultGroup principal.Principal
}
