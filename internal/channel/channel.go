package channel

import (
	"fmt"
	"time"

	"vtnotif/internal/suppression"
)

type ChannelType string

const (
	TypeEmail   ChannelType = "email"
	TypeSMS     ChannelType = "sms"
	TypePush    ChannelType = "push"
	TypePortal  ChannelType = "portal"
	TypeAPIPush ChannelType = "apiPush"
	TypeIVM     ChannelType = "ivm"
)

var constructors = map[ChannelType]func() Channel{
	TypeEmail:   func() Channel { return &Email{} },
	TypeSMS:     func() Channel { return &SMS{} },
	TypePush:    func() Channel { return &Push{} },
	TypePortal:  func() Channel { return &Portal{} },
	TypeAPIPush: func() Channel { return &APIPush{} },
	TypeIVM:     func() Channel { return &IVM{} },
}

// ValidTypes returns all channel types in a fixed order.
func ValidTypes() []ChannelType {
	return []ChannelType{TypeEmail, TypeSMS, TypePush, TypePortal, TypeAPIPush, TypeIVM}
}

func ParseType(s string) (ChannelType, error) {
	t := ChannelType(s)
	if _, ok := constructors[t]; !ok {
		return "", fmt.Errorf("invalid channel type %q", s)
	}
	return t, nil
}

// New returns an empty channel of the given type. The reconciler uses it as
// the zero-touchpoint stand-in when a side of the comparison is absent.
func New(t ChannelType) (Channel, error) {
	mk, ok := constructors[t]
	if !ok {
		return nil, fmt.Errorf("invalid channel type %q", t)
	}
	return mk(), nil
}

// Channel is one delivery mechanism in a user's notification configuration.
//
// Flatten and Diff always yield single-touchpoint instances; variants that
// carry no diffable touchpoints (portal, apiPush, ivm) yield empty results,
// never nil. Diff and Merge across different concrete variants fail fast.
type Channel interface {
	Type() ChannelType
	IsEnabled() bool
	SuppressionConfigs() []suppression.Config
	RequiresSetup() bool
	Touchpoints() []string
	Flatten() []Channel
	Diff(other Channel) (deletions, additions []Channel, err error)
	Merge(other Channel) error
	Clone() Channel
}

// core holds the fields shared by every variant.
type core struct {
	Enabled      bool                 `json:"enabled"`
	Suppressions []suppression.Config `json:"suppressionConfigs,omitempty"`
}

func (c *core) IsEnabled() bool { return c.Enabled }

func (c *core) SuppressionConfigs() []suppression.Config {
	out := make([]suppression.Config, len(c.Suppressions))
	copy(out, c.Suppressions)
	return out
}

func (c *core) cloneCore() core {
	return core{Enabled: c.Enabled, Suppressions: c.SuppressionConfigs()}
}

func (c *core) mergeCore(other *core) {
	c.Enabled = other.Enabled
	c.Suppressions = other.SuppressionConfigs()
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// diffStrings computes the exact-match set differences old minus new and
// new minus old, preserving input order.
func diffStrings(oldSet, newSet []string) (removed, added []string) {
	inOld := make(map[string]bool, len(oldSet))
	for _, s := range oldSet {
		inOld[s] = true
	}
	inNew := make(map[string]bool, len(newSet))
	for _, s := range newSet {
		inNew[s] = true
	}
	for _, s := range oldSet {
		if !inNew[s] {
			removed = append(removed, s)
		}
	}
	for _, s := range newSet {
		if !inOld[s] {
			added = append(added, s)
		}
	}
	return removed, added
}

func mismatch(want ChannelType, other Channel) error {
	if other == nil {
		return fmt.Errorf("channel type mismatch: %s vs nil", want)
	}
	return fmt.Errorf("channel type mismatch: %s vs %s", want, other.Type())
}

// Skip reasons recorded against a ledger when a channel is not attempted.
const (
	SkipDisabled     = "disabled"
	SkipSuppressed   = "suppressed"
	SkipNoTouchpoint = "no_touchpoint"
)

// CanDeliver decides whether a notification may go out through ch at the
// instant at in the owner's time zone. A false result carries the skip
// reason for the ledger.
func CanDeliver(ch Channel, at time.Time, loc *time.Location) (bool, string) {
	if !ch.IsEnabled() {
		return false, SkipDisabled
	}
	if suppression.Suppressed(ch.SuppressionConfigs(), at, loc) {
		return false, SkipSuppressed
	}
	switch ch.Type() {
	case TypeEmail, TypeSMS, TypePush:
		if len(ch.Touchpoints()) == 0 {
			return false, SkipNoTouchpoint
		}
	}
	return true, ""
}
