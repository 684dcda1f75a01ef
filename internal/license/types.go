package license

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// Plan is a license duration tier
type Plan string

const (
	PlanTrial    Plan = "trial"    // 3 days
	PlanStarter  Plan = "starter"  // 5 days
	PlanMonthly  Plan = "monthly"  // 30 days
	PlanLifetime Plan = "lifetime" // never expires
)

// Days returns the plan duration in days; 0 means no expiry
func (p Plan) Days() int {
	switch p {
	case PlanTrial:
		return 3
	case PlanStarter:
		return 5
	case PlanMonthly:
		return 30
	default:
		return 0
	}
}

// Valid reports whether the plan is a known tier
func (p Plan) Valid() bool {
	switch p {
	case PlanTrial, PlanStarter, PlanMonthly, PlanLifetime:
		return true
	}
	return false
}

// ParsePlan parses a plan name
func ParsePlan(s string) (Plan, error) {
	p := Plan(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown plan %q", s)
	}
	return p, nil
}

// License is one activation code and its binding state. A license binds to
// the first device that activates it.
type License struct {
	Key         string     `json:"key"`
	Plan        Plan       `json:"plan"`
	UserName    string     `json:"user_name,omitempty"`
	DeviceID    string     `json:"device_id,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Active      bool       `json:"active"`
	Used        bool       `json:"used"`
	CreatedAt   time.Time  `json:"created_at"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil means lifetime
}

// Expired reports whether the license has passed its expiry
func (l *License) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// codeCharset omits lookalike characters (I, O, 0, 1)
const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codePrefix = "GNP"

var codePattern = regexp.MustCompile(`^GNP(-[A-HJ-NP-Z2-9]{4}){3}$`)

// GenerateCode produces a random activation code in the form
// GNP-XXXX-XXXX-XXXX
func GenerateCode() (string, error) {
	segments := make([]string, 3)
	for i := range segments {
		var b strings.Builder
		for j := 0; j < 4; j++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate license code: %w", err)
			}
			b.WriteByte(codeCharset[n.Int64()])
		}
		segments[i] = b.String()
	}
	return codePrefix + "-" + strings.Join(segments, "-"), nil
}

// ValidateCodeFormat checks the code shape without consulting the store
func ValidateCodeFormat(code string) error {
	if !codePattern.MatchString(strings.ToUpper(strings.TrimSpace(code))) {
		return errors.New("malformed license code")
	}
	return nil
}

// NormalizeCode trims and uppercases a user-entered code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
