// Package platform holds the closed set of target social networks and the
// prompt template each one uses.
package platform

import "strings"

// Platform name constants.
// Use these instead of string literals for compile-time safety.
const (
	Instagram = "instagram"
	LinkedIn  = "linkedin"
	Twitter   = "twitter"
)

// ---------------------------------------------------------------------------
// Platform type - represents a validated platform
// ---------------------------------------------------------------------------

// Platform represents a validated target platform.
// Zero value is invalid and must not be used with Prompt().
// Use Parse to create from user input, or the pre-parsed values.
type Platform struct {
	name string
}

// Pre-parsed platforms for use in code.
var (
	InstagramPlatform = Platform{name: Instagram}
	LinkedInPlatform  = Platform{name: LinkedIn}
	TwitterPlatform   = Platform{name: Twitter}
)

// order defines the canonical order for Names().
var order = []string{Instagram, LinkedIn, Twitter}

// Parse validates and parses a platform name.
// Matching is exact: "Instagram" is rejected.
// Returns *UnsupportedError (matching ErrUnsupported) otherwise.
func Parse(s string) (Platform, error) {
	switch s {
	case Instagram, LinkedIn, Twitter:
		return Platform{name: s}, nil
	}
	return Platform{}, &UnsupportedError{Value: s, Allowed: Names()}
}

// MustParse parses a platform name, panicking if invalid.
// Use only for compile-time constants and tests.
func MustParse(s string) Platform {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Names returns the supported platform names in a stable order.
func Names() []string {
	result := make([]string, len(order))
	copy(result, order)
	return result
}

// String returns the platform name. Returns empty string for zero value.
func (p Platform) String() string {
	return p.name
}

// IsZero returns true if no platform is set.
func (p Platform) IsZero() bool {
	return p.name == ""
}

// Prompt returns the raw template for this platform, with its
// description slot unfilled.
// Panics if called on zero value.
func (p Platform) Prompt() string {
	switch p.name {
	case Instagram:
		return instagramPrompt
	case LinkedIn:
		return linkedinPrompt
	case Twitter:
		return twitterPrompt
	}
	panic("platform.Platform.Prompt called on zero value")
}

// Render fills the template with description and appends the additional
// context section when additionalContext is non-empty. The context is
// appended verbatim.
func (p Platform) Render(description, additionalContext string) string {
	prompt := strings.Replace(p.Prompt(), descriptionSlot, description, 1)
	if additionalContext != "" {
		prompt += "\n\nAdditional context: " + additionalContext
	}
	return prompt
}

// BuildPrompt parses platformName and renders its prompt.
func BuildPrompt(description, platformName, additionalContext string) (string, error) {
	p, err := Parse(platformName)
	if err != nil {
		return "", err
	}
	return p.Render(description, additionalContext), nil
}
