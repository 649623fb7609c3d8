package credentials

// Token is a short-lived credential derived during a run. It is never
// persisted; it lives in the RunContext until process exit.
//
// Token deliberately does not implement anything that would leak the full
// value through logging: String and the %v/%s verbs only ever show a bounded
// prefix. Use Reveal at the point the value goes on the wire.
type Token struct {
	value string
}

const redactPrefixLen = 6

// NewToken wraps a raw credential value.
func NewToken(value string) Token {
	return Token{value: value}
}

// Reveal returns the full credential value.
func (t Token) Reveal() string {
	return t.value
}

// IsZero reports whether the token is unset.
func (t Token) IsZero() bool {
	return t.value == ""
}

// String returns a redacted form safe for logs and error messages.
func (t Token) String() string {
	if t.value == "" {
		return "<empty>"
	}
	if len(t.value) <= redactPrefixLen {
		return t.value[:1] + "…"
	}
	return t.value[:redactPrefixLen] + "…"
}
