package dialogue

// Config carries the tuning values of the conversation policy. The defaults
// are product-observed behavior; change them only deliberately.
type Config struct {
	// ShortAnswerLen is the rune count under which an answer always gets a
	// follow-up (unless the user said they don't know).
	ShortAnswerLen int
	// FallbackFollowupLen is the more generous cutoff used when the model is
	// unavailable: probe short answers, leave rich ones alone.
	FallbackFollowupLen int
	// MaxFollowups bounds follow-up rounds per main question.
	MaxFollowups int
	// MinTurns is the floor of completed turns before the interview may end.
	MinTurns int
	// EndSubstantiveMin is how many substantive answers count as "enough
	// themes covered" for the end decision.
	EndSubstantiveMin int
}

func DefaultConfig() Config {
	return Config{
		ShortAnswerLen:      10,
		FallbackFollowupLen: 30,
		MaxFollowups:        3,
		MinTurns:            4,
		EndSubstantiveMin:   3,
	}
}

// normalized fills zero fields with defaults so a partially set Config
// cannot disable the termination guarantees.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.ShortAnswerLen <= 0 {
		c.ShortAnswerLen = d.ShortAnswerLen
	}
	if c.FallbackFollowupLen <= 0 {
		c.FallbackFollowupLen = d.FallbackFollowupLen
	}
	if c.MaxFollowups <= 0 {
		c.MaxFollowups = d.MaxFollowups
	}
	if c.MinTurns <= 0 {
		c.MinTurns = d.MinTurns
	}
	if c.EndSubstantiveMin <= 0 {
		c.EndSubstantiveMin = d.EndSubstantiveMin
	}
	return c
}
