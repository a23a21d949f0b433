package selector

// Config is the structure to configure the move selector.
type Config struct {
	SearchDepth int // depth of the heuristic alpha-beta search

	AttackThreshold        int  // minimum point score for the AI to extend its own open three
	SuppressThreshold      int  // minimum point score (for the AI) to cap the opponent's open three
	StrongDefenseThreshold int  // point score for the opponent above which the search move is committed at once
	OracleEnabled          bool // consult the external oracle as the last stage
}

func DefaultConfig() Config {
	return Config{
		SearchDepth:            2,
		AttackThreshold:        150,
		SuppressThreshold:      100,
		StrongDefenseThreshold: 10000,
	}
}

func (c Config) IsValid() bool {
	return c.SearchDepth >= 1 && c.AttackThreshold >= 0 && c.SuppressThreshold >= 0 && c.StrongDefenseThreshold >= 0
}
