package dual

// Config configures the neural network
type Config struct {
	K            int     // number of filters
	SharedLayers int     // number of shared residual blocks
	FC           int     // fc layer width
	L2           float64 // L2 regularization
	LearnRate    float64

	BatchSize     int // batch size
	Width, Height int // board size
	Features      int // feature counts

	ActionSpace int
	FwdOnly     bool // is this a fwd only graph?
}

// DefaultConf configures a network for a size x size gomoku board. The input is a single plane,
// the canonical board, and there is one action per cell.
func DefaultConf(size int) Config {
	k := round((size * size) / 3)
	return Config{
		K:            k,
		SharedLayers: size / 3,
		FC:           2 * k,
		LearnRate:    0.1,

		BatchSize:   64,
		Width:       size,
		Height:      size,
		Features:    1,
		ActionSpace: size * size,
	}
}

func (conf Config) IsValid() bool {
	return conf.K >= 1 &&
		conf.ActionSpace == conf.Width*conf.Height &&
		conf.ActionSpace >= 4 &&
		conf.SharedLayers >= 0 &&
		conf.FC > 1 &&
		conf.BatchSize >= 1 &&
		conf.LearnRate > 0 &&
		conf.Features > 0
}

func round(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++

	lt := n / 2
	if (a - lt) < (n - a) {
		return lt
	}
	return n
}
