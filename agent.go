package wuziqi

import (
	"runtime"
	"sync"

	dual "github.com/gorgonia/wuziqi/dualnet"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// An Agent is a pool of predictors sharing one network. Every Predict borrows a predictor from the pool,
// so concurrent self-play games never share a mutable predictor.
//
// Agent implements mcts.Predictor.
type Agent struct {
	NN *dual.Dual

	sync.Mutex
	inferer  chan Inferer
	inferers []Inferer
}

// NewAgent creates an agent for the network. Call SwitchToInference or UseDummy before predicting.
func NewAgent(a Dualer) *Agent {
	var nn *dual.Dual
	if a != nil {
		nn = a.Dual()
	}
	return &Agent{NN: nn}
}

// SwitchToInference fills the pool with n inference mode copies of the network. n < 1 uses one per CPU.
func (a *Agent) SwitchToInference(n int) (err error) {
	if a.NN == nil {
		return errors.New("agent has no network")
	}
	if n < 1 {
		n = runtime.NumCPU()
	}
	if err = a.Close(); err != nil {
		return err
	}

	a.Lock()
	defer a.Unlock()
	a.inferer = make(chan Inferer, n)
	for i := 0; i < n; i++ {
		var inf Inferer
		if inf, err = dual.Infer(a.NN, false); err != nil {
			return err
		}
		a.inferers = append(a.inferers, inf)
		a.inferer <- inf
	}
	return nil
}

// UseDummy fills the pool with predictors that have no opinion: uniform logits and an even value.
func (a *Agent) UseDummy(n int) error {
	if n < 1 {
		n = runtime.NumCPU()
	}
	if err := a.Close(); err != nil {
		return err
	}

	a.Lock()
	defer a.Unlock()
	a.inferer = make(chan Inferer, n)
	for i := 0; i < n; i++ {
		inf := dummyInferer{}
		a.inferers = append(a.inferers, inf)
		a.inferer <- inf
	}
	return nil
}

// Predict borrows a predictor from the pool. It blocks until one is free.
func (a *Agent) Predict(board []float32) (logits []float32, value float32, err error) {
	a.Lock()
	pool := a.inferer
	a.Unlock()
	if pool == nil {
		return nil, 0, errors.New("agent has no predictors")
	}

	inf := <-pool
	defer func() { pool <- inf }()
	if logits, value, err = inf.Predict(board); err != nil {
		if el, ok := inf.(ExecLogger); ok {
			log.Error().Str("exec", el.ExecLog()).Err(err).Msg("predict")
		}
		return nil, 0, err
	}
	return logits, value, nil
}

// Close releases the predictors in the pool.
func (a *Agent) Close() error {
	a.Lock()
	defer a.Unlock()
	var allErrs manyErr
	for _, inferer := range a.inferers {
		if err := inferer.Close(); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	a.inferers = nil
	a.inferer = nil
	if len(allErrs) > 0 {
		return allErrs
	}
	return nil
}
