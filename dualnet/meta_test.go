package dual

import (
	"testing"

	"gorgonia.org/tensor"
)

func TestTrain(t *testing.T) {
	features := 1
	height := 3
	width := 3
	actionSpace := 9
	batchSize := 16
	batchesOne := 1

	conf := DefaultConf(3)
	conf.BatchSize = batchSize
	conf.K = 3
	conf.SharedLayers = 3
	type args struct {
		d          *Dual
		Xs         *tensor.Dense
		policies   *tensor.Dense
		values     *tensor.Dense
		batches    int
		iterations int
	}
	d := &Dual{Config: conf}
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			"batch one",
			args{
				d:          d,
				Xs:         tensor.New(tensor.WithBacking(make([]float32, batchSize*batchesOne*features*height*width)), tensor.WithShape(batchSize*batchesOne, features, height, width)),
				policies:   tensor.New(tensor.WithBacking(make([]float32, batchSize*batchesOne*actionSpace)), tensor.WithShape(batchSize*batchesOne, actionSpace)),
				values:     tensor.New(tensor.WithBacking(make([]float32, batchSize*batchesOne)), tensor.WithShape(batchSize*batchesOne)),
				batches:    batchesOne,
				iterations: 5,
			},
			false,
		},
		{
			"not enough examples",
			args{
				d:          d,
				Xs:         tensor.New(tensor.WithBacking(make([]float32, batchSize*features*height*width)), tensor.WithShape(batchSize, features, height, width)),
				policies:   tensor.New(tensor.WithBacking(make([]float32, batchSize*actionSpace)), tensor.WithShape(batchSize, actionSpace)),
				values:     tensor.New(tensor.WithBacking(make([]float32, batchSize)), tensor.WithShape(batchSize)),
				batches:    2,
				iterations: 1,
			},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Train(tt.args.d, tt.args.Xs, tt.args.policies, tt.args.values, tt.args.batches, tt.args.iterations); (err != nil) != tt.wantErr {
				t.Errorf("Train() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrainForwardOnly(t *testing.T) {
	conf := DefaultConf(3)
	conf.FwdOnly = true
	d := New(conf)
	if err := d.Init(); err != nil {
		t.Fatalf("%+v", err)
	}
	Xs := tensor.New(tensor.Of(Float), tensor.WithShape(conf.BatchSize, 1, 3, 3))
	pis := tensor.New(tensor.Of(Float), tensor.WithShape(conf.BatchSize, 9))
	vs := tensor.New(tensor.Of(Float), tensor.WithShape(conf.BatchSize))
	if err := Train(d, Xs, pis, vs, 1, 1); err == nil {
		t.Errorf("Expected an error when training a forward only network")
	}
}
