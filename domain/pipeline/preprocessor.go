package pipeline

import (
	"churnscope/domain/core"
	"churnscope/domain/tabular"
)

// Preprocessor is the column transform stage of a pipeline: impute+scale for
// numeric features, impute+one-hot for categorical features. It is fit
// exactly once; after that every Transform uses the frozen fit-time
// statistics, so fitting on the train split and applying to any later data
// cannot leak.
type Preprocessor struct {
	NumericFeatures     []string
	CategoricalFeatures []string

	NumImputers map[string]*MedianImputer
	Scalers     map[string]*StandardScaler
	CatImputers map[string]*ModeImputer
	Encoders    map[string]*OneHotEncoder

	Fitted bool
}

// BuildPreprocessor wires an unfitted transform for the given disjoint
// feature lists.
func BuildPreprocessor(numeric, categorical []string) *Preprocessor {
	p := &Preprocessor{
		NumericFeatures:     numeric,
		CategoricalFeatures: categorical,
		NumImputers:         make(map[string]*MedianImputer, len(numeric)),
		Scalers:             make(map[string]*StandardScaler, len(numeric)),
		CatImputers:         make(map[string]*ModeImputer, len(categorical)),
		Encoders:            make(map[string]*OneHotEncoder, len(categorical)),
	}
	for _, name := range numeric {
		p.NumImputers[name] = &MedianImputer{}
		p.Scalers[name] = &StandardScaler{}
	}
	for _, name := range categorical {
		p.CatImputers[name] = &ModeImputer{}
		p.Encoders[name] = &OneHotEncoder{}
	}
	return p
}

// Fit learns all column statistics from the given frame.
func (p *Preprocessor) Fit(f *tabular.Frame) error {
	for _, name := range p.NumericFeatures {
		col, ok := f.Column(name)
		if !ok {
			return core.NewSchemaMismatchError("missing numeric column " + name)
		}
		imp := p.NumImputers[name]
		imp.Fit(col.Values)
		p.Scalers[name].Fit(imp.Transform(col.Values))
	}
	for _, name := range p.CategoricalFeatures {
		col, ok := f.Column(name)
		if !ok {
			return core.NewSchemaMismatchError("missing categorical column " + name)
		}
		imp := p.CatImputers[name]
		imp.Fit(col.Values)
		p.Encoders[name].Fit(imp.Transform(col.Values))
	}
	p.Fitted = true
	return nil
}

// Transform applies the frozen transform, producing a dense feature matrix:
// numeric features first in original order, then the one-hot expansions in
// encoder-assigned order.
func (p *Preprocessor) Transform(f *tabular.Frame) ([][]float64, error) {
	if !p.Fitted {
		return nil, core.ErrNotFitted
	}
	n := f.NumRows()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, 0, p.Width())
	}

	for _, name := range p.NumericFeatures {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewSchemaMismatchError("missing numeric column " + name)
		}
		vals := p.Scalers[name].Transform(p.NumImputers[name].Transform(col.Values))
		for i := 0; i < n; i++ {
			out[i] = append(out[i], vals[i])
		}
	}
	for _, name := range p.CategoricalFeatures {
		col, ok := f.Column(name)
		if !ok {
			return nil, core.NewSchemaMismatchError("missing categorical column " + name)
		}
		vecs := p.Encoders[name].Transform(p.CatImputers[name].Transform(col.Values))
		for i := 0; i < n; i++ {
			out[i] = append(out[i], vecs[i]...)
		}
	}
	return out, nil
}

// FitTransform fits then transforms the same frame.
func (p *Preprocessor) FitTransform(f *tabular.Frame) ([][]float64, error) {
	if err := p.Fit(f); err != nil {
		return nil, err
	}
	return p.Transform(f)
}

// FeatureNames returns the post-encoding column names: numeric features in
// original order, then every encoder's expansions.
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	names = append(names, p.NumericFeatures...)
	for _, name := range p.CategoricalFeatures {
		names = append(names, p.Encoders[name].FeatureNames(name)...)
	}
	return names
}

// Width returns the number of post-encoding feature columns.
func (p *Preprocessor) Width() int {
	w := len(p.NumericFeatures)
	for _, name := range p.CategoricalFeatures {
		w += len(p.Encoders[name].Categories)
	}
	return w
}
