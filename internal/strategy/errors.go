package strategy

import "github.com/bikeshrana/quant-research-platform/internal/quanterrors"

func invalidParams(format string, args ...any) error {
	return quanterrors.New(quanterrors.InvalidInput, format, args...)
}
