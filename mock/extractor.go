package mock

import "github.com/umass-dining/dining"

var _ dining.MenuExtractor = (*MenuExtractor)(nil)

// MenuExtractor is a mock implementation of dining.MenuExtractor.
type MenuExtractor struct {
	ExtractMenuFn func(page *dining.MenuPage) (*dining.ExtractResult, error)
}

func (e *MenuExtractor) ExtractMenu(page *dining.MenuPage) (*dining.ExtractResult, error) {
	return e.ExtractMenuFn(page)
}
