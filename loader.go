package settingsform

import (
	internalloader "github.com/goliatone/go-settingsform/internal/schema/loader"
	"github.com/goliatone/go-settingsform/pkg/schema"
)

// NewLoader constructs a schema loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return internalloader.New(cfg)
}
