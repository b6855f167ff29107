package delegate

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
)

// New returns the client for cfg.Provider, or Unconfigured when the
// provider lacks its endpoint or key.
func New(ctx context.Context, cfg config.DelegateConfig) (Client, error) {
	if !cfg.Configured() {
		return Unconfigured{}, nil
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case config.ProviderHTTP, "":
		return NewHTTPClient(cfg)
	}
	return nil, fmt.Errorf("unknown delegate provider %q", cfg.Provider)
}
