package daemon

import (
	"context"
	"os"
	"strings"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/db/models"
	"github.com/dealerdesk/dealerdesk/internal/store"
)

// DefaultTemplate is the built-in seed content, carrying all four
// placeholder tokens.
const DefaultTemplate = "Dealer: {{DEALER_NAME}}\nAddress: {{ADDRESS}}\nContact: {{NUMBER}}\nBrand: {{BRAND}}\n"

// seed inserts the default template when none exists at the default key.
// An optional on-disk file overrides the built-in content if it is non-blank.
func seed(ctx context.Context, cfg *config.Config, st store.Store) error {
	infos, err := st.ListTemplates(ctx)
	if err != nil {
		return err
	}

	for _, info := range infos {
		if info.Key == models.DefaultTemplateKey {
			return nil
		}
	}

	content := DefaultTemplate

	if cfg.Seed.TemplateFile != "" {
		if raw, err := os.ReadFile(cfg.Seed.TemplateFile); err == nil && strings.TrimSpace(string(raw)) != "" {
			content = string(raw)
		}
	}

	return st.SaveTemplate(ctx, models.DefaultTemplateKey, content)
}
