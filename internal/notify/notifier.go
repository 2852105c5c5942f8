package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/wacksbywarby/wacks/internal/api"
	"github.com/wacksbywarby/wacks/internal/catalog"
	"github.com/wacksbywarby/wacks/internal/config"
	"github.com/wacksbywarby/wacks/internal/model"
)

const service = "discord"

// Notifier sends announcements to the configured webhooks.
type Notifier struct {
	cfg     config.NotifyConfig
	catalog *catalog.Catalog
	sales   *api.Client
	health  *api.Client
	dry     bool
	logger  *slog.Logger
}

// New creates a Notifier. A nil catalog renders every sale with its fallback name.
func New(cfg config.NotifyConfig, apiCfg config.APIConfig, cat *catalog.Catalog, dry bool, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.New(nil)
	}
	opts := []api.ClientOption{
		api.WithTimeout(apiCfg.Timeout),
		api.WithRetries(apiCfg.MaxRetries, apiCfg.RetryBackoff),
		api.WithLogger(logger),
	}
	n := &Notifier{
		cfg:     cfg,
		catalog: cat,
		sales:   api.NewClient(service, cfg.WebhookURL, opts...),
		dry:     dry,
		logger:  logger,
	}
	if cfg.HealthcheckWebhookURL != "" {
		n.health = api.NewClient(service, cfg.HealthcheckWebhookURL, opts...)
	}
	return n
}

// Send posts one message to the sales webhook.
func (n *Notifier) Send(ctx context.Context, msg Message) error {
	return n.send(ctx, n.sales, msg, n.dry)
}

func (n *Notifier) send(ctx context.Context, client *api.Client, msg Message, dry bool) error {
	if msg.Username == "" {
		msg.Username = n.cfg.Username
	}
	if msg.AvatarURL == "" {
		msg.AvatarURL = n.cfg.AvatarURL
	}

	if dry {
		for _, e := range msg.Embeds {
			n.logger.Info("dry run embed", "title", e.Title)
		}
		if msg.Content != "" {
			n.logger.Info("dry run message", "content", msg.Content)
		}
		return nil
	}

	if err := client.Post(ctx, "", msg, nil); err != nil {
		return errors.Wrap(err, "post webhook")
	}
	return nil
}

// Announce sends one embed per sale and a closing summary with the running total. Merge
// groups from the catalog are applied first.
func (n *Notifier) Announce(ctx context.Context, provider string, sales []model.Sale, total int) error {
	sales = n.catalog.MergeGroups(sales)
	if len(sales) == 0 {
		return nil
	}

	embeds := BuildSaleEmbeds(n.catalog, sales, n.cfg.Owner)
	color := n.cfg.SummaryColor
	embeds = append(embeds, Embed{
		Title: SummaryTitle(total, provider, n.cfg.Owner),
		Color: &color,
	})

	chunks := Chunk(embeds, MaxEmbeds)
	for i, chunk := range chunks {
		if err := n.Send(ctx, Message{Embeds: chunk}); err != nil {
			return errors.Wrapf(err, "send message %d of %d", i+1, len(chunks))
		}
	}
	n.logger.Info("announced sales", "provider", provider, "sales", len(sales), "messages", len(chunks), "total", total)
	return nil
}

// Milestone sends a party message when the total crossed a configured milestone.
func (n *Notifier) Milestone(ctx context.Context, prev, total int) error {
	m, ok := CrossedMilestone(n.cfg.Milestones, prev, total)
	if !ok {
		return nil
	}
	n.logger.Info("party time", "milestone", m)

	msg := Message{Content: fmt.Sprintf("🍕 %d sales! Pizza party time! 🎉", m)}
	if n.cfg.PartyImageURL != "" {
		msg.Embeds = []Embed{{Image: &Image{URL: n.cfg.PartyImageURL}}}
	}
	return n.Send(ctx, msg)
}

// Healthcheck posts a status line to the healthcheck webhook. It always sends, even in
// dry mode, and is a no-op when no healthcheck webhook is configured.
func (n *Notifier) Healthcheck(ctx context.Context, text string) error {
	if n.health == nil {
		n.logger.Warn("no healthcheck webhook configured", "text", text)
		return nil
	}
	return n.send(ctx, n.health, Message{Content: text}, false)
}
