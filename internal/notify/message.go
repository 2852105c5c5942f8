package notify

import (
	"fmt"

	"github.com/wacksbywarby/wacks/internal/catalog"
	"github.com/wacksbywarby/wacks/internal/model"
)

// MaxEmbeds is the number of embeds Discord accepts per message.
const MaxEmbeds = 10

// Message is a webhook execute payload.
type Message struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Embed is one rich embed. Color is decimal RGB.
type Embed struct {
	Title  string  `json:"title,omitempty"`
	Image  *Image  `json:"image,omitempty"`
	Color  *int    `json:"color,omitempty"`
	Footer *Footer `json:"footer,omitempty"`
}

type Image struct {
	URL string `json:"url"`
}

type Footer struct {
	Text string `json:"text"`
}

// SaleTitle formats the headline of a sale embed.
func SaleTitle(name string, numSold int) string {
	qty := ""
	if numSold > 1 {
		qty = fmt.Sprintf(" (%d of 'em)", numSold)
	}
	return fmt.Sprintf("🚨 New %s Sale!%s 🚨", name, qty)
}

// SoldOutText is the footer of a sale that emptied its listing.
func SoldOutText(owner string) string {
	return fmt.Sprintf("🙀 Hey this is sold out now! %s we need you back at work!", owner)
}

// SummaryTitle is the headline of the closing summary embed.
func SummaryTitle(total int, provider, owner string) string {
	return fmt.Sprintf("%d total sales (%s). Great job %s! 🎉", total, provider, owner)
}

// BuildSaleEmbeds renders one embed per sale, in order.
func BuildSaleEmbeds(cat *catalog.Catalog, sales []model.Sale, owner string) []Embed {
	embeds := make([]Embed, 0, len(sales))
	for _, s := range sales {
		d := cat.Display(s)
		e := Embed{Title: SaleTitle(d.Name, s.NumSold), Color: d.Color}
		if d.ImageURL != "" {
			e.Image = &Image{URL: d.ImageURL}
		}
		if s.SoldOut() {
			e.Footer = &Footer{Text: SoldOutText(owner)}
		}
		embeds = append(embeds, e)
	}
	return embeds
}

// Chunk splits embeds into groups of at most size, preserving order.
func Chunk(embeds []Embed, size int) [][]Embed {
	if size < 1 {
		size = MaxEmbeds
	}
	var out [][]Embed
	for len(embeds) > size {
		out = append(out, embeds[:size])
		embeds = embeds[size:]
	}
	if len(embeds) > 0 {
		out = append(out, embeds)
	}
	return out
}

// CrossedMilestone returns the highest milestone m with prev < m <= total, if any.
func CrossedMilestone(milestones []int, prev, total int) (int, bool) {
	best, ok := 0, false
	for _, m := range milestones {
		if m > prev && m <= total && (!ok || m > best) {
			best, ok = m, true
		}
	}
	return best, ok
}
