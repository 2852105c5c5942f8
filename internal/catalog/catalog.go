package catalog

import (
	"io/fs"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/wacksbywarby/wacks/internal/model"
)

// UnknownName is shown for listings with no catalog entry and no provider title.
const UnknownName = "Unknown"

// Entry is the display data for one listing or group.
type Entry struct {
	Name    string   `yaml:"name"`
	Images  []string `yaml:"images"`
	Color   string   `yaml:"color"`
	Members []string `yaml:"members"`
}

// Display is an Entry resolved for one sale.
type Display struct {
	Name     string
	ImageURL string
	Color    *int
}

// Catalog is an in-memory display catalog.
type Catalog struct {
	entries map[string]Entry
	groups  []string // group ids, sorted
	pick    func(n int) int
}

// Load reads a catalog file. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return Parse(data)
}

// Parse decodes catalog data. JSON input is accepted since it is valid YAML.
func Parse(data []byte) (*Catalog, error) {
	entries := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	return New(entries), nil
}

// New builds a catalog from entries.
func New(entries map[string]Entry) *Catalog {
	if entries == nil {
		entries = make(map[string]Entry)
	}
	c := &Catalog{entries: entries, pick: rand.IntN}
	for id, e := range entries {
		if len(e.Members) > 0 {
			c.groups = append(c.groups, id)
		}
	}
	slices.Sort(c.groups)
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for a listing id.
func (c *Catalog) Lookup(listingID string) (Entry, bool) {
	e, ok := c.entries[listingID]
	return e, ok
}

// Display resolves the name, a random image and the color for a sale. Sales with no
// catalog entry fall back to the provider title, then to UnknownName.
func (c *Catalog) Display(s model.Sale) Display {
	e, ok := c.entries[s.ListingID]
	if !ok {
		name := s.FallbackDisplayName
		if name == "" {
			name = UnknownName
		}
		return Display{Name: name}
	}

	d := Display{Name: e.Name, Color: ParseColor(e.Color)}
	if d.Name == "" {
		d.Name = s.FallbackDisplayName
	}
	if d.Name == "" {
		d.Name = UnknownName
	}
	if len(e.Images) > 0 {
		d.ImageURL = e.Images[c.pick(len(e.Images))]
	}
	return d
}

// ParseColor converts "#rrggbb" to the decimal RGB value Discord expects.
// Empty or malformed colors yield nil.
func ParseColor(hex string) *int {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if hex == "" {
		return nil
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil || v < 0 || v > 0xFFFFFF {
		return nil
	}
	n := int(v)
	return &n
}

// MergeGroups replaces the sales of every group whose members all appear in sales with a
// single synthetic sale of the group. The synthetic sale sells one unit, has no known
// remaining quantity and takes the position of the latest member sale.
func (c *Catalog) MergeGroups(sales []model.Sale) []model.Sale {
	if len(c.groups) == 0 || len(sales) == 0 {
		return sales
	}

	out := slices.Clone(sales)
	for _, groupID := range c.groups {
		group := c.entries[groupID]
		if !containsAll(out, group.Members) {
			continue
		}

		merged := model.Sale{
			ListingID:           groupID,
			NumSold:             1,
			FallbackDisplayName: group.Name,
		}
		kept := out[:0:0]
		for _, s := range out {
			if !slices.Contains(group.Members, s.ListingID) {
				kept = append(kept, s)
				continue
			}
			if s.OccurredAt.After(merged.OccurredAt) {
				merged.OccurredAt = s.OccurredAt
			}
			if merged.Location == "" {
				merged.Location = s.Location
			}
		}

		pos := len(kept)
		for i, s := range kept {
			if !s.OccurredAt.IsZero() && s.OccurredAt.After(merged.OccurredAt) {
				pos = i
				break
			}
		}
		out = slices.Insert(kept, pos, merged)
	}
	return out
}

func containsAll(sales []model.Sale, members []string) bool {
	for _, m := range members {
		if !slices.ContainsFunc(sales, func(s model.Sale) bool { return s.ListingID == m }) {
			return false
		}
	}
	return true
}
