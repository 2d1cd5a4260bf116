package kz

import (
	"context"
	"fmt"
	"log"

	"github.com/misscatmint/kzkitty/model"
)

type apiMap struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Difficulty int    `json:"difficulty"`
	Validated  bool   `json:"validated"`
	Filesize   int64  `json:"filesize"`
}

type vnlMap struct {
	ID      int `json:"id"`
	TpTier  int `json:"tpTier"`
	ProTier int `json:"proTier"`
}

// Maps fetches the full validated map list with VNL tiers overlaid. Used
// only by the catalog refresh. The VNL overlay is best effort; a map
// missing from vnl.kz is treated as VNL-impossible (tier 10).
func (c *Client) Maps(ctx context.Context) ([]model.MapRecord, error) {
	var maps []apiMap
	url := c.baseURL + "/maps?is_validated=true&limit=9999"
	if err := c.getJSON(ctx, url, &maps); err != nil {
		return nil, fmt.Errorf("fetching map list: %w", err)
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("%w: empty map list", model.ErrUpstreamProtocol)
	}

	vnlTiers := c.vnlTiers(ctx)

	records := make([]model.MapRecord, 0, len(maps))
	for _, m := range maps {
		if m.Name == "" || !m.Validated {
			continue
		}
		vnlTier, vnlProTier := 10, 10
		if v, ok := vnlTiers[m.ID]; ok {
			vnlTier, vnlProTier = v.TpTier, v.ProTier
		}
		records = append(records, model.MapRecord{
			ID:         m.ID,
			Name:       m.Name,
			Tier:       m.Difficulty,
			VnlTier:    vnlTier,
			VnlProTier: vnlProTier,
			Filesize:   m.Filesize,
		})
	}
	return records, nil
}

func (c *Client) vnlTiers(ctx context.Context) map[int]vnlMap {
	var maps []vnlMap
	if err := c.getJSON(ctx, c.vnlBaseURL+"/maps", &maps); err != nil {
		log.Printf("Could not fetch VNL map tiers: %v", err)
		return nil
	}
	tiers := make(map[int]vnlMap, len(maps))
	for _, m := range maps {
		tiers[m.ID] = m
	}
	return tiers
}
