package kz

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/misscatmint/kzkitty/model"
)

type rankThreshold struct {
	points int
	name   string
}

// Rank thresholds differ per mode at the top end; below Skilled+ the table
// is shared.
var (
	kztThresholds = []rankThreshold{
		{1000000, "Legend"}, {800000, "Master"}, {600000, "Pro"},
		{400000, "Semipro"}, {250000, "Expert+"}, {230000, "Expert"},
		{200000, "Expert-"}, {150000, "Skilled+"},
	}
	skzThresholds = []rankThreshold{
		{800000, "Legend"}, {500000, "Master"}, {400000, "Pro"},
		{300000, "Semipro"}, {250000, "Expert+"}, {230000, "Expert"},
		{200000, "Expert-"}, {150000, "Skilled+"},
	}
	vnlThresholds = []rankThreshold{
		{600000, "Legend"}, {400000, "Master"}, {300000, "Pro"},
		{250000, "Semipro"}, {200000, "Expert+"}, {180000, "Expert"},
		{160000, "Expert-"}, {140000, "Skilled+"},
	}
	commonThresholds = []rankThreshold{
		{120000, "Skilled"}, {100000, "Skilled-"}, {80000, "Regular+"},
		{70000, "Regular"}, {60000, "Regular-"}, {40000, "Casual+"},
		{30000, "Casual"}, {20000, "Casual-"}, {10000, "Amateur+"},
		{5000, "Amateur"}, {2000, "Amateur-"}, {1000, "Beginner+"},
		{500, "Beginner"}, {1, "Beginner-"},
	}
)

// RankName maps a point total to the community rank name for the mode.
func RankName(points int, mode model.Mode) string {
	var thresholds []rankThreshold
	switch mode {
	case model.ModeSKZ:
		thresholds = skzThresholds
	case model.ModeVNL:
		thresholds = vnlThresholds
	default:
		thresholds = kztThresholds
	}
	thresholds = append(thresholds, commonThresholds...)
	for _, t := range thresholds {
		if points >= t.points {
			return t.name
		}
	}
	return "New"
}

type apiPlayerRank struct {
	Points     int     `json:"points"`
	Average    float64 `json:"average"`
	PlayerName string  `json:"player_name"`
}

// ProfileStats fetches the aggregate point stats for the player in the
// given mode. A player with no recorded runs yields nil.
func (c *Client) ProfileStats(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Profile, error) {
	q := url.Values{}
	q.Set("steamid64s", strconv.FormatInt(steamID64, 10))
	q.Set("stages", "0")
	q.Set("mode_ids", strconv.Itoa(mode.RankID()))
	q.Set("tickrates", "128")

	var ranks []apiPlayerRank
	if err := c.getJSON(ctx, c.baseURL+"/player_ranks?"+q.Encode(), &ranks); err != nil {
		return nil, fmt.Errorf("fetching player ranks: %w", err)
	}
	if len(ranks) == 0 {
		return nil, nil
	}

	info := ranks[0]
	return &model.Profile{
		SteamID64:  steamID64,
		PlayerName: info.PlayerName,
		Mode:       mode,
		Rank:       RankName(info.Points, mode),
		Points:     info.Points,
		Average:    int(info.Average),
	}, nil
}
