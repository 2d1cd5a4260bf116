package kz

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/misscatmint/kzkitty/model"
)

// apiRecord is one entry of the records/top response. steamid64 comes back
// as a string.
type apiRecord struct {
	ID        int     `json:"id"`
	SteamID64 string  `json:"steamid64"`
	Player    string  `json:"player_name"`
	MapName   string  `json:"map_name"`
	Time      float64 `json:"time"`
	Teleports int     `json:"teleports"`
	Points    int     `json:"points"`
	CreatedOn string  `json:"created_on"`
	Stage     int     `json:"stage"`
}

// created_on is ISO 8601 without an offset; the API serves UTC.
const recordTimeLayout = "2006-01-02T15:04:05"

func (r *apiRecord) toRun(mode model.Mode) (*model.Run, error) {
	steamID, err := strconv.ParseInt(r.SteamID64, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad steamid64 %q", model.ErrUpstreamProtocol, r.SteamID64)
	}
	date, err := time.Parse(recordTimeLayout, r.CreatedOn)
	if err != nil {
		return nil, fmt.Errorf("%w: bad created_on %q", model.ErrUpstreamProtocol, r.CreatedOn)
	}
	return &model.Run{
		ID:         r.ID,
		SteamID64:  steamID,
		PlayerName: r.Player,
		MapName:    r.MapName,
		Mode:       mode,
		Time:       r.Time,
		Teleports:  r.Teleports,
		Points:     r.Points,
		Date:       date.UTC(),
	}, nil
}

func (c *Client) recordsTop(ctx context.Context, q url.Values) ([]apiRecord, error) {
	q.Set("tickrate", "128")
	var records []apiRecord
	if err := c.getJSON(ctx, c.baseURL+"/records/top?"+q.Encode(), &records); err != nil {
		return nil, fmt.Errorf("fetching records: %w", err)
	}
	return records, nil
}

// PersonalBest returns the fastest recorded run for the player on the map
// in the given mode, or nil if no run exists. The API keeps separate TP and
// PRO bests, so up to two records come back and the faster one wins.
func (c *Client) PersonalBest(ctx context.Context, steamID64 int64, mapName string, mode model.Mode) (*model.Run, error) {
	q := url.Values{}
	q.Set("steamid64", strconv.FormatInt(steamID64, 10))
	q.Set("map_name", mapName)
	q.Set("stage", "0")
	q.Set("modes_list_string", string(mode))
	q.Set("limit", "2")
	records, err := c.recordsTop(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	runs := make([]*model.Run, 0, len(records))
	for _, r := range records {
		run, err := r.toRun(mode)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Time < runs[j].Time })
	pb := runs[0]
	c.fillPlace(ctx, pb)
	return pb, nil
}

// Latest returns the player's most recent run in the given mode across all
// maps, or nil. records/top only sorts by time, so the TP and PRO lists are
// fetched in full, merged, and ordered by date.
func (c *Client) Latest(ctx context.Context, steamID64 int64, mode model.Mode) (*model.Run, error) {
	var records []apiRecord
	for _, hasTeleports := range []string{"true", "false"} {
		q := url.Values{}
		q.Set("steamid64", strconv.FormatInt(steamID64, 10))
		q.Set("stage", "0")
		q.Set("modes_list_string", string(mode))
		q.Set("has_teleports", hasTeleports)
		q.Set("limit", "9999")
		batch, err := c.recordsTop(ctx, q)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	if len(records) == 0 {
		return nil, nil
	}

	sort.Slice(records, func(i, j int) bool { return records[i].CreatedOn > records[j].CreatedOn })
	run, err := records[0].toRun(mode)
	if err != nil {
		return nil, err
	}
	c.fillPlace(ctx, run)
	return run, nil
}

// WorldRecords returns the current TP and PRO records for the map in the
// given mode, fastest first. Either may be missing.
func (c *Client) WorldRecords(ctx context.Context, mapName string, mode model.Mode) ([]*model.Run, error) {
	var runs []*model.Run
	for _, hasTeleports := range []string{"true", "false"} {
		q := url.Values{}
		q.Set("map_name", mapName)
		q.Set("stage", "0")
		q.Set("modes_list_string", string(mode))
		q.Set("has_teleports", hasTeleports)
		q.Set("limit", "1")
		records, err := c.recordsTop(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			continue
		}
		run, err := records[0].toRun(mode)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Time < runs[j].Time })
	return runs, nil
}

// fillPlace looks up the run's leaderboard place. Best effort: the embed
// just omits the place when the extra call fails.
func (c *Client) fillPlace(ctx context.Context, run *model.Run) {
	var place int
	endpoint := fmt.Sprintf("%s/records/place/%d", c.baseURL, run.ID)
	if err := c.getJSON(ctx, endpoint, &place); err != nil {
		log.Printf("Could not fetch place for record %d: %v", run.ID, err)
		return
	}
	run.Place = place
}
