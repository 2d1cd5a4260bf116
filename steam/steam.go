package steam

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/misscatmint/kzkitty/model"
	"github.com/misscatmint/kzkitty/utils"
)

// RefKind tags the shape of a profile reference.
type RefKind int

const (
	RefRawID RefKind = iota
	RefProfileURL
	RefVanity
)

// ProfileRef is a parsed profile reference: a raw steamID64, a
// /profiles/<id64> URL, or a /id/<name> vanity URL that needs an upstream
// lookup to resolve.
type ProfileRef struct {
	Kind      RefKind
	SteamID64 int64  // RefRawID, RefProfileURL
	Vanity    string // RefVanity
}

var rawIDPattern = regexp.MustCompile(`^7656\d{13}$`)

// ParseProfileRef classifies a profile reference in one step so callers
// never branch on string shapes themselves.
func ParseProfileRef(s string) (ProfileRef, error) {
	s = strings.TrimSpace(s)
	if rawIDPattern.MatchString(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return ProfileRef{}, fmt.Errorf("%w: %q", model.ErrInvalidIdentifier, s)
		}
		return ProfileRef{Kind: RefRawID, SteamID64: id}, nil
	}

	u, err := url.Parse(s)
	if err != nil || u.Host != "steamcommunity.com" {
		return ProfileRef{}, fmt.Errorf("%w: %q is not a steamcommunity.com URL", model.ErrInvalidIdentifier, s)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		return ProfileRef{}, fmt.Errorf("%w: unrecognized profile path %q", model.ErrInvalidIdentifier, u.Path)
	}
	switch parts[0] {
	case "profiles":
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return ProfileRef{}, fmt.Errorf("%w: bad profile id %q", model.ErrInvalidIdentifier, parts[1])
		}
		return ProfileRef{Kind: RefProfileURL, SteamID64: id}, nil
	case "id":
		return ProfileRef{Kind: RefVanity, Vanity: parts[1]}, nil
	}
	return ProfileRef{}, fmt.Errorf("%w: unrecognized profile path %q", model.ErrInvalidIdentifier, u.Path)
}

// Resolver turns profile references into canonical steamID64s, using the
// Steam community XML endpoint for vanity names.
type Resolver struct {
	baseURL string
	http    *http.Client
}

func NewResolver(cfg *model.Config) *Resolver {
	return &Resolver{
		baseURL: cfg.SteamBaseURL,
		http:    utils.GlobalHTTPClient,
	}
}

type profileXML struct {
	XMLName   xml.Name `xml:"profile"`
	SteamID64 string   `xml:"steamID64"`
}

// ResolveSteamID64 resolves a parsed reference to a steamID64. Every
// failure mode, including an unreachable Steam community, surfaces as
// ErrInvalidIdentifier: the registration cannot be validated either way.
func (r *Resolver) ResolveSteamID64(ctx context.Context, ref ProfileRef) (int64, error) {
	if ref.Kind != RefVanity {
		return ref.SteamID64, nil
	}

	endpoint := fmt.Sprintf("%s/id/%s?xml=1", r.baseURL, url.PathEscape(ref.Vanity))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building Steam profile request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: Steam profile unreachable: %v", model.ErrInvalidIdentifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: Steam profile returned HTTP %d", model.ErrInvalidIdentifier, resp.StatusCode)
	}

	var profile profileXML
	if err := xml.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return 0, fmt.Errorf("%w: malformed Steam profile XML: %v", model.ErrInvalidIdentifier, err)
	}
	id, err := strconv.ParseInt(profile.SteamID64, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: no steamID64 in Steam profile for %q", model.ErrInvalidIdentifier, ref.Vanity)
	}
	return id, nil
}
