/* tennistemple.go
 * Contains the tennistemple.com adapter. The site has no public API: a session is opened on the home page, the live
 * matches widget is requested from update.php and its HTML fragment is parsed with a tag-position state machine
 */

package external

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/homebackend/gnome-live-tennis-sub000/api/shared"
	"golang.org/x/net/html"
)

const (
	TennisTempleURL = "https://en.tennistemple.com"
	// TennisTempleEventID is the id of the single synthetic event holding every scraped match
	TennisTempleEventID    = "b8852ab1-359d-490c-a900-77a044d2eb9d"
	TennisTempleEventTitle = "Tennis Temple Live Matches"
)

var tennisTempleSessionCookies = []string{"PHPSESSID", "device_id", "device_key"}

type TennisTempleFetcher struct {
	BaseURL   string
	client    *Client
	deviceID  string
	deviceKey string
	now       func() time.Time

	mu      sync.Mutex
	cookies map[string]string
}

func NewTennisTempleFetcher(client *Client) *TennisTempleFetcher {
	return &TennisTempleFetcher{
		BaseURL:   TennisTempleURL,
		client:    client,
		deviceID:  uuid.NewString(),
		deviceKey: uuid.NewString(),
		now:       time.Now,
	}
}

func (f *TennisTempleFetcher) Cancel() {
	f.client.Abort()
}

// sessionCookies opens a session on the home page once and caches the returned cookies
func (f *TennisTempleFetcher) sessionCookies(ctx context.Context) (map[string]string, error) {
	f.mu.Lock()
	cached := f.cookies
	f.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	_, cookies, err := f.client.FetchString(ctx, Request{
		URL:             f.BaseURL,
		Headers:         map[string]string{"Accept": "text/html"},
		ResponseCookies: tennisTempleSessionCookies,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening tennistemple session: %w", err)
	}

	f.mu.Lock()
	f.cookies = cookies
	f.mu.Unlock()
	return cookies, nil
}

// updatePayload encodes the widget request the way the site's own scripts do
func (f *TennisTempleFetcher) updatePayload() string {
	ts := strconv.FormatInt(f.now().UnixMilli(), 10)
	form := url.Values{}
	form.Set("types[user]", "0")
	form.Set("types[matchs]", "1")
	form.Set("types[match]", "0")
	form.Set("types[home]", "0")
	form.Set("types[comments]", "0")
	form.Set("types[device]", "desktop")
	form.Set("timers[ft_news]", ts)
	form.Set("timers[ft_bet]", ts)
	form.Set("timers[ft_players]", ts)
	return form.Encode()
}

type tennisTempleResponse struct {
	Matchs *struct {
		HTML string `json:"html"`
	} `json:"matchs"`
}

// Function to fetch and parse the tennistemple live matches
// Preconditions: Receives a context
// Postconditions: Returns one synthetic event holding every parsed match, or an error if the session cannot be opened,
// the request fails or the response holds no matches fragment
func (f *TennisTempleFetcher) FetchData(ctx context.Context) ([]*shared.Event, error) {
	session, err := f.sessionCookies(ctx)
	if err != nil {
		return nil, err
	}

	cookies := map[string]string{
		"device_id":  f.deviceID,
		"device_key": f.deviceKey,
	}
	for k, v := range session {
		cookies[k] = v
	}

	var response tennisTempleResponse
	err = f.client.FetchJSON(ctx, Request{
		Method: "POST",
		URL:    f.BaseURL + "/update.php",
		Body:   []byte(f.updatePayload()),
		Headers: map[string]string{
			"Content-Type":     "application/x-www-form-urlencoded; charset=UTF-8",
			"Origin":           f.BaseURL,
			"Referer":          f.BaseURL + "/",
			"X-Requested-With": "XMLHttpRequest",
		},
		Cookies: cookies,
	}, &response)
	if err != nil {
		return nil, fmt.Errorf("error fetching tennistemple matches: %w", err)
	}
	if response.Matchs == nil {
		return nil, fmt.Errorf("%w: tennistemple response has no matches", ErrNoData)
	}

	event, err := ParseTennisTempleHTML(response.Matchs.HTML, f.BaseURL)
	if err != nil {
		return nil, err
	}
	event.Year = f.now().Year()
	return []*shared.Event{event}, nil
}

// parsePosition is the state of the tennistemple HTML parser
type parsePosition int

const (
	posTop parsePosition = iota
	posMatch
	posTeam
	posPlayerName
	posSetScore
	posGameScore
	posPlayerFlag
	posPlayerServe
	posMatchExpectedTime
)

func (p parsePosition) String() string {
	switch p {
	case posTop:
		return "Top"
	case posMatch:
		return "Match"
	case posTeam:
		return "Team"
	case posPlayerName:
		return "PlayerName"
	case posSetScore:
		return "SetScore"
	case posGameScore:
		return "GameScore"
	case posPlayerFlag:
		return "PlayerFlag"
	case posPlayerServe:
		return "PlayerServe"
	case posMatchExpectedTime:
		return "MatchExpectedTime"
	}
	return "parsePosition(" + strconv.Itoa(int(p)) + ")"
}

// ttParser holds the state machine. Each state has an open tag, text and close tag handler
type ttParser struct {
	baseURL   string
	pos       parsePosition
	matches   []*shared.Match
	match     *shared.Match
	team      *shared.Team
	teamIndex int
	spanCount int
	bubble    string
}

type ttHandlers struct {
	open  func(p *ttParser, name string, attrs map[string]string)
	text  func(p *ttParser, text string)
	close func(p *ttParser, name string)
}

var ttTransitions = map[parsePosition]ttHandlers{
	posTop:               {open: (*ttParser).openTop},
	posMatch:             {open: (*ttParser).openMatch},
	posTeam:              {open: (*ttParser).openTeam, close: (*ttParser).closeTeam},
	posPlayerName:        {text: (*ttParser).textPlayerName, close: (*ttParser).closeLeaf},
	posSetScore:          {text: (*ttParser).textSetScore, close: (*ttParser).closeLeaf},
	posGameScore:         {text: (*ttParser).textGameScore, close: (*ttParser).closeLeaf},
	posPlayerFlag:        {close: (*ttParser).closeLeaf},
	posPlayerServe:       {open: (*ttParser).openServe, close: (*ttParser).closeServe},
	posMatchExpectedTime: {text: (*ttParser).textExpectedTime, close: (*ttParser).closeLeaf},
}

func newTeam() shared.Team {
	return shared.Team{Players: []shared.Player{{}}, SetScores: []shared.SetScore{}}
}

func (p *ttParser) openTop(name string, attrs map[string]string) {
	if name != "a" {
		return
	}
	if bubble := attrs["data-bubble"]; bubble != "" {
		p.bubble = bubble
	}
	live := strings.Contains(attrs["class"], "hls_live_cont")
	status := "Upcoming"
	if live {
		status = "Live"
	}
	p.match = &shared.Match{
		ID:            attrs["href"],
		IsLive:        live,
		Status:        status,
		DisplayStatus: status,
		Message:       p.bubble,
		Server:        shared.NoServer,
		Team1:         newTeam(),
		Team2:         newTeam(),
		URL:           resolveURL(p.baseURL, attrs["href"]),
	}
	p.matches = append(p.matches, p.match)
	p.pos = posMatch
}

func (p *ttParser) openMatch(name string, attrs map[string]string) {
	if name != "span" {
		return
	}
	switch attrs["class"] {
	case "hls_p_h", "hls_nm_m_p_t":
		p.team, p.teamIndex = &p.match.Team1, 0
	case "hls_p_l", "hls_nm_m_p_b":
		p.team, p.teamIndex = &p.match.Team2, 1
	default:
		return
	}
	*p.team = newTeam()
	p.pos = posTeam
}

func (p *ttParser) openTeam(name string, attrs map[string]string) {
	if name != "span" {
		return
	}
	class := attrs["class"]
	switch {
	case strings.Contains(class, "hls_p_set"):
		p.pos = posSetScore
	case strings.Contains(class, "hls_p_game"):
		p.pos = posGameScore
	case strings.Contains(class, "hls_p_flag") || strings.Contains(class, "hls2_p_flag"):
		code := strings.NewReplacer("hls2_p_flag", "", "hls_p_flag", "", "flag", "").Replace(class)
		code = strings.TrimSpace(code)
		p.team.Players[0].CountryCode = code
		p.team.Players[0].Country = code
		p.pos = posPlayerFlag
	case strings.Contains(class, "hls_p_name") || strings.Contains(class, "hls_nm_p_name"):
		p.pos = posPlayerName
	case strings.Contains(class, "hls_p_serve_cont"):
		p.match.Server = p.teamIndex
		p.spanCount++
		p.pos = posPlayerServe
	case strings.Contains(class, "hls_nm_p_date") || strings.Contains(class, "hls_nm_m_time"):
		p.pos = posMatchExpectedTime
	}
}

func (p *ttParser) closeTeam(name string) {
	if name == "span" {
		p.pos = posMatch
	}
}

func (p *ttParser) closeLeaf(name string) {
	if name == "span" {
		p.pos = posTeam
	}
}

func (p *ttParser) openServe(string, map[string]string) {
	p.spanCount++
}

func (p *ttParser) closeServe(name string) {
	if name != "span" || p.spanCount < 1 {
		return
	}
	if p.spanCount == 1 {
		p.pos = posTeam
	}
	p.spanCount--
}

// textSetScore prepends: the widget lists the sets latest first
func (p *ttParser) textSetScore(text string) {
	score, err := strconv.Atoi(text)
	if err != nil {
		return
	}
	p.team.SetScores = append([]shared.SetScore{{Score: intPtr(score), TieBreak: intPtr(0)}}, p.team.SetScores...)
}

func (p *ttParser) textGameScore(text string) {
	p.team.GameScore = text
}

// textPlayerName accepts "Last First", "F.Last" or a single name
func (p *ttParser) textPlayerName(text string) {
	player := &p.team.Players[0]
	player.DisplayName = text
	p.team.DisplayName = text
	switch {
	case strings.Contains(text, " "):
		parts := strings.SplitN(text, " ", 2)
		player.LastName, player.FirstName = parts[0], parts[1]
	case strings.Contains(text, "."):
		parts := strings.SplitN(text, ".", 2)
		player.FirstName, player.LastName = parts[0], parts[1]
	default:
		player.FirstName, player.LastName = text, text
	}
}

func (p *ttParser) textExpectedTime(text string) {
	p.match.TimeStamp = strings.TrimSpace(p.match.TimeStamp + " " + text)
}

func (p *ttParser) handleOpen(name string, attrs map[string]string) {
	if h := ttTransitions[p.pos].open; h != nil {
		h(p, name, attrs)
	}
}

func (p *ttParser) handleText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if h := ttTransitions[p.pos].text; h != nil {
		h(p, text)
	}
}

// handleClose returns to the top state on </a> whatever the current state, so a truncated match does not swallow
// the ones after it
func (p *ttParser) handleClose(name string) {
	if name == "a" {
		p.pos = posTop
		p.spanCount = 0
		return
	}
	if h := ttTransitions[p.pos].close; h != nil {
		h(p, name)
	}
}

// ParseTennisTempleHTML parses the live matches widget fragment.
// Preconditions: Receives the HTML fragment and the site URL used to resolve match links
// Postconditions: Returns the synthetic tennistemple event holding every match found, or ErrNoData for an empty fragment
func ParseTennisTempleHTML(fragment string, baseURL string) (*shared.Event, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, fmt.Errorf("%w: empty tennistemple fragment", ErrNoData)
	}

	p := &ttParser{baseURL: baseURL, pos: posTop}
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		token := z.Token()
		switch tt {
		case html.StartTagToken:
			p.handleOpen(token.Data, attrMap(token))
		case html.SelfClosingTagToken:
			p.handleOpen(token.Data, attrMap(token))
			p.handleClose(token.Data)
		case html.EndTagToken:
			p.handleClose(token.Data)
		case html.TextToken:
			p.handleText(token.Data)
		}
	}

	event := shared.NewEvent(TennisTempleEventID, shared.TourTennisTemple)
	event.Name = TennisTempleEventTitle
	event.Title = TennisTempleEventTitle
	event.DisplayType = "Tennis Temple"
	event.IsLive = true
	event.URL = baseURL
	event.SinglesDrawSize = -1
	event.DoublesDrawSize = -1
	event.PrizeMoney = -1
	for _, m := range p.matches {
		if m.ID == "" {
			continue
		}
		m.Team1.DisplayName = teamName(m.Team1)
		m.Team2.DisplayName = teamName(m.Team2)
		m.DisplayName = m.Team1.DisplayName + " vs " + m.Team2.DisplayName
		m.DisplayScore = FormatSetScores(m.Team1.SetScores, m.Team2.SetScores)
		event.AddMatch(m)
	}
	return event, nil
}

func teamName(t shared.Team) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return shared.TeamDisplayName(t.Players)
}

func attrMap(token html.Token) map[string]string {
	attrs := make(map[string]string, len(token.Attr))
	for _, a := range token.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

func resolveURL(base string, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return b.ResolveReference(r).String()
}
