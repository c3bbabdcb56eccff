package match

import "strings"

// Team identifies an NBA franchise for question parsing and ticker suffix
// matching.
type Team struct {
	Code     string // three-letter ticker code
	City     string
	Nickname string
}

// Name returns the full team name, e.g. "Boston Celtics".
func (t Team) Name() string { return t.City + " " + t.Nickname }

// nbaTeams maps ticker codes to franchises. Codes follow the Kalshi market
// ticker suffixes.
var nbaTeams = map[string]Team{
	"ATL": {"ATL", "Atlanta", "Hawks"},
	"BOS": {"BOS", "Boston", "Celtics"},
	"BKN": {"BKN", "Brooklyn", "Nets"},
	"CHA": {"CHA", "Charlotte", "Hornets"},
	"CHI": {"CHI", "Chicago", "Bulls"},
	"CLE": {"CLE", "Cleveland", "Cavaliers"},
	"DAL": {"DAL", "Dallas", "Mavericks"},
	"DEN": {"DEN", "Denver", "Nuggets"},
	"DET": {"DET", "Detroit", "Pistons"},
	"GSW": {"GSW", "Golden State", "Warriors"},
	"HOU": {"HOU", "Houston", "Rockets"},
	"IND": {"IND", "Indiana", "Pacers"},
	"LAC": {"LAC", "Los Angeles", "Clippers"},
	"LAL": {"LAL", "Los Angeles", "Lakers"},
	"MEM": {"MEM", "Memphis", "Grizzlies"},
	"MIA": {"MIA", "Miami", "Heat"},
	"MIL": {"MIL", "Milwaukee", "Bucks"},
	"MIN": {"MIN", "Minnesota", "Timberwolves"},
	"NOP": {"NOP", "New Orleans", "Pelicans"},
	"NYK": {"NYK", "New York", "Knicks"},
	"OKC": {"OKC", "Oklahoma City", "Thunder"},
	"ORL": {"ORL", "Orlando", "Magic"},
	"PHI": {"PHI", "Philadelphia", "76ers"},
	"PHX": {"PHX", "Phoenix", "Suns"},
	"POR": {"POR", "Portland", "Trail Blazers"},
	"SAC": {"SAC", "Sacramento", "Kings"},
	"SAS": {"SAS", "San Antonio", "Spurs"},
	"TOR": {"TOR", "Toronto", "Raptors"},
	"UTA": {"UTA", "Utah", "Jazz"},
	"WAS": {"WAS", "Washington", "Wizards"},
}

// TeamByCode looks up an NBA team by its three-letter ticker code.
func TeamByCode(code string) (Team, bool) {
	t, ok := nbaTeams[strings.ToUpper(code)]
	return t, ok
}

// defaultAliases maps lowercase aliases to canonical team names, per league.
// Longest-alias match wins when normalizing a question; an alias that equals
// the canonical name itself takes precedence over everything.
var defaultAliases = buildDefaultAliases()

func buildDefaultAliases() map[string]map[string]string {
	nba := make(map[string]string, len(nbaTeams)*4)
	for code, t := range nbaTeams {
		name := t.Name()
		nba[strings.ToLower(name)] = name
		nba[strings.ToLower(t.Nickname)] = name
		nba[strings.ToLower(t.City)] = name
		nba[strings.ToLower(code)] = name
	}
	// Both LA teams share a city; drop the ambiguous alias.
	delete(nba, "los angeles")

	return map[string]map[string]string{
		"nba": nba,
		"nfl": aliasSet(
			"Kansas City Chiefs", "Chiefs",
			"Philadelphia Eagles", "Eagles",
			"San Francisco 49ers", "49ers",
			"Buffalo Bills", "Bills",
			"Dallas Cowboys", "Cowboys",
			"Baltimore Ravens", "Ravens",
			"Green Bay Packers", "Packers",
			"Detroit Lions", "Lions",
		),
		"nhl": aliasSet(
			"Edmonton Oilers", "Oilers",
			"Florida Panthers", "Panthers",
			"New York Rangers", "Rangers",
			"Colorado Avalanche", "Avalanche",
			"Toronto Maple Leafs", "Maple Leafs",
			"Boston Bruins", "Bruins",
		),
		"mlb": aliasSet(
			"Los Angeles Dodgers", "Dodgers",
			"New York Yankees", "Yankees",
			"Atlanta Braves", "Braves",
			"Houston Astros", "Astros",
			"New York Mets", "Mets",
			"Philadelphia Phillies", "Phillies",
		),
	}
}

// aliasSet builds an alias table from (canonical, nickname) pairs; both the
// full name and the nickname map to the canonical name.
func aliasSet(pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		canonical, nickname := pairs[i], pairs[i+1]
		out[strings.ToLower(canonical)] = canonical
		out[strings.ToLower(nickname)] = canonical
	}
	return out
}
