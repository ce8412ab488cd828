package relevance

// highValuePhrases are strong signals of a concrete policy event. Each match
// in title+description adds 10 points.
var highValuePhrases = []string{
	"executive order",
	"supreme court",
	"bill signed",
	"signed into law",
	"federal ruling",
	"senate passes",
	"house passes",
	"veto",
	"federal register",
	"rulemaking",
	"court strikes down",
	"injunction",
}

// policyKeywords are general policy and government terms. Each match adds 5
// points.
var policyKeywords = []string{
	"regulation",
	"congress",
	"ruling",
	"legislation",
	"senate",
	"lawmakers",
	"federal",
	"policy",
	"agency",
	"tariff",
	"subsidy",
	"statute",
	"compliance",
	"enforcement",
	"appropriations",
	"medicare",
	"medicaid",
}

// exclusionKeywords flag sports, entertainment and celebrity coverage. Each
// match subtracts 15 points.
var exclusionKeywords = []string{
	"touchdown",
	"quarterback",
	"playoffs",
	"box office",
	"celebrity",
	"red carpet",
	"grammy",
	"oscars",
	"album",
	"kardashian",
	"halftime",
	"world cup",
	"premiere",
	"trailer",
	"nba",
	"nfl",
}

// PolicyKeywords returns a copy of the medium-value policy keyword list, for
// collaborators (like the trend tracker) that count the same vocabulary.
func PolicyKeywords() []string {
	out := make([]string, len(policyKeywords))
	copy(out, policyKeywords)
	return out
}

// trustedSources are high-trust outlets that earn a 3 point bonus. Matching is
// case-insensitive on the source name.
var trustedSources = []string{
	"reuters",
	"associated press",
	"ap news",
	"bloomberg",
	"politico",
	"the hill",
	"axios",
	"wall street journal",
	"washington post",
	"new york times",
}
