package hub

import (
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// resolveMentions rewrites @name tokens to native platform mentions for
// every name linked on this server. One batch lookup covers all distinct
// tokens; unresolved tokens stay verbatim.
func (h *Hub) resolveMentions(serverID, text string) (string, error) {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	tokens := mapset.NewThreadUnsafeSet()
	for _, m := range matches {
		tokens.Add(strings.ToLower(m[1]))
	}
	names := make([]string, 0, tokens.Cardinality())
	for t := range tokens.Iter() {
		names = append(names, t.(string))
	}

	users, err := h.store.FindUsersByUsernames(serverID, names)
	if err != nil {
		return text, err
	}
	for _, u := range users {
		re := regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(u.Username) + `\b`)
		text = re.ReplaceAllString(text, "<@!"+u.UserID+">")
	}
	return text, nil
}
