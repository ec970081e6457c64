package db

import "strings"

// FuzzyTerm is a single query term with its Levenshtein edit budget.
// MaxEdits 0 matches the term exactly; 1 and 2 wrap the term in the
// corresponding number of RediSearch fuzzy markers (%term%, %%term%%).
type FuzzyTerm struct {
	Term     string
	MaxEdits int
}

// MatchClause requires every term to fuzzily match at least one of the
// listed fields. Fields form a logical OR: a document matches when any
// field matches.
type MatchClause struct {
	Fields []string
	Terms  []FuzzyTerm
}

// DocQuery is the input for a document search. A nil Match is an open
// query matching every document in the index.
type DocQuery struct {
	IndexName    string
	Match        *MatchClause
	Offset       int
	Limit        int
	ReturnFields []string
}

// QueryString renders the query into RediSearch syntax.
func (q *DocQuery) QueryString() string {
	if q.Match == nil || len(q.Match.Terms) == 0 {
		return "*"
	}

	terms := make([]string, 0, len(q.Match.Terms))
	for _, t := range q.Match.Terms {
		escaped := escapeQuery(t.Term)
		if escaped == "" {
			continue
		}
		switch {
		case t.MaxEdits >= 2:
			escaped = "%%" + escaped + "%%"
		case t.MaxEdits == 1:
			escaped = "%" + escaped + "%"
		}
		terms = append(terms, escaped)
	}
	if len(terms) == 0 {
		return "*"
	}

	return "@" + strings.Join(q.Match.Fields, "|") + ":(" + strings.Join(terms, " ") + ")"
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)
